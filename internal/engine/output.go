package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// parseOutput reads the engine result table. The layout is fixed:
// a header row, then one row per catchment with columns
// catchment_id,value,valid_fraction. Non-numeric or empty value cells mean
// the catchment had no usable observation and are omitted from Values;
// fractions are fixed-point integers 0-1000.
func parseOutput(path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: engine produced no output file", ErrOutput)
		}
		return Result{}, fmt.Errorf("%w: open output: %v", ErrOutput, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("%w: parse output: %v", ErrOutput, err)
	}
	if len(records) < 2 {
		return Result{}, fmt.Errorf("%w: output holds no catchment rows", ErrOutput)
	}

	result := Result{
		Values:    make(map[string]float64, len(records)-1),
		Fractions: make(map[string]int, len(records)-1),
	}
	for i, record := range records[1:] {
		if len(record) < 3 {
			return Result{}, fmt.Errorf("%w: output row %d has %d columns, want 3", ErrOutput, i+2, len(record))
		}
		id := strings.TrimSpace(record[0])
		if id == "" {
			return Result{}, fmt.Errorf("%w: output row %d has an empty catchment id", ErrOutput, i+2)
		}
		if _, dup := result.Fractions[id]; dup {
			return Result{}, fmt.Errorf("%w: output lists catchment %q twice", ErrOutput, id)
		}

		fractionCell := strings.TrimSpace(record[2])
		fraction, err := strconv.ParseFloat(fractionCell, 64)
		if err != nil {
			return Result{}, fmt.Errorf("%w: output row %d fraction %q is not numeric", ErrOutput, i+2, fractionCell)
		}
		if fraction < 0 || fraction > 1000 {
			return Result{}, fmt.Errorf("%w: output row %d fraction %v outside 0-1000", ErrOutput, i+2, fraction)
		}
		result.Fractions[id] = int(fraction + 0.5)

		valueCell := strings.TrimSpace(record[1])
		if valueCell == "" || strings.EqualFold(valueCell, "NA") || strings.EqualFold(valueCell, "NaN") {
			continue
		}
		value, err := strconv.ParseFloat(valueCell, 64)
		if err != nil {
			// Anything else non-numeric is a layout problem, not a missing
			// observation.
			return Result{}, fmt.Errorf("%w: output row %d value %q is not numeric", ErrOutput, i+2, valueCell)
		}
		result.Values[id] = value
	}
	return result, nil
}
