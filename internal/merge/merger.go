// Package merge turns engine results into paired catalog rows. Both tables
// of a variable gain the new scene or neither does.
package merge

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"basintab/internal/catalog"
	"basintab/internal/engine"
	"basintab/internal/variable"
)

var (
	// ErrUnknownCatchment marks engine results that name catchments outside
	// the table universe. Scene-scoped: the scene is skipped, not recorded.
	ErrUnknownCatchment = errors.New("engine result names unknown catchment")
	// ErrPairConsistency marks a failed rollback that left the two tables of
	// a variable holding different scene sets. Fatal: the run must stop.
	ErrPairConsistency = errors.New("value and fraction tables diverged")
)

// AppendPair records one engine result in both tables of a variable and
// persists them. The value row is written first; if persisting the fraction
// row fails, the value row is rolled back so the pair stays aligned. A
// rollback that itself fails returns ErrPairConsistency.
func AppendPair(v *variable.Variable, sceneID string, date time.Time, result engine.Result) error {
	values := v.Values()
	fractions := v.Fractions()

	known := make(map[string]struct{}, len(values.Catchments()))
	for _, id := range values.Catchments() {
		known[id] = struct{}{}
	}
	for id := range result.Values {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCatchment, id)
		}
	}
	for id := range result.Fractions {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCatchment, id)
		}
	}

	valueCells := make(map[string]string, len(result.Values))
	for id, value := range result.Values {
		valueCells[id] = formatValue(value, v.Rounding, v.Decimals)
	}
	fractionCells := make(map[string]string, len(result.Fractions))
	for id, fraction := range result.Fractions {
		fractionCells[id] = strconv.Itoa(fraction)
	}

	if err := values.Append(sceneID, date, valueCells); err != nil {
		return fmt.Errorf("append value row: %w", err)
	}
	if err := values.Persist(); err != nil {
		values.DropLast()
		return fmt.Errorf("persist value table: %w", err)
	}

	if err := fractions.Append(sceneID, date, fractionCells); err != nil {
		return rollback(values, fmt.Errorf("append fraction row: %w", err))
	}
	if err := fractions.Persist(); err != nil {
		fractions.DropLast()
		return rollback(values, fmt.Errorf("persist fraction table: %w", err))
	}
	return nil
}

// rollback undoes the already persisted value row after the fraction half of
// the pair failed.
func rollback(values *catalog.Table, cause error) error {
	if !values.DropLast() {
		return fmt.Errorf("%w: nothing to roll back after %v", ErrPairConsistency, cause)
	}
	if err := values.Persist(); err != nil {
		return fmt.Errorf("%w: rollback failed (%v) after %v", ErrPairConsistency, err, cause)
	}
	return cause
}

// VerifyPair reports whether both tables of a variable hold exactly the same
// scene set, in the same order.
func VerifyPair(v *variable.Variable) error {
	valueKeys := v.Values().Keys()
	fractionKeys := v.Fractions().Keys()
	if len(valueKeys) != len(fractionKeys) {
		return fmt.Errorf("%w: %s holds %d scenes, %s holds %d",
			ErrPairConsistency, v.ValuePath, len(valueKeys), v.FractionPath, len(fractionKeys))
	}
	for i := range valueKeys {
		if valueKeys[i] != fractionKeys[i] {
			return fmt.Errorf("%w: row %d is %q in %s but %q in %s",
				ErrPairConsistency, i+1, valueKeys[i], v.ValuePath, fractionKeys[i], v.FractionPath)
		}
	}
	return nil
}

// formatValue renders an aggregate for its table cell after applying the
// variable's rounding policy.
func formatValue(value float64, mode string, decimals int) string {
	if mode == "none" || mode == "" {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	scale := math.Pow10(decimals)
	scaled := value * scale
	switch mode {
	case "ceil":
		scaled = math.Ceil(scaled)
	case "floor":
		scaled = math.Floor(scaled)
	case "round":
		scaled = math.Round(scaled)
	}
	return strconv.FormatFloat(scaled/scale, 'f', decimals, 64)
}
