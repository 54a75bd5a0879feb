package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Sentinel is the cell value recorded for a catchment without a usable
// observation in a value table. Fraction tables use FractionFill instead so
// that a sentinel value is always paired with a zero valid fraction.
const (
	Sentinel     = "NA"
	FractionFill = "0"
)

// DateFormat is the display format of the date column.
const DateFormat = "2006-01-02"

var (
	// ErrStorage marks tables that exist on disk but cannot be read back.
	ErrStorage = errors.New("catalog storage error")
	// ErrSchemaMismatch marks appends that reference catchments outside the
	// table's column universe.
	ErrSchemaMismatch = errors.New("catalog schema mismatch")
)

// Table is the in-memory image of one catalog CSV file: a header of
// catchment columns in fixed order plus one row per scene, keyed by scene
// identifier. Mutations happen in memory; Persist writes the whole file
// atomically.
type Table struct {
	path       string
	fill       string
	catchments []string
	index      map[string]int
	rows       []row
	keys       map[string]struct{}
}

type row struct {
	sceneID string
	date    string
	cells   []string
}

// Load reads the table at path, or creates and persists an empty one with
// the given catchment universe when the file does not exist. fill is the
// cell value used for catchments a row does not cover (Sentinel for value
// tables, FractionFill for fraction tables).
func Load(path string, universe []string, fill string) (*Table, error) {
	t := &Table{
		path: path,
		fill: fill,
		keys: make(map[string]struct{}),
	}

	file, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
		}
		if len(universe) == 0 {
			return nil, fmt.Errorf("%w: creating %s requires a catchment universe", ErrStorage, path)
		}
		t.setCatchments(universe)
		if err := t.Persist(); err != nil {
			return nil, err
		}
		return t, nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStorage, path, err)
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, fmt.Errorf("%w: %s has no usable header", ErrStorage, path)
	}
	header := records[0]
	if header[0] != "name_id" || header[1] != "date" {
		return nil, fmt.Errorf("%w: %s header must start with name_id,date", ErrStorage, path)
	}
	t.setCatchments(header[2:])

	width := len(header)
	for i, record := range records[1:] {
		if len(record) != width {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want %d", ErrStorage, path, i+2, len(record), width)
		}
		sceneID := record[0]
		if _, dup := t.keys[sceneID]; dup {
			return nil, fmt.Errorf("%w: %s contains scene %q twice", ErrStorage, path, sceneID)
		}
		cells := make([]string, width-2)
		copy(cells, record[2:])
		t.rows = append(t.rows, row{sceneID: sceneID, date: record[1], cells: cells})
		t.keys[sceneID] = struct{}{}
	}
	return t, nil
}

func (t *Table) setCatchments(ids []string) {
	t.catchments = make([]string, len(ids))
	copy(t.catchments, ids)
	t.index = make(map[string]int, len(ids))
	for i, id := range ids {
		t.index[id] = i
	}
}

// Path returns the durable location of the table.
func (t *Table) Path() string { return t.path }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Catchments returns the column universe in table order.
func (t *Table) Catchments() []string {
	out := make([]string, len(t.catchments))
	copy(out, t.catchments)
	return out
}

// Keys returns the scene identifiers in row order.
func (t *Table) Keys() []string {
	out := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r.sceneID)
	}
	return out
}

// KeySet returns the scene identifiers as a set.
func (t *Table) KeySet() map[string]struct{} {
	out := make(map[string]struct{}, len(t.keys))
	for k := range t.keys {
		out[k] = struct{}{}
	}
	return out
}

// HasKey reports whether a scene is already present.
func (t *Table) HasKey(sceneID string) bool {
	_, ok := t.keys[sceneID]
	return ok
}

// RegisterCatchments appends identifiers the table does not know yet to the
// end of the column universe and backfills existing rows with the table's
// fill value. Existing columns are never reordered.
func (t *Table) RegisterCatchments(ids []string) int {
	added := 0
	for _, id := range ids {
		if _, ok := t.index[id]; ok {
			continue
		}
		t.index[id] = len(t.catchments)
		t.catchments = append(t.catchments, id)
		added++
	}
	if added > 0 {
		for i := range t.rows {
			for len(t.rows[i].cells) < len(t.catchments) {
				t.rows[i].cells = append(t.rows[i].cells, t.fill)
			}
		}
	}
	return added
}

// Append inserts one row at the end. Every key of values must belong to the
// column universe; catchments the row does not cover get the fill value.
func (t *Table) Append(sceneID string, date time.Time, values map[string]string) error {
	if sceneID == "" {
		return errors.New("scene identifier required")
	}
	if t.HasKey(sceneID) {
		return fmt.Errorf("scene %q already present in %s", sceneID, t.path)
	}
	for id := range values {
		if _, ok := t.index[id]; !ok {
			return fmt.Errorf("%w: catchment %q is not a column of %s", ErrSchemaMismatch, id, t.path)
		}
	}
	cells := make([]string, len(t.catchments))
	for i, id := range t.catchments {
		if v, ok := values[id]; ok {
			cells[i] = v
		} else {
			cells[i] = t.fill
		}
	}
	t.rows = append(t.rows, row{sceneID: sceneID, date: date.Format(DateFormat), cells: cells})
	t.keys[sceneID] = struct{}{}
	return nil
}

// DropLast removes the most recent row. It supports rolling back the first
// half of a pair append and reports whether a row was removed.
func (t *Table) DropLast() bool {
	if len(t.rows) == 0 {
		return false
	}
	last := t.rows[len(t.rows)-1]
	t.rows = t.rows[:len(t.rows)-1]
	delete(t.keys, last.sceneID)
	return true
}

// Persist writes the whole table to a temp file next to the target and
// renames it into place, so an interrupted write leaves the previous durable
// version intact.
func (t *Table) Persist() error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure table directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	header := append([]string{"name_id", "date"}, t.catchments...)
	writeErr := writer.Write(header)
	for _, r := range t.rows {
		if writeErr != nil {
			break
		}
		record := append([]string{r.sceneID, r.date}, r.cells...)
		writeErr = writer.Write(record)
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write table %s: %w", t.path, writeErr)
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace table %s: %w", t.path, err)
	}
	return nil
}
