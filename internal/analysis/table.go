package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LookupError is returned when no entry matches the requested key.
type LookupError struct {
	What string
	Key  int
}

// Error implements the error interface for LookupError.
func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s for index %d", e.What, e.Key)
}

// Row is one (mode, value) pair of a result table.
type Row struct {
	Mode  int
	Value float64
}

// Table is a mode-keyed result table read from the solver's CSV output.
type Table struct {
	Name string
	Rows []Row
}

// Lookup returns the value of the first row for mode.
func (t *Table) Lookup(mode int) (float64, error) {
	for _, r := range t.Rows {
		if r.Mode == mode {
			return r.Value, nil
		}
	}
	return 0, &LookupError{What: t.Name + " row", Key: mode}
}

// ReadTable parses a CSV result table. Column 0 holds the mode number and
// column holds the value. A leading header row is skipped.
func ReadTable(r io.Reader, name string, column int) (*Table, error) {
	if column < 1 {
		return nil, fmt.Errorf("value column must be at least 1, got %d", column)
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	t := &Table{Name: name}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}

		mode, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%s line %d: invalid mode %q", name, line, rec[0])
		}
		if column >= len(rec) {
			return nil, fmt.Errorf("%s line %d: no column %d", name, line, column)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[column]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid value %q", name, line, rec[column])
		}
		if mode != math.Trunc(mode) {
			return nil, fmt.Errorf("%s line %d: mode %q is not an integer", name, line, rec[0])
		}
		t.Rows = append(t.Rows, Row{Mode: int(mode), Value: value})
	}
	return t, nil
}

// ReadTableFile opens path and parses it with ReadTable.
func ReadTableFile(path, name string, column int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s table: %w", name, err)
	}
	defer f.Close()
	return ReadTable(f, name, column)
}
