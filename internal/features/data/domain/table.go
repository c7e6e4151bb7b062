package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MainIDColumn joins feature rows to target rows.
const MainIDColumn = "main_id"

// Table is a parsed CSV file: a header row and string cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of the first column named name.
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Headers {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// ModelHeaders returns the headers without main_id (case-insensitive).
func (t *Table) ModelHeaders() []string {
	headers := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if strings.EqualFold(h, MainIDColumn) {
			continue
		}
		headers = append(headers, h)
	}
	return headers
}

// Record returns row i as header -> cell.
func (t *Table) Record(i int) map[string]string {
	record := make(map[string]string, len(t.Headers))
	for j, h := range t.Headers {
		if _, dup := record[h]; dup || j >= len(t.Rows[i]) {
			continue
		}
		record[h] = t.Rows[i][j]
	}
	return record
}

// Numbers converts column col to floats; cells that are not numbers are NaN.
func (t *Table) Numbers(col int) []float64 {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = ParseNumber(row[col])
	}
	return values
}

// ParseNumber parses a cell, returning NaN when it is not a number.
func ParseNumber(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Merge joins feature and target rows. When both tables have a main_id
// column the result is their inner join on it, in feature order; columns
// present on both sides get _x/_y suffixes. Otherwise the tables are placed
// side by side, which requires equal row counts.
func Merge(feature, target *Table) (*Table, error) {
	fKey, fOK := feature.Column(MainIDColumn)
	tKey, tOK := target.Column(MainIDColumn)
	if !fOK || !tOK {
		if len(feature.Rows) != len(target.Rows) {
			return nil, fmt.Errorf("feature and target CSV files have different number of rows and no common %q", MainIDColumn)
		}
		merged := &Table{Headers: append(append([]string{}, feature.Headers...), target.Headers...)}
		for i := range feature.Rows {
			merged.Rows = append(merged.Rows, append(append([]string{}, feature.Rows[i]...), target.Rows[i]...))
		}
		return merged, nil
	}

	shared := make(map[string]bool)
	for _, h := range target.Headers {
		if h != MainIDColumn {
			if _, ok := feature.Column(h); ok {
				shared[h] = true
			}
		}
	}

	merged := &Table{}
	for _, h := range feature.Headers {
		if shared[h] {
			h += "_x"
		}
		merged.Headers = append(merged.Headers, h)
	}
	var targetCols []int
	for j, h := range target.Headers {
		if j == tKey {
			continue
		}
		if shared[h] {
			h += "_y"
		}
		merged.Headers = append(merged.Headers, h)
		targetCols = append(targetCols, j)
	}

	byID := make(map[string][]int)
	for i, row := range target.Rows {
		byID[row[tKey]] = append(byID[row[tKey]], i)
	}
	for _, fRow := range feature.Rows {
		for _, ti := range byID[fRow[fKey]] {
			row := append([]string{}, fRow...)
			for _, j := range targetCols {
				row = append(row, target.Rows[ti][j])
			}
			merged.Rows = append(merged.Rows, row)
		}
	}
	return merged, nil
}
