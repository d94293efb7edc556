package borehole

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known column names of a borelog sheet.
const (
	ColumnBorehole       = "BOREHOLE"
	ColumnDepth          = "Depth"
	ColumnClassification = "Classification"
)

// DefaultProperties are the numeric geotechnical properties plotted against
// depth when no other list is configured.
var DefaultProperties = []string{
	"SPTValue", "DryDensity", "WaterContent", "LiquidLimit", "PlasticLimit",
	"Gravel", "SandContent", "SiltContent", "ClayContent",
	"Cohesion", "AngleOfInternalFriction",
}

// missingTokens mirrors the default null markers recognised by common CSV
// readers (pandas, R). Matching is case-sensitive.
var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissingToken reports whether a raw cell should be treated as a null value.
func IsMissingToken(raw string) bool {
	return missingTokens[strings.TrimSpace(raw)]
}

// Cell is a single table value. Valid is false for missing values.
type Cell struct {
	Text  string
	Valid bool
}

// NewCell normalises a raw text value into a Cell.
func NewCell(raw string) Cell {
	raw = strings.TrimSpace(raw)
	if missingTokens[raw] {
		return Cell{}
	}
	return Cell{Text: raw, Valid: true}
}

// Float parses the cell as a number.
func (c Cell) Float() (float64, bool) {
	if !c.Valid {
		return 0, false
	}
	v, err := strconv.ParseFloat(c.Text, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Row is one record of the table, aligned with Table.Columns.
type Row []Cell

// Table is an immutable, ordered set of rows with named columns.
// Tables are never mutated after construction; derived views (subsets,
// sorted copies) share the column header and cell storage.
type Table struct {
	Columns []string
	Rows    []Row

	index  map[string]int
	schema Schema
}

// NewTable builds a table from a header and raw string records. Header names
// are trimmed; duplicates are disambiguated with ".1", ".2" suffixes. Short
// records are padded with missing cells and long records are truncated.
func NewTable(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		columns[i] = name
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(columns))
		for j := range columns {
			if j < len(rec) {
				row[j] = NewCell(rec[j])
			}
		}
		rows = append(rows, row)
	}

	return newTable(columns, rows), nil
}

func newTable(columns []string, rows []Row) *Table {
	t := &Table{
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c] = i
	}
	t.schema = inferSchema(t)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Has reports whether the named column exists.
func (t *Table) Has(column string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[column]
	return ok
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(column string) int {
	if i, ok := t.index[column]; ok {
		return i
	}
	return -1
}

// Cell returns the value at row i in the named column. Unknown columns yield
// a missing cell.
func (t *Table) Cell(i int, column string) Cell {
	j, ok := t.index[column]
	if !ok {
		return Cell{}
	}
	return t.Rows[i][j]
}

// Float returns the numeric value at row i in the named column.
func (t *Table) Float(i int, column string) (float64, bool) {
	return t.Cell(i, column).Float()
}

// Floats returns the non-missing numeric values of a column in row order.
func (t *Table) Floats(column string) []float64 {
	j, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row[j].Float(); ok {
			out = append(out, v)
		}
	}
	return out
}

// MissingCount returns the number of null cells in a column.
func (t *Table) MissingCount(column string) int {
	j, ok := t.index[column]
	if !ok {
		return t.Len()
	}
	n := 0
	for _, row := range t.Rows {
		if !row[j].Valid {
			n++
		}
	}
	return n
}

// Schema returns the column classification computed at construction.
func (t *Table) Schema() Schema {
	if t == nil {
		return Schema{}
	}
	return t.schema
}

// Subset returns a view containing the given rows, in the given order.
// Column types are inherited from the parent table so that a column which is
// numeric in the full upload stays numeric in every view of it.
func (t *Table) Subset(indices []int) *Table {
	rows := make([]Row, 0, len(indices))
	for _, i := range indices {
		rows = append(rows, t.Rows[i])
	}
	sub := &Table{
		Columns: t.Columns,
		Rows:    rows,
		index:   t.index,
	}
	sub.schema = t.schema.derive(sub)
	return sub
}
