package borehole

// Record is the typed projection of one row. Fields for columns that are not
// guaranteed to exist are pointers; nil means absent column or missing value.
type Record struct {
	Borehole       *string
	Depth          *float64
	Classification *string
	// Properties holds the present numeric values, keyed by column name.
	Properties map[string]float64
}

// Records projects every row onto the typed record shape. Only numeric
// columns contribute to Properties.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Record(i)
	}
	return out
}

// Record projects row i.
func (t *Table) Record(i int) Record {
	rec := Record{Properties: make(map[string]float64)}

	if c := t.Cell(i, ColumnBorehole); c.Valid {
		id := c.Text
		rec.Borehole = &id
	}
	if d, ok := t.Float(i, ColumnDepth); ok {
		rec.Depth = &d
	}
	if c := t.Cell(i, ColumnClassification); c.Valid {
		class := c.Text
		rec.Classification = &class
	}
	for _, col := range t.schema.Numeric {
		if v, ok := t.Float(i, col); ok {
			rec.Properties[col] = v
		}
	}
	return rec
}
