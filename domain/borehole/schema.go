package borehole

// Schema describes which well-known columns an upload carries and which
// columns hold numeric data. It is computed once when a table is built so that
// renderers never probe raw cells to decide what they can draw.
type Schema struct {
	HasBorehole       bool
	HasDepth          bool
	HasClassification bool

	// Numeric lists numeric columns in header order.
	Numeric []string
	// Boreholes lists distinct non-missing borehole ids in first-appearance order.
	Boreholes []string

	numeric map[string]bool
}

// IsNumeric reports whether a column holds numeric data.
func (s Schema) IsNumeric(column string) bool {
	return s.numeric[column]
}

// PresentNumeric filters candidates down to the columns that exist and are numeric.
func (s Schema) PresentNumeric(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if s.numeric[c] {
			out = append(out, c)
		}
	}
	return out
}

// Missing returns the required columns that are absent.
func (s Schema) Missing(required ...string) []string {
	var out []string
	for _, c := range required {
		var ok bool
		switch c {
		case ColumnBorehole:
			ok = s.HasBorehole
		case ColumnDepth:
			ok = s.HasDepth
		case ColumnClassification:
			ok = s.HasClassification
		default:
			ok = s.numeric[c]
		}
		if !ok {
			out = append(out, c)
		}
	}
	return out
}

// inferSchema classifies a column as numeric when every non-missing cell
// parses as a float. A column with no values at all counts as numeric, the
// same way a dataframe types an all-null column as float.
func inferSchema(t *Table) Schema {
	s := Schema{
		HasBorehole:       t.Has(ColumnBorehole),
		HasDepth:          t.Has(ColumnDepth),
		HasClassification: t.Has(ColumnClassification),
		numeric:           make(map[string]bool),
	}

	for j, col := range t.Columns {
		numeric := true
		for _, row := range t.Rows {
			c := row[j]
			if !c.Valid {
				continue
			}
			if _, ok := c.Float(); !ok {
				numeric = false
				break
			}
		}
		if numeric {
			s.numeric[col] = true
			s.Numeric = append(s.Numeric, col)
		}
	}

	s.Boreholes = distinct(t, ColumnBorehole)
	return s
}

// derive reuses the parent's column typing for a row subset.
func (s Schema) derive(sub *Table) Schema {
	d := s
	d.Boreholes = distinct(sub, ColumnBorehole)
	return d
}

func distinct(t *Table, column string) []string {
	j, ok := t.index[column]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.Rows {
		c := row[j]
		if !c.Valid || seen[c.Text] {
			continue
		}
		seen[c.Text] = true
		out = append(out, c.Text)
	}
	return out
}
