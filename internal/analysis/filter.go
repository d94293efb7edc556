package analysis

import (
	"math"
	"sort"

	"borelog/domain/borehole"
	"borelog/internal/errors"
)

// FilterBorehole returns the rows of one borehole sorted by depth ascending.
// A table without a BOREHOLE column yields an empty result and a
// SCHEMA_MISSING error so callers can skip dependent rendering.
func FilterBorehole(t *borehole.Table, id string) (*borehole.Table, error) {
	if t == nil {
		return nil, errors.SchemaMissing(borehole.ColumnBorehole)
	}
	if !t.Schema().HasBorehole {
		return t.Subset(nil), errors.SchemaMissing(borehole.ColumnBorehole)
	}

	var indices []int
	for i := range t.Rows {
		if c := t.Cell(i, borehole.ColumnBorehole); c.Valid && c.Text == id {
			indices = append(indices, i)
		}
	}

	return SortByDepth(t.Subset(indices)), nil
}

// SortByDepth returns a copy of t ordered by numeric depth ascending. The sort
// is stable; rows without a usable depth keep their relative order at the end.
func SortByDepth(t *borehole.Table) *borehole.Table {
	order := make([]int, t.Len())
	for i := range order {
		order[i] = i
	}
	if !t.Schema().HasDepth {
		return t.Subset(order)
	}

	depths := make([]float64, t.Len())
	valid := make([]bool, t.Len())
	for i := range order {
		depths[i], valid[i] = t.Float(i, borehole.ColumnDepth)
	}

	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		return valid[ia] && depths[ia] < depths[ib]
	})
	return t.Subset(order)
}

// DropMissingDepth keeps only rows whose depth parses as a finite number.
func DropMissingDepth(t *borehole.Table) *borehole.Table {
	var keep []int
	for i := range t.Rows {
		if d, ok := t.Float(i, borehole.ColumnDepth); ok && !math.IsInf(d, 0) {
			keep = append(keep, i)
		}
	}
	return t.Subset(keep)
}
