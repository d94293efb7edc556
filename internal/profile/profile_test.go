package profile

import (
	"fmt"
	"testing"

	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subsetOf(t *testing.T, header []string, rows ...[]string) *borehole.Table {
	t.Helper()
	tbl, err := borehole.NewTable(header, rows)
	require.NoError(t, err)
	return tbl
}

var header = []string{"BOREHOLE", "Depth", "Classification", "SPTValue", "Cohesion"}

func TestBuild_TwoRowsOneLayer(t *testing.T) {
	sub := subsetOf(t, header,
		[]string{"A", "3", "SM", "20", ""},
		[]string{"A", "1", "CL", "10", "5"},
	)

	p, err := Build(sub, []string{"SPTValue", "Cohesion", "Gravel"})
	require.NoError(t, err)

	assert.Equal(t, "A", p.Borehole)
	assert.Equal(t, 1.0, p.MinDepth)
	assert.Equal(t, 3.0, p.MaxDepth)
	require.Len(t, p.Layers, 1)
	assert.Equal(t, Layer{Top: 1, Bottom: 3, Classification: "CL", Color: qualitative[0]}, p.Layers[0])
	assert.Equal(t, 2.0, p.Layers[0].Height())
	assert.Equal(t, 1, p.Skipped)

	require.Len(t, p.Series, 2)
	assert.Equal(t, "SPTValue", p.Series[0].Property)
	assert.Equal(t, []analysis.Point{{X: 10, Y: 1}, {X: 20, Y: 3}}, p.Series[0].Points)
	assert.Equal(t, []analysis.Point{{X: 5, Y: 1}}, p.Series[1].Points)

	lo, hi := p.Series[0].ValueRange()
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 20.0, hi)

	require.Len(t, p.Legend, 2)
	assert.Equal(t, "CL", p.Legend[0].Classification)
	assert.Equal(t, "SM", p.Legend[1].Classification)
}

func TestBuild_InfiniteDepthIsDropped(t *testing.T) {
	sub := subsetOf(t, header,
		[]string{"A", "1", "CL", "10", ""},
		[]string{"A", "inf", "SM", "11", ""},
		[]string{"A", "4", "GW", "12", ""},
	)

	p, err := Build(sub, []string{"SPTValue"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, p.MinDepth)
	assert.Equal(t, 4.0, p.MaxDepth)
	require.Len(t, p.Layers, 1)
	assert.Equal(t, "CL", p.Layers[0].Classification)
	assert.Equal(t, 3.0, p.Layers[0].Height())
	require.Len(t, p.Legend, 2)
	assert.Equal(t, "GW", p.Legend[1].Classification)
	require.Len(t, p.Series, 1)
	assert.Equal(t, []analysis.Point{{X: 10, Y: 1}, {X: 12, Y: 4}}, p.Series[0].Points)

	_, err = Build(subsetOf(t, header, []string{"A", "-inf", "CL", "1", ""}), nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuild_DuplicateDepthsAreSkipped(t *testing.T) {
	sub := subsetOf(t, header,
		[]string{"A", "1", "CL", "", ""},
		[]string{"A", "1", "SM", "", ""},
		[]string{"A", "2", "", "", ""},
		[]string{"A", "4", "GW", "", ""},
	)

	p, err := Build(sub, borehole.DefaultProperties)
	require.NoError(t, err)

	// 1->1 has no height, 4->4 closes the log.
	assert.Equal(t, 2, p.Skipped)
	require.Len(t, p.Layers, 2)
	assert.Equal(t, "SM", p.Layers[0].Classification)
	assert.Equal(t, "", p.Layers[1].Classification)
	assert.Equal(t, Unclassified, p.Layers[1].Color)
}

func TestBuild_Errors(t *testing.T) {
	noDepth := subsetOf(t, []string{"BOREHOLE", "Classification"}, []string{"A", "CL"})
	_, err := Build(noDepth, nil)
	assert.True(t, errors.Is(err, errors.CodeSchemaMissing))

	noDepthValues := subsetOf(t, header, []string{"A", "", "CL", "1", "1"})
	_, err = Build(noDepthValues, nil)
	assert.ErrorIs(t, err, ErrNoData)

	noClass := subsetOf(t, []string{"BOREHOLE", "Depth"}, []string{"A", "1"})
	_, err = Build(noClass, nil)
	assert.True(t, errors.Is(err, errors.CodeSchemaMissing))
	assert.Contains(t, err.Error(), "Classification")
}

func TestPalette_StableAndCyclic(t *testing.T) {
	var labels []string
	for i := 0; i < len(qualitative)+2; i++ {
		labels = append(labels, fmt.Sprintf("L%d", i))
	}
	labels = append(labels, "L0")
	p := NewPalette(labels)

	assert.Len(t, p.Labels(), len(qualitative)+2)
	assert.Equal(t, qualitative[0], p.Color("L0"))
	assert.Equal(t, qualitative[0], p.Color(fmt.Sprintf("L%d", len(qualitative))))
	assert.Equal(t, qualitative[1], p.Color(fmt.Sprintf("L%d", len(qualitative)+1)))
	assert.Equal(t, Unclassified, p.Color("unknown"))
}
