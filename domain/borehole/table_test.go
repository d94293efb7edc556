package borehole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		[]string{"BOREHOLE", " Depth ", "Classification", "SPTValue", "Remarks"},
		[][]string{
			{"BH-1", "1.5", "CL", "12", "soft"},
			{"BH-1", "3.0", "SM", "NA", ""},
			{"BH-2", "1.0", "CL", "20", "stiff"},
			{"BH-2", "", "", "25"},
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestNewTable_HeaderNormalisation(t *testing.T) {
	tbl, err := NewTable([]string{" A ", "A", "", "A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A.1", "Unnamed: 2", "A.2"}, tbl.Columns)
	assert.True(t, tbl.Empty())
}

func TestNewTable_RejectsEmptyHeader(t *testing.T) {
	_, err := NewTable(nil, nil)
	assert.Error(t, err)
}

func TestNewTable_PadsShortRecords(t *testing.T) {
	tbl := sampleTable(t)
	c := tbl.Cell(3, "Remarks")
	assert.False(t, c.Valid)
	assert.Equal(t, 1, tbl.MissingCount("Classification"))
}

func TestCell_MissingTokens(t *testing.T) {
	for _, raw := range []string{"", " ", "NA", "N/A", "nan", "NULL", "None", "#N/A"} {
		assert.False(t, NewCell(raw).Valid, "%q should be missing", raw)
	}
	c := NewCell("  12.5 ")
	require.True(t, c.Valid)
	v, ok := c.Float()
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	_, ok = NewCell("CL").Float()
	assert.False(t, ok)
}

func TestSchema_Inference(t *testing.T) {
	s := sampleTable(t).Schema()

	assert.True(t, s.HasBorehole)
	assert.True(t, s.HasDepth)
	assert.True(t, s.HasClassification)
	assert.Equal(t, []string{"Depth", "SPTValue"}, s.Numeric)
	assert.Equal(t, []string{"BH-1", "BH-2"}, s.Boreholes)
	assert.True(t, s.IsNumeric("SPTValue"))
	assert.False(t, s.IsNumeric("Remarks"))
	assert.Equal(t, []string{"SPTValue"}, s.PresentNumeric([]string{"SPTValue", "Cohesion", "Remarks"}))
	assert.Equal(t, []string{"Cohesion"}, s.Missing(ColumnBorehole, ColumnDepth, "Cohesion"))
}

func TestSchema_AllMissingColumnIsNumeric(t *testing.T) {
	tbl, err := NewTable([]string{"BOREHOLE", "Gravel"}, [][]string{{"A", ""}, {"A", "NA"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gravel"}, tbl.Schema().Numeric)
	assert.Empty(t, tbl.Floats("Gravel"))
}

func TestTable_Floats(t *testing.T) {
	tbl := sampleTable(t)
	assert.Equal(t, []float64{12, 20, 25}, tbl.Floats("SPTValue"))
	assert.Nil(t, tbl.Floats("Unknown"))
	assert.Equal(t, tbl.Len(), tbl.MissingCount("Unknown"))
}

func TestTable_SubsetInheritsTyping(t *testing.T) {
	tbl := sampleTable(t)
	sub := tbl.Subset([]int{1})

	assert.Equal(t, 1, sub.Len())
	// SPTValue is missing in the only row but stays numeric.
	assert.True(t, sub.Schema().IsNumeric("SPTValue"))
	assert.Equal(t, []string{"BH-1"}, sub.Schema().Boreholes)
	assert.Equal(t, tbl.Columns, sub.Columns)
}

func TestTable_NilSafe(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.Empty())
	assert.False(t, tbl.Has(ColumnBorehole))
	assert.Nil(t, tbl.Records())
	assert.Equal(t, Schema{}, tbl.Schema())
}

func TestTable_Records(t *testing.T) {
	recs := sampleTable(t).Records()
	require.Len(t, recs, 4)

	first := recs[0]
	require.NotNil(t, first.Borehole)
	assert.Equal(t, "BH-1", *first.Borehole)
	require.NotNil(t, first.Depth)
	assert.Equal(t, 1.5, *first.Depth)
	assert.Equal(t, map[string]float64{"Depth": 1.5, "SPTValue": 12}, first.Properties)

	last := recs[3]
	assert.Nil(t, last.Depth)
	assert.Nil(t, last.Classification)
	assert.Equal(t, map[string]float64{"SPTValue": 25}, last.Properties)
}

func TestNewUpload(t *testing.T) {
	u := NewUpload("bh.csv", sampleTable(t))
	assert.Len(t, u.ID, 36)
	assert.Equal(t, "bh.csv", u.Filename)
	assert.Equal(t, 4, u.Rows)
	assert.Equal(t, 5, u.Columns)
	assert.Equal(t, 2, u.Boreholes)
	assert.False(t, u.UploadedAt.IsZero())
}
