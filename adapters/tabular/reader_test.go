package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"borelog/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = "BOREHOLE,Depth,Classification,SPTValue\n" +
	"BH-1,1.5,CL,12\n" +
	"BH-1,3.0,SM,\n" +
	"BH-2,1.0,CL,20\n"

func TestParse_CSV(t *testing.T) {
	tbl, err := Parse("bh.csv", []byte(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"BOREHOLE", "Depth", "Classification", "SPTValue"}, tbl.Columns)
	assert.Equal(t, []string{"BH-1", "BH-2"}, tbl.Schema().Boreholes)
	assert.Equal(t, []float64{12, 20}, tbl.Floats("SPTValue"))
}

func TestParse_StripsBOMAndRaggedRows(t *testing.T) {
	data := "\xEF\xBB\xBFBOREHOLE,Depth\nA,1,extra\nB\n"
	tbl, err := Parse("bh.csv", []byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"BOREHOLE", "Depth"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
	assert.False(t, tbl.Cell(1, "Depth").Valid)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{name: "empty file", data: "", code: errors.CodeInputMalformed},
		{name: "header only", data: "BOREHOLE,Depth\n", code: errors.CodeInputEmpty},
		{name: "unterminated quote", data: "BOREHOLE,Depth\n\"A,1\n", code: errors.CodeInputMalformed},
		{name: "binary", data: "\xff\xfe\x00\x01", code: errors.CodeInputMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bh.csv", []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestParse_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"BOREHOLE", "Depth", "SPTValue"},
		{"BH-1", 1.5, 12},
		{nil, nil, nil},
		{"BH-1", 3, 18},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := Parse("bh.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []float64{12, 18}, tbl.Floats("SPTValue"))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFor("Logs.XLSX"))
	assert.Equal(t, FormatCSV, FormatFor("logs.csv"))
	assert.Equal(t, FormatCSV, FormatFor("logs"))
}

func TestReadFileAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bh.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	tbl, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	tbl, err = ReadAll("bh.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
