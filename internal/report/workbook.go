package report

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"borelog/internal/analysis"
	"borelog/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the report workbook.
const (
	SheetSummary     = "Summary"
	SheetCorrelation = "Correlation"
	SheetReliability = "Reliability"
	SheetCharts      = "Charts"
)

// chartRowSpan is the number of rows reserved for each embedded chart.
const chartRowSpan = 30

// Workbook builds the report workbook.
func (r *Report) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	header, err := headerStyle(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeSummary(f, header, r.Summary) },
		func() error { return writeCorrelation(f, header, r.Correlation) },
		func() error { return writeReliability(f, SheetReliability, header, r.Reliability) },
		func() error { return r.writeCharts(f) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "failed to build report workbook")
		}
	}
	return f, nil
}

// WriteXLSX encodes the report workbook into w.
func (r *Report) WriteXLSX(w io.Writer) error {
	f, err := r.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// ReliabilityWorkbook encodes the reliability table alone as an XLSX file.
func ReliabilityWorkbook(rel *analysis.Reliability) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetReliability); err != nil {
		return nil, err
	}
	header, err := headerStyle(f)
	if err != nil {
		return nil, err
	}
	if err := writeReliability(f, SheetReliability, header, rel); err != nil {
		return nil, errors.Wrap(err, "failed to build reliability workbook")
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
}

func writeHeader(f *excelize.File, sheet string, style int, cols []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &cols); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cellValue leaves undefined statistics as empty cells.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func writeSummary(f *excelize.File, style int, rows []analysis.ColumnSummary) error {
	cols := []interface{}{"Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	if err := writeHeader(f, SheetSummary, style, cols); err != nil {
		return err
	}
	for i, s := range rows {
		values := []interface{}{
			s.Column, s.Count, cellValue(s.Mean), cellValue(s.Std), cellValue(s.Min),
			cellValue(s.Q1), cellValue(s.Median), cellValue(s.Q3), cellValue(s.Max),
		}
		if err := writeRow(f, SheetSummary, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 26)
}

func writeCorrelation(f *excelize.File, style int, m *analysis.CorrelationMatrix) error {
	if _, err := f.NewSheet(SheetCorrelation); err != nil {
		return err
	}
	cols := []interface{}{""}
	for _, c := range m.Columns {
		cols = append(cols, c)
	}
	if err := writeHeader(f, SheetCorrelation, style, cols); err != nil {
		return err
	}
	for i, c := range m.Columns {
		values := []interface{}{c}
		for _, v := range m.Values[i] {
			values = append(values, cellValue(v))
		}
		if err := writeRow(f, SheetCorrelation, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetCorrelation, "A", "A", 26)
}

func writeReliability(f *excelize.File, sheet string, style int, rel *analysis.Reliability) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	cols := []interface{}{"Column", "Missing (%)", "COV (%)", "High missing", "High COV"}
	if err := writeHeader(f, sheet, style, cols); err != nil {
		return err
	}
	th := rel.Thresholds
	for i, row := range rel.Rows {
		var cov interface{}
		highCOV := false
		if row.COV != nil {
			cov = *row.COV
			highCOV = *row.COV > th.COVPct
		}
		values := []interface{}{row.Column, row.MissingPct, cov, row.MissingPct > th.MissingPct, highCOV}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 26)
}

func (r *Report) writeCharts(f *excelize.File) error {
	if _, err := f.NewSheet(SheetCharts); err != nil {
		return err
	}
	row := 1
	for _, key := range ChartOrder {
		png, ok := r.Charts[key]
		if !ok {
			continue
		}
		if err := f.SetCellValue(SheetCharts, fmt.Sprintf("A%d", row), ChartTitle(key)); err != nil {
			return err
		}
		err := f.AddPictureFromBytes(SheetCharts, fmt.Sprintf("A%d", row+1), &excelize.Picture{
			Extension: ".png",
			File:      png,
			Format:    &excelize.GraphicOptions{ScaleX: 0.8, ScaleY: 0.8},
		})
		if err != nil {
			return err
		}
		row += chartRowSpan + 2
	}
	return nil
}

// ChartTitle returns the display title of a chart key.
func ChartTitle(key string) string {
	switch key {
	case ChartHeatmap:
		return "Correlation Heatmap"
	case ChartMissing:
		return "Missing Values (%)"
	case ChartCOV:
		return "Coefficient of Variation (%)"
	}
	return key
}

// Bytes encodes the report workbook.
func (r *Report) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteXLSX(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
