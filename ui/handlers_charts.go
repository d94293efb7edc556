package ui

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"unicode"

	"borelog/internal/analysis"
	"borelog/internal/charts"
	"borelog/internal/errors"
	"borelog/internal/report"

	"github.com/gin-gonic/gin"
)

const (
	formatPNG = "png"
	formatSVG = "svg"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// statusFor maps an application error onto an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeSchemaMissing:
		return http.StatusUnprocessableEntity
	case errors.CodeInvalidInput, errors.CodeInputMalformed, errors.CodeInputEmpty:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// writeChart renders into memory first so a failure still yields a clean
// error response. With ?download=1 the image is sent as an attachment.
func writeChart(c *gin.Context, filename, contentType string, render charts.Renderer) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		log.Printf("[Charts] %s: %v", filename, err)
		abortWithError(c, errors.Wrapf(err, "failed to render %s", filename))
		return
	}
	if c.Query("download") == "1" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleProfileChart(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.controller.Snapshot().Profile()
		if err != nil {
			abortWithError(c, err)
			return
		}
		name := fmt.Sprintf("borehole_%s.%s", safeName(p.Borehole), format)
		if format == formatSVG {
			writeChart(c, name, "image/svg+xml", func(w io.Writer) error { return charts.RenderProfileSVG(w, p) })
			return
		}
		writeChart(c, name, "image/png", func(w io.Writer) error { return charts.RenderProfilePNG(w, p) })
	}
}

func (s *Server) handleHeatmapChart(c *gin.Context) {
	m, err := s.controller.Snapshot().Correlation()
	if err != nil {
		abortWithError(c, err)
		return
	}
	writeChart(c, "correlation_heatmap.png", "image/png", func(w io.Writer) error { return charts.RenderHeatmap(w, m) })
}

// columnValues resolves ?column= against the numeric columns of the table.
func (s *Server) columnValues(c *gin.Context) (string, []float64, error) {
	st := s.controller.Snapshot()
	if !st.Loaded() {
		return "", nil, errors.New(errors.CodeNotFound, "no file uploaded yet")
	}
	col := resolveColumn(st.Table, c.Query("column"))
	if col == "" {
		return "", nil, errors.New(errors.CodeSchemaMissing, "no numeric columns found in the uploaded file")
	}
	return col, st.Table.Floats(col), nil
}

func (s *Server) handleHistogramChart(c *gin.Context) {
	col, values, err := s.columnValues(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h := analysis.NewHistogram(col, values)
	if len(h.Counts) == 0 {
		abortWithError(c, errors.New(errors.CodeNotFound, fmt.Sprintf("no values to plot for %s", col)))
		return
	}
	writeChart(c, fmt.Sprintf("histogram_%s.png", safeName(col)), "image/png",
		func(w io.Writer) error { return charts.RenderHistogram(w, h) })
}

func (s *Server) handleBoxPlotChart(c *gin.Context) {
	col, values, err := s.columnValues(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	b := analysis.NewBoxStats(col, values)
	if b.Count == 0 {
		abortWithError(c, errors.New(errors.CodeNotFound, fmt.Sprintf("no values to plot for %s", col)))
		return
	}
	writeChart(c, fmt.Sprintf("boxplot_%s.png", safeName(col)), "image/png",
		func(w io.Writer) error { return charts.RenderBoxPlot(w, b) })
}

func (s *Server) handleMissingChart(c *gin.Context) {
	rel, err := s.controller.Snapshot().Reliability()
	if err != nil {
		abortWithError(c, err)
		return
	}
	writeChart(c, "missing_values.png", "image/png", report.MissingChart(rel))
}

func (s *Server) handleCOVChart(c *gin.Context) {
	rel, err := s.controller.Snapshot().Reliability()
	if err != nil {
		abortWithError(c, err)
		return
	}
	render := report.COVChart(rel)
	if render == nil {
		abortWithError(c, errors.New(errors.CodeNotFound, "no column has a defined coefficient of variation"))
		return
	}
	writeChart(c, "cov_plot.png", "image/png", render)
}

func (s *Server) handleReliabilityDownload(c *gin.Context) {
	rel, err := s.controller.Snapshot().Reliability()
	if err != nil {
		abortWithError(c, err)
		return
	}
	data, err := report.ReliabilityWorkbook(rel)
	if err != nil {
		log.Printf("[Downloads] reliability workbook: %v", err)
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reliability.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

func (s *Server) handleReportDownload(c *gin.Context) {
	st := s.controller.Snapshot()
	if !st.Loaded() {
		abortWithError(c, errors.New(errors.CodeNotFound, "no file uploaded yet"))
		return
	}
	r, err := s.buildReport(c, st)
	if err != nil {
		abortWithError(c, err)
		return
	}
	data, err := r.Bytes()
	if err != nil {
		log.Printf("[Downloads] report workbook: %v", err)
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="borehole_report.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

// safeName reduces a label to characters that are safe in a file name.
func safeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "chart"
	}
	return b.String()
}
