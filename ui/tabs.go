package ui

import (
	"html/template"
	"log"
	"net/http"
	"slices"

	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/charts"
	"borelog/internal/errors"
	"borelog/internal/profile"
	"borelog/internal/report"
	"borelog/internal/session"

	"github.com/gin-gonic/gin"
)

// tabRenderer builds the content of one tab from a session snapshot. It only
// runs when a table is loaded.
type tabRenderer func(s *Server, c *gin.Context, st session.State) (interface{}, error)

type tab struct {
	Key      string
	Label    string
	Title    string
	template string
	render   tabRenderer
}

var tabs = []tab{
	{Key: "raw", Label: "1. Raw Borelog Visualization", Title: "Raw Borelog Visualization", template: "raw.html", render: renderRaw},
	{Key: "statistics", Label: "2. Statistical Analysis", Title: "Statistical Analysis", template: "statistics.html", render: renderStatistics},
	{Key: "clustering", Label: "3. K-Means Clustering", Title: "K-Means Clustering", template: "collaborator.html", render: renderCollaborator("Clustering")},
	{Key: "reliability", Label: "4. Reliability Analysis", Title: "Reliability Analysis", template: "reliability.html", render: renderReliability},
	{Key: "probability", Label: "5. Probability Analysis", Title: "Probability Analysis", template: "collaborator.html", render: renderCollaborator("Probability")},
	{Key: "bayesian", Label: "6. Bayesian Analysis", Title: "Bayesian Analysis", template: "collaborator.html", render: renderCollaborator("Bayesian")},
	{Key: "montecarlo", Label: "7. Monte Carlo Simulation", Title: "Monte Carlo Simulation", template: "collaborator.html", render: renderCollaborator("Monte Carlo")},
	{Key: "compliance", Label: "8. Code Compliance", Title: "Code Compliance (IS/Eurocode)", template: "collaborator.html", render: renderCollaborator("Code compliance")},
	{Key: "report", Label: "9. Report Generator", Title: "Report Generator", template: "report.html", render: renderReport},
}

func findTab(key string) (tab, bool) {
	for _, t := range tabs {
		if t.Key == key {
			return t, true
		}
	}
	return tab{}, false
}

// alert is a message scoped to one tab; it never affects other tabs.
type alert struct {
	Level session.Level
	Text  string
}

type page struct {
	Tabs      []tab
	Active    tab
	State     session.State
	Boreholes []string
	Message   *session.Message
	// Notice replaces the content when no table is loaded.
	Notice  string
	Alerts  []alert
	Content interface{}
}

func (s *Server) handleTab(c *gin.Context) {
	active, ok := findTab(c.Param("tab"))
	if !ok {
		c.String(http.StatusNotFound, "unknown tab %q", c.Param("tab"))
		return
	}

	st := s.controller.Snapshot()
	p := page{
		Tabs:      tabs,
		Active:    active,
		State:     st,
		Boreholes: st.Boreholes(),
		Message:   st.Message,
	}

	switch {
	case !st.Loaded() && active.Key == "raw":
		p.Notice = "Upload a CSV file with a valid 'BOREHOLE' column to begin."
	case !st.Loaded():
		p.Notice = "Please upload a CSV file."
	default:
		content, err := active.render(s, c, st)
		if err != nil {
			log.Printf("[Tabs] %s: %v", active.Key, err)
			p.Alerts = append(p.Alerts, alertFor(err))
		}
		p.Content = content
	}

	s.renderTemplate(c, http.StatusOK, active.template, p)
}

func alertFor(err error) alert {
	if errors.Is(err, errors.CodeNotFound) {
		return alert{Level: session.LevelWarning, Text: capitalize(err.Error())}
	}
	return alert{Level: session.LevelError, Text: capitalize(err.Error())}
}

// version changes whenever the chart inputs change, so image URLs differ
// between uploads and selections.
func version(st session.State) string {
	return st.UploadID + ":" + st.Selected
}

const previewRows = 200

type rawView struct {
	Borehole  string
	Version   string
	Profile   *profile.Profile
	Columns   []string
	Rows      [][]string
	Truncated int
}

func renderRaw(s *Server, c *gin.Context, st session.State) (interface{}, error) {
	if !st.Table.Schema().HasBorehole {
		return nil, errors.New(errors.CodeSchemaMissing, "Upload a CSV file with a valid 'BOREHOLE' column to begin.")
	}

	view := &rawView{Borehole: st.Selected, Version: version(st)}
	subset, err := st.Subset()
	if err != nil {
		return nil, err
	}
	view.Columns = subset.Columns
	for i := range subset.Rows {
		if i == previewRows {
			view.Truncated = subset.Len() - previewRows
			break
		}
		row := make([]string, len(subset.Columns))
		for j, col := range subset.Columns {
			row[j] = subset.Cell(i, col).Text
		}
		view.Rows = append(view.Rows, row)
	}

	view.Profile, err = st.Profile()
	return view, err
}

type subTab struct {
	Key   string
	Label string
}

var statisticsTabs = []subTab{
	{Key: "describe", Label: "Descriptive Statistics"},
	{Key: "correlation", Label: "Correlation Heatmap"},
	{Key: "histogram", Label: "Histogram"},
	{Key: "boxplot", Label: "Box Plot"},
}

type statisticsView struct {
	Sub     string
	Subs    []subTab
	Columns []string
	Column  string
	Version string
	Summary []analysis.ColumnSummary
	Box     *analysis.BoxStats
	Bins    int
	Notes   template.HTML
}

func renderStatistics(s *Server, c *gin.Context, st session.State) (interface{}, error) {
	summary, err := st.Summary()
	if err != nil {
		return nil, err
	}

	view := &statisticsView{
		Sub:     c.DefaultQuery("sub", "describe"),
		Subs:    statisticsTabs,
		Columns: st.Table.Schema().Numeric,
		Version: version(st),
		Summary: summary,
	}
	if !slices.ContainsFunc(statisticsTabs, func(t subTab) bool { return t.Key == view.Sub }) {
		view.Sub = "describe"
	}
	view.Column = resolveColumn(st.Table, c.Query("column"))
	view.Notes = template.HTML(report.ToHTML(interpretationNotes[view.Sub]))

	switch view.Sub {
	case "histogram":
		h := analysis.NewHistogram(view.Column, st.Table.Floats(view.Column))
		view.Bins = len(h.Counts)
	case "boxplot":
		b := analysis.NewBoxStats(view.Column, st.Table.Floats(view.Column))
		view.Box = &b
	}
	return view, nil
}

// resolveColumn returns the requested numeric column, or the first numeric
// column when the request names none or an unknown one.
func resolveColumn(t *borehole.Table, requested string) string {
	numeric := t.Schema().Numeric
	if slices.Contains(numeric, requested) {
		return requested
	}
	if len(numeric) > 0 {
		return numeric[0]
	}
	return ""
}

type reliabilityView struct {
	Reliability *analysis.Reliability
	MissingPNG  []byte
	COVPNG      []byte
}

func renderReliability(s *Server, c *gin.Context, st session.State) (interface{}, error) {
	rel, err := st.Reliability()
	if err != nil {
		return nil, err
	}
	view := &reliabilityView{Reliability: rel}
	if view.MissingPNG, err = charts.Bytes(report.MissingChart(rel)); err != nil {
		log.Printf("[Charts] missing values chart: %v", err)
	}
	if cov := report.COVChart(rel); cov != nil {
		if view.COVPNG, err = charts.Bytes(cov); err != nil {
			log.Printf("[Charts] COV chart: %v", err)
		}
	}
	return view, nil
}

type reportView struct {
	Digest template.HTML
	Charts []reportChart
}

type reportChart struct {
	Title string
	PNG   []byte
}

func renderReport(s *Server, c *gin.Context, st session.State) (interface{}, error) {
	r, err := s.buildReport(c, st)
	if err != nil {
		return nil, err
	}
	view := &reportView{Digest: template.HTML(r.DigestHTML())}
	for _, key := range report.ChartOrder {
		if png, ok := r.Charts[key]; ok {
			view.Charts = append(view.Charts, reportChart{Title: report.ChartTitle(key), PNG: png})
		}
	}
	return view, nil
}

// buildReport assembles the report from the snapshot's cached analyses.
func (s *Server) buildReport(c *gin.Context, st session.State) (*report.Report, error) {
	var (
		sec report.Sections
		err error
	)
	if sec.Summary, err = st.Summary(); err != nil {
		return nil, err
	}
	if sec.Correlation, err = st.Correlation(); err != nil {
		return nil, err
	}
	if sec.Reliability, err = st.Reliability(); err != nil {
		return nil, err
	}
	opts := report.Options{
		Thresholds:  s.controller.Options().Thresholds,
		Concurrency: s.opts.ReportConcurrency,
	}
	return report.Assemble(c.Request.Context(), st.Filename, st.Table, sec, opts)
}

type collaboratorView struct {
	Module    string
	Filename  string
	Rows      int
	Columns   int
	Numeric   []string
	Boreholes int
}

// renderCollaborator covers the tabs whose analysis lives in an external
// module: they receive the full table and show what it would be given.
func renderCollaborator(module string) tabRenderer {
	return func(s *Server, c *gin.Context, st session.State) (interface{}, error) {
		schema := st.Table.Schema()
		return &collaboratorView{
			Module:    module,
			Filename:  st.Filename,
			Rows:      st.Table.Len(),
			Columns:   len(st.Table.Columns),
			Numeric:   schema.Numeric,
			Boreholes: len(schema.Boreholes),
		}, nil
	}
}
