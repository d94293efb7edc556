// Package report assembles the downloadable analysis report: an XLSX workbook
// with summary, correlation and reliability sheets plus the rendered charts,
// and a Markdown digest shown in the dashboard.
package report

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/charts"
	"borelog/internal/errors"

	"golang.org/x/sync/errgroup"
)

// Chart keys.
const (
	ChartHeatmap = "heatmap"
	ChartMissing = "missing"
	ChartCOV     = "cov"
)

// ChartOrder lists chart keys in presentation order.
var ChartOrder = []string{ChartHeatmap, ChartMissing, ChartCOV}

// Options control report generation.
type Options struct {
	Thresholds  analysis.Thresholds
	Concurrency int
}

// Report holds every computed section of a report.
type Report struct {
	Filename    string
	GeneratedAt time.Time
	Rows        int
	Columns     int
	Boreholes   []string
	Summary     []analysis.ColumnSummary
	Correlation *analysis.CorrelationMatrix
	Reliability *analysis.Reliability
	// Charts maps chart keys to PNG bytes. Charts with nothing to plot are
	// absent.
	Charts map[string][]byte
}

// Build computes the report sections for t and renders its charts
// concurrently.
func Build(ctx context.Context, filename string, t *borehole.Table, opts Options) (*Report, error) {
	if t == nil || t.Empty() {
		return nil, errors.New(errors.CodeNotFound, "no data loaded")
	}

	summary, err := analysis.Describe(t)
	if err != nil {
		return nil, err
	}
	corr, err := analysis.Correlate(t)
	if err != nil {
		return nil, err
	}
	rel, err := analysis.AssessReliability(t, opts.Thresholds)
	if err != nil {
		return nil, err
	}

	return Assemble(ctx, filename, t, Sections{Summary: summary, Correlation: corr, Reliability: rel}, opts)
}

// Sections are the precomputed analyses a report is assembled from.
type Sections struct {
	Summary     []analysis.ColumnSummary
	Correlation *analysis.CorrelationMatrix
	Reliability *analysis.Reliability
}

// Assemble builds a report from analyses already computed for t and renders
// its charts concurrently.
func Assemble(ctx context.Context, filename string, t *borehole.Table, sec Sections, opts Options) (*Report, error) {
	start := time.Now()
	r := &Report{
		Filename:    filename,
		GeneratedAt: time.Now().UTC(),
		Rows:        t.Len(),
		Columns:     len(t.Columns),
		Boreholes:   t.Schema().Boreholes,
		Summary:     sec.Summary,
		Correlation: sec.Correlation,
		Reliability: sec.Reliability,
	}

	var err error
	r.Charts, err = renderCharts(ctx, r, opts.Concurrency)
	if err != nil {
		return nil, err
	}

	log.Printf("[Report] Built report for %s in %.2fms (%d charts)",
		filename, float64(time.Since(start).Nanoseconds())/1e6, len(r.Charts))
	return r, nil
}

// Renderers returns the chart renderers of a report keyed by chart name.
func Renderers(corr *analysis.CorrelationMatrix, rel *analysis.Reliability) map[string]charts.Renderer {
	out := map[string]charts.Renderer{
		ChartHeatmap: func(w io.Writer) error { return charts.RenderHeatmap(w, corr) },
		ChartMissing: MissingChart(rel),
	}
	if cov := COVChart(rel); cov != nil {
		out[ChartCOV] = cov
	}
	return out
}

// MissingChart plots missing percentages, highest first.
func MissingChart(rel *analysis.Reliability) charts.Renderer {
	bars := charts.MissingBars(rel)
	return func(w io.Writer) error {
		return charts.RenderBars(w, "Percentage of Missing Values per Column", "Missing Values (%)", bars, charts.Viridis)
	}
}

// COVChart plots defined coefficients of variation, highest first. It is nil
// when no column has a defined COV.
func COVChart(rel *analysis.Reliability) charts.Renderer {
	bars := charts.COVBars(rel)
	if len(bars) == 0 {
		return nil
	}
	return func(w io.Writer) error {
		return charts.RenderBars(w, "Coefficient of Variation per Column", "COV (%)", bars, charts.Plasma)
	}
}

func renderCharts(ctx context.Context, r *Report, concurrency int) (map[string][]byte, error) {
	renderers := Renderers(r.Correlation, r.Reliability)

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	var mu sync.Mutex
	out := make(map[string][]byte, len(renderers))
	for _, key := range ChartOrder {
		render, ok := renderers[key]
		if !ok {
			continue
		}
		key := key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			png, err := charts.Bytes(render)
			if err != nil {
				return errors.Wrapf(err, "failed to render %s chart", key)
			}
			mu.Lock()
			out[key] = png
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
