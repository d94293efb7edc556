package report

import (
	"fmt"
	"math"
	"strings"

	"borelog/internal/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// strongCorrelation is the |r| above which a pair is listed in the digest.
const strongCorrelation = 0.7

// Digest renders the report as Markdown.
func (r *Report) Digest() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Borehole Data Report\n\n")
	fmt.Fprintf(&b, "- **File:** %s\n", escapeCell(r.Filename))
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- **Rows:** %d, **columns:** %d, **boreholes:** %d\n\n", r.Rows, r.Columns, len(r.Boreholes))

	b.WriteString("## Summary statistics\n\n")
	b.WriteString("| Column | count | mean | std | min | 50% | max |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range r.Summary {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s |\n",
			escapeCell(s.Column), s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.Median), num(s.Max))
	}

	b.WriteString("\n## Strong correlations\n\n")
	pairs := strongPairs(r.Correlation)
	if len(pairs) == 0 {
		fmt.Fprintf(&b, "No pair of columns has |r| above %.1f.\n", strongCorrelation)
	}
	for _, p := range pairs {
		fmt.Fprintf(&b, "- %s / %s: %.2f\n", escapeCell(p.a), escapeCell(p.b), p.r)
	}

	rel := r.Reliability
	b.WriteString("\n## Data reliability\n\n")
	if len(rel.HighMissing) == 0 && len(rel.HighCOV) == 0 {
		b.WriteString("No column exceeds the reliability thresholds.\n")
	}
	if n := len(rel.HighMissing); n > 0 {
		fmt.Fprintf(&b, "**%d column(s) with more than %.0f%% missing values:** %s\n\n",
			n, rel.Thresholds.MissingPct, columnList(rel.HighMissing))
	}
	if n := len(rel.HighCOV); n > 0 {
		fmt.Fprintf(&b, "**%d column(s) with COV above %.0f%%:** %s\n",
			n, rel.Thresholds.COVPct, columnList(rel.HighCOV))
	}

	return b.String()
}

// DigestHTML renders the Markdown digest to HTML.
func (r *Report) DigestHTML() []byte {
	return ToHTML(r.Digest())
}

// ToHTML renders Markdown with the common extensions enabled. Raw HTML in the
// source is dropped, since uploaded names end up in the text.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML | html.Safelink,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

type pair struct {
	a, b string
	r    float64
}

func strongPairs(m *analysis.CorrelationMatrix) []pair {
	var out []pair
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			if v := m.Values[i][j]; !math.IsNaN(v) && math.Abs(v) > strongCorrelation {
				out = append(out, pair{a: m.Columns[i], b: m.Columns[j], r: v})
			}
		}
	}
	return out
}

func columnList(rows []analysis.ReliabilityRow) string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = escapeCell(r.Column)
	}
	return strings.Join(names, ", ")
}

func num(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

var cellEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"&", `\&`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
)

// escapeCell makes an uploaded name safe inside Markdown text and table cells.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
