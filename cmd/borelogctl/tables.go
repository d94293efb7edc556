package main

import (
	"fmt"
	"math"
	"strconv"

	"borelog/domain/borehole"
	"borelog/internal/analysis"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	colorBorder = lipgloss.Color("#6B7280")
	colorHeader = lipgloss.Color("#93C5FD")
	colorWarn   = lipgloss.Color("#FBBF24")

	headingStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorHeader).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
	flaggedStyle = numberStyle.Foreground(colorWarn)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorBorder)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

func printHeading(cmd *cobra.Command, text string) {
	fmt.Fprintln(cmd.OutOrStdout(), headingStyle.Render(text))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...)
}

// styleColumns renders the first column as a label and the rest right-aligned.
func styleColumns(row, col int) lipgloss.Style {
	switch {
	case row == table.HeaderRow:
		return headerStyle
	case col == 0:
		return cellStyle
	}
	return numberStyle
}

func formatNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func summaryTable(rows []analysis.ColumnSummary) string {
	t := newTable("Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max").
		StyleFunc(styleColumns)
	for _, s := range rows {
		t.Row(s.Column, strconv.Itoa(s.Count), formatNum(s.Mean), formatNum(s.Std), formatNum(s.Min),
			formatNum(s.Q1), formatNum(s.Median), formatNum(s.Q3), formatNum(s.Max))
	}
	return t.Render()
}

func reliabilityTable(rel *analysis.Reliability) string {
	rows := rel.Rows
	th := rel.Thresholds
	t := newTable("Column", "Missing (%)", "COV (%)").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return styleColumns(row, col)
			}
			r := rows[row]
			if col == 1 && r.MissingPct > th.MissingPct {
				return flaggedStyle
			}
			if col == 2 && r.COV != nil && *r.COV > th.COVPct {
				return flaggedStyle
			}
			return numberStyle
		})
	for _, r := range rows {
		cov := "-"
		if r.COV != nil {
			cov = formatNum(*r.COV)
		}
		t.Row(r.Column, formatNum(r.MissingPct), cov)
	}
	return t.Render()
}

func uploadsTable(uploads []borehole.Upload) string {
	t := newTable("Uploaded", "File", "Rows", "Columns", "Boreholes").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col < 2 {
				return styleColumns(row, 0)
			}
			return numberStyle
		})
	for _, u := range uploads {
		t.Row(u.UploadedAt.Local().Format("2006-01-02 15:04"), u.Filename,
			strconv.Itoa(u.Rows), strconv.Itoa(u.Columns), strconv.Itoa(u.Boreholes))
	}
	return t.Render()
}
