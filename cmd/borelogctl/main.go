package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"borelog/adapters/tabular"
	"borelog/internal/analysis"
	"borelog/internal/charts"
	"borelog/internal/config"
	"borelog/internal/ledger"
	"borelog/internal/profile"
	"borelog/internal/report"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "borelogctl",
		Short:         "Borehole CSV analysis from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $BORELOG_CONFIG)")

	rootCmd.AddCommand(
		newSummaryCmd(),
		newReliabilityCmd(),
		newProfileCmd(),
		newReportCmd(),
		newUploadsCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ Error: ")+err.Error())
		os.Exit(1)
	}
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Print descriptive statistics of every numeric column",
		Long: `Print count, mean, standard deviation, min, quartiles and max of every
numeric column of a borehole CSV or Excel file.

Example: borelogctl summary boreholes.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tabular.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary, err := analysis.Describe(t)
			if err != nil {
				return err
			}
			printHeading(cmd, fmt.Sprintf("%s: %d rows, %d columns, %d boreholes",
				filepath.Base(args[0]), t.Len(), len(t.Columns), len(t.Schema().Boreholes)))
			fmt.Fprintln(cmd.OutOrStdout(), summaryTable(summary))
			return nil
		},
	}
}

func newReliabilityCmd() *cobra.Command {
	var missing, cov float64

	cmd := &cobra.Command{
		Use:   "reliability [file]",
		Short: "Report missing values and coefficient of variation per column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			th := analysis.Thresholds{MissingPct: cfg.Analysis.MissingThreshold, COVPct: cfg.Analysis.COVThreshold}
			if cmd.Flags().Changed("missing") {
				th.MissingPct = missing
			}
			if cmd.Flags().Changed("cov") {
				th.COVPct = cov
			}

			t, err := tabular.ReadFile(args[0])
			if err != nil {
				return err
			}
			rel, err := analysis.AssessReliability(t, th)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reliabilityTable(rel))
			printFlags(out, fmt.Sprintf("more than %.0f%% missing values", th.MissingPct), rel.HighMissing)
			printFlags(out, fmt.Sprintf("COV above %.0f%%", th.COVPct), rel.HighCOV)
			return nil
		},
	}

	cmd.Flags().Float64Var(&missing, "missing", 20, "Missing percentage above which a column is flagged")
	cmd.Flags().Float64Var(&cov, "cov", 100, "Coefficient of variation (%) above which a column is flagged")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var id, out string

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Render the depth profile of one borehole as PNG or SVG",
		Long: `Render the classification strip and property series of one borehole.
The output format follows the --out extension (.png or .svg).

Example: borelogctl profile boreholes.csv --borehole BH-1 --out bh1.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			t, err := tabular.ReadFile(args[0])
			if err != nil {
				return err
			}
			if id == "" {
				ids := t.Schema().Boreholes
				if len(ids) == 0 {
					return fmt.Errorf("no borehole ids found in %s", args[0])
				}
				id = ids[0]
			}

			subset, err := analysis.FilterBorehole(t, id)
			if err != nil {
				return err
			}
			p, err := profile.Build(subset, cfg.Analysis.Properties)
			if err != nil {
				return err
			}

			render := func(f *os.File) error { return charts.RenderProfilePNG(f, p) }
			if strings.EqualFold(filepath.Ext(out), ".svg") {
				render = func(f *os.File) error { return charts.RenderProfileSVG(f, p) }
			}
			if err := writeFile(out, render); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Borehole %s: %d layer(s), %d series, %d skipped interval(s) -> %s\n",
				okStyle.Render("✓"), id, len(p.Layers), len(p.Series), p.Skipped, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "borehole", "", "Borehole id (default: first in file)")
	cmd.Flags().StringVar(&out, "out", "profile.png", "Output file (.png or .svg)")
	return cmd
}

func newReportCmd() *cobra.Command {
	var out, markdownOut string

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Build the XLSX report workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			t, err := tabular.ReadFile(args[0])
			if err != nil {
				return err
			}
			r, err := report.Build(cmd.Context(), filepath.Base(args[0]), t, report.Options{
				Thresholds:  analysis.Thresholds{MissingPct: cfg.Analysis.MissingThreshold, COVPct: cfg.Analysis.COVThreshold},
				Concurrency: cfg.Report.Concurrency,
			})
			if err != nil {
				return err
			}

			if err := writeFile(out, func(f *os.File) error { return r.WriteXLSX(f) }); err != nil {
				return err
			}
			if markdownOut != "" {
				if err := os.WriteFile(markdownOut, []byte(r.Digest()), 0o644); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Report written to %s (%d chart(s))\n", okStyle.Render("✓"), out, len(r.Charts))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "borehole_report.xlsx", "Output workbook")
	cmd.Flags().StringVar(&markdownOut, "markdown", "", "Also write the Markdown digest to this file")
	return cmd
}

func newUploadsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "List recent uploads recorded by the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, closeFn, err := ledger.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer closeFn()

			uploads, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(uploads) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No uploads recorded."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), uploadsTable(uploads))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", ledger.DefaultLimit, "Maximum number of uploads to list")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or initialise configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "borelog.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			b, err := config.Default().YAML()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", okStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			b, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func printFlags(w io.Writer, what string, rows []analysis.ReliabilityRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, okStyle.Render("✓")+" No column with "+what)
		return
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Column
	}
	fmt.Fprintf(w, "%s %d column(s) with %s: %s\n", warnStyle.Render("⚠"), len(rows), what, strings.Join(names, ", "))
}
