package cmd

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
	"github.com/KaramelBytes/dataviz-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaFormat     string
	anaIssuesOnly bool
	anaIngest     ingestFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Compute quality metrics and score for a CSV/TSV/XLSX/JSON dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := outputFormat(anaFormat)
		if err != nil {
			return err
		}
		opt, err := anaIngest.options()
		if err != nil {
			return err
		}
		ds, err := ingest.Load(path, opt)
		if err != nil {
			return err
		}
		a := quality.NewEngine(qualityOptions()).Analyze(ds)
		slog.Debug("analyzed dataset", "file", path, "rows", a.Rows, "score", a.Score)

		out, err := renderAnalysis(a, format, anaIssuesOnly)
		if err != nil {
			return err
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "", "report format: markdown|json|yaml (default from config)")
	analyzeCmd.Flags().BoolVar(&anaIssuesOnly, "issues", false, "print only failing metrics and the operations that fix them")
	anaIngest.bind(analyzeCmd.Flags())
}
