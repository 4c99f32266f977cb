package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
	"github.com/KaramelBytes/dataviz-cli/internal/utils"
)

var (
	abOutputDir string
	abFormat    string
	abQuiet     bool
	abIngest    ingestFlags
)

type batchItem struct {
	path     string
	analysis *quality.Analysis
	err      error
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze many datasets in parallel; failures are reported per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		format, err := outputFormat(abFormat)
		if err != nil {
			return err
		}
		opt, err := abIngest.options()
		if err != nil {
			return err
		}
		if abOutputDir != "" {
			if err := utils.EnsureDir(abOutputDir); err != nil {
				return err
			}
		}

		// metrics run sequentially per file; the pool spreads files
		qopts := qualityOptions()
		n := qopts.Workers
		qopts.Workers = 1
		engine := quality.NewEngine(qopts)
		mapper := iter.Mapper[string, batchItem]{MaxGoroutines: n}
		items := mapper.Map(files, func(path *string) batchItem {
			ds, err := ingest.Load(*path, opt)
			if err != nil {
				return batchItem{path: *path, err: err}
			}
			return batchItem{path: *path, analysis: engine.Analyze(ds)}
		})

		out := cmd.OutOrStdout()
		reserved := map[string]struct{}{}
		failed := 0
		for i, it := range items {
			if it.err != nil {
				failed++
				fmt.Fprintf(out, "[%d/%d] ✗ %s: %v\n", i+1, len(items), it.path, it.err)
				continue
			}
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] %s: score %.1f, %d issue(s)\n", i+1, len(items), filepath.Base(it.path), it.analysis.Score, len(it.analysis.Issues))
			}
			body, err := renderAnalysis(it.analysis, format, false)
			if err != nil {
				return err
			}
			if abOutputDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, string(body))
				}
				continue
			}
			dst := uniquePath(utils.ReportPath(it.path, abOutputDir, formatExt(format)), reserved)
			if err := utils.SafeWriteFile(dst, body); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", dst)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failed, len(items))
		}
		return nil
	},
}

// uniquePath appends __2, __3, ... before the report suffix when path is
// taken on disk or already claimed in this run.
func uniquePath(path string, reserved map[string]struct{}) string {
	taken := func(p string) bool {
		if _, ok := reserved[p]; ok {
			return true
		}
		_, err := os.Stat(p)
		return err == nil
	}
	cand := path
	if taken(cand) {
		dir, base := filepath.Split(path)
		stem, suffix := base, ""
		if i := strings.Index(base, ".quality."); i >= 0 {
			stem, suffix = base[:i], base[i:]
		}
		for idx := 2; ; idx++ {
			cand = filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, idx, suffix))
			if !taken(cand) {
				break
			}
		}
	}
	reserved[cand] = struct{}{}
	return cand
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abOutputDir, "output-dir", "d", "", "write one report per file into this directory")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "", "report format: markdown|json|yaml (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abIngest.bind(analyzeBatchCmd.Flags())
}
