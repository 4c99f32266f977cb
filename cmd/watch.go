package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
	"github.com/KaramelBytes/dataviz-cli/internal/utils"
	"github.com/KaramelBytes/dataviz-cli/internal/watch"
)

var (
	watchDebounce time.Duration
	watchIngest   ingestFlags
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-analyze data files in a directory whenever they change",
	Long: `watch monitors a directory and writes <name>.quality.md next to every
CSV/TSV/XLSX/JSON file that is created or rewritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := watchIngest.options()
		if err != nil {
			return err
		}
		w, err := watch.New(args[0], watchable, watchDebounce)
		if err != nil {
			return err
		}
		engine := quality.NewEngine(qualityOptions())
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return w.Run(ctx, func(path string) {
			if err := writeQualityReport(engine, path, opt); err != nil {
				slog.Error("analysis failed", "file", path, "error", err)
			}
		})
	},
}

// watchable accepts supported data files, skipping hidden and temporary
// files such as the ones SafeWriteFile renames into place.
func watchable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return ingest.Supported(path)
}

func writeQualityReport(engine *quality.Engine, path string, opt ingest.Options) error {
	ds, err := ingest.Load(path, opt)
	if err != nil {
		return err
	}
	a := engine.Analyze(ds)
	dst := utils.ReportPath(path, "", ".quality.md")
	if err := utils.SafeWriteFile(dst, []byte(a.Markdown())); err != nil {
		return err
	}
	slog.Info("wrote quality report", "file", path, "report", dst, "score", a.Score, "issues", len(a.Issues))
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period after the last write before re-analyzing")
	watchIngest.bind(watchCmd.Flags())
}
