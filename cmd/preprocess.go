package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataviz-cli/internal/dataset"
	"github.com/KaramelBytes/dataviz-cli/internal/ingest"
	"github.com/KaramelBytes/dataviz-cli/internal/preprocess"
	"github.com/KaramelBytes/dataviz-cli/internal/quality"
	"github.com/KaramelBytes/dataviz-cli/internal/utils"
)

var (
	ppOperation  string
	ppAll        bool
	ppOutputPath string
	ppSeed       uint64
	ppStrategy   string
	ppIngest     ingestFlags
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <file>",
	Short: "Apply one preprocessing operation (--op) or the full pipeline (--all)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if (ppOperation == "") == !ppAll {
			return fmt.Errorf("specify exactly one of --op or --all")
		}
		params := preprocessParams()
		var err error
		if cmd.Flags().Changed("seed") {
			params.Seed = ppSeed
		}
		if ppStrategy != "" {
			params.Strategy = ppStrategy
		}
		if params.Strategy, err = preprocess.ParseStrategy(params.Strategy); err != nil {
			return err
		}
		opt, err := ppIngest.options()
		if err != nil {
			return err
		}
		ds, err := ingest.Load(path, opt)
		if err != nil {
			return err
		}

		engine := quality.NewEngine(qualityOptions())
		before := engine.Analyze(ds).Score
		out := cmd.OutOrStdout()

		var result *dataset.Dataset
		if ppAll {
			var steps []preprocess.Step
			if result, steps, err = preprocess.ApplyAll(ds, params); err != nil {
				return err
			}
			for _, s := range steps {
				fmt.Fprintf(out, "- %s\n", s)
			}
		} else {
			result, err = preprocess.Apply(ds, ppOperation, params)
			if errors.Is(err, preprocess.ErrUnknownOperation) {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(preprocess.Keys(), ", "))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "- %s\n", preprocess.NewStep(ppOperation, ds, result))
		}
		after := engine.Analyze(result).Score

		dst := ppOutputPath
		if dst == "" {
			dst = utils.ReportPath(path, "", ".clean.csv")
		}
		if err := ingest.Save(dst, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Quality score: %.1f -> %.1f\n", before, after)
		fmt.Fprintf(out, "✓ Wrote %s\n", dst)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	preprocessCmd.Flags().StringVar(&ppOperation, "op", "", "operation key (see `dataviz operations`)")
	preprocessCmd.Flags().BoolVar(&ppAll, "all", false, "run every operation in pipeline order")
	preprocessCmd.Flags().StringVarP(&ppOutputPath, "output", "o", "", "output file (.csv|.tsv|.json|.xlsx); default <name>.clean.csv beside the input")
	preprocessCmd.Flags().Uint64Var(&ppSeed, "seed", 42, "oversampling seed (overrides config)")
	preprocessCmd.Flags().StringVar(&ppStrategy, "strategy", "", "oversampling strategy: random|cyclic (overrides config)")
	ppIngest.bind(preprocessCmd.Flags())
}
