package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataviz-cli/internal/preprocess"
)

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List preprocessing operations and the metric each one addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tMETRIC\tDESCRIPTION")
		for _, op := range preprocess.Operations() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", op.Key, op.Metric, op.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(operationsCmd)
}
