package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/marlinflow/internal/summary"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Show statistics about a Marlinflow file",
	Long: `Display statistics about a Marlinflow file including:
- Number of records and side-to-move split
- WDL label distribution
- Score mean, spread and quantiles
- How many labels agree with their scores`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var (
	statsLimit     int
	statsThreshold int
)

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "limit", summary.DefaultOptions.Limit, "score magnitude counted as clamped")
	statsCmd.Flags().IntVar(&statsThreshold, "threshold", summary.DefaultOptions.Threshold, "score beyond which a label should be a win")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	rc, err := openLocation(context.Background(), args[0])
	if err != nil {
		return err
	}
	defer rc.Close()

	s, err := summary.Compute(rc, summary.Options{Limit: statsLimit, Threshold: statsThreshold})
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "File:           %s\n", args[0])
	return s.WriteText(cmd.OutOrStdout())
}
