package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/marlinflow/internal/summary"
)

var verifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Verify that a Marlinflow file is well formed",
	Long: `Verify that every line of a Marlinflow file parses.

With --strict each record must also satisfy the SF-D9 normalization:
- Score within ±750
- WDL 1.0 above 100, 0.0 below -100, 0.5 otherwise

WhiteCore output keeps its original labels and generally fails --strict.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var verifyStrict bool

func init() {
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "also check score range and label agreement")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	rc, err := openLocation(context.Background(), args[0])
	if err != nil {
		return err
	}
	defer rc.Close()

	n, err := summary.Verify(rc, verifyStrict, summary.DefaultOptions)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Verified %d records.\n", n)
	return nil
}
