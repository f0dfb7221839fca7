package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/marlinflow/fx/convertfx"
	"github.com/discochess/marlinflow/internal/convert"
	"github.com/discochess/marlinflow/internal/convert/sfd9"
	"github.com/discochess/marlinflow/internal/convert/whitecore"
	"github.com/discochess/marlinflow/internal/runner"
	"github.com/discochess/marlinflow/internal/store"
	"github.com/discochess/marlinflow/internal/store/resolve"
)

// Default locations.
const (
	defaultSFD9Input       = "sf_d9.plain"
	defaultSFD9Output      = "sf_d9_marlinflow.txt"
	defaultWhiteCoreInput  = "WC.txt"
	defaultWhiteCoreOutput = "WC_marlinflow.txt"
)

// stopTimeout bounds flushing metrics and closing stores after a run.
const stopTimeout = 30 * time.Second

// Config keys.
const (
	keyManifest    = "manifest"
	keyMetricsFile = "metrics_file"
	keyS3Region    = "s3.region"
	keyS3Endpoint  = "s3.endpoint"

	keyPreset     = "sfd9.preset"
	keyMaxLines   = "sfd9.max_lines"
	keyMaxSamples = "sfd9.max_samples"
	keySkipLow    = "sfd9.skip_low"
	keySkipHigh   = "sfd9.skip_high"
	keySeed       = "sfd9.seed"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a training data dump to Marlinflow text",
	Long: `Convert a training data dump to Marlinflow text.

Inputs and outputs may be local paths, gs://bucket/key, s3://bucket/key or
(inputs only) http(s) URLs. Files ending in .zst or .gz are decompressed on
read and compressed on write.

The output only appears once the conversion succeeds. A manifest describing
the run, including the random seed used, is written next to it.`,
}

var sfd9Cmd = &cobra.Command{
	Use:   "sfd9",
	Short: "Sample an SF-D9 plain dump",
	Long: `Sample positions from an SF-D9 "plain" dump.

The dump repeats a 6-line block (fen, move, score, ply, result, e) per
position. After each sampled block the converter skips a random number of
blocks between --skip-low and --skip-high. Scores are clamped to ±750,
flipped to White's point of view and labelled 1.0 above 100, 0.0 below
-100 and 0.5 otherwise.

Presets:
  large  70,000,000 lines, 500,000 records, skip 15-30 (default)
  small  50,000,000 lines, 200,000 records, skip 15-50

Examples:
  # Default preset
  marlinflow convert sfd9

  # Reproduce an earlier run
  marlinflow convert sfd9 --preset small --seed 8731920412`,
	Args: cobra.NoArgs,
	RunE: runSFD9,
}

var whitecoreCmd = &cobra.Command{
	Use:   "whitecore",
	Short: "Convert a WhiteCore dump",
	Long: `Convert every line of a WhiteCore dump ("FEN;ply;bestmove;eval;wdl;").

The eval is flipped to White's point of view, the wdl is kept as is and
" 1" is appended to each FEN to supply the fullmove number.`,
	Args: cobra.NoArgs,
	RunE: runWhiteCore,
}

var (
	sfd9Input       string
	sfd9Output      string
	whitecoreInput  string
	whitecoreOutput string
)

func init() {
	flags := convertCmd.PersistentFlags()
	flags.Bool("manifest", true, "write <output>.manifest.json")
	flags.String("metrics-file", "", "write Prometheus metrics to this file in textfile format")
	flags.String("s3-region", "", "AWS region for s3:// locations")
	flags.String("s3-endpoint", "", "custom endpoint for s3:// locations (MinIO and similar)")
	mustBind(keyManifest, flags.Lookup("manifest"))
	mustBind(keyMetricsFile, flags.Lookup("metrics-file"))
	mustBind(keyS3Region, flags.Lookup("s3-region"))
	mustBind(keyS3Endpoint, flags.Lookup("s3-endpoint"))

	sfd9Cmd.Flags().StringVarP(&sfd9Input, "input", "i", defaultSFD9Input, "input location")
	sfd9Cmd.Flags().StringVarP(&sfd9Output, "output", "o", defaultSFD9Output, "output location")
	sfd9Cmd.Flags().String("preset", "large", "sampling preset: large, small")
	sfd9Cmd.Flags().Int64("max-lines", 0, "input lines to consider (overrides preset)")
	sfd9Cmd.Flags().Int64("max-samples", 0, "records to write at most (overrides preset)")
	sfd9Cmd.Flags().Int("skip-low", 0, "minimum blocks skipped after a sample (overrides preset)")
	sfd9Cmd.Flags().Int("skip-high", 0, "maximum blocks skipped after a sample (overrides preset)")
	sfd9Cmd.Flags().Uint64("seed", 0, "random seed; 0 draws a fresh one")
	mustBind(keyPreset, sfd9Cmd.Flags().Lookup("preset"))
	mustBind(keyMaxLines, sfd9Cmd.Flags().Lookup("max-lines"))
	mustBind(keyMaxSamples, sfd9Cmd.Flags().Lookup("max-samples"))
	mustBind(keySkipLow, sfd9Cmd.Flags().Lookup("skip-low"))
	mustBind(keySkipHigh, sfd9Cmd.Flags().Lookup("skip-high"))
	mustBind(keySeed, sfd9Cmd.Flags().Lookup("seed"))

	whitecoreCmd.Flags().StringVarP(&whitecoreInput, "input", "i", defaultWhiteCoreInput, "input location")
	whitecoreCmd.Flags().StringVarP(&whitecoreOutput, "output", "o", defaultWhiteCoreOutput, "output location")

	convertCmd.AddCommand(sfd9Cmd, whitecoreCmd)
	rootCmd.AddCommand(convertCmd)
}

func runSFD9(cmd *cobra.Command, args []string) error {
	cfg, err := sfd9Config()
	if err != nil {
		return err
	}
	conv, err := sfd9.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Converting SF-D9 dump\n")
	fmt.Printf("  Input:       %s\n", sfd9Input)
	fmt.Printf("  Output:      %s\n", sfd9Output)
	fmt.Printf("  Max lines:   %s\n", runner.FormatCount(cfg.MaxLines))
	fmt.Printf("  Max samples: %s\n", runner.FormatCount(cfg.MaxSamples))
	fmt.Printf("  Skip:        %d-%d blocks\n", cfg.SkipLow, cfg.SkipHigh)
	fmt.Printf("  Seed:        %d\n", cfg.Seed)
	fmt.Println()

	return runConversion(conv, sfd9Input, sfd9Output)
}

// sfd9Config layers explicit settings over the chosen preset and fills in a
// seed when none was given.
func sfd9Config() (sfd9.Config, error) {
	cfg, err := sfd9.Preset(viper.GetString(keyPreset))
	if err != nil {
		return sfd9.Config{}, err
	}
	if viper.IsSet(keyMaxLines) {
		cfg.MaxLines = viper.GetInt64(keyMaxLines)
	}
	if viper.IsSet(keyMaxSamples) {
		cfg.MaxSamples = viper.GetInt64(keyMaxSamples)
	}
	if viper.IsSet(keySkipLow) {
		cfg.SkipLow = viper.GetInt(keySkipLow)
	}
	if viper.IsSet(keySkipHigh) {
		cfg.SkipHigh = viper.GetInt(keySkipHigh)
	}

	cfg.Seed = viper.GetUint64(keySeed)
	for cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	return cfg, cfg.Validate()
}

func runWhiteCore(cmd *cobra.Command, args []string) error {
	fmt.Printf("Converting WhiteCore dump\n")
	fmt.Printf("  Input:  %s\n", whitecoreInput)
	fmt.Printf("  Output: %s\n", whitecoreOutput)
	fmt.Println()

	return runConversion(whitecore.New(), whitecoreInput, whitecoreOutput)
}

// runConversion assembles a runner for input and output and runs conv.
func runConversion(conv convert.Converter, input, output string) error {
	// Setup context with cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nInterrupted, cleaning up...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg := convertfx.Config{
		Input:           input,
		Output:          output,
		DisableManifest: !viper.GetBool(keyManifest),
		MetricsFile:     viper.GetString(keyMetricsFile),
		Resolve: resolve.Options{
			S3Region:   viper.GetString(keyS3Region),
			S3Endpoint: viper.GetString(keyS3Endpoint),
		},
		Progress:      runner.DefaultProgressFunc,
		LogHistograms: verbose,
	}

	var r *runner.Runner
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, log),
		convertfx.Module,
		fx.Populate(&r),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	m, runErr := r.Run(ctx, conv)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		if runErr == nil {
			return err
		}
		log.Warn("shutdown failed", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	if !cfg.DisableManifest {
		fmt.Printf("Manifest: %s\n", manifestLocation(output))
	}
	if cfg.MetricsFile != "" {
		fmt.Printf("Metrics:  %s\n", cfg.MetricsFile)
	}
	log.Debug("run complete", zap.String("converter", m.Converter), zap.Int64("records", m.RecordsWritten))
	return nil
}

// manifestLocation names the manifest written beside output, in the same
// form the user gave for output.
func manifestLocation(output string) string {
	loc, err := store.ParseLocation(output)
	if err != nil {
		return runner.ManifestName(output)
	}
	return loc.Sibling(runner.ManifestSuffix).String()
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
