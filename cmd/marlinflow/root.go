package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags.
	cfgFile string
	verbose bool

	// log is built once flags are parsed.
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "marlinflow",
	Short: "Convert chess training data to the Marlinflow text format",
	Long: `Marlinflow converts engine evaluation dumps into the "FEN | score | wdl"
text format consumed by neural-network training pipelines.

Examples:
  # Sample the SF-D9 corpus with the default preset
  marlinflow convert sfd9 --input sf_d9.plain --output sf_d9_marlinflow.txt

  # Convert a compressed WhiteCore dump from GCS
  marlinflow convert whitecore --input gs://my-bucket/WC.txt.zst --output WC_marlinflow.txt

  # Describe a converted file
  marlinflow stats sf_d9_marlinflow.txt`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./marlinflow.yaml or ~/.config/marlinflow/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("marlinflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "marlinflow"))
		}
	}

	viper.SetEnvPrefix("MARLINFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds a console logger writing to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !verbose
	return cfg.Build()
}
