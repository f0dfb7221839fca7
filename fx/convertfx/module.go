// Package convertfx provides an fx module for a conversion runner.
package convertfx

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/marlinflow/internal/runner"
	"github.com/discochess/marlinflow/internal/stats"
	"github.com/discochess/marlinflow/internal/stats/logger"
	statsprom "github.com/discochess/marlinflow/internal/stats/prometheus"
	"github.com/discochess/marlinflow/internal/store/resolve"
)

// runSecondsBuckets cover runs from a second to a few hours.
var runSecondsBuckets = prometheus.ExponentialBuckets(1, 4, 8)

// Config holds configuration for the runner.
type Config struct {
	// Input and Output are locations as accepted by resolve.Resolve.
	Input  string
	Output string

	// DisableManifest skips writing <output>.manifest.json.
	DisableManifest bool

	// MetricsFile, when set, collects metrics in a Prometheus registry and
	// writes them there in textfile format on stop.
	MetricsFile string

	// Resolve tunes the remote storage backends.
	Resolve resolve.Options

	// Progress receives progress updates. Nil disables them.
	Progress runner.ProgressFunc

	// LogHistograms logs every histogram observation when metrics go to
	// the logger rather than a metrics file.
	LogHistograms bool
}

// Module provides a *runner.Runner wired to the configured locations.
// Requires Config and a *zap.Logger to be provided.
var Module = fx.Module("convert",
	fx.Provide(
		newStatsCollector,
		newRunner,
	),
)

// StatsParams holds dependencies for creating the collector.
type StatsParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
}

// StatsResult holds the provided collector and, when metrics are exported,
// the registry backing it.
type StatsResult struct {
	fx.Out

	Collector stats.Collector
	Registry  *prometheus.Registry
}

func newStatsCollector(p StatsParams) StatsResult {
	if p.Config.MetricsFile == "" {
		var opts []logger.Option
		if p.Config.LogHistograms {
			opts = append(opts, logger.WithHistograms())
		}
		return StatsResult{Collector: logger.New(p.Logger.Named("marlinflow.stats"), opts...)}
	}

	registry := prometheus.NewRegistry()
	collector := statsprom.New(registry,
		statsprom.WithBuckets(stats.MetricScore, stats.ScoreBuckets),
		statsprom.WithBuckets(stats.MetricRunSeconds, runSecondsBuckets),
	)

	path := p.Config.MetricsFile
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Logger.Debug("writing metrics", zap.String("path", path))
			return statsprom.WriteTextfile(path, registry)
		},
	})

	return StatsResult{Collector: collector, Registry: registry}
}

// Params holds dependencies for creating the runner.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

func newRunner(p Params) (*runner.Runner, error) {
	// Resolution only builds clients; no I/O happens before Run.
	ctx := context.Background()

	in, err := resolve.Resolve(ctx, p.Config.Input, resolve.Read, p.Config.Resolve)
	if err != nil {
		return nil, err
	}
	out, err := resolve.Resolve(ctx, p.Config.Output, resolve.Write, p.Config.Resolve)
	if err != nil {
		in.Close()
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			inErr := in.Close()
			if err := out.Close(); err != nil {
				return err
			}
			return inErr
		},
	})

	return runner.New(
		runner.WithInput(in.Store, in.Name),
		runner.WithOutput(out.Store, out.Name),
		runner.WithLabels(p.Config.Input, p.Config.Output),
		runner.WithManifest(!p.Config.DisableManifest),
		runner.WithProgress(p.Config.Progress),
		runner.WithStats(p.Collector),
		runner.WithLogger(p.Logger.Named("marlinflow")),
	), nil
}
