// Package runner drives a converter from an input object to a committed
// Marlinflow output object.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/marlinflow"
	"github.com/discochess/marlinflow/internal/codec"
	"github.com/discochess/marlinflow/internal/convert"
	"github.com/discochess/marlinflow/internal/stats"
	"github.com/discochess/marlinflow/internal/store"
)

// progressInterval is the number of records between progress reports.
const progressInterval = 100_000

// Configuration errors.
var (
	ErrNoInput  = errors.New("runner: no input configured")
	ErrNoOutput = errors.New("runner: no output configured")
)

// Runner converts one input into one output.
type Runner struct {
	input      store.Store
	inputName  string
	inputLabel string

	output      store.Store
	outputName  string
	outputLabel string

	progress ProgressFunc
	stats    stats.Collector
	logger   *zap.Logger
	manifest bool
	now      func() time.Time
}

// Option configures the Runner.
type Option func(*Runner)

// WithInput sets the store and object name the input is read from.
func WithInput(s store.Store, name string) Option {
	return func(r *Runner) {
		r.input = s
		r.inputName = name
	}
}

// WithOutput sets the store and object name the output is committed to.
func WithOutput(s store.Store, name string) Option {
	return func(r *Runner) {
		r.output = s
		r.outputName = name
	}
}

// WithLabels sets how input and output are named in logs and manifests,
// typically the location strings given by the user. Object names are used
// when unset.
func WithLabels(input, output string) Option {
	return func(r *Runner) {
		r.inputLabel = input
		r.outputLabel = output
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithStats sets the metrics collector.
func WithStats(c stats.Collector) Option {
	return func(r *Runner) { r.stats = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithManifest enables or disables writing <output>.manifest.json.
func WithManifest(enabled bool) Option {
	return func(r *Runner) { r.manifest = enabled }
}

// New creates a Runner. Progress, stats and logging are silent by default;
// the manifest is written.
func New(opts ...Option) *Runner {
	r := &Runner{
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
		manifest: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.inputLabel == "" {
		r.inputLabel = r.inputName
	}
	if r.outputLabel == "" {
		r.outputLabel = r.outputName
	}
	return r
}

// Run converts the input with conv. On any failure the output object is
// aborted and nothing is published.
func (r *Runner) Run(ctx context.Context, conv convert.Converter) (*Manifest, error) {
	if r.input == nil || r.inputName == "" {
		return nil, ErrNoInput
	}
	if r.output == nil || r.outputName == "" {
		return nil, ErrNoOutput
	}

	m := &Manifest{
		Version:   ManifestVersion,
		Converter: conv.Name(),
		Settings:  conv.Settings(),
		Input:     r.inputLabel,
		Output:    r.outputLabel,
		StartedAt: r.now(),
	}
	r.stats.IncCounter(stats.MetricRuns, 1)
	r.logger.Info("starting conversion",
		zap.String("converter", m.Converter),
		zap.String("input", m.Input),
		zap.String("output", m.Output),
		zap.Any("settings", m.Settings),
	)

	res, err := r.convert(ctx, conv, m.StartedAt)
	m.LinesRead = res.LinesRead
	m.RecordsWritten = res.RecordsWritten
	r.stats.IncCounter(stats.MetricLinesRead, res.LinesRead)
	if err != nil {
		return nil, r.fail(err, m.StartedAt)
	}

	m.FinishedAt = r.now()
	if r.manifest {
		name := ManifestName(r.outputName)
		if err := WriteManifest(ctx, r.output, name, m); err != nil {
			return nil, r.fail(err, m.StartedAt)
		}
		r.logger.Debug("wrote manifest", zap.String("name", name))
	}

	elapsed := m.FinishedAt.Sub(m.StartedAt)
	r.stats.ObserveHistogram(stats.MetricRunSeconds, elapsed.Seconds())
	r.stats.SetGauge(stats.MetricLastRecords, m.RecordsWritten)
	r.logger.Info("conversion finished",
		zap.Int64("lines_read", m.LinesRead),
		zap.Int64("records_written", m.RecordsWritten),
		zap.Duration("elapsed", elapsed),
	)
	r.report(Progress{
		Phase:          PhaseDone,
		Converter:      m.Converter,
		RecordsWritten: m.RecordsWritten,
		LinesRead:      m.LinesRead,
		Output:         m.Output,
		StartTime:      m.StartedAt,
	})
	return m, nil
}

func (r *Runner) convert(ctx context.Context, conv convert.Converter, start time.Time) (convert.Result, error) {
	var res convert.Result

	in, err := r.input.Open(ctx, r.inputName)
	if err != nil {
		return res, fmt.Errorf("opening input %s: %w", r.inputLabel, err)
	}
	defer in.Close()

	dec, err := codec.ForPath(r.inputName).Reader(in)
	if err != nil {
		return res, fmt.Errorf("decoding input %s: %w", r.inputLabel, err)
	}
	defer dec.Close()

	obj, err := r.output.Create(ctx, r.outputName)
	if err != nil {
		return res, fmt.Errorf("creating output %s: %w", r.outputLabel, err)
	}
	defer obj.Abort()

	enc, err := codec.ForPath(r.outputName).Writer(obj)
	if err != nil {
		return res, fmt.Errorf("encoding output %s: %w", r.outputLabel, err)
	}
	encClosed := false
	defer func() {
		if !encClosed {
			enc.Close()
		}
	}()

	sink := &meteredSink{
		w:         marlinflow.NewWriter(enc),
		stats:     r.stats,
		converter: conv.Name(),
		start:     start,
		report:    r.report,
	}
	res, err = conv.Convert(ctx, dec, sink)
	sink.flushCount()
	if err != nil {
		return res, fmt.Errorf("converting %s: %w", r.inputLabel, err)
	}

	if err := sink.w.Flush(); err != nil {
		return res, fmt.Errorf("flushing output: %w", err)
	}
	encClosed = true
	if err := enc.Close(); err != nil {
		return res, fmt.Errorf("closing encoder: %w", err)
	}

	r.report(Progress{
		Phase:          PhaseCommit,
		Converter:      conv.Name(),
		RecordsWritten: res.RecordsWritten,
		LinesRead:      res.LinesRead,
		Output:         r.outputLabel,
		StartTime:      start,
	})
	if err := obj.Commit(); err != nil {
		return res, fmt.Errorf("committing output %s: %w", r.outputLabel, err)
	}
	return res, nil
}

func (r *Runner) fail(err error, start time.Time) error {
	var pe *convert.ParseError
	if errors.As(err, &pe) {
		r.stats.IncCounter(stats.MetricParseErrors, 1)
	}
	r.stats.IncCounter(stats.MetricRunFailures, 1)
	r.logger.Debug("conversion failed", zap.Error(err))
	r.report(Progress{Phase: PhaseError, Error: err, StartTime: start})
	return err
}

func (r *Runner) report(p Progress) {
	if r.progress != nil {
		r.progress(p)
	}
}

// Compile-time check that meteredSink implements convert.Sink.
var _ convert.Sink = (*meteredSink)(nil)

// meteredSink writes records and feeds metrics and progress.
type meteredSink struct {
	w         *marlinflow.Writer
	stats     stats.Collector
	converter string
	start     time.Time
	report    func(Progress)
	pending   int64
}

func (s *meteredSink) Write(rec marlinflow.Record) error {
	if err := s.w.Write(rec); err != nil {
		return err
	}
	s.stats.ObserveHistogram(stats.MetricScore, float64(rec.Score))

	s.pending++
	if n := s.w.Count(); n%progressInterval == 0 {
		s.flushCount()
		s.report(Progress{
			Phase:          PhaseConvert,
			Converter:      s.converter,
			RecordsWritten: n,
			StartTime:      s.start,
		})
	}
	return nil
}

// flushCount moves locally counted records into the collector.
func (s *meteredSink) flushCount() {
	if s.pending > 0 {
		s.stats.IncCounter(stats.MetricRecordsWritten, s.pending)
		s.pending = 0
	}
}
