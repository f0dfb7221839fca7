// Package sfd9 converts "plain" Stockfish training dumps into Marlinflow
// records, subsampling the corpus by random skip-ahead.
//
// The input repeats a fixed 6-line block per position:
//
//	fen <FEN>
//	move <move>
//	score <cp>
//	ply <n>
//	result <r>
//	e
//
// Only the fen and score lines are used. Scores are stored from the side to
// move's point of view; records are emitted from White's.
package sfd9

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/discochess/marlinflow"
	"github.com/discochess/marlinflow/internal/convert"
	"github.com/discochess/marlinflow/internal/fen"
)

// Name is the converter name used on the command line and in manifests.
const Name = "sfd9"

// Input layout and record normalization constants.
const (
	// BlockSize is the number of lines per position block.
	BlockSize = 6

	// ScoreOffset is the offset of the score line within a block.
	ScoreOffset = 2

	// ScoreLimit is the magnitude scores are clamped to.
	ScoreLimit = 750

	// WDLThreshold is the score beyond which a position is labelled a win.
	WDLThreshold = 100

	fenPrefix   = "fen "
	scorePrefix = "score "
)

// ErrInvalidConfig indicates impossible caps or skip bounds.
var ErrInvalidConfig = errors.New("sfd9: invalid config")

// Config controls how much of the corpus is read and how densely it is sampled.
type Config struct {
	// MaxLines caps the number of input lines considered.
	MaxLines int64 `json:"max_lines"`

	// MaxSamples caps the number of records written.
	MaxSamples int64 `json:"max_samples"`

	// SkipLow and SkipHigh bound (inclusively) the number of blocks
	// advanced after each sampled position.
	SkipLow  int `json:"skip_low"`
	SkipHigh int `json:"skip_high"`

	// Seed seeds the skip generator. Equal seeds over equal input produce
	// identical output.
	Seed uint64 `json:"seed"`
}

// Presets reproducing the two historical sampling setups.
var (
	// PresetLarge reads up to 70M lines and writes up to 500k records,
	// skipping 15-30 blocks between samples.
	PresetLarge = Config{MaxLines: 70_000_000, MaxSamples: 500_000, SkipLow: 15, SkipHigh: 30}

	// PresetSmall reads up to 50M lines and writes up to 200k records,
	// skipping 15-50 blocks between samples.
	PresetSmall = Config{MaxLines: 50_000_000, MaxSamples: 200_000, SkipLow: 15, SkipHigh: 50}
)

// DefaultConfig returns PresetLarge.
func DefaultConfig() Config {
	return PresetLarge
}

// Preset returns the named preset ("large" or "small").
func Preset(name string) (Config, error) {
	switch strings.ToLower(name) {
	case "large", "":
		return PresetLarge, nil
	case "small":
		return PresetSmall, nil
	default:
		return Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
}

// Validate checks the caps and skip bounds.
func (c Config) Validate() error {
	if c.MaxLines < 0 {
		return fmt.Errorf("%w: max lines %d is negative", ErrInvalidConfig, c.MaxLines)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("%w: max samples %d is negative", ErrInvalidConfig, c.MaxSamples)
	}
	if c.SkipLow < 1 {
		return fmt.Errorf("%w: skip low %d must be at least 1", ErrInvalidConfig, c.SkipLow)
	}
	if c.SkipHigh < c.SkipLow {
		return fmt.Errorf("%w: skip range [%d, %d] is empty", ErrInvalidConfig, c.SkipLow, c.SkipHigh)
	}
	return nil
}

// Compile-time check that Converter implements convert.Converter.
var _ convert.Converter = (*Converter)(nil)

// Converter is the SF-D9 converter.
type Converter struct {
	cfg Config
}

// New creates a converter for cfg.
func New(cfg Config) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Converter{cfg: cfg}, nil
}

// Name returns "sfd9".
func (c *Converter) Name() string {
	return Name
}

// Settings returns the effective Config.
func (c *Converter) Settings() any {
	return c.cfg
}

// Convert streams r, sampling one block every SkipLow..SkipHigh blocks.
//
// Starting at line 0, a block at index i is emitted when lines i and i+2 both
// fall within the first MaxLines lines. Only the current block is held in
// memory.
func (c *Converter) Convert(ctx context.Context, r io.Reader, sink convert.Sink) (convert.Result, error) {
	var res convert.Result
	rng := rand.New(rand.NewPCG(c.cfg.Seed, c.cfg.Seed))
	scanner := convert.NewScanner(r)

	var (
		next    int64 // index of the next fen line to sample
		fenLine string
		idx     int64 = -1
	)
	for res.RecordsWritten < c.cfg.MaxSamples && idx+1 < c.cfg.MaxLines && scanner.Scan() {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		idx++
		res.LinesRead++

		switch idx {
		case next:
			fenLine = scanner.Text()
		case next + ScoreOffset:
			rec, err := parseBlock(fenLine, next+1, scanner.Text(), idx+1)
			if err != nil {
				return res, err
			}
			if err := sink.Write(rec); err != nil {
				return res, fmt.Errorf("writing record: %w", err)
			}
			res.RecordsWritten++
			next += int64(BlockSize * (c.cfg.SkipLow + rng.IntN(c.cfg.SkipHigh-c.cfg.SkipLow+1)))
		}
	}

	if err := scanner.Err(); err != nil {
		return res, convert.ReadError(err, res.LinesRead+1)
	}
	return res, nil
}

// parseBlock builds a record from a block's fen and score lines.
// Line numbers are 1-based and only used for error reporting.
func parseBlock(fenText string, fenLineNo int64, scoreText string, scoreLineNo int64) (marlinflow.Record, error) {
	fenStr, ok := strings.CutPrefix(strings.TrimSpace(fenText), fenPrefix)
	if !ok {
		return marlinflow.Record{}, &convert.ParseError{Line: fenLineNo, Text: fenText, Err: convert.ErrMissingPrefix}
	}

	raw, ok := strings.CutPrefix(strings.TrimSpace(scoreText), scorePrefix)
	if !ok {
		return marlinflow.Record{}, &convert.ParseError{Line: scoreLineNo, Text: scoreText, Err: convert.ErrMissingPrefix}
	}
	score, err := convert.ParseScore(raw)
	if err != nil {
		return marlinflow.Record{}, &convert.ParseError{Line: scoreLineNo, Text: scoreText, Err: convert.ErrInvalidScore}
	}

	return Normalize(fenStr, score), nil
}

// Normalize turns a side-to-move score into a clamped White-perspective
// record with a derived outcome label.
func Normalize(fenStr string, stmScore int) marlinflow.Record {
	score := marlinflow.ClampScore(stmScore, ScoreLimit)
	if fen.BlackToMove(fenStr) {
		score = -score
	}
	return marlinflow.Record{
		FEN:   fenStr,
		Score: score,
		WDL:   marlinflow.WDLFromScore(score, WDLThreshold),
	}
}
