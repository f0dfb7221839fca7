// Package summary computes descriptive statistics over Marlinflow files.
package summary

import (
	"errors"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/discochess/marlinflow"
	"github.com/discochess/marlinflow/internal/fen"
)

// Quantiles reported for the score distribution.
var Quantiles = []float64{0.01, 0.05, 0.25, 0.5, 0.75, 0.95, 0.99}

// Summary describes a set of records.
type Summary struct {
	Records int64

	// Outcome label counts. Other counts labels outside {0, 0.5, 1}.
	BlackWins int64
	Draws     int64
	WhiteWins int64
	Other     int64

	// Side to move counts. Unknown counts FENs without a readable side.
	WhiteToMove int64
	BlackToMove int64
	Unknown     int64

	// Score distribution in centipawns.
	Mean      float64
	StdDev    float64
	Min       int
	Max       int
	Quantiles []Quantile

	// AtLimit counts scores whose magnitude equals or exceeds Limit.
	Limit   int
	AtLimit int64

	// Agreeing counts records whose label matches the label derived from
	// the score with Threshold.
	Threshold int
	Agreeing  int64

	// Correlation is the Pearson correlation between score and label.
	// It is NaN when either is constant.
	Correlation float64
}

// Quantile is one point of the score distribution.
type Quantile struct {
	P     float64
	Value float64
}

// Options control how records are classified.
type Options struct {
	// Limit is the clamp magnitude used for AtLimit.
	Limit int

	// Threshold is the win threshold used for Agreeing.
	Threshold int
}

// DefaultOptions matches the SF-D9 normalization.
var DefaultOptions = Options{Limit: 750, Threshold: 100}

// Compute summarizes all records read from r.
func Compute(r io.Reader, opts Options) (*Summary, error) {
	s := &Summary{Limit: opts.Limit, Threshold: opts.Threshold}
	var scores, labels []float64

	mr := marlinflow.NewReader(r)
	for {
		rec, err := mr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		s.add(rec)
		scores = append(scores, float64(rec.Score))
		labels = append(labels, rec.WDL)
	}

	s.finish(scores, labels)
	return s, nil
}

func (s *Summary) add(rec marlinflow.Record) {
	if s.Records == 0 || rec.Score < s.Min {
		s.Min = rec.Score
	}
	if s.Records == 0 || rec.Score > s.Max {
		s.Max = rec.Score
	}
	s.Records++

	switch rec.WDL {
	case marlinflow.BlackWin:
		s.BlackWins++
	case marlinflow.Draw:
		s.Draws++
	case marlinflow.WhiteWin:
		s.WhiteWins++
	default:
		s.Other++
	}

	_, placementErr := fen.Placement(rec.FEN)
	switch side, err := fen.SideToMove(rec.FEN); {
	case err != nil, placementErr != nil:
		s.Unknown++
	case side == fen.White:
		s.WhiteToMove++
	default:
		s.BlackToMove++
	}

	if s.Limit > 0 && (rec.Score >= s.Limit || rec.Score <= -s.Limit) {
		s.AtLimit++
	}
	if marlinflow.WDLFromScore(rec.Score, s.Threshold) == rec.WDL {
		s.Agreeing++
	}
}

func (s *Summary) finish(scores, labels []float64) {
	if len(scores) == 0 {
		s.Mean, s.StdDev, s.Correlation = math.NaN(), math.NaN(), math.NaN()
		return
	}

	s.Mean, s.StdDev = stat.MeanStdDev(scores, nil)
	s.Correlation = stat.Correlation(scores, labels, nil)

	// Quantile needs sorted input.
	sort.Float64s(scores)
	s.Quantiles = make([]Quantile, 0, len(Quantiles))
	for _, p := range Quantiles {
		s.Quantiles = append(s.Quantiles, Quantile{
			P:     p,
			Value: stat.Quantile(p, stat.Empirical, scores, nil),
		})
	}
}

// Fraction returns n as a fraction of all records, or 0 for an empty summary.
func (s *Summary) Fraction(n int64) float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(n) / float64(s.Records)
}
