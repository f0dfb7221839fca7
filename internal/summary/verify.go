package summary

import (
	"errors"
	"fmt"
	"io"

	"github.com/discochess/marlinflow"
)

// Strict-mode violations.
var (
	// ErrScoreRange indicates a score outside [-Limit, Limit].
	ErrScoreRange = errors.New("score out of range")

	// ErrLabelMismatch indicates a label that disagrees with its score.
	ErrLabelMismatch = errors.New("wdl disagrees with score")
)

// Check validates rec against the SF-D9 normalization rules.
func Check(rec marlinflow.Record, opts Options) error {
	if rec.Score > opts.Limit || rec.Score < -opts.Limit {
		return fmt.Errorf("%w: %d not in [-%d, %d]", ErrScoreRange, rec.Score, opts.Limit, opts.Limit)
	}
	if want := marlinflow.WDLFromScore(rec.Score, opts.Threshold); rec.WDL != want {
		return fmt.Errorf("%w: score %d implies %s, got %s",
			ErrLabelMismatch, rec.Score, marlinflow.FormatWDL(want), marlinflow.FormatWDL(rec.WDL))
	}
	return nil
}

// Verify reads every record from r and returns the number of records read.
// Without strict it only checks that each line parses; with strict every
// record must also pass Check. The first failure is returned with its line
// number.
func Verify(r io.Reader, strict bool, opts Options) (int64, error) {
	mr := marlinflow.NewReader(r)
	var n int64
	for {
		rec, err := mr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if strict {
			if err := Check(rec, opts); err != nil {
				return n, fmt.Errorf("line %d: %w", mr.Line(), err)
			}
		}
		n++
	}
}
