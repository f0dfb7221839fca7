// Package marlinflow implements the Marlinflow text format used to feed chess
// positions into neural-network training pipelines.
//
// Each record is a single line:
//
//	<FEN> | <score> | <wdl>
//
// where score is a centipawn evaluation from White's point of view and wdl is
// the game outcome label (1.0 White win, 0.5 draw, 0.0 Black win).
//
// Example usage:
//
//	w := marlinflow.NewWriter(f)
//	rec := marlinflow.Record{FEN: fen, Score: 35, WDL: marlinflow.Draw}
//	if err := w.Write(rec); err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.Flush(); err != nil {
//	    log.Fatal(err)
//	}
package marlinflow

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Outcome labels.
const (
	BlackWin = 0.0
	Draw     = 0.5
	WhiteWin = 1.0
)

// Separator divides the fields of a record line.
const Separator = " | "

// Sentinel errors for malformed record lines.
var (
	// ErrFieldCount indicates a line does not have exactly three fields.
	ErrFieldCount = errors.New("marlinflow: expected 3 fields")

	// ErrScore indicates the score field is not an integer.
	ErrScore = errors.New("marlinflow: invalid score")

	// ErrWDL indicates the wdl field is not a number.
	ErrWDL = errors.New("marlinflow: invalid wdl")
)

// Record is a single training position.
type Record struct {
	// FEN is the position, including whatever trailing fields the source had.
	FEN string

	// Score is the evaluation in centipawns from White's perspective.
	Score int

	// WDL is the outcome label from White's perspective.
	WDL float64
}

// String formats the record as a Marlinflow line without the trailing newline.
func (r Record) String() string {
	var sb strings.Builder
	sb.Grow(len(r.FEN) + 16)
	sb.WriteString(r.FEN)
	sb.WriteString(Separator)
	sb.WriteString(strconv.Itoa(r.Score))
	sb.WriteString(Separator)
	sb.WriteString(FormatWDL(r.WDL))
	return sb.String()
}

// FormatWDL prints a WDL value the way the training tools expect it:
// shortest round-trip digits, always with a decimal point ("1.0", "0.5",
// "0.25"). Magnitudes below 1e-4 or from 1e16 up use exponent form
// ("1e-05", "1e+16").
func FormatWDL(wdl float64) string {
	if math.IsNaN(wdl) || math.IsInf(wdl, 0) || wdl == 0 {
		return plainWDL(wdl)
	}
	if abs := math.Abs(wdl); abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(wdl, 'e', -1, 64)
	}
	return plainWDL(wdl)
}

func plainWDL(wdl float64) string {
	s := strconv.FormatFloat(wdl, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// ParseRecord parses a Marlinflow line.
func ParseRecord(line string) (Record, error) {
	parts := strings.Split(strings.TrimSpace(line), Separator)
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(parts))
	}

	score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q", ErrScore, parts[1])
	}

	wdl, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q", ErrWDL, parts[2])
	}

	return Record{
		FEN:   strings.TrimSpace(parts[0]),
		Score: score,
		WDL:   wdl,
	}, nil
}

// ClampScore limits score to [-limit, limit].
func ClampScore(score, limit int) int {
	switch {
	case score > limit:
		return limit
	case score < -limit:
		return -limit
	default:
		return score
	}
}

// WDLFromScore derives an outcome label from a White-perspective score.
// Scores strictly above threshold are White wins, strictly below -threshold
// Black wins, everything in between (bounds included) a draw.
func WDLFromScore(score, threshold int) float64 {
	switch {
	case score > threshold:
		return WhiteWin
	case score < -threshold:
		return BlackWin
	default:
		return Draw
	}
}
