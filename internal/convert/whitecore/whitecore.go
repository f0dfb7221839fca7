// Package whitecore converts WhiteCore evaluation dumps into Marlinflow
// records.
//
// Each input line holds one position:
//
//	FEN;ply;bestmove;eval;wdl;
//
// where FEN omits the fullmove number, eval is from the side to move's point
// of view and wdl is already from White's.
package whitecore

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/discochess/marlinflow"
	"github.com/discochess/marlinflow/internal/convert"
	"github.com/discochess/marlinflow/internal/fen"
)

// Name is the converter name used on the command line and in manifests.
const Name = "whitecore"

// Field layout.
const (
	fieldFEN  = 0
	fieldEval = 3
	fieldWDL  = 4
	minFields = 5

	separator = ";"
)

// FullmoveSuffix is appended to every FEN to supply the missing fullmove
// number.
const FullmoveSuffix = " 1"

// Compile-time check that Converter implements convert.Converter.
var _ convert.Converter = (*Converter)(nil)

// Converter is the WhiteCore converter. It has no settings.
type Converter struct{}

// New creates a WhiteCore converter.
func New() *Converter {
	return &Converter{}
}

// Name returns "whitecore".
func (c *Converter) Name() string {
	return Name
}

// Settings returns nil.
func (c *Converter) Settings() any {
	return nil
}

// Convert emits one record per non-blank line of r.
func (c *Converter) Convert(ctx context.Context, r io.Reader, sink convert.Sink) (convert.Result, error) {
	var res convert.Result
	scanner := convert.NewScanner(r)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		res.LinesRead++
		text := scanner.Text()
		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			return res, &convert.ParseError{Line: res.LinesRead, Text: text, Err: err}
		}
		if err := sink.Write(rec); err != nil {
			return res, fmt.Errorf("writing record: %w", err)
		}
		res.RecordsWritten++
	}

	if err := scanner.Err(); err != nil {
		return res, convert.ReadError(err, res.LinesRead+1)
	}
	return res, nil
}

// ParseLine converts a single trimmed WhiteCore line. Errors are one of
// convert.ErrTooFewFields, convert.ErrInvalidScore or convert.ErrInvalidWDL.
func ParseLine(line string) (marlinflow.Record, error) {
	fields := strings.Split(line, separator)
	if len(fields) < minFields {
		return marlinflow.Record{}, fmt.Errorf("%w: got %d, want %d", convert.ErrTooFewFields, len(fields), minFields)
	}

	eval, err := convert.ParseScore(fields[fieldEval])
	if err != nil {
		return marlinflow.Record{}, err
	}

	wdl, err := strconv.ParseFloat(strings.TrimSpace(fields[fieldWDL]), 64)
	if err != nil || math.IsNaN(wdl) || math.IsInf(wdl, 0) {
		return marlinflow.Record{}, convert.ErrInvalidWDL
	}

	fenStr := fields[fieldFEN]
	score := eval
	if !fen.WhiteToMove(fenStr) {
		score = -eval
	}

	return marlinflow.Record{
		FEN:   fenStr + FullmoveSuffix,
		Score: score,
		WDL:   wdl,
	}, nil
}
