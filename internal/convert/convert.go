// Package convert defines the contract shared by the training-data converters:
// a converter reads one source format and emits Marlinflow records to a sink.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/discochess/marlinflow"
)

// Scanner buffer sizes.
const (
	initialLineBuffer = 1024 * 1024
	maxLineLength     = 10 * 1024 * 1024
)

// Causes wrapped by ParseError.
var (
	// ErrMissingPrefix indicates a line lacks its expected keyword prefix.
	ErrMissingPrefix = errors.New("missing expected prefix")

	// ErrTooFewFields indicates a delimited line has too few fields.
	ErrTooFewFields = errors.New("too few fields")

	// ErrInvalidScore indicates a score field is not an integer.
	ErrInvalidScore = errors.New("invalid score")

	// ErrInvalidWDL indicates a wdl field is not a finite number.
	ErrInvalidWDL = errors.New("invalid wdl")

	// ErrLineTooLong indicates a line exceeds the scanner's maximum length.
	ErrLineTooLong = errors.New("line too long")
)

// Sink receives converted records in order.
type Sink interface {
	Write(r marlinflow.Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(r marlinflow.Record) error

// Write calls f(r).
func (f SinkFunc) Write(r marlinflow.Record) error { return f(r) }

// Result summarizes a conversion.
type Result struct {
	// LinesRead is the number of input lines consumed.
	LinesRead int64

	// RecordsWritten is the number of records handed to the sink.
	RecordsWritten int64
}

// Converter turns one input format into Marlinflow records.
type Converter interface {
	// Name identifies the input format (e.g. "sfd9").
	Name() string

	// Settings returns the converter's effective configuration for run
	// manifests. It may return nil.
	Settings() any

	// Convert reads r to completion (or to the converter's own limits) and
	// writes each record to sink. The first malformed line aborts the
	// conversion with a *ParseError.
	Convert(ctx context.Context, r io.Reader, sink Sink) (Result, error)
}

// ParseError reports a malformed input line.
type ParseError struct {
	// Line is the 1-based line number.
	Line int64

	// Text is the offending line.
	Text string

	// Err is the cause, one of the package's Err values.
	Err error
}

// Error names the line number and quotes its content.
func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	text := e.Text
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewScanner returns a line scanner sized for large training corpora.
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineLength)
	return scanner
}

// ReadError wraps a scanner failure with the number of the line being read.
// Overlong lines become a *ParseError.
func ReadError(err error, line int64) error {
	if errors.Is(err, bufio.ErrTooLong) {
		return &ParseError{Line: line, Err: fmt.Errorf("%w (max %d bytes)", ErrLineTooLong, maxLineLength)}
	}
	return fmt.Errorf("reading input at line %d: %w", line, err)
}

// ParseScore parses a decimal centipawn score. Integers too large for an int
// saturate to the largest magnitude of the same sign, so later clamping still
// applies.
func ParseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, strconv.ErrRange) {
		return 0, ErrInvalidScore
	}
	if strings.HasPrefix(s, "-") {
		return -math.MaxInt, nil
	}
	return math.MaxInt, nil
}
