package whitecore

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discochess/marlinflow"
	"github.com/discochess/marlinflow/internal/convert"
)

func collect(t *testing.T, input string) ([]string, convert.Result, error) {
	t.Helper()
	var lines []string
	sink := convert.SinkFunc(func(r marlinflow.Record) error {
		lines = append(lines, r.String())
		return nil
	})
	res, err := New().Convert(context.Background(), strings.NewReader(input), sink)
	return lines, res, err
}

func TestConvert_Scenario(t *testing.T) {
	lines, res, err := collect(t, "8/8/8/8/8/pb6/8/1K6 w - - 0;154;b1a1;-566;0;\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"8/8/8/8/8/pb6/8/1K6 w - - 0 1 | -566 | 0.0"}, lines)
	assert.Equal(t, int64(1), res.RecordsWritten)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want marlinflow.Record
	}{
		{
			name: "white keeps eval",
			line: "4k3/8/8/8/8/8/8/4K2R w K - 3;40;h1h8;312;1;",
			want: marlinflow.Record{FEN: "4k3/8/8/8/8/8/8/4K2R w K - 3 1", Score: 312, WDL: 1},
		},
		{
			name: "black negates eval",
			line: "4k3/8/8/8/8/8/8/4K2R b K - 3;41;e8d7;-298;1;",
			want: marlinflow.Record{FEN: "4k3/8/8/8/8/8/8/4K2R b K - 3 1", Score: 298, WDL: 1},
		},
		{
			name: "draw",
			line: "8/8/8/4k3/8/8/4K3/8 b - - 0;90;e5d5;0;0.5;",
			want: marlinflow.Record{FEN: "8/8/8/4k3/8/8/4K3/8 b - - 0 1", Score: 0, WDL: 0.5},
		},
		{
			name: "no clamping",
			line: "8/8/8/8/8/8/8/QQQ1K2k w - - 0;12;a1h8;31000;1;",
			want: marlinflow.Record{FEN: "8/8/8/8/8/8/8/QQQ1K2k w - - 0 1", Score: 31000, WDL: 1},
		},
		{
			name: "wdl verbatim even if it disagrees",
			line: "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;500;0;",
			want: marlinflow.Record{FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Score: 500, WDL: 0},
		},
		{
			name: "overflowing eval saturates",
			line: "8/8/8/8/8/8/8/8 b - - 0;1;a1a2;-99999999999999999999;1;",
			want: marlinflow.Record{FEN: "8/8/8/8/8/8/8/8 b - - 0 1", Score: math.MaxInt, WDL: 1},
		},
		{
			name: "fractional wdl",
			line: "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;0.25",
			want: marlinflow.Record{FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Score: 5, WDL: 0.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLine_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"too few fields", "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5", convert.ErrTooFewFields},
		{"bad eval", "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;M3;1;", convert.ErrInvalidScore},
		{"float eval", "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;1.5;1;", convert.ErrInvalidScore},
		{"bad wdl", "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;win;", convert.ErrInvalidWDL},
		{"nan wdl", "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;NaN;", convert.ErrInvalidWDL},
		{"empty wdl", "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;;", convert.ErrInvalidWDL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConvert_SkipsBlankLines(t *testing.T) {
	input := "\n" +
		"8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;0.5;\n" +
		"   \n" +
		"  8/8/8/8/8/8/8/8 b - - 0;2;a2a1;7;0.5;  \r\n"
	lines, res, err := collect(t, input)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"8/8/8/8/8/8/8/8 w - - 0 1 | 5 | 0.5",
		"8/8/8/8/8/8/8/8 b - - 0 1 | -7 | 0.5",
	}, lines)
	assert.Equal(t, int64(4), res.LinesRead)
	assert.Equal(t, int64(2), res.RecordsWritten)
}

func TestConvert_ParseErrorLine(t *testing.T) {
	input := "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;0.5;\n\nbroken\n"
	lines, _, err := collect(t, input)
	require.Error(t, err)

	var pe *convert.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, int64(3), pe.Line)
	assert.Equal(t, "broken", pe.Text)
	assert.ErrorIs(t, err, convert.ErrTooFewFields)
	assert.Len(t, lines, 1)
	assert.Contains(t, err.Error(), `line 3`)
}

func TestConvert_LineTooLong(t *testing.T) {
	input := "8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;0.5;\n" + strings.Repeat("x", 11*1024*1024) + "\n"
	lines, _, err := collect(t, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, convert.ErrLineTooLong)

	var pe *convert.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, int64(2), pe.Line)
	assert.Len(t, lines, 1)
	assert.Contains(t, err.Error(), "line 2")
}

func TestConvert_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Convert(ctx, strings.NewReader("8/8/8/8/8/8/8/8 w - - 0;1;a1a2;5;0.5;\n"),
		convert.SinkFunc(func(marlinflow.Record) error { return nil }))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConverter_Metadata(t *testing.T) {
	c := New()
	assert.Equal(t, "whitecore", c.Name())
	assert.Nil(t, c.Settings())
}
