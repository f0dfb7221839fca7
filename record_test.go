package marlinflow

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestRecord_String(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "black win",
			rec:  Record{FEN: "8/8/8/8/8/8/8/8 b - - 0 1", Score: -200, WDL: BlackWin},
			want: "8/8/8/8/8/8/8/8 b - - 0 1 | -200 | 0.0",
		},
		{
			name: "draw",
			rec:  Record{FEN: "8/8/8/4k3/8/8/4K3/8 w - - 0 1", Score: 0, WDL: Draw},
			want: "8/8/8/4k3/8/8/4K3/8 w - - 0 1 | 0 | 0.5",
		},
		{
			name: "white win",
			rec:  Record{FEN: "8/8/8/4k3/8/8/4K3/4R3 w - - 0 1", Score: 750, WDL: WhiteWin},
			want: "8/8/8/4k3/8/8/4K3/4R3 w - - 0 1 | 750 | 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatWDL(t *testing.T) {
	tests := []struct {
		wdl  float64
		want string
	}{
		{0, "0.0"},
		{0.5, "0.5"},
		{1, "1.0"},
		{0.25, "0.25"},
		{-0.5, "-0.5"},
		{0.0001, "0.0001"},
		{1e-05, "1e-05"},
		{1.5e-07, "1.5e-07"},
		{2, "2.0"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{-2.5e20, "-2.5e+20"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatWDL(tt.wdl); got != tt.want {
				t.Errorf("FormatWDL(%v) = %q, want %q", tt.wdl, got, tt.want)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Record
		wantErr error
	}{
		{
			name: "valid",
			line: "8/8/8/8/8/pb6/8/1K6 w - - 0 1 | -566 | 0.0",
			want: Record{FEN: "8/8/8/8/8/pb6/8/1K6 w - - 0 1", Score: -566, WDL: 0},
		},
		{
			name: "trailing newline",
			line: "8/8/8/8/8/8/8/8 w - - 0 1 | 12 | 0.5\n",
			want: Record{FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Score: 12, WDL: 0.5},
		},
		{
			name:    "missing wdl",
			line:    "8/8/8/8/8/8/8/8 w - - 0 1 | 12",
			wantErr: ErrFieldCount,
		},
		{
			name:    "bad score",
			line:    "8/8/8/8/8/8/8/8 w - - 0 1 | x | 0.5",
			wantErr: ErrScore,
		},
		{
			name:    "bad wdl",
			line:    "8/8/8/8/8/8/8/8 w - - 0 1 | 1 | draw",
			wantErr: ErrWDL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRecord() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecord() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRecord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, 0},
		{750, 750},
		{751, 750},
		{-750, -750},
		{-3000, -750},
		{529, 529},
	}

	for _, tt := range tests {
		if got := ClampScore(tt.score, 750); got != tt.want {
			t.Errorf("ClampScore(%d, 750) = %d, want %d", tt.score, got, tt.want)
		}
		// Symmetric range: clamp(-x) == -clamp(x).
		if got := ClampScore(-tt.score, 750); got != -tt.want {
			t.Errorf("ClampScore(%d, 750) = %d, want %d", -tt.score, got, -tt.want)
		}
	}
}

func TestWDLFromScore(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{101, WhiteWin},
		{100, Draw},
		{0, Draw},
		{-100, Draw},
		{-101, BlackWin},
		{750, WhiteWin},
		{-750, BlackWin},
	}

	for _, tt := range tests {
		if got := WDLFromScore(tt.score, 100); got != tt.want {
			t.Errorf("WDLFromScore(%d, 100) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	records := []Record{
		{FEN: "8/8/8/8/8/8/8/8 b - - 0 1", Score: -200, WDL: BlackWin},
		{FEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", Score: 20, WDL: Draw},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if w.Count() != 2 {
		t.Errorf("Count() = %d, want 2", w.Count())
	}

	r := NewReader(&buf)
	for i, want := range records {
		got, err := r.Read()
		if err != nil {
			t.Fatalf("Read() #%d error = %v", i, err)
		}
		if got != want {
			t.Errorf("Read() #%d = %+v, want %+v", i, got, want)
		}
	}
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("Read() at end error = %v, want io.EOF", err)
	}
}

func TestReader_ReportsLine(t *testing.T) {
	input := "8/8/8/8/8/8/8/8 w - - 0 1 | 1 | 0.5\n\nbroken line\n"
	r := NewReader(strings.NewReader(input))

	if _, err := r.Read(); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	_, err := r.Read()
	if !errors.Is(err, ErrFieldCount) {
		t.Fatalf("Read() error = %v, want ErrFieldCount", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not name line 3", err)
	}
}
