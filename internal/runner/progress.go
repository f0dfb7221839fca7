package runner

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Run phases reported through ProgressFunc.
const (
	PhaseConvert = "convert"
	PhaseCommit  = "commit"
	PhaseDone    = "done"
	PhaseError   = "error"
)

// Progress tracks conversion progress.
type Progress struct {
	Phase          string
	Converter      string
	RecordsWritten int64
	LinesRead      int64
	Output         string
	StartTime      time.Time
	Error          error
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// FormatCount formats a record count with thousands separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	WriteProgress(os.Stdout, p)
}

// WriteProgress prints one progress update to w. Errors only end the
// progress line; the caller reports them.
func WriteProgress(w io.Writer, p Progress) {
	switch p.Phase {
	case PhaseConvert:
		fmt.Fprintf(w, "\r[%s] %s records written", p.Converter, FormatCount(p.RecordsWritten))
	case PhaseCommit:
		fmt.Fprintf(w, "\r[Commit] %s\n", p.Output)
	case PhaseDone:
		elapsed := time.Since(p.StartTime)
		fmt.Fprintf(w, "[Done] %s records from %s lines (%s)\n",
			FormatCount(p.RecordsWritten), FormatCount(p.LinesRead), FormatDuration(elapsed))
	case PhaseError:
		fmt.Fprintln(w)
	}
}
