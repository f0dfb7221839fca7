package summary

import (
	"fmt"
	"io"
)

// WriteText prints s in a human-readable layout.
func (s *Summary) WriteText(w io.Writer) error {
	pct := func(n int64) float64 { return 100 * s.Fraction(n) }

	lines := []string{
		fmt.Sprintf("Records:        %d", s.Records),
	}
	if s.Records == 0 {
		_, err := fmt.Fprintln(w, lines[0])
		return err
	}

	lines = append(lines,
		fmt.Sprintf("White to move:  %d (%.1f%%)", s.WhiteToMove, pct(s.WhiteToMove)),
		fmt.Sprintf("Black to move:  %d (%.1f%%)", s.BlackToMove, pct(s.BlackToMove)),
		fmt.Sprintf("WDL 1.0:        %d (%.1f%%)", s.WhiteWins, pct(s.WhiteWins)),
		fmt.Sprintf("WDL 0.5:        %d (%.1f%%)", s.Draws, pct(s.Draws)),
		fmt.Sprintf("WDL 0.0:        %d (%.1f%%)", s.BlackWins, pct(s.BlackWins)),
	)
	if s.Other > 0 {
		lines = append(lines, fmt.Sprintf("WDL other:      %d (%.1f%%)", s.Other, pct(s.Other)))
	}
	if s.Unknown > 0 {
		lines = append(lines, fmt.Sprintf("Unknown side:   %d (%.1f%%)", s.Unknown, pct(s.Unknown)))
	}
	lines = append(lines,
		fmt.Sprintf("Score mean:     %.1f", s.Mean),
		fmt.Sprintf("Score std-dev:  %.1f", s.StdDev),
		fmt.Sprintf("Score range:    [%d, %d]", s.Min, s.Max),
	)
	for _, q := range s.Quantiles {
		lines = append(lines, fmt.Sprintf("Score p%-2.0f:      %.0f", q.P*100, q.Value))
	}
	lines = append(lines,
		fmt.Sprintf("At ±%d:        %d (%.1f%%)", s.Limit, s.AtLimit, pct(s.AtLimit)),
		fmt.Sprintf("WDL agrees:     %d (%.1f%%, threshold ±%d)", s.Agreeing, pct(s.Agreeing), s.Threshold),
		fmt.Sprintf("Score/WDL corr: %.3f", s.Correlation),
	)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
