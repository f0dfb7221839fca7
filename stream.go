package marlinflow

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Writer writes records as Marlinflow lines.
// Output is buffered; call Flush when done.
type Writer struct {
	w     *bufio.Writer
	count int64
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 256*1024)}
}

// Write writes a single record followed by a newline.
func (w *Writer) Write(r Record) error {
	if _, err := w.w.WriteString(r.String()); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Count returns the number of records written so far.
func (w *Writer) Count() int64 {
	return w.count
}

// Reader reads records from Marlinflow text.
// Blank lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Read returns the next record. It returns io.EOF when the input is exhausted.
// Parse errors carry the 1-based line number.
func (r *Reader) Read() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec, err := ParseRecord(text)
		if err != nil {
			return Record{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Line returns the number of the line most recently read.
func (r *Reader) Line() int {
	return r.line
}
