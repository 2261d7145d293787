package fastq

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// Writer writes FASTQ records.  Every base is given the same quality.
// Errors are sticky: after the first failure every call returns it.
type Writer struct {
	w    *bufio.Writer
	qual byte
	err  error
}

// NewWriter returns a Writer to w that gives every base quality qual.
func NewWriter(w io.Writer, qual byte) *Writer {
	return &Writer{w: bufio.NewWriter(w), qual: qual}
}

// Write writes a record with the given name and sequence.
func (w *Writer) Write(name, seq string) error {
	if w.err != nil {
		return w.err
	}
	w.w.WriteByte('@')
	w.w.WriteString(name)
	w.w.WriteByte('\n')
	w.w.WriteString(seq)
	w.w.WriteString("\n+\n")
	for i := 0; i < len(seq); i++ {
		w.w.WriteByte(w.qual)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = errors.Wrapf(err, "writing FASTQ record %s", name)
	}
	return w.err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrap(err, "flushing FASTQ data")
	}
	return w.err
}
