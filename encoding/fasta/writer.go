package fasta

import (
	"bufio"
	"io"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

// Writer writes FASTA records, each as a header line followed by a single
// unwrapped sequence line.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter returns a Writer that writes to w.  Flush must be called after
// the last record.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record.  Errors are sticky: once a write fails, later
// calls do nothing and return the same error.
func (w *Writer) Write(name, seq string) error {
	if w.err != nil {
		return w.err
	}
	w.w.WriteByte('>')
	w.w.WriteString(name)
	w.w.WriteByte('\n')
	w.w.Write(gunsafe.StringToBytes(seq))
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = errors.Wrapf(err, "writing FASTA record %s", name)
	}
	return w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrap(err, "flushing FASTA data")
	}
	return w.err
}
