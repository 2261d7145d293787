package fastq

import (
	"bufio"
	"bytes"
	"io"

	"github.com/grailbio/reconcile/dna"
	"github.com/pkg/errors"
)

var (
	// ErrShort is the cause of errors for truncated FASTQ data.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is the cause of errors for malformed FASTQ data.
	ErrInvalid = errors.New("invalid FASTQ file")
)

// maxLineSize bounds a single FASTQ line.  Long reads can be megabases.
const maxLineSize = 64 << 20

// A Read is a sequencing read.  Qualities are checked but not kept.
type Read struct {
	// Name is the header line without its leading '@'.
	Name string
	// Seq holds upper-case bases; anything other than A, C, G, T is 'N'.
	Seq string
}

// Scanner reads FASTQ records one at a time and accumulates the read length
// statistics of what it has read.  Each record must have an '@' header, a
// '+' separator line, and as many quality values as bases.  Scanners are not
// threadsafe.
type Scanner struct {
	b       *bufio.Scanner
	line    int
	err     error
	lengths []int
}

// NewScanner returns a Scanner that reads FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineSize)
	return &Scanner{b: b}
}

// Scan reads the next record into read.  It returns false at the end of the
// data or on error; Err distinguishes the two.  Once Scan returns false it
// never returns true again.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil || !s.next(io.EOF) {
		return false
	}
	header := s.b.Bytes()
	if len(header) == 0 || header[0] != '@' {
		return s.fail(ErrInvalid, "record header does not start with '@'")
	}
	name := string(header[1:])
	if !s.next(ErrShort) {
		return false
	}
	seq := dna.Clean(s.b.Text())
	if !s.next(ErrShort) {
		return false
	}
	if !bytes.HasPrefix(s.b.Bytes(), []byte{'+'}) {
		return s.fail(ErrInvalid, "separator line does not start with '+'")
	}
	if !s.next(ErrShort) {
		return false
	}
	if n := len(s.b.Bytes()); n != len(seq) {
		return s.fail(ErrInvalid, "read %s has %d bases but %d qualities", name, len(seq), n)
	}
	read.Name, read.Seq = name, seq
	s.lengths = append(s.lengths, len(seq))
	return true
}

// next advances to the next line.  At the end of the data it records
// atEOF, which is io.EOF when the data may end here.
func (s *Scanner) next(atEOF error) bool {
	if s.b.Scan() {
		s.line++
		return true
	}
	switch s.err = s.b.Err(); {
	case s.err != nil:
	case atEOF == io.EOF:
		s.err = io.EOF
	default:
		s.err = errors.Wrapf(atEOF, "line %d", s.line)
	}
	return false
}

func (s *Scanner) fail(cause error, format string, args ...interface{}) bool {
	s.err = errors.Wrapf(cause, "line %d: "+format, append([]interface{}{s.line}, args...)...)
	return false
}

// Err returns the error that stopped scanning, or nil at the end of the data.
// errors.Cause of a format error is ErrShort or ErrInvalid.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// Stats returns the statistics of the reads scanned so far.
func (s *Scanner) Stats() Stats {
	return ComputeStats(s.lengths)
}
