// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// Result describes an alignment of query[QStart:QEnd] against
// target[TStart:TEnd].  Cigar covers exactly those two ranges; query bases
// outside [QStart, QEnd) are unaligned (soft-clipped).
type Result struct {
	Score        int
	QStart, QEnd int
	TStart, TEnd int
	Cigar        sam.Cigar
	Matches      int
	// Reverse is set when the query was aligned as its reverse complement.
	Reverse bool
}

// Columns returns the number of alignment columns.
func (r Result) Columns() int {
	n := 0
	for _, co := range r.Cigar {
		n += co.Len()
	}
	return n
}

// Identity returns the fraction of alignment columns that are matches, or 0
// for an empty alignment.
func (r Result) Identity() float64 {
	cols := r.Columns()
	if cols == 0 {
		return 0
	}
	return float64(r.Matches) / float64(cols)
}

func (r Result) String() string {
	strand := '+'
	if r.Reverse {
		strand = '-'
	}
	return fmt.Sprintf("q[%d:%d]%c t[%d:%d] %v score=%d id=%.4f",
		r.QStart, r.QEnd, strand, r.TStart, r.TEnd, r.Cigar, r.Score, r.Identity())
}

// Swap returns the same alignment with the roles of query and target
// exchanged: insertions become deletions and vice versa.
func (r Result) Swap() Result {
	s := r
	s.QStart, s.QEnd, s.TStart, s.TEnd = r.TStart, r.TEnd, r.QStart, r.QEnd
	s.Cigar = make(sam.Cigar, len(r.Cigar))
	for i, co := range r.Cigar {
		switch co.Type() {
		case sam.CigarInsertion:
			s.Cigar[i] = sam.NewCigarOp(sam.CigarDeletion, co.Len())
		case sam.CigarDeletion:
			s.Cigar[i] = sam.NewCigarOp(sam.CigarInsertion, co.Len())
		default:
			s.Cigar[i] = co
		}
	}
	return s
}

// Walk calls fn for every alignment column in order.  qPos and tPos are the
// query and target positions of the column; the one a gap occupies is -1.
func (r Result) Walk(fn func(qPos, tPos int)) {
	q, t := r.QStart, r.TStart
	for _, co := range r.Cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for i := 0; i < n; i++ {
				fn(q, t)
				q++
				t++
			}
		case sam.CigarInsertion:
			for i := 0; i < n; i++ {
				fn(q, -1)
				q++
			}
		case sam.CigarDeletion:
			for i := 0; i < n; i++ {
				fn(-1, t)
				t++
			}
		}
	}
}
