// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"math"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/hts/sam"
)

// Scoring holds the substitution and linear gap scores.
type Scoring struct {
	Match    int
	Mismatch int
	Gap      int
}

var (
	// DefaultScoring rewards matches, so that local and overlap alignments
	// prefer long stretches of agreement.
	DefaultScoring = Scoring{Match: 1, Mismatch: -1, Gap: -1}
	// EditScoring makes the global alignment score the negated Levenshtein
	// distance.
	EditScoring = Scoring{Match: 0, Mismatch: -1, Gap: -1}
)

func (sc Scoring) score(a, b byte) int32 {
	if a == b && a != 'N' {
		return int32(sc.Match)
	}
	return int32(sc.Mismatch)
}

// operation is the traversal that produced a cell's score.
type operation uint8

const (
	diagonal operation = iota
	down
	right
	stop
)

const negInf = math.MinInt32 / 2

// mode selects which ends of the alignment are free.
type mode struct {
	freeTargetStart bool // target bases before the alignment cost nothing
	freeTargetEnd   bool // target bases after the alignment cost nothing
	freeQueryEnd    bool // query bases after the alignment cost nothing
}

// matrix is a diagonal band of a (len(q)+1) x (len(t)+1) alignment matrix.
// Cell (i, j) is stored iff dLo <= j-i <= dHi.
type matrix struct {
	n, m     int
	dLo, dHi int
	width    int
	trace    []operation // row-major (n+1)*width array.
}

func newMatrix(n, m, bandWidth int) matrix {
	dLo, dHi := -n, m
	if bandWidth >= 0 {
		lo, hi := 0, m-n
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo-bandWidth > dLo {
			dLo = lo - bandWidth
		}
		if hi+bandWidth < dHi {
			dHi = hi + bandWidth
		}
	}
	width := dHi - dLo + 1
	return matrix{n: n, m: m, dLo: dLo, dHi: dHi, width: width, trace: make([]operation, (n+1)*width)}
}

// col returns the band offset of cell (i, j).
func (x *matrix) col(i, j int) int { return j - i - x.dLo }

// jRange returns the first and last target index stored in row i.
func (x *matrix) jRange(i int) (int, int) {
	lo, hi := i+x.dLo, i+x.dHi
	if lo < 0 {
		lo = 0
	}
	if hi > x.m {
		hi = x.m
	}
	return lo, hi
}

// run aligns q against t.  bandWidth < 0 fills the whole matrix.
func run(q, t []byte, sc Scoring, md mode, bandWidth int) Result {
	x := newMatrix(len(q), len(t), bandWidth)
	prev := make([]int32, x.width)
	cur := make([]int32, x.width)
	gap := int32(sc.Gap)

	for k := range cur {
		cur[k] = negInf
	}
	lo, hi := x.jRange(0)
	for j := lo; j <= hi; j++ {
		k := x.col(0, j)
		switch {
		case j == 0:
			cur[k] = 0
			x.trace[k] = stop
		case md.freeTargetStart:
			cur[k] = 0
			x.trace[k] = stop
		default:
			cur[k] = int32(j) * gap
			x.trace[k] = right
		}
	}
	endI, endJ := len(q), len(t)
	bestEnd := int32(negInf)
	if md.freeQueryEnd && hi == len(t) {
		bestEnd, endI = cur[x.col(0, len(t))], 0
	}

	for i := 1; i <= len(q); i++ {
		prev, cur = cur, prev
		for k := range cur {
			cur[k] = negInf
		}
		row := x.trace[i*x.width : (i+1)*x.width]
		lo, hi := x.jRange(i)
		for j := lo; j <= hi; j++ {
			k := x.col(i, j)
			best, op := int32(negInf), stop
			if j > 0 && prev[k] > negInf {
				best, op = prev[k]+sc.score(q[i-1], t[j-1]), diagonal
			}
			if k+1 < x.width && prev[k+1] > negInf {
				if v := prev[k+1] + gap; v > best {
					best, op = v, down
				}
			}
			if j > 0 && k > 0 && cur[k-1] > negInf {
				if v := cur[k-1] + gap; v > best {
					best, op = v, right
				}
			}
			cur[k] = best
			row[k] = op
		}
		if md.freeQueryEnd && hi == len(t) {
			if v := cur[x.col(i, len(t))]; v > bestEnd {
				bestEnd, endI = v, i
			}
		}
	}

	var score int32
	switch {
	case md.freeQueryEnd:
		score = bestEnd
	case md.freeTargetEnd:
		lo, hi := x.jRange(len(q))
		score = negInf
		for j := lo; j <= hi; j++ {
			if v := cur[x.col(len(q), j)]; v > score {
				score, endJ = v, j
			}
		}
	default:
		score = cur[x.col(len(q), len(t))]
	}
	return x.traceback(q, t, endI, endJ, int(score))
}

func (x *matrix) traceback(q, t []byte, endI, endJ, score int) Result {
	var (
		rev     []operation
		matches int
		i, j    = endI, endJ
	)
loop:
	for i > 0 || j > 0 {
		op := x.trace[i*x.width+x.col(i, j)]
		switch op {
		case diagonal:
			if q[i-1] == t[j-1] && q[i-1] != 'N' {
				matches++
			}
			i--
			j--
		case down:
			i--
		case right:
			j--
		default:
			break loop
		}
		rev = append(rev, op)
	}
	var cigar sam.Cigar
	for n := len(rev) - 1; n >= 0; n-- {
		cigar = appendOp(cigar, opType[rev[n]], 1)
	}
	return Result{
		Score:   score,
		QStart:  i,
		QEnd:    endI,
		TStart:  j,
		TEnd:    endJ,
		Cigar:   cigar,
		Matches: matches,
	}
}

var opType = [...]sam.CigarOpType{
	diagonal: sam.CigarMatch,
	down:     sam.CigarInsertion,
	right:    sam.CigarDeletion,
}

// appendOp appends n operations of type t to c, merging with the last
// operation when the types agree.
func appendOp(c sam.Cigar, t sam.CigarOpType, n int) sam.Cigar {
	if n <= 0 {
		return c
	}
	if last := len(c) - 1; last >= 0 && c[last].Type() == t {
		c[last] = sam.NewCigarOp(t, c[last].Len()+n)
		return c
	}
	return append(c, sam.NewCigarOp(t, n))
}

// Global aligns all of q against all of t.
func Global(q, t string, sc Scoring) Result {
	return run(gunsafe.StringToBytes(q), gunsafe.StringToBytes(t), sc, mode{}, -1)
}

// GlobalBanded is Global restricted to the diagonals within bandWidth of the
// band joining the two matrix corners, so that its cost is
// O(len(q) * (|len(t)-len(q)| + bandWidth)).
func GlobalBanded(q, t string, sc Scoring, bandWidth int) Result {
	if bandWidth < 0 {
		bandWidth = 0
	}
	return run(gunsafe.StringToBytes(q), gunsafe.StringToBytes(t), sc, mode{}, bandWidth)
}

// SemiGlobal aligns all of q against the best-scoring substring of t.
func SemiGlobal(q, t string, sc Scoring) Result {
	return run(gunsafe.StringToBytes(q), gunsafe.StringToBytes(t), sc, mode{freeTargetStart: true, freeTargetEnd: true}, -1)
}

// Overlap aligns a suffix of t against a prefix of q, the configuration in
// which the end of a sequence (t) repeats its beginning (q).  The target
// suffix is t[TStart:], and the query prefix is q[:QEnd].
func Overlap(q, t string, sc Scoring) Result {
	return run(gunsafe.StringToBytes(q), gunsafe.StringToBytes(t), sc, mode{freeTargetStart: true, freeQueryEnd: true}, -1)
}
