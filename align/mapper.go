// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/grailbio/reconcile/dna"
	"github.com/grailbio/reconcile/kmer"
)

// MapOpts configures seeding, chaining, and gap filling.
type MapOpts struct {
	// K and W are the minimizer k-mer length and window size.
	K, W int
	// Seed orders k-mers for minimizer selection.
	Seed uint64
	// MaxOcc drops target k-mers with more indexed occurrences.  0 means no
	// limit.
	MaxOcc int
	// MaxGap is the largest query or target distance between two chained
	// anchors.  0 means no limit.
	MaxGap int
	// MaxDrift is the largest indel (difference between the query and target
	// distances) between two chained anchors.  0 means no limit.
	MaxDrift int
	// MinAnchors is the smallest chain reported as a hit.
	MinAnchors int
	// BandWidth is the extra diagonal slack given to gap-filling alignments.
	BandWidth int
	Scoring   Scoring
}

// DefaultMapOpts suits noisy long reads against assembled sequences.
var DefaultMapOpts = MapOpts{
	K:          15,
	W:          10,
	MaxOcc:     32,
	MaxGap:     5000,
	MaxDrift:   1000,
	MinAnchors: 2,
	BandWidth:  64,
	Scoring:    DefaultScoring,
}

// maxCells caps the size of a single dynamic-programming matrix.
const maxCells = 1 << 28

// hit is an exact k-mer match between query position q and target position t.
type hit struct {
	q, t int32
}

// chainLookback is the number of preceding hits (in target order) considered
// as predecessors of each hit.
const chainLookback = 64

// chain returns the best-scoring co-linear subsequence of hits.  Each hit
// contributes up to k bases of new matches, and an indel of size d costs
// ~log2(d).
func chain(hits []hit, opts MapOpts) []hit {
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].t != hits[j].t {
			return hits[i].t < hits[j].t
		}
		return hits[i].q < hits[j].q
	})
	k := opts.K
	score := make([]int, len(hits))
	parent := make([]int, len(hits))
	best := 0
	for i := range hits {
		score[i], parent[i] = k, -1
		for j := i - 1; j >= 0 && j >= i-chainLookback; j-- {
			dq := int(hits[i].q - hits[j].q)
			dt := int(hits[i].t - hits[j].t)
			if dq <= 0 || dt <= 0 {
				continue
			}
			if opts.MaxGap > 0 && (dq > opts.MaxGap || dt > opts.MaxGap) {
				continue
			}
			drift := dq - dt
			if drift < 0 {
				drift = -drift
			}
			if opts.MaxDrift > 0 && drift > opts.MaxDrift {
				continue
			}
			gain := k
			if dq < gain {
				gain = dq
			}
			if dt < gain {
				gain = dt
			}
			gain -= bits.Len(uint(drift))
			if s := score[j] + gain; s > score[i] {
				score[i], parent[i] = s, j
			}
		}
		if score[i] > score[best] {
			best = i
		}
	}
	n := 0
	for i := best; i >= 0; i = parent[i] {
		n++
	}
	result := make([]hit, n)
	for i := best; i >= 0; i = parent[i] {
		n--
		result[n] = hits[i]
	}
	return result
}

// builder accumulates an alignment from exact anchors and gap-filling
// segments.
type builder struct {
	opts MapOpts
	r    Result
}

func (b *builder) addMatches(n int) {
	b.r.Cigar = appendOp(b.r.Cigar, opType[diagonal], n)
	b.r.Matches += n
	b.r.Score += n * b.opts.Scoring.Match
}

func (b *builder) addSegment(q, t string) error {
	switch {
	case len(q) == 0 && len(t) == 0:
		return nil
	case len(q) == 0:
		b.r.Cigar = appendOp(b.r.Cigar, opType[right], len(t))
		b.r.Score += len(t) * b.opts.Scoring.Gap
		return nil
	case len(t) == 0:
		b.r.Cigar = appendOp(b.r.Cigar, opType[down], len(q))
		b.r.Score += len(q) * b.opts.Scoring.Gap
		return nil
	}
	diff := len(t) - len(q)
	if diff < 0 {
		diff = -diff
	}
	if cells := int64(len(q)+1) * int64(diff+2*b.opts.BandWidth+1); cells > maxCells {
		return fmt.Errorf("align: gap of %d x %d bases between anchors is too large to fill", len(q), len(t))
	}
	seg := GlobalBanded(q, t, b.opts.Scoring, b.opts.BandWidth)
	for _, co := range seg.Cigar {
		b.r.Cigar = appendOp(b.r.Cigar, co.Type(), co.Len())
	}
	b.r.Matches += seg.Matches
	b.r.Score += seg.Score
	return nil
}

// fill turns a chain into an alignment.  Stretches between anchors are
// aligned globally.  If global is set, so are the stretches before the first
// and after the last anchor; otherwise the alignment spans the anchors only.
func fill(q, t string, anchors []hit, opts MapOpts, global bool) (Result, error) {
	b := builder{opts: opts}
	k := opts.K
	first := anchors[0]
	qEnd, tEnd := int(first.q), int(first.t)
	if global {
		if err := b.addSegment(q[:qEnd], t[:tEnd]); err != nil {
			return Result{}, err
		}
	} else {
		b.r.QStart, b.r.TStart = qEnd, tEnd
	}
	b.addMatches(k)
	qEnd, tEnd = qEnd+k, tEnd+k
	for _, a := range anchors[1:] {
		aq, at := int(a.q), int(a.t)
		switch {
		case aq >= qEnd && at >= tEnd:
			if err := b.addSegment(q[qEnd:aq], t[tEnd:at]); err != nil {
				return Result{}, err
			}
			b.addMatches(k)
			qEnd, tEnd = aq+k, at+k
		case aq-at == qEnd-tEnd && aq+k > qEnd:
			// Overlaps the previous anchor on the same diagonal.
			n := aq + k - qEnd
			b.addMatches(n)
			qEnd, tEnd = qEnd+n, tEnd+n
		}
	}
	if global {
		if err := b.addSegment(q[qEnd:], t[tEnd:]); err != nil {
			return Result{}, err
		}
		qEnd, tEnd = len(q), len(t)
	}
	b.r.QEnd, b.r.TEnd = qEnd, tEnd
	return b.r, nil
}

// Mapper finds where query sequences lie in a fixed target sequence.
// A Mapper is immutable after construction and can be shared by goroutines.
type Mapper struct {
	target string
	idx    *kmer.Index
	opts   MapOpts
}

// NewMapper indexes target.
func NewMapper(target string, opts MapOpts) *Mapper {
	return &Mapper{
		target: target,
		idx:    kmer.NewIndex(target, opts.K, opts.W, opts.Seed),
		opts:   opts,
	}
}

// Target returns the indexed sequence.
func (m *Mapper) Target() string { return m.target }

func (m *Mapper) anchors(query string) []hit {
	var hits []hit
	for _, mz := range kmer.Minimizers(query, m.opts.K, m.opts.W, m.opts.Seed) {
		pos := m.idx.Positions(mz.Kmer)
		if len(pos) == 0 || (m.opts.MaxOcc > 0 && len(pos) > m.opts.MaxOcc) {
			continue
		}
		for _, p := range pos {
			hits = append(hits, hit{q: int32(mz.Pos), t: p})
		}
	}
	c := chain(hits, m.opts)
	if len(c) == 0 || len(c) < m.opts.MinAnchors {
		return nil
	}
	return c
}

// Map aligns the part of query between its first and last chained anchors
// against the target.  ok is false if no chain is found.
func (m *Mapper) Map(query string) (r Result, ok bool) {
	a := m.anchors(query)
	if a == nil {
		return Result{}, false
	}
	r, err := fill(query, m.target, a, m.opts, false)
	if err != nil {
		return Result{}, false
	}
	return r, true
}

// MapStrands maps both query and its reverse complement and returns the
// better-scoring alignment, with Result.Reverse set for the latter, together
// with the query strand that was aligned.  The forward strand wins ties.
func (m *Mapper) MapStrands(query string) (Result, string, bool) {
	fwd, fwdOK := m.Map(query)
	rc := dna.ReverseComp(query)
	rev, revOK := m.Map(rc)
	switch {
	case fwdOK && (!revOK || fwd.Score >= rev.Score):
		return fwd, query, true
	case revOK:
		rev.Reverse = true
		return rev, rc, true
	}
	return Result{}, "", false
}

// Locate aligns all of query against the best matching region of the
// target.  The chained anchors select the region; a semi-global alignment
// fixes its exact boundaries.  Small targets are searched exhaustively when
// no chain is found.
func (m *Mapper) Locate(query string) (Result, bool) {
	lo, hi := 0, len(m.target)
	if a := m.anchors(query); a != nil {
		first, last := a[0], a[len(a)-1]
		slack := m.opts.BandWidth
		lo = int(first.t) - int(first.q) - slack
		hi = int(last.t) + len(query) - int(last.q) + slack
		if lo < 0 {
			lo = 0
		}
		if hi > len(m.target) {
			hi = len(m.target)
		}
	} else if int64(len(query)+1)*int64(len(m.target)+1) > maxCells {
		return Result{}, false
	}
	if lo >= hi || len(query) == 0 {
		return Result{}, false
	}
	r := SemiGlobal(query, m.target[lo:hi], m.opts.Scoring)
	r.TStart += lo
	r.TEnd += lo
	return r, true
}

// AnchoredGlobal aligns all of a against all of b.  Anchors are minimizers
// that occur exactly once in each sequence.  Since such anchors cannot be
// repeats, the chain ignores opts.MaxGap and opts.MaxDrift, and an indel of
// any size becomes a single gap between two anchors.  If no anchors are
// found, sequences small enough for a single banded alignment are aligned
// directly and larger ones fail.
func AnchoredGlobal(a, b string, opts MapOpts) (Result, error) {
	opts.MaxGap, opts.MaxDrift = 0, 0
	idx := kmer.NewIndex(b, opts.K, opts.W, opts.Seed)
	mins := kmer.Minimizers(a, opts.K, opts.W, opts.Seed)
	countsA := make(map[kmer.Kmer]int, len(mins))
	countsB := make(map[kmer.Kmer]int, len(mins))
	for _, mz := range mins {
		countsA[mz.Kmer] = 0
		countsB[mz.Kmer] = 0
	}
	kmer.Count(a, opts.K, false, countsA)
	kmer.Count(b, opts.K, false, countsB)
	var hits []hit
	for _, mz := range mins {
		if countsA[mz.Kmer] != 1 || countsB[mz.Kmer] != 1 {
			continue
		}
		if pos := idx.Positions(mz.Kmer); len(pos) == 1 {
			hits = append(hits, hit{q: int32(mz.Pos), t: pos[0]})
		}
	}
	if c := chain(hits, opts); len(c) > 0 {
		return fill(a, b, c, opts, true)
	}
	b0 := builder{opts: opts}
	if err := b0.addSegment(a, b); err != nil {
		return Result{}, err
	}
	b0.r.QEnd, b0.r.TEnd = len(a), len(b)
	return b0.r, nil
}
