// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pairwise aligns every pair of candidate sequences end to end and
// exposes the alignments as coordinate maps between the two sequences.
package pairwise

import (
	"bytes"
	"context"
	"fmt"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/reconcile/align"
	"github.com/grailbio/reconcile/contig"
)

// Gap marks a position that aligns to a gap in the other sequence.
const Gap = -1

// Opts configures AlignAll.
type Opts struct {
	// K and W are the k-mer length and minimizer window of the anchors.
	K, W int
	// BandWidth is the diagonal slack for aligning between anchors.
	BandWidth int
	// Parallelism bounds the number of pairs aligned concurrently.  0 means
	// runtime.NumCPU().
	Parallelism int
}

// DefaultOpts is the default pairwise alignment configuration.
var DefaultOpts = Opts{K: 15, W: 10, BandWidth: 64}

// Key identifies an unordered pair by its labels, A before B in label order.
type Key struct {
	A, B string
}

// Alignment is a global alignment of sequence A (the query) against sequence
// B.
type Alignment struct {
	A, B  string
	Cigar sam.Cigar
	// AToB[i] is the position of B aligned to A[i], or Gap.
	AToB []int
	// BToA[j] is the position of A aligned to B[j], or Gap.
	BToA    []int
	matches int
}

func newAlignment(a, b string, r align.Result, lenA, lenB int) *Alignment {
	aln := &Alignment{
		A:       a,
		B:       b,
		Cigar:   r.Cigar,
		AToB:    make([]int, lenA),
		BToA:    make([]int, lenB),
		matches: r.Matches,
	}
	r.Walk(func(i, j int) {
		switch {
		case i >= 0 && j >= 0:
			aln.AToB[i], aln.BToA[j] = j, i
		case i >= 0:
			aln.AToB[i] = Gap
		default:
			aln.BToA[j] = Gap
		}
	})
	return aln
}

// Identity returns the fraction of alignment columns that are matches.
func (a *Alignment) Identity() float64 {
	cols := 0
	for _, co := range a.Cigar {
		cols += co.Len()
	}
	if cols == 0 {
		return 0
	}
	return float64(a.matches) / float64(cols)
}

// Swap returns the alignment of B against A.
func (a *Alignment) Swap() *Alignment {
	r := align.Result{Cigar: a.Cigar}
	return &Alignment{
		A:       a.B,
		B:       a.A,
		Cigar:   r.Swap().Cigar,
		AToB:    a.BToA,
		BToA:    a.AToB,
		matches: a.matches,
	}
}

// Set holds the alignment of every pair of a contig.Set.
type Set map[Key]*Alignment

// Get returns the alignment from x to y, swapping the stored alignment if
// needed.
func (s Set) Get(x, y string) (*Alignment, bool) {
	if a, ok := s[Key{x, y}]; ok {
		return a, true
	}
	if a, ok := s[Key{y, x}]; ok {
		return a.Swap(), true
	}
	return nil, false
}

// AlignAll aligns every pair of contigs in set.  A pair that cannot be aligned
// is an error.
func AlignAll(ctx context.Context, set contig.Set, opts Opts) (Set, error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	mapOpts := align.DefaultMapOpts
	mapOpts.K, mapOpts.W, mapOpts.BandWidth = opts.K, opts.W, opts.BandWidth

	var pairs [][2]int
	for i := range set {
		for j := i + 1; j < len(set); j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	alns := make([]*Alignment, len(pairs))
	err := traverse.Limit(parallelism).Each(len(pairs), func(p int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		a, b := set[pairs[p][0]], set[pairs[p][1]]
		r, err := align.AnchoredGlobal(a.Seq, b.Seq, mapOpts)
		if err != nil {
			return errors.E(fmt.Sprintf("aligning contig %s to contig %s", a.Label, b.Label), err)
		}
		alns[p] = newAlignment(a.Label, b.Label, r, len(a.Seq), len(b.Seq))
		log.Printf("  %s vs %s: %.2f%% identity", a.Label, b.Label, 100*alns[p].Identity())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s := make(Set, len(pairs))
	for p, pair := range pairs {
		s[Key{set[pair[0]].Label, set[pair[1]].Label}] = alns[p]
	}
	return s, nil
}

// IdentityMatrix formats the pairwise identities of set as a table.
func IdentityMatrix(set contig.Set, s Set) string {
	var buf bytes.Buffer
	buf.WriteString("   ")
	for _, c := range set {
		fmt.Fprintf(&buf, " %8s", c.Label)
	}
	buf.WriteByte('\n')
	for _, x := range set {
		fmt.Fprintf(&buf, "%3s", x.Label)
		for _, y := range set {
			if x.Label == y.Label {
				fmt.Fprintf(&buf, " %7.3f%%", 100.0)
				continue
			}
			if a, ok := s.Get(x.Label, y.Label); ok {
				fmt.Fprintf(&buf, " %7.3f%%", 100*a.Identity())
			} else {
				fmt.Fprintf(&buf, " %8s", "-")
			}
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
