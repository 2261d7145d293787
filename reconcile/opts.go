// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"github.com/grailbio/reconcile/basescore"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/reconcile/normalize"
	"github.com/grailbio/reconcile/pairwise"
)

// Opts configures Run.
type Opts struct {
	// Circular is set when the contigs are circular; only then are they
	// normalized.
	Circular bool
	// Parallelism bounds the number of concurrent per-contig and per-pair
	// jobs.  0 means runtime.NumCPU().
	Parallelism int
	// MaxContigs is the largest number of input contigs accepted.
	MaxContigs int
	// Seed orders the candidate starting sequences.
	Seed uint64

	// K and W are the k-mer length and minimizer window used for anchors and
	// read mapping.
	K, W int
	// StartLen is the length of the starting sequence.
	StartLen int
	// OverlapWindow, MaxOverlap, JoinFlank and MinJoinReads control
	// circularisation; see normalize.Opts.
	OverlapWindow int
	MaxOverlap    int
	JoinFlank     int
	MinJoinReads  int
	// MinIdentity is the smallest identity accepted for overlaps, joins and
	// starting-sequence hits.
	MinIdentity float64
	// MaxReadOverhang is the number of bases reads may extend past the end of
	// a circular contig when scoring.  0 means the longest read length.
	MaxReadOverhang int
	// BandWidth is the diagonal slack for banded alignments.
	BandWidth int
}

// DefaultOpts are the default settings of bio-reconcile.
var DefaultOpts = Opts{
	Circular:      true,
	MaxContigs:    contig.DefaultMaxContigs,
	K:             normalize.DefaultOpts.K,
	W:             normalize.DefaultOpts.W,
	StartLen:      normalize.DefaultOpts.StartLen,
	OverlapWindow: normalize.DefaultOpts.OverlapWindow,
	MaxOverlap:    normalize.DefaultOpts.MaxOverlap,
	JoinFlank:     normalize.DefaultOpts.JoinFlank,
	MinJoinReads:  normalize.DefaultOpts.MinJoinReads,
	MinIdentity:   normalize.DefaultOpts.MinIdentity,
	BandWidth:     normalize.DefaultOpts.BandWidth,
}

func (o Opts) normalizeOpts() normalize.Opts {
	return normalize.Opts{
		K:             o.K,
		W:             o.W,
		StartLen:      o.StartLen,
		OverlapWindow: o.OverlapWindow,
		MaxOverlap:    o.MaxOverlap,
		JoinFlank:     o.JoinFlank,
		MinJoinReads:  o.MinJoinReads,
		MinIdentity:   o.MinIdentity,
		BandWidth:     o.BandWidth,
		Parallelism:   o.Parallelism,
	}
}

func (o Opts) scoreOpts() basescore.Opts {
	s := basescore.DefaultOpts
	s.K, s.W = o.K, o.W
	s.MaxReadOverhang = o.MaxReadOverhang
	s.BandWidth = o.BandWidth
	s.Parallelism = o.Parallelism
	return s
}

func (o Opts) pairwiseOpts() pairwise.Opts {
	return pairwise.Opts{K: o.K, W: o.W, BandWidth: o.BandWidth, Parallelism: o.Parallelism}
}
