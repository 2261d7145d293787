// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package normalize

import (
	"runtime"

	"github.com/grailbio/reconcile/align"
)

// Opts configures normalization.
type Opts struct {
	// K and W are the k-mer length and minimizer window used for anchors and
	// read mapping.
	K, W int
	// StartLen is the length of the starting sequence.
	StartLen int
	// OverlapWindow is the length of the head window searched for in the
	// tail of a contig.
	OverlapWindow int
	// MaxOverlap is the longest head/tail overlap searched for.
	MaxOverlap int
	// JoinFlank is the number of bases taken from each side of a circular
	// join when checking it against the reads.
	JoinFlank int
	// MinJoinReads is the number of reads that must span a join for it to be
	// accepted.  0 accepts the best sequence-only evidence.
	MinJoinReads int
	// MinIdentity is the smallest alignment identity accepted for overlaps,
	// joins and starting-sequence hits.
	MinIdentity float64
	// BandWidth is the diagonal slack for banded alignments.
	BandWidth int
	// Parallelism bounds the number of contigs processed concurrently.  0
	// means runtime.NumCPU().
	Parallelism int
}

// DefaultOpts suits bacterial chromosomes and plasmids assembled from long
// reads.
var DefaultOpts = Opts{
	K:             15,
	W:             10,
	StartLen:      1000,
	OverlapWindow: 1000,
	MaxOverlap:    50000,
	JoinFlank:     500,
	MinJoinReads:  1,
	MinIdentity:   0.9,
	BandWidth:     64,
}

func (o Opts) parallelism() int {
	if o.Parallelism <= 0 {
		return runtime.NumCPU()
	}
	return o.Parallelism
}

func (o Opts) mapOpts() align.MapOpts {
	m := align.DefaultMapOpts
	m.K, m.W = o.K, o.W
	m.BandWidth = o.BandWidth
	return m
}
