// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package basescore measures how well the long reads support every base of
// every candidate sequence.
//
// Each read is aligned to each candidate.  At every reference position a
// read base that agrees with the reference counts as support; a disagreeing
// base, a deleted reference base, or an insertion before the reference base
// counts against it.  The score of a position is support/(support+oppose),
// so it lies in [0, 1], and positions without aligned reads score
// ZeroCoverage.
package basescore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/reconcile/align"
	"github.com/grailbio/reconcile/circular"
	"github.com/grailbio/reconcile/contig"
)

// ZeroCoverage is the score of a position that no read aligns to.
const ZeroCoverage = 0.0

// Opts configures Score.
type Opts struct {
	// K and W are the k-mer length and minimizer window used to map reads.
	K, W int
	// MaxReadOverhang is the number of bases of a circular contig's start
	// appended to its end, so that reads can align across the join.  0 means
	// the length of the longest read.
	MaxReadOverhang int
	// MinIdentity drops read alignments with lower identity.
	MinIdentity float64
	// BandWidth is the diagonal slack for aligning between anchors.
	BandWidth int
	// Parallelism bounds the number of concurrent work units.  0 means
	// runtime.NumCPU().
	Parallelism int
}

// DefaultOpts is the default scoring configuration.
var DefaultOpts = Opts{
	K:           15,
	W:           10,
	MinIdentity: 0.7,
	BandWidth:   64,
}

// Scores maps a contig label to its per-position scores.
type Scores map[string][]float64

// Mean returns the mean score of the contig with the given label.
func (s Scores) Mean(label string) float64 {
	v := s[label]
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// Summary describes the scores of one contig.
func (s Scores) Summary(label string) string {
	v := s[label]
	low := 0
	for _, x := range v {
		if x < 0.5 {
			low++
		}
	}
	return fmt.Sprintf("%s: %d bp, mean score %.4f, %d positions below 0.5", label, len(v), s.Mean(label), low)
}

// tally holds the read evidence for one contig from one shard of reads.
type tally struct {
	support, oppose []int32
}

// add records the evidence of one alignment of read to target.  Target
// positions fold onto the contig of length n.
func (t *tally) add(r align.Result, read, target string, n int) {
	q, p := r.QStart, r.TStart
	inserted := false
	for _, co := range r.Cigar {
		l := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for i := 0; i < l; i++ {
				pos := p % n
				if inserted {
					t.oppose[pos]++
					inserted = false
				}
				if b := read[q]; b == target[p] && b != 'N' {
					t.support[pos]++
				} else {
					t.oppose[pos]++
				}
				q++
				p++
			}
		case sam.CigarInsertion:
			inserted = true
			q += l
		case sam.CigarDeletion:
			for i := 0; i < l; i++ {
				pos := p % n
				if inserted {
					t.oppose[pos]++
					inserted = false
				}
				t.oppose[pos]++
				p++
			}
		}
	}
}

// Score computes the per-base scores of every contig in set.  If circular is
// set, reads may align across the join between a contig's end and its start.
// The work is split into units of one contig and one shard of the reads.
func Score(ctx context.Context, set contig.Set, reads []string, circ bool, opts Opts) (Scores, error) {
	if len(set) == 0 {
		return Scores{}, nil
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	overhang := opts.MaxReadOverhang
	if overhang <= 0 {
		for _, r := range reads {
			if len(r) > overhang {
				overhang = len(r)
			}
		}
	}
	mapOpts := align.DefaultMapOpts
	mapOpts.K, mapOpts.W, mapOpts.BandWidth = opts.K, opts.W, opts.BandWidth

	mappers := make([]*align.Mapper, len(set))
	err := traverse.Limit(parallelism).Each(len(set), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := set[i].Seq
		if circ {
			n := overhang
			if n > len(target) {
				n = len(target)
			}
			target = circular.Extend(target, n)
		}
		mappers[i] = align.NewMapper(target, mapOpts)
		return nil
	})
	if err != nil {
		return nil, err
	}

	shards := (parallelism + len(set) - 1) / len(set)
	if shards > len(reads) {
		shards = len(reads)
	}
	if shards < 1 {
		shards = 1
	}
	tallies := make([]tally, len(set)*shards)
	err = traverse.Limit(parallelism).Each(len(tallies), func(u int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, shard := u/shards, u%shards
		n := len(set[c].Seq)
		t := &tallies[u]
		t.support = make([]int32, n)
		t.oppose = make([]int32, n)
		m := mappers[c]
		target := m.Target()
		mapped := 0
		for i := shard * len(reads) / shards; i < (shard+1)*len(reads)/shards; i++ {
			r, read, ok := m.MapStrands(reads[i])
			if !ok || r.Identity() < opts.MinIdentity {
				continue
			}
			t.add(r, read, target, n)
			mapped++
		}
		log.Debug.Printf("%s: shard %d: %d reads aligned", set[c].Label, shard, mapped)
		return nil
	})
	if err != nil {
		return nil, err
	}

	scores := make(Scores, len(set))
	for c, ctg := range set {
		n := len(ctg.Seq)
		v := make([]float64, n)
		for pos := 0; pos < n; pos++ {
			var support, oppose int32
			for shard := 0; shard < shards; shard++ {
				t := &tallies[c*shards+shard]
				support += t.support[pos]
				oppose += t.oppose[pos]
			}
			if total := support + oppose; total > 0 {
				v[pos] = float64(support) / float64(total)
			} else {
				v[pos] = ZeroCoverage
			}
		}
		scores[ctg.Label] = v
		log.Printf("  %s", scores.Summary(ctg.Label))
	}
	return scores, nil
}
