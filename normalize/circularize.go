// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package normalize

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/reconcile/align"
	"github.com/grailbio/reconcile/contig"
)

// proposals returns candidate lengths for the trimmed contig, most specific
// first.  The last is always the untrimmed length.
func proposals(seq string, opts Opts) []int {
	n := len(seq)
	var props []int
	add := func(p int) {
		for _, q := range props {
			if q == p {
				return
			}
		}
		props = append(props, p)
	}

	// A copy of the whole head window in the tail.
	if w := opts.OverlapWindow; w > 0 && 2*w <= n {
		lo := n - opts.MaxOverlap - w
		if lo < w {
			lo = w
		}
		m := align.NewMapper(seq[lo:], opts.mapOpts())
		if r, ok := m.Locate(seq[:w]); ok && r.Identity() >= opts.MinIdentity {
			log.Debug.Printf("head window found in tail: %v", r)
			add(lo + r.TStart)
		}
	}

	// A tail suffix that matches a head prefix shorter than the window.
	w := opts.OverlapWindow
	if w > n/2 {
		w = n / 2
	}
	if w >= opts.K {
		t := seq[n-w:]
		r := align.Overlap(seq[:w], t, align.DefaultScoring)
		if r.QEnd >= opts.K && r.Identity() >= opts.MinIdentity {
			log.Debug.Printf("short head/tail overlap: %v", r)
			add(n - w + r.TStart)
		}
	}
	add(n)
	return props
}

// joinSupport maps reads to the join of the circular sequence seq and returns
// the number of reads that span it and their summed identity.
func joinSupport(seq string, reads []string, opts Opts) (count int, identity float64) {
	n := len(seq)
	flank := opts.JoinFlank
	if flank > n/2 {
		flank = n / 2
	}
	if flank == 0 {
		return 0, 0
	}
	junction := seq[n-flank:] + seq[:flank]
	m := align.NewMapper(junction, opts.mapOpts())
	for _, read := range reads {
		r, _, ok := m.MapStrands(read)
		if !ok || r.TStart > flank/2 || r.TEnd < flank+flank/2 {
			continue
		}
		if id := r.Identity(); id >= opts.MinIdentity {
			count++
			identity += id
		}
	}
	return count, identity
}

// circularize returns c's sequence with its duplicated join removed.
func circularize(c contig.Contig, reads []string, opts Opts) (string, error) {
	props := proposals(c.Seq, opts)
	if opts.MinJoinReads <= 0 {
		return c.Seq[:props[0]], nil
	}
	best, bestCount, bestIdentity := -1, 0, 0.0
	for i, p := range props {
		count, identity := joinSupport(c.Seq[:p], reads, opts)
		log.Debug.Printf("%s: join at %d supported by %d reads", c.Label, p, count)
		if count > bestCount || (count == bestCount && count > 0 && identity > bestIdentity) {
			best, bestCount, bestIdentity = i, count, identity
		}
	}
	if best < 0 || bestCount < opts.MinJoinReads {
		return "", errors.E(fmt.Sprintf("unable to circularise contig %s: no join is spanned by %d or more reads", c.Label, opts.MinJoinReads))
	}
	return c.Seq[:props[best]], nil
}

// Circularize trims the sequence duplicated between the end and the start of
// each contig.  Candidate trim points come from head/tail alignments; the one
// whose join is spanned by the most reads wins, and the untrimmed sequence
// competes too.  Running Circularize on its own output changes nothing.
func Circularize(ctx context.Context, set contig.Set, reads []string, opts Opts) (contig.Set, error) {
	seqs := make([]string, len(set))
	err := traverse.Limit(opts.parallelism()).Each(len(set), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq, err := circularize(set[i], reads, opts)
		if err != nil {
			return err
		}
		if trimmed := len(set[i].Seq) - len(seq); trimmed > 0 {
			log.Printf("  %s: trimmed %d bp overlap, %d bp remain", set[i].Label, trimmed, len(seq))
		} else {
			log.Printf("  %s: no overlap, %d bp", set[i].Label, len(seq))
		}
		seqs[i] = seq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set.WithSeqs(seqs), nil
}
