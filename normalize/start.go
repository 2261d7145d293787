// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package normalize

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/reconcile/align"
	"github.com/grailbio/reconcile/circular"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/reconcile/kmer"
)

// Start is the starting sequence that every normalized contig begins with.
type Start struct {
	// Label is the contig the window was taken from.
	Label string
	// Offset is the window's position in that contig.
	Offset int
	// Seq holds the window's bases.
	Seq string
}

// SelectStart chooses the starting sequence.  Candidates are circular
// minimizers of the first contig whose k-mer occurs exactly once in every
// contig.  They are ordered by the k-mer's hash under seed, then by position,
// and the first whose window is found in every other contig with at least
// opts.MinIdentity wins.  The choice depends only on the circular sequences,
// not on where each contig happens to begin.
func SelectStart(set contig.Set, opts Opts, seed uint64) (Start, error) {
	if len(set) == 0 {
		return Start{}, errors.E(errors.Invalid, "normalize.SelectStart: empty contig set")
	}
	a := set[0]
	n := len(a.Seq)
	if n < opts.K {
		return Start{}, errors.E(fmt.Sprintf("contig %s is shorter than %d bases", a.Label, opts.K))
	}
	ext := circular.Extend(a.Seq, opts.K-1+opts.W-1)
	seen := make(map[int]bool)
	var cands []kmer.Minimizer
	for _, m := range kmer.Minimizers(ext, opts.K, opts.W, seed) {
		m.Pos %= n
		if !seen[m.Pos] {
			seen[m.Pos] = true
			cands = append(cands, m)
		}
	}
	for _, c := range set {
		counts := make(map[kmer.Kmer]int, len(cands))
		for _, m := range cands {
			counts[m.Kmer] = 0
		}
		kmer.Count(c.Seq, opts.K, true, counts)
		unique := cands[:0]
		for _, m := range cands {
			if counts[m.Kmer] == 1 {
				unique = append(unique, m)
			}
		}
		cands = unique
	}
	if len(cands) == 0 {
		return Start{}, errors.E("unable to find a suitable starting sequence: no k-mer of contig " + a.Label + " is unique in every contig")
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Hash != cands[j].Hash {
			return cands[i].Hash < cands[j].Hash
		}
		return cands[i].Pos < cands[j].Pos
	})
	length := opts.StartLen
	if length > n {
		length = n
	}
	others := make([]startIndex, len(set)-1)
	for i := range others {
		others[i] = newStartIndex(set[i+1].Seq, length, opts)
	}
candidates:
	for i, m := range cands {
		start := Start{Label: a.Label, Offset: m.Pos, Seq: circular.Window(a.Seq, m.Pos, length)}
		for j, idx := range others {
			if _, identity, ok := idx.locate(start.Seq); !ok || identity < opts.MinIdentity {
				log.Debug.Printf("start candidate at %d: not found in contig %s (identity %.3f)", m.Pos, set[j+1].Label, identity)
				continue candidates
			}
		}
		log.Printf("Starting sequence: contig %s, position %d, %d bp, anchor k-mer %s (candidate %d of %d)",
			start.Label, start.Offset, len(start.Seq), kmer.Decode(m.Kmer, opts.K), i+1, len(cands))
		return start, nil
	}
	return Start{}, errors.E(fmt.Sprintf("unable to find a suitable starting sequence: none of %d candidate windows of contig %s is found in every contig", len(cands), a.Label))
}

// startIndex finds starting sequences of up to a fixed length in a circular
// sequence.
type startIndex struct {
	n int
	m *align.Mapper
}

func newStartIndex(seq string, length int, opts Opts) startIndex {
	ext := length + opts.BandWidth
	if ext > len(seq) {
		ext = len(seq)
	}
	return startIndex{n: len(seq), m: align.NewMapper(circular.Extend(seq, ext), opts.mapOpts())}
}

// locate returns the position of start in the circular sequence.
func (s startIndex) locate(start string) (pos int, identity float64, ok bool) {
	r, ok := s.m.Locate(start)
	if !ok {
		return 0, 0, false
	}
	return r.TStart % s.n, r.Identity(), true
}

// Rotate rotates each contig so that the starting sequence begins at position
// 0.  The contig the starting sequence was taken from is rotated by its known
// offset; the others are searched.  A contig without a hit of at least
// opts.MinIdentity is an error.
func Rotate(ctx context.Context, set contig.Set, start Start, opts Opts) (contig.Set, error) {
	seqs := make([]string, len(set))
	err := traverse.Limit(opts.parallelism()).Each(len(set), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := set[i]
		if c.Label == start.Label {
			seqs[i] = circular.Rotate(c.Seq, start.Offset)
			return nil
		}
		pos, identity, ok := newStartIndex(c.Seq, len(start.Seq), opts).locate(start.Seq)
		if !ok || identity < opts.MinIdentity {
			return errors.E(fmt.Sprintf("unable to find starting sequence in contig %s (best identity %.3f)", c.Label, identity))
		}
		log.Printf("  %s: starting sequence at position %d (%.2f%% identity), rotating", c.Label, pos, 100*identity)
		seqs[i] = circular.Rotate(c.Seq, pos)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set.WithSeqs(seqs), nil
}

// Normalize trims the circular join of every contig, selects the starting
// sequence and rotates every contig to it.
func Normalize(ctx context.Context, set contig.Set, reads []string, opts Opts, seed uint64) (contig.Set, Start, error) {
	log.Printf("Circularising contigs")
	set, err := Circularize(ctx, set, reads, opts)
	if err != nil {
		return nil, Start{}, err
	}
	log.Printf("Finding starting sequence")
	start, err := SelectStart(set, opts, seed)
	if err != nil {
		return nil, Start{}, err
	}
	log.Printf("Rotating contigs to starting sequence")
	if set, err = Rotate(ctx, set, start, opts); err != nil {
		return nil, Start{}, err
	}
	return set, start, nil
}
