// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package consensus combines aligned candidate sequences into one, choosing
// at every column the candidate whose reads best support it.
package consensus

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/reconcile/basescore"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/reconcile/pairwise"
)

// source identifies the candidate base an emitted consensus base was copied
// from.
type source struct {
	contig int
	pos    int
}

// candidate is one contig as seen from the backbone.
type candidate struct {
	seq    string
	scores []float64
	// toX[i] is the position aligned to backbone position i, or Gap.
	toX []int
	// next is the position of the first base not yet placed in a column.
	next int
}

// gapScore is the score of a gap placed before position p: the lower of the
// scores of the bases on either side.
func (c *candidate) gapScore(p int) float64 {
	left, right := p-1, p
	if left < 0 {
		left = right
	}
	if right >= len(c.seq) {
		right = left
	}
	if left < 0 || right < 0 {
		return basescore.ZeroCoverage
	}
	l, r := c.scores[left], c.scores[right]
	if l < r {
		return l
	}
	return r
}

// insertion returns the bases of c that precede the position aligned to
// backbone position i (len(toX) for the bases after the last one).
func (c *candidate) insertion(i int) string {
	end := len(c.seq)
	if i < len(c.toX) {
		if end = c.toX[i]; end == pairwise.Gap {
			return ""
		}
	}
	return c.seq[c.next:end]
}

// column holds, for each candidate, a position or pairwise.Gap, plus where
// each gap sits.
type column struct {
	pos    []int
	gapPos []int
}

// vote returns the index of the winning candidate, or -1 when a gap wins.
// The highest score wins; ties go to the lower index.
func vote(cands []*candidate, col column) int {
	best, bestScore := -1, -1.0
	for x, c := range cands {
		var score float64
		if p := col.pos[x]; p != pairwise.Gap {
			score = c.scores[p]
		} else {
			score = c.gapScore(col.gapPos[x])
		}
		if score > bestScore {
			best, bestScore = x, score
		}
	}
	if col.pos[best] == pairwise.Gap {
		return -1
	}
	return best
}

func build(set contig.Set, scores basescore.Scores, alns pairwise.Set, backbone string) (string, []source, error) {
	bb := set.Index(backbone)
	if bb < 0 {
		return "", nil, errors.E(errors.Invalid, fmt.Sprintf("consensus: no backbone contig %s", backbone))
	}
	n := len(set[bb].Seq)
	cands := make([]*candidate, len(set))
	for x, c := range set {
		s := scores[c.Label]
		if len(s) != len(c.Seq) {
			return "", nil, errors.E(errors.Invalid, fmt.Sprintf("consensus: contig %s has %d bases but %d scores", c.Label, len(c.Seq), len(s)))
		}
		cand := &candidate{seq: c.Seq, scores: s}
		if x == bb {
			cand.toX = make([]int, n)
			for i := range cand.toX {
				cand.toX[i] = i
			}
		} else {
			aln, ok := alns.Get(backbone, c.Label)
			if !ok {
				return "", nil, errors.E(fmt.Sprintf("consensus: no alignment of %s to %s", backbone, c.Label))
			}
			cand.toX = aln.AToB
		}
		cands[x] = cand
	}

	var (
		seq     strings.Builder
		sources []source
		col     = column{pos: make([]int, len(cands)), gapPos: make([]int, len(cands))}
		ins     = make([]string, len(cands))
	)
	emit := func() {
		if w := vote(cands, col); w >= 0 {
			seq.WriteByte(cands[w].seq[col.pos[w]])
			sources = append(sources, source{contig: w, pos: col.pos[w]})
		}
	}
	for i := 0; i <= n; i++ {
		// Insertion columns before backbone position i, left-aligned.
		width := 0
		for x, c := range cands {
			ins[x] = c.insertion(i)
			if len(ins[x]) > width {
				width = len(ins[x])
			}
		}
		for k := 0; k < width; k++ {
			for x, c := range cands {
				if k < len(ins[x]) {
					col.pos[x] = c.next + k
				} else {
					col.pos[x] = pairwise.Gap
					col.gapPos[x] = c.next + len(ins[x])
				}
			}
			emit()
		}
		for x, c := range cands {
			c.next += len(ins[x])
		}
		if i == n {
			break
		}
		for x, c := range cands {
			if p := c.toX[i]; p != pairwise.Gap {
				col.pos[x] = p
				c.next = p + 1
			} else {
				col.pos[x] = pairwise.Gap
				col.gapPos[x] = c.next
			}
		}
		emit()
	}
	return seq.String(), sources, nil
}

// Build returns the consensus of set.  The backbone contig's positions, in
// order, define the columns; the other contigs contribute through their
// alignments to it, and bases they have between two backbone columns form
// extra columns.  In each column the candidate with the highest score wins,
// ties going to the earlier contig.  A candidate with a base scores its
// per-base score; one with a gap scores the lower score of the bases on
// either side of the gap.  A winning gap emits nothing, so every consensus
// base is copied from a candidate.
func Build(set contig.Set, scores basescore.Scores, alns pairwise.Set, backbone string) (string, error) {
	seq, sources, err := build(set, scores, alns, backbone)
	if err != nil {
		return "", err
	}
	counts := make([]int, len(set))
	for _, s := range sources {
		counts[s.contig]++
	}
	for x, c := range set {
		log.Printf("  %s: %d bases used", c.Label, counts[x])
	}
	log.Printf("Consensus: %d bp (backbone %s, %d bp)", len(seq), backbone, len(set[set.Index(backbone)].Seq))
	return seq, nil
}
