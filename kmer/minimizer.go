// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package kmer

// Minimizer is a k-mer that has the smallest hash among w consecutive valid
// k-mers of a sequence.
type Minimizer struct {
	Kmer Kmer
	Pos  int
	Hash uint64
}

// Minimizers returns the (w, k)-minimizers of seq in order of position.  Hash
// ties within a window go to the leftmost k-mer.  If seq has fewer than w
// valid k-mers, the single smallest one is returned.  w <= 1 returns every
// valid k-mer.
func Minimizers(seq string, k, w int, seed uint64) []Minimizer {
	var all []Minimizer
	s := NewScanner(k)
	s.Reset(seq)
	for s.Scan() {
		km, pos := s.Get()
		all = append(all, Minimizer{Kmer: km, Pos: pos, Hash: Hash(km, seed)})
	}
	if w <= 1 || len(all) == 0 {
		return all
	}
	if w > len(all) {
		w = len(all)
	}
	var (
		result []Minimizer
		last   = -1
	)
	for start := 0; start+w <= len(all); start++ {
		best := start
		for i := start + 1; i < start+w; i++ {
			if all[i].Hash < all[best].Hash {
				best = i
			}
		}
		if best != last {
			result = append(result, all[best])
			last = best
		}
	}
	return result
}

// Index maps the minimizers of a target sequence to their positions.
type Index struct {
	K, W      int
	Seed      uint64
	positions map[Kmer][]int32
}

// NewIndex builds an Index over the (w, k)-minimizers of seq.
func NewIndex(seq string, k, w int, seed uint64) *Index {
	mins := Minimizers(seq, k, w, seed)
	idx := &Index{K: k, W: w, Seed: seed, positions: make(map[Kmer][]int32, len(mins))}
	for _, m := range mins {
		idx.positions[m.Kmer] = append(idx.positions[m.Kmer], int32(m.Pos))
	}
	return idx
}

// Positions returns the ascending target positions of km, or nil.
func (idx *Index) Positions(km Kmer) []int32 {
	return idx.positions[km]
}
