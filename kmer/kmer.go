// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package kmer implements 2-bit k-mer encoding, k-mer scanning, and
// farmhash-ordered minimizer sketches and indexes.
package kmer

import (
	"encoding/binary"

	farm "github.com/dgryski/go-farm"
)

const (
	// MaxK is the longest k-mer that fits in a Kmer.
	MaxK = 32

	invalidKmerBits = uint8(255)
)

var asciiToKmerMap [256]uint8

func init() {
	for i := range asciiToKmerMap {
		asciiToKmerMap[i] = invalidKmerBits
	}
	asciiToKmerMap['A'] = 0
	asciiToKmerMap['a'] = 0
	asciiToKmerMap['C'] = 1
	asciiToKmerMap['c'] = 1
	asciiToKmerMap['G'] = 2
	asciiToKmerMap['g'] = 2
	asciiToKmerMap['T'] = 3
	asciiToKmerMap['t'] = 3
}

// Kmer is a compact encoding of a sequence of ACGT, up to 32 bases.
type Kmer uint64

// Encode returns the encoding of seq.  ok is false if seq is longer than MaxK
// or contains a byte outside ACGTacgt.
func Encode(seq string) (k Kmer, ok bool) {
	if len(seq) > MaxK {
		return 0, false
	}
	for i := 0; i < len(seq); i++ {
		b := asciiToKmerMap[seq[i]]
		if b == invalidKmerBits {
			return 0, false
		}
		k = (k << 2) | Kmer(b)
	}
	return k, true
}

// Decode returns the k-base ASCII sequence encoded by km.
func Decode(km Kmer, k int) string {
	const bases = "ACGT"
	buf := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		buf[i] = bases[km&3]
		km >>= 2
	}
	return string(buf)
}

// Hash orders k-mers for minimizer selection.  Different seeds induce
// unrelated orders.
func Hash(km Kmer, seed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(km))
	return farm.Hash64WithSeed(buf[:], seed)
}

// Scanner iterates over the k-mers of a sequence, skipping any k-mer that
// contains a non-ACGT byte.  Scanners are not threadsafe.
type Scanner struct {
	k    int
	mask Kmer // ~0 >> (64-2*k)

	seq   string
	si    int // index of the next byte to consume
	valid int // # of consecutive valid bases ending at si-1
	cur   Kmer
}

// NewScanner creates a Scanner for k-mers of length k, 1 <= k <= MaxK.
func NewScanner(k int) *Scanner {
	if k < 1 || k > MaxK {
		panic(k)
	}
	mask := ^Kmer(0)
	if k < MaxK {
		mask = ^(^Kmer(0) << Kmer(k*2 /*2==#bits per base*/))
	}
	return &Scanner{k: k, mask: mask}
}

// Reset starts scanning seq from its beginning.
func (s *Scanner) Reset(seq string) {
	s.seq = seq
	s.si = 0
	s.valid = 0
	s.cur = 0
}

// Scan advances to the next valid k-mer.  It returns false once the sequence
// is exhausted.
func (s *Scanner) Scan() bool {
	for s.si < len(s.seq) {
		bits := asciiToKmerMap[s.seq[s.si]]
		s.si++
		if bits == invalidKmerBits {
			s.valid = 0
			s.cur = 0
			continue
		}
		s.cur = ((s.cur << 2) | Kmer(bits)) & s.mask
		s.valid++
		if s.valid >= s.k {
			return true
		}
	}
	return false
}

// Get returns the current k-mer and its 0-based start position.
func (s *Scanner) Get() (Kmer, int) {
	return s.cur, s.si - s.k
}

// Count adds to counts[km] the number of occurrences in seq of every k-mer km
// that is already a key of counts.  Other k-mers are ignored.  When circular
// is set, k-mers spanning the end of seq are counted as well.
func Count(seq string, k int, circular bool, counts map[Kmer]int) {
	if circular && len(seq) > 0 {
		ext := k - 1
		if ext > len(seq) {
			ext = len(seq)
		}
		seq = seq + seq[:ext]
	}
	s := NewScanner(k)
	s.Reset(seq)
	for s.Scan() {
		km, _ := s.Get()
		if n, ok := counts[km]; ok {
			counts[km] = n + 1
		}
	}
}
