// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package kmer

import (
	"math/rand"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
)

func randomSeq(r *rand.Rand, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = "ACGT"[r.Intn(4)]
	}
	return string(buf)
}

func TestEncodeDecode(t *testing.T) {
	for _, seq := range []string{"A", "ACGT", "TTTTGCA", "ACGTACGTACGTACGTACGTACGTACGTACGT"} {
		km, ok := Encode(seq)
		expect.True(t, ok)
		expect.EQ(t, Decode(km, len(seq)), seq)
	}
	_, ok := Encode("ACNT")
	expect.False(t, ok)
	_, ok = Encode("ACGTACGTACGTACGTACGTACGTACGTACGTA")
	expect.False(t, ok)
}

func TestScanner(t *testing.T) {
	s := NewScanner(3)
	s.Reset("ACGTNACGA")
	var got []string
	var pos []int
	for s.Scan() {
		km, p := s.Get()
		got = append(got, Decode(km, 3))
		pos = append(pos, p)
	}
	assert.Equal(t, []string{"ACG", "CGT", "ACG", "CGA"}, got)
	assert.Equal(t, []int{0, 1, 5, 6}, pos)
}

func TestScannerMatchesEncode(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	seq := randomSeq(r, 500)
	s := NewScanner(MaxK)
	s.Reset(seq)
	n := 0
	for s.Scan() {
		km, p := s.Get()
		want, ok := Encode(seq[p : p+MaxK])
		assert.True(t, ok)
		assert.Equal(t, want, km)
		n++
	}
	assert.Equal(t, len(seq)-MaxK+1, n)
}

func TestCount(t *testing.T) {
	acg, _ := Encode("ACG")
	gta, _ := Encode("GTA")
	tac, _ := Encode("TAC")
	counts := map[Kmer]int{acg: 0, gta: 0, tac: 0}
	Count("ACGTACG", 3, false, counts)
	expect.EQ(t, counts[acg], 2)
	expect.EQ(t, counts[gta], 1)
	expect.EQ(t, counts[tac], 1)

	// "GTAC" read circularly contains "GTA", "TAC", "ACG", "CGT".
	counts = map[Kmer]int{acg: 0, gta: 0}
	Count("GTAC", 3, true, counts)
	expect.EQ(t, counts[acg], 1)
	expect.EQ(t, counts[gta], 1)
	expect.EQ(t, len(counts), 2)
}

func TestMinimizers(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	seq := randomSeq(r, 2000)
	const k, w = 11, 5
	mins := Minimizers(seq, k, w, 0)
	assert.True(t, len(mins) > 0)
	// Every window of w k-mers contains one of the minimizers.
	for i := 1; i < len(mins); i++ {
		assert.True(t, mins[i].Pos > mins[i-1].Pos)
		assert.True(t, mins[i].Pos-mins[i-1].Pos <= w)
	}
	for _, m := range mins {
		want, _ := Encode(seq[m.Pos : m.Pos+k])
		assert.Equal(t, want, m.Kmer)
		assert.Equal(t, Hash(m.Kmer, 0), m.Hash)
	}
	// The sketch depends only on content: a shifted copy yields shifted
	// minimizers away from the edges.
	shifted := Minimizers("TT"+seq, k, w, 0)
	found := map[int]bool{}
	for _, m := range shifted {
		found[m.Pos-2] = true
	}
	for _, m := range mins[2 : len(mins)-2] {
		assert.True(t, found[m.Pos], "pos %d", m.Pos)
	}
	// Different seeds order k-mers differently.
	assert.NotEqual(t, Hash(mins[0].Kmer, 0), Hash(mins[0].Kmer, 1))
}

func TestIndex(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	seq := randomSeq(r, 1000)
	idx := NewIndex(seq, 13, 4, 0)
	assert.True(t, len(idx.positions) > 0)
	for _, m := range Minimizers(seq, 13, 4, 0) {
		pos := idx.Positions(m.Kmer)
		assert.Contains(t, pos, int32(m.Pos))
	}
	absent, _ := Encode("AAAAAAAAAAAAA")
	if _, ok := idx.positions[absent]; !ok {
		assert.Nil(t, idx.Positions(absent))
	}
}
