// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package normalize_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/reconcile/circular"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/reconcile/normalize"
	"github.com/grailbio/reconcile/simulate"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var testOpts = normalize.Opts{
	K:             15,
	W:             5,
	StartLen:      200,
	OverlapWindow: 200,
	MaxOverlap:    1000,
	JoinFlank:     100,
	MinJoinReads:  1,
	MinIdentity:   0.9,
	BandWidth:     50,
	Parallelism:   2,
}

type fixture struct {
	genome string
	reads  []string
	set    contig.Set
}

// newFixture builds three rotations of a 3kb circular genome: one with a
// 300 bp overlap, one clean, and one with a 50 bp overlap.
func newFixture(t *testing.T) fixture {
	r := rand.New(rand.NewSource(1))
	genome := simulate.Genome(r, 3000)
	b := circular.Rotate(genome, 1200)
	c := circular.Rotate(genome, 2500)
	set, err := contig.New(
		[]string{"a", "b", "c"},
		[]string{genome + genome[:300], b, c + c[:50]},
		contig.DefaultMaxContigs)
	assert.NoError(t, err)
	reads := simulate.Reads(r, genome, simulate.ReadOpts{
		N: 60, Len: 800, ErrorRate: 0.01, Circular: true, BothStrands: true,
	})
	return fixture{genome: genome, reads: reads, set: set}
}

func TestCircularize(t *testing.T) {
	ctx := vcontext.Background()
	f := newFixture(t)
	trimmed, err := normalize.Circularize(ctx, f.set, f.reads, testOpts)
	assert.NoError(t, err)
	expect.EQ(t, trimmed.Seqs(), []string{
		f.genome,
		circular.Rotate(f.genome, 1200),
		circular.Rotate(f.genome, 2500),
	})
	expect.EQ(t, trimmed.Labels(), f.set.Labels())

	// Idempotent.
	again, err := normalize.Circularize(ctx, trimmed, f.reads, testOpts)
	assert.NoError(t, err)
	expect.EQ(t, again, trimmed)
}

func TestCircularizeWithoutReads(t *testing.T) {
	ctx := vcontext.Background()
	f := newFixture(t)
	_, err := normalize.Circularize(ctx, f.set, nil, testOpts)
	assert.Regexp(t, err, "unable to circularise contig [ABC]")

	opts := testOpts
	opts.MinJoinReads = 0
	trimmed, err := normalize.Circularize(ctx, f.set, nil, opts)
	assert.NoError(t, err)
	expect.EQ(t, trimmed[0].Seq, f.genome)
	expect.EQ(t, trimmed[2].Seq, circular.Rotate(f.genome, 2500))
}

func TestSelectStartRotationInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	genome := simulate.Genome(r, 2000)
	var starts []string
	for _, k := range []int{0, 1, 999, 1500} {
		set, err := contig.New([]string{"x", "y"},
			[]string{circular.Rotate(genome, k), circular.Rotate(genome, 3*k+7)},
			contig.DefaultMaxContigs)
		assert.NoError(t, err)
		start, err := normalize.SelectStart(set, testOpts, 0)
		assert.NoError(t, err)
		expect.EQ(t, start.Label, "A")
		expect.EQ(t, len(start.Seq), testOpts.StartLen)
		expect.EQ(t, circular.Window(set[0].Seq, start.Offset, len(start.Seq)), start.Seq)
		starts = append(starts, start.Seq)

		// Deterministic for a seed.
		again, err := normalize.SelectStart(set, testOpts, 0)
		assert.NoError(t, err)
		expect.EQ(t, again, start)
	}
	for _, s := range starts[1:] {
		expect.EQ(t, s, starts[0])
	}
}

func TestSelectStartNoCandidate(t *testing.T) {
	set, err := contig.New([]string{"x", "y"},
		[]string{strings.Repeat("ACGT", 100), strings.Repeat("ACGT", 100)},
		contig.DefaultMaxContigs)
	assert.NoError(t, err)
	_, err = normalize.SelectStart(set, testOpts, 0)
	assert.Regexp(t, err, "unable to find a suitable starting sequence")
}

func TestSelectStartSkipsDivergentWindow(t *testing.T) {
	ctx := vcontext.Background()
	r := rand.New(rand.NewSource(4))
	genome := simulate.Genome(r, 20000)
	same, err := contig.New([]string{"x", "y"},
		[]string{genome, circular.Rotate(genome, 5000)},
		contig.DefaultMaxContigs)
	assert.NoError(t, err)
	first, err := normalize.SelectStart(same, testOpts, 0)
	assert.NoError(t, err)

	// Contig B has an insertion in the middle of the window chosen above.
	ins := (first.Offset + testOpts.StartLen/2) % len(genome)
	b := genome[:ins] + simulate.Genome(r, 200) + genome[ins:]
	set, err := contig.New([]string{"x", "y"},
		[]string{genome, circular.Rotate(b, 7000)},
		contig.DefaultMaxContigs)
	assert.NoError(t, err)
	start, err := normalize.SelectStart(set, testOpts, 0)
	assert.NoError(t, err)
	expect.True(t, start.Offset != first.Offset, "window with an insertion selected")

	rotated, err := normalize.Rotate(ctx, set, start, testOpts)
	assert.NoError(t, err)
	expect.EQ(t, rotated[0].Seq, circular.Rotate(genome, start.Offset))
	expect.EQ(t, len(rotated[1].Seq), len(b))
	expect.EQ(t, rotated[1].Seq[50:150], start.Seq[50:150])
}

func TestNormalize(t *testing.T) {
	ctx := vcontext.Background()
	f := newFixture(t)
	set, start, err := normalize.Normalize(ctx, f.set, f.reads, testOpts, 0)
	assert.NoError(t, err)
	for _, c := range set {
		expect.EQ(t, len(c.Seq), len(f.genome))
		expect.True(t, strings.HasPrefix(c.Seq, start.Seq), "%s", c.Label)
		expect.EQ(t, c.Seq, set[0].Seq)
	}
	expect.EQ(t, set[0].Seq, circular.Rotate(f.genome, start.Offset))
}

func TestRotateFailure(t *testing.T) {
	ctx := vcontext.Background()
	r := rand.New(rand.NewSource(3))
	genome := simulate.Genome(r, 2000)
	set, err := contig.New([]string{"x", "y"},
		[]string{genome, simulate.Genome(r, 2000)},
		contig.DefaultMaxContigs)
	assert.NoError(t, err)
	start := normalize.Start{Label: "A", Offset: 100, Seq: genome[100:300]}
	_, err = normalize.Rotate(ctx, set, start, testOpts)
	assert.Regexp(t, err, "unable to find starting sequence in contig B")

	// Length preserving.
	set[1].Seq = circular.Rotate(genome, 1234)
	rotated, err := normalize.Rotate(ctx, set, start, testOpts)
	assert.NoError(t, err)
	expect.EQ(t, rotated[0].Seq, circular.Rotate(genome, 100))
	expect.EQ(t, rotated[1].Seq, rotated[0].Seq)
}
