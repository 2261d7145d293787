// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reconcile_test

import (
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/reconcile/circular"
	"github.com/grailbio/reconcile/reconcile"
	"github.com/grailbio/reconcile/simulate"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func testOpts() reconcile.Opts {
	opts := reconcile.DefaultOpts
	opts.W = 5
	opts.StartLen = 200
	opts.OverlapWindow = 200
	opts.MaxOverlap = 1000
	opts.JoinFlank = 100
	opts.BandWidth = 50
	opts.Parallelism = 3
	return opts
}

// writeContigs writes one FASTA file per sequence and returns their paths.
func writeContigs(t *testing.T, dir string, names, seqs []string) []string {
	ctx := vcontext.Background()
	paths := make([]string, len(seqs))
	for i := range seqs {
		paths[i] = filepath.Join(dir, names[i]+".fasta")
		assert.NoError(t, simulate.WriteFASTA(ctx, paths[i], names[i], seqs[i]))
	}
	return paths
}

func readFile(t *testing.T, path string) string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestRunCircular(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	r := rand.New(rand.NewSource(1))
	genome := simulate.Genome(r, 3000)
	c := circular.Rotate(genome, 2500)
	paths := writeContigs(t, tmpdir, []string{"flye", "canu", "raven"}, []string{
		genome + genome[:300],
		simulate.Substitute(circular.Rotate(genome, 1200), 100),
		c + c[:50],
	})
	reads := simulate.Reads(r, genome, simulate.ReadOpts{
		N: 60, Len: 800, ErrorRate: 0.01, Circular: true, BothStrands: true,
	})
	readsPath := filepath.Join(tmpdir, "reads.fastq.gz")
	assert.NoError(t, simulate.WriteFASTQ(ctx, readsPath, reads))

	outDir := filepath.Join(tmpdir, "out")
	res, err := reconcile.Run(ctx, paths, readsPath, outDir, testOpts())
	assert.NoError(t, err)

	assert.EQ(t, len(res.Contigs), 3)
	a := res.Contigs[0].Seq
	expect.EQ(t, len(a), len(genome))
	expect.EQ(t, a, circular.Rotate(genome, res.Start.Offset))
	expect.EQ(t, res.Contigs[2].Seq, a)
	expect.EQ(t, res.Start.Label, "A")
	expect.EQ(t, a[:len(res.Start.Seq)], res.Start.Seq)
	expect.EQ(t, len(res.Contigs[1].Seq), len(genome))
	expect.EQ(t, res.Consensus, a)

	expect.EQ(t, readFile(t, filepath.Join(outDir, reconcile.AllSeqsFile)),
		">A\n"+a+"\n>B\n"+res.Contigs[1].Seq+"\n>C\n"+a+"\n")
	expect.EQ(t, readFile(t, filepath.Join(outDir, reconcile.ConsensusFile)),
		">consensus\n"+a+"\n")
}

func TestRunLinear(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	r := rand.New(rand.NewSource(2))
	genome := simulate.Genome(r, 2000)
	paths := writeContigs(t, tmpdir, []string{"x", "y"}, []string{
		simulate.Substitute(genome, 700),
		genome,
	})
	reads := simulate.Reads(r, genome, simulate.ReadOpts{N: 60, Len: 600, ErrorRate: 0.01})
	readsPath := filepath.Join(tmpdir, "reads.fastq")
	assert.NoError(t, simulate.WriteFASTQ(ctx, readsPath, reads))

	opts := testOpts()
	opts.Circular = false
	outDir := filepath.Join(tmpdir, "out")
	res, err := reconcile.Run(ctx, paths, readsPath, outDir, opts)
	assert.NoError(t, err)
	expect.EQ(t, res.Start.Label, "")
	expect.EQ(t, res.Contigs[1].Seq, genome)
	expect.EQ(t, res.Consensus, genome)
	expect.EQ(t, readFile(t, filepath.Join(outDir, reconcile.ConsensusFile)),
		">consensus\n"+genome+"\n")
}

func TestRunInvalidInput(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	r := rand.New(rand.NewSource(3))
	genome := simulate.Genome(r, 1000)
	readsPath := filepath.Join(tmpdir, "reads.fastq")
	assert.NoError(t, simulate.WriteFASTQ(ctx, readsPath,
		simulate.Reads(r, genome, simulate.ReadOpts{N: 10, Len: 300})))
	outDir := filepath.Join(tmpdir, "out")
	opts := testOpts()

	// A single contig.
	paths := writeContigs(t, tmpdir, []string{"one"}, []string{genome})
	_, err := reconcile.Run(ctx, paths, readsPath, outDir, opts)
	assert.Regexp(t, err, "two or more input contigs are required")
	_, err = os.Stat(outDir)
	expect.True(t, os.IsNotExist(err), "output directory created: %v", err)

	// Three files, two of which hold records with the same name.
	dir1 := filepath.Join(tmpdir, "d1")
	dir2 := filepath.Join(tmpdir, "d2")
	assert.NoError(t, os.Mkdir(dir1, 0755))
	assert.NoError(t, os.Mkdir(dir2, 0755))
	paths = writeContigs(t, dir1, []string{"same", "other"}, []string{genome, genome})
	paths = append(paths, writeContigs(t, dir2, []string{"same"}, []string{genome})...)
	assert.EQ(t, len(paths), 3)
	_, err = reconcile.Run(ctx, paths, readsPath, outDir, opts)
	assert.Regexp(t, err, "duplicate contig name: same")
	_, err = os.Stat(outDir)
	expect.True(t, os.IsNotExist(err), "output directory created: %v", err)

	// Reads that are not FASTQ.
	paths = writeContigs(t, tmpdir, []string{"x", "y"}, []string{genome, genome})
	_, err = reconcile.Run(ctx, paths, paths[0], outDir, opts)
	assert.Regexp(t, err, "input reads .* are not in FASTQ format")
	_, err = os.Stat(outDir)
	expect.True(t, os.IsNotExist(err), "output directory created: %v", err)

	// Output path is a regular file.
	_, err = reconcile.Run(ctx, paths, readsPath, readsPath, opts)
	assert.Regexp(t, err, "already exists as a file")
}
