// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package contig_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func TestLabel(t *testing.T) {
	expect.EQ(t, contig.Label(0), "A")
	expect.EQ(t, contig.Label(25), "Z")
	expect.EQ(t, contig.Label(26), "AA")
	expect.EQ(t, contig.Label(27), "AB")
	expect.EQ(t, contig.Label(52), "BA")
}

func TestCheckCount(t *testing.T) {
	err := contig.CheckCount(1, 26)
	assert.Regexp(t, err, "two or more input contigs are required")
	expect.True(t, errors.Is(errors.Invalid, err))
	assert.Regexp(t, contig.CheckCount(27, 26), "you cannot have more than 26 input contigs")
	expect.NoError(t, contig.CheckCount(2, 26))
}

func TestNew(t *testing.T) {
	set, err := contig.New([]string{"x", "y"}, []string{"acgt", "ACRT"}, 26)
	assert.NoError(t, err)
	expect.EQ(t, set.Labels(), []string{"A", "B"})
	expect.EQ(t, set.Seqs(), []string{"ACGT", "ACNT"})
	expect.EQ(t, set.Index("B"), 1)
	expect.EQ(t, set.Index("C"), -1)

	_, err = contig.New([]string{"x", "x"}, []string{"ACGT", "ACGT"}, 26)
	assert.Regexp(t, err, "duplicate contig name: x")
	_, err = contig.New([]string{"x", "y"}, []string{"ACGT", ""}, 26)
	assert.Regexp(t, err, "empty sequence")

	other := set.WithSeqs([]string{"GG", "TT"})
	expect.EQ(t, other.Seqs(), []string{"GG", "TT"})
	expect.EQ(t, other[1].Name, "y")
	expect.EQ(t, set.Seqs(), []string{"ACGT", "ACNT"})
}

func writeFile(t *testing.T, path, data string) {
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
}

func TestLoad(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)
	ctx := vcontext.Background()

	a := filepath.Join(dir, "a.fasta")
	writeFile(t, a, ">contig_1 length=12\nACGTAC\ngtacgt\n")
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(">contig_2\nTTTTGGGG\n"))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())
	b := filepath.Join(dir, "b.fasta.gz")
	writeFile(t, b, gz.String())

	set, err := contig.Load(ctx, []string{a, b}, 26)
	assert.NoError(t, err)
	assert.EQ(t, len(set), 2)
	expect.EQ(t, set[0], contig.Contig{Label: "A", Name: "contig_1", Path: a, Seq: "ACGTACGTACGT"})
	expect.EQ(t, set[1], contig.Contig{Label: "B", Name: "contig_2", Path: b, Seq: "TTTTGGGG"})

	// Round trip through Write.
	out := filepath.Join(dir, "out.fasta")
	assert.NoError(t, contig.Write(ctx, out, set))
	data, err := ioutil.ReadFile(out)
	assert.NoError(t, err)
	expect.EQ(t, string(data), ">A\nACGTACGTACGT\n>B\nTTTTGGGG\n")
}

func TestLoadErrors(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)
	ctx := vcontext.Background()

	good := filepath.Join(dir, "good.fasta")
	writeFile(t, good, ">good\nACGT\n")
	fastq := filepath.Join(dir, "reads.fastq")
	writeFile(t, fastq, "@r\nACGT\n+\nIIII\n")
	empty := filepath.Join(dir, "empty.fasta")
	writeFile(t, empty, ">nothing\n")
	multi := filepath.Join(dir, "multi.fasta")
	writeFile(t, multi, ">m1\nACGT\n>m2\nACGT\n")
	dup := filepath.Join(dir, "dup.fasta")
	writeFile(t, dup, ">good\nTTTT\n")

	tests := []struct {
		paths []string
		err   string
	}{
		{[]string{good}, "two or more input contigs are required"},
		{[]string{good, fastq}, `input contig file \(.*reads.fastq\) is not in FASTA format`},
		{[]string{good, empty}, `input contig file \(.*empty.fasta\) contains no sequences`},
		{[]string{good, multi}, `input contig file \(.*multi.fasta\) contains multiple sequences`},
		{[]string{good, dup}, "duplicate contig name: good"},
		{[]string{good, dup, multi}, "you cannot have more than 2 input contigs"},
	}
	for _, test := range tests {
		_, err := contig.Load(ctx, test.paths, 2)
		assert.Regexp(t, err, test.err)
		expect.True(t, errors.Is(errors.Invalid, err), "%v", err)
	}
}
