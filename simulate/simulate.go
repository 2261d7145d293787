// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package simulate generates synthetic genomes, assemblies and long reads for
// tests and benchmarks of the reconcile pipeline.
package simulate

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/reconcile/circular"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/reconcile/dna"
	"github.com/grailbio/reconcile/encoding/fastq"
	"github.com/klauspost/compress/gzip"
)

const bases = "ACGT"

// Genome returns n uniformly random bases.
func Genome(r *rand.Rand, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = bases[r.Intn(4)]
	}
	return string(buf)
}

// Substitute returns seq with the base at pos replaced by a different base.
func Substitute(seq string, pos int) string {
	b := []byte(seq)
	b[pos] = bases[(strings.IndexByte(bases, b[pos])+1)%4]
	return string(b)
}

// AddErrors returns seq with each base independently subject to an error
// with probability rate.  Errors are substitutions, insertions and deletions
// in equal proportion.
func AddErrors(r *rand.Rand, seq string, rate float64) string {
	if rate <= 0 {
		return seq
	}
	var sb strings.Builder
	sb.Grow(len(seq) + len(seq)/10)
	for i := 0; i < len(seq); i++ {
		if r.Float64() >= rate {
			sb.WriteByte(seq[i])
			continue
		}
		switch r.Intn(3) {
		case 0:
			sb.WriteByte(bases[(strings.IndexByte(bases, seq[i])+1+r.Intn(3))%4])
		case 1:
			sb.WriteByte(bases[r.Intn(4)])
			sb.WriteByte(seq[i])
		}
	}
	return sb.String()
}

// ReadOpts configures Reads.
type ReadOpts struct {
	// N is the number of reads.
	N int
	// Len is the read length before errors are added.
	Len int
	// ErrorRate is the per-base error probability.
	ErrorRate float64
	// Circular lets reads start anywhere and run across the end of the
	// genome.
	Circular bool
	// BothStrands reverse-complements half of the reads.
	BothStrands bool
}

// Reads samples reads from genome.
func Reads(r *rand.Rand, genome string, opts ReadOpts) []string {
	n := opts.Len
	if !opts.Circular && n > len(genome) {
		n = len(genome)
	}
	reads := make([]string, opts.N)
	for i := range reads {
		var read string
		if opts.Circular {
			read = circular.Window(genome, r.Intn(len(genome)), n)
		} else {
			start := r.Intn(len(genome) - n + 1)
			read = genome[start : start+n]
		}
		if opts.BothStrands && r.Intn(2) == 1 {
			read = dna.ReverseComp(read)
		}
		reads[i] = AddErrors(r, read, opts.ErrorRate)
	}
	return reads
}

// WriteFASTQ writes reads to path, gzip-compressed if path ends in ".gz".
func WriteFASTQ(ctx context.Context, path string, reads []string) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	var (
		dst io.Writer = out.Writer(ctx)
		zw  *gzip.Writer
	)
	if strings.HasSuffix(path, ".gz") {
		zw = gzip.NewWriter(dst)
		dst = zw
	}
	w := fastq.NewWriter(dst, 'I')
	for i, read := range reads {
		if err = w.Write(fmt.Sprintf("read%d", i), read); err != nil {
			return
		}
	}
	if err = w.Flush(); err != nil {
		return
	}
	if zw != nil {
		err = zw.Close()
	}
	return
}

// WriteFASTA writes a single-record FASTA file.
func WriteFASTA(ctx context.Context, path, name, seq string) error {
	return contig.WriteRecords(ctx, path, [][2]string{{name, seq}})
}
