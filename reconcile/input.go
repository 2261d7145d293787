// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reconcile

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/reconcile/encoding/fastq"
	pkgerrors "github.com/pkg/errors"
)

// LoadReads reads the sequences of the FASTQ file at path, which may be
// compressed, and logs their summary statistics.
func LoadReads(ctx context.Context, path string) (reads []string, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(fmt.Sprintf("opening reads %s", path), err)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	reader, _ := compress.NewReader(in.Reader(ctx))
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	br := bufio.NewReader(reader)
	if b, e := br.Peek(1); e != nil || b[0] != '@' {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("input reads (%s) are not in FASTQ format", path))
	}
	reads, stats, err := fastq.ReadSeqs(br)
	if err != nil {
		if cause := pkgerrors.Cause(err); cause == fastq.ErrInvalid || cause == fastq.ErrShort {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("input reads (%s) are not in FASTQ format", path), err)
		}
		return nil, errors.E(fmt.Sprintf("reading %s", path), err)
	}
	log.Printf("Input reads: %s", path)
	log.Printf("  %d reads (%d bp)", stats.Count, stats.TotalBases)
	log.Printf("  N50 = %d bp", stats.N50)
	return reads, nil
}

// prepareOutputDir creates dir unless it exists.  A regular file at dir is an
// error.
func prepareOutputDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return errors.E(errors.Invalid, fmt.Sprintf("output directory (%s) already exists as a file", dir))
	case err == nil:
		log.Printf("Output directory (%s) already exists - files may be overwritten.", dir)
		return nil
	case !os.IsNotExist(err):
		return errors.E(fmt.Sprintf("checking output directory %s", dir), err)
	}
	log.Printf("Creating output directory: %s", dir)
	return os.MkdirAll(dir, 0755)
}

// sanityCheck logs the contig lengths and warns when they differ a lot,
// which usually means the contigs are not all the same replicon.
func sanityCheck(set contig.Set) {
	min, max := len(set[0].Seq), len(set[0].Seq)
	for _, c := range set[1:] {
		if n := len(c.Seq); n < min {
			min = n
		} else if n > max {
			max = n
		}
	}
	log.Printf("Contig lengths: %d - %d bp", min, max)
	if float64(max) > 1.1*float64(min) {
		log.Printf("warning: contig lengths differ by more than 10%%; are they all the same replicon?")
	}
}
