// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package contig

import (
	"bufio"
	"context"
	"fmt"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/reconcile/dna"
	"github.com/grailbio/reconcile/encoding/fasta"
)

// loadRecord reads the single record of the FASTA file at path.  The file may
// be compressed.
func loadRecord(ctx context.Context, path string) (name, seq string, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return
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
	if b, e := br.Peek(1); e != nil || b[0] != '>' {
		err = errors.E(errors.Invalid, fmt.Sprintf("input contig file (%s) is not in FASTA format", path))
		return
	}
	fa, e := fasta.New(br)
	if e != nil {
		err = errors.E(errors.Invalid, fmt.Sprintf("input contig file (%s) is not in FASTA format", path), e)
		return
	}
	names := fa.SeqNames()
	switch {
	case len(names) == 0:
		err = errors.E(errors.Invalid, fmt.Sprintf("input contig file (%s) contains no sequences", path))
		return
	case len(names) > 1:
		err = errors.E(errors.Invalid, fmt.Sprintf("input contig file (%s) contains multiple sequences", path))
		return
	}
	name = names[0]
	n, e := fa.Len(name)
	if e == nil && n == 0 {
		err = errors.E(errors.Invalid, fmt.Sprintf("input contig file (%s) contains no sequences", path))
		return
	}
	if e == nil {
		seq, e = fa.Get(name, 0, n)
	}
	if e != nil {
		err = errors.E(fmt.Sprintf("reading %s", path), e)
	}
	return
}

// Load reads one candidate from each FASTA file in paths.  Each file must hold
// exactly one record, and record names must be unique.  Labels follow the
// order of paths.  The count is checked before any file is opened.
func Load(ctx context.Context, paths []string, max int) (Set, error) {
	if err := CheckCount(len(paths), max); err != nil {
		return nil, err
	}
	set := make(Set, len(paths))
	names := make(map[string]bool, len(paths))
	log.Printf("Input contigs:")
	for i, path := range paths {
		name, seq, err := loadRecord(ctx, path)
		if err != nil {
			return nil, err
		}
		if names[name] {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("duplicate contig name: %s", name))
		}
		names[name] = true
		set[i] = Contig{Label: Label(i), Name: name, Path: path, Seq: dna.Clean(seq)}
		log.Printf("  %s: %s (%s: %d bp)", set[i].Label, path, name, len(seq))
	}
	return set, nil
}

// Write writes s to path as FASTA, one unwrapped record per candidate named
// by its label.
func Write(ctx context.Context, path string, s Set) (err error) {
	records := make([][2]string, len(s))
	for i, c := range s {
		records[i] = [2]string{c.Label, c.Seq}
	}
	return WriteRecords(ctx, path, records)
}

// WriteRecords writes (name, sequence) pairs to path as FASTA.
func WriteRecords(ctx context.Context, path string, records [][2]string) (err error) {
	log.Printf("Saving sequences to file: %s", path)
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	w := fasta.NewWriter(out.Writer(ctx))
	for _, r := range records {
		if err = w.Write(r[0], r[1]); err != nil {
			return
		}
	}
	err = w.Flush()
	return
}
