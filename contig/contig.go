// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package contig models the candidate assemblies being reconciled.  Each
// candidate is identified by the name of its FASTA record; a short letter
// label, assigned in input order, is used for display and output records.
package contig

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/reconcile/dna"
)

// DefaultMaxContigs is the default ceiling on the number of candidates, one
// per display letter.
const DefaultMaxContigs = 26

// Contig is one candidate sequence.
type Contig struct {
	// Label is the display label: "A", "B", ....
	Label string
	// Name is the FASTA record name.  Names are unique within a Set.
	Name string
	// Path is the file the contig was loaded from, if any.
	Path string
	// Seq holds upper-case bases; anything other than A, C, G, T is 'N'.
	Seq string
}

// Set is an ordered list of candidates.  Labels follow the order.
type Set []Contig

// Label returns the display label of the i'th candidate: A..Z, then AA, AB,
// and so on.
func Label(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return Label(i/26-1) + Label(i%26)
}

// CheckCount checks that n candidates, with a ceiling of max, can be
// reconciled.
func CheckCount(n, max int) error {
	if n < 2 {
		return errors.E(errors.Invalid, "two or more input contigs are required")
	}
	if n > max {
		return errors.E(errors.Invalid, fmt.Sprintf("you cannot have more than %d input contigs", max))
	}
	return nil
}

// New builds a Set from parallel name and sequence lists, assigning labels in
// order.  Sequences are cleaned.  It validates the set like Load.
func New(names, seqs []string, max int) (Set, error) {
	if len(names) != len(seqs) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("contig.New: %d names, %d sequences", len(names), len(seqs)))
	}
	if err := CheckCount(len(names), max); err != nil {
		return nil, err
	}
	set := make(Set, len(names))
	for i := range names {
		set[i] = Contig{Label: Label(i), Name: names[i], Seq: dna.Clean(seqs[i])}
	}
	if err := set.Validate(max); err != nil {
		return nil, err
	}
	return set, nil
}

// Validate checks the Set invariants: 2..max candidates, non-empty sequences,
// and unique names.
func (s Set) Validate(max int) error {
	if err := CheckCount(len(s), max); err != nil {
		return err
	}
	names := make(map[string]bool, len(s))
	for _, c := range s {
		if len(c.Seq) == 0 {
			return errors.E(errors.Invalid, fmt.Sprintf("contig %s (%s) has an empty sequence", c.Label, c.Name))
		}
		if names[c.Name] {
			return errors.E(errors.Invalid, fmt.Sprintf("duplicate contig name: %s", c.Name))
		}
		names[c.Name] = true
	}
	return nil
}

// Labels returns the labels of s in order.
func (s Set) Labels() []string {
	labels := make([]string, len(s))
	for i, c := range s {
		labels[i] = c.Label
	}
	return labels
}

// Index returns the position of the candidate with the given label, or -1.
func (s Set) Index(label string) int {
	for i, c := range s {
		if c.Label == label {
			return i
		}
	}
	return -1
}

// Seqs returns the sequences of s in order.
func (s Set) Seqs() []string {
	seqs := make([]string, len(s))
	for i, c := range s {
		seqs[i] = c.Seq
	}
	return seqs
}

// WithSeqs returns a copy of s with the sequences replaced by seqs, which
// must have the same length as s.
func (s Set) WithSeqs(seqs []string) Set {
	if len(seqs) != len(s) {
		panic(fmt.Sprintf("contig.WithSeqs: %d sequences for %d contigs", len(seqs), len(s)))
	}
	out := make(Set, len(s))
	for i, c := range s {
		c.Seq = seqs[i]
		out[i] = c
	}
	return out
}
