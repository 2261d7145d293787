// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package reconcile merges several assemblies of the same replicon into one
// consensus sequence, guided by the long reads the assemblies were built
// from.
//
// Run loads the candidates and reads and rotates circular candidates to a
// common start.  Every base of every candidate is then scored against the
// reads, the candidates are aligned pairwise, and the consensus takes at
// every aligned position the base of the best-supported candidate.
package reconcile

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/reconcile/basescore"
	"github.com/grailbio/reconcile/consensus"
	"github.com/grailbio/reconcile/contig"
	"github.com/grailbio/reconcile/normalize"
	"github.com/grailbio/reconcile/pairwise"
)

const (
	// AllSeqsFile holds the normalized candidates, one record per label.
	AllSeqsFile = "01_all_seqs.fasta"
	// ConsensusFile holds the consensus sequence.
	ConsensusFile = "02_consensus.fasta"
	// ConsensusName is the record name in ConsensusFile.
	ConsensusName = "consensus"
)

// Result describes a finished run.
type Result struct {
	// Contigs are the normalized candidates.
	Contigs contig.Set
	// Start is the shared starting sequence.  It is zero for linear input.
	Start normalize.Start
	// Scores are the per-base scores of Contigs.
	Scores basescore.Scores
	// Alignments holds the pairwise alignments of Contigs.
	Alignments pairwise.Set
	// Consensus is the reconciled sequence.
	Consensus string
}

// Run reconciles the contigs in contigPaths, one FASTA record per file,
// using the FASTQ reads at readsPath.  Outputs are written to outDir, which
// is created when missing.  Nothing is written unless every input is valid.
func Run(ctx context.Context, contigPaths []string, readsPath, outDir string, opts Opts) (Result, error) {
	var res Result
	set, err := contig.Load(ctx, contigPaths, opts.MaxContigs)
	if err != nil {
		return res, err
	}
	reads, err := LoadReads(ctx, readsPath)
	if err != nil {
		return res, err
	}
	sanityCheck(set)
	if err = prepareOutputDir(outDir); err != nil {
		return res, err
	}

	backbone := set[0].Label
	if opts.Circular {
		if set, res.Start, err = normalize.Normalize(ctx, set, reads, opts.normalizeOpts(), opts.Seed); err != nil {
			return res, err
		}
		backbone = res.Start.Label
	}
	res.Contigs = set
	if err = contig.Write(ctx, filepath.Join(outDir, AllSeqsFile), set); err != nil {
		return res, err
	}

	var (
		wg   sync.WaitGroup
		once errors.Once
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		log.Printf("Scoring contig bases against the reads")
		scores, err := basescore.Score(ctx, set, reads, opts.Circular, opts.scoreOpts())
		if err != nil {
			once.Set(err)
			return
		}
		res.Scores = scores
	}()
	go func() {
		defer wg.Done()
		log.Printf("Aligning contigs pairwise")
		alns, err := pairwise.AlignAll(ctx, set, opts.pairwiseOpts())
		if err != nil {
			once.Set(err)
			return
		}
		res.Alignments = alns
	}()
	wg.Wait()
	if err = once.Err(); err != nil {
		return res, err
	}
	log.Printf("Pairwise identity:\n%s", pairwise.IdentityMatrix(set, res.Alignments))

	log.Printf("Building consensus")
	if res.Consensus, err = consensus.Build(set, res.Scores, res.Alignments, backbone); err != nil {
		return res, err
	}
	err = contig.WriteRecords(ctx, filepath.Join(outDir, ConsensusFile), [][2]string{{ConsensusName, res.Consensus}})
	return res, err
}
