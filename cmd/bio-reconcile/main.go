// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/reconcile/reconcile"
)

var (
	readsPath       = flag.String("reads", "", "Long reads (FASTQ, optionally gzip- or zstd-compressed); required")
	outDir          = flag.String("out", "bio-reconcile", "Output directory; created if missing")
	parallelism     = flag.Int("parallelism", 0, "Maximum number of concurrent jobs; 0 = runtime.NumCPU()")
	notCircular     = flag.Bool("not-circular", !reconcile.DefaultOpts.Circular, "Treat the contigs as linear; skips circularisation and rotation")
	maxContigs      = flag.Int("max-contigs", reconcile.DefaultOpts.MaxContigs, "Maximum number of input contigs")
	seed            = flag.Uint64("seed", reconcile.DefaultOpts.Seed, "Seed that orders candidate starting sequences")
	k               = flag.Int("k", reconcile.DefaultOpts.K, "k-mer length for anchors and read mapping")
	w               = flag.Int("w", reconcile.DefaultOpts.W, "Minimizer window, in k-mers")
	startLen        = flag.Int("start-len", reconcile.DefaultOpts.StartLen, "Length of the shared starting sequence")
	overlapWindow   = flag.Int("overlap-window", reconcile.DefaultOpts.OverlapWindow, "Length of the contig head searched for in its tail when circularising")
	maxOverlap      = flag.Int("max-overlap", reconcile.DefaultOpts.MaxOverlap, "Longest start/end overlap trimmed when circularising")
	joinFlank       = flag.Int("join-flank", reconcile.DefaultOpts.JoinFlank, "Bases taken from each side of a circular join when checking it against the reads")
	minJoinReads    = flag.Int("min-join-reads", reconcile.DefaultOpts.MinJoinReads, "Reads that must span a circular join; 0 trusts sequence evidence alone")
	minIdentity     = flag.Float64("min-identity", reconcile.DefaultOpts.MinIdentity, "Minimum identity of overlap, join and starting sequence alignments")
	maxReadOverhang = flag.Int("max-read-overhang", reconcile.DefaultOpts.MaxReadOverhang, "Bases reads may extend past the end of a circular contig when scoring; 0 = longest read")
	bandWidth       = flag.Int("band-width", reconcile.DefaultOpts.BandWidth, "Diagonal slack for banded alignments")
)

func bioReconcileUsage() {
	fmt.Printf("Usage: %s [OPTIONS] -reads reads.fastq contig1.fasta contig2.fasta [contig3.fasta ...]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioReconcileUsage
	shutdown := grail.Init()
	defer shutdown()

	if *readsPath == "" {
		log.Fatalf("-reads is required")
	}
	contigPaths := flag.Args()
	ctx := vcontext.Background()
	opts := reconcile.Opts{
		Circular:        !*notCircular,
		Parallelism:     *parallelism,
		MaxContigs:      *maxContigs,
		Seed:            *seed,
		K:               *k,
		W:               *w,
		StartLen:        *startLen,
		OverlapWindow:   *overlapWindow,
		MaxOverlap:      *maxOverlap,
		JoinFlank:       *joinFlank,
		MinJoinReads:    *minJoinReads,
		MinIdentity:     *minIdentity,
		MaxReadOverhang: *maxReadOverhang,
		BandWidth:       *bandWidth,
	}
	if _, err := reconcile.Run(ctx, contigPaths, *readsPath, *outDir, opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
