// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
bio-reconcile merges several long-read assemblies of the same replicon into a
single consensus sequence.

Each input FASTA file holds one candidate contig.  Circular candidates (the
default) are first trimmed of any overlap at their join and rotated to a
common starting sequence.  Every base of every candidate is then scored by how
well the reads support it, the candidates are aligned pairwise, and the
consensus takes, at each aligned position, the base of the best-supported
candidate.

Two files are written to the output directory:

  01_all_seqs.fasta   the normalized candidates, named A, B, C, ...
  02_consensus.fasta  the consensus, named "consensus"

Sample usage:
bio-reconcile \
    -reads reads.fastq.gz \
    -out reconciled \
    flye.fasta canu.fasta raven.fasta
*/
package main
