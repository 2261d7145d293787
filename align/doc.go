// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package align implements nucleotide sequence alignment.
//
// The dynamic-programming core (Global, GlobalBanded, SemiGlobal, Overlap)
// fills a score matrix whose rows are query positions and whose columns are
// target positions.  Every cell remembers the operation that produced its
// score:
//
//   ___|___
//    1 | 3
//    2 | 4
//
//   diagonal (1 -> 4): query and target base aligned (CIGAR M)
//   down     (3 -> 4): query base against a gap      (CIGAR I)
//   right    (2 -> 4): target base against a gap     (CIGAR D)
//
// Score ties are always broken in the order diagonal, down, right, so the
// same inputs always produce the same alignment.
//
// Mapper and AnchoredGlobal scale the core to long sequences: exact
// minimizer matches are chained co-linearly, and only the stretches between
// chained anchors go through dynamic programming.
package align
