// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package normalize brings circular candidate assemblies into a canonical
// form: the duplicated overlap at each contig's join is trimmed
// (Circularize), a shared anchor sequence is chosen (SelectStart), and every
// contig is rotated to begin at that anchor (Rotate).
//
// Assemblers start a circular sequence wherever their graph traversal
// happened to begin, and some repeat a stretch of the start at the end.
// After normalization, the contigs of a set differ only by genuine
// assembly differences.
package normalize
