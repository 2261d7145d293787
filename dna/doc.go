// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dna contains small helpers for ASCII nucleotide sequences: alphabet
// cleanup and reverse-complementation.
package dna
