// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

import (
	"github.com/grailbio/base/simd"
	gunsafe "github.com/grailbio/base/unsafe"
)

// cleanTable maps 'A'/'a' to 'A', 'C'/'c' to 'C', 'G'/'g' to 'G', 'T'/'t' to
// 'T', and everything else to 'N'.
var cleanTable [256]byte

// revCompTable maps 'A'/'a' to 'T', 'C'/'c' to 'G', 'G'/'g' to 'C', 'T'/'t'
// to 'A', and everything else to 'N'.
var revCompTable [256]byte

func init() {
	for i := range cleanTable {
		cleanTable[i] = 'N'
		revCompTable[i] = 'N'
	}
	for _, pair := range [...][2]byte{{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'}} {
		cleanTable[pair[0]] = pair[0]
		cleanTable[pair[0]+'a'-'A'] = pair[0]
		revCompTable[pair[0]] = pair[1]
		revCompTable[pair[0]+'a'-'A'] = pair[1]
	}
}

// Clean returns seq with lowercase bases uppercased and every byte outside
// ACGT replaced by 'N'.  seq is returned unchanged when it is already clean.
func Clean(seq string) string {
	i := 0
	for ; i < len(seq); i++ {
		if cleanTable[seq[i]] != seq[i] {
			break
		}
	}
	if i == len(seq) {
		return seq
	}
	out := []byte(seq)
	for ; i < len(out); i++ {
		out[i] = cleanTable[out[i]]
	}
	return gunsafe.BytesToString(out)
}

// ReverseComp8 writes the reverse complement of src to *dst, resizing it as
// needed.
func ReverseComp8(dst *[]byte, src []byte) {
	simd.ResizeUnsafe(dst, len(src))
	d := *dst
	last := len(src) - 1
	for i, b := range src {
		d[last-i] = revCompTable[b]
	}
}

// ReverseComp returns the reverse complement of seq.
func ReverseComp(seq string) string {
	var out []byte
	ReverseComp8(&out, gunsafe.StringToBytes(seq))
	return gunsafe.BytesToString(out)
}
