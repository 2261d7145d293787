// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular

import "strings"

// Wrap maps pos, which may be negative or >= n, onto [0, n).  n must be
// positive.
func Wrap(pos, n int) int {
	pos %= n
	if pos < 0 {
		pos += n
	}
	return pos
}

// Rotate returns seq rotated left by k, so that seq[Wrap(k, len(seq))]
// becomes the first base.  Rotating by k and then by len(seq)-k reproduces
// seq.
func Rotate(seq string, k int) string {
	if len(seq) == 0 {
		return seq
	}
	k = Wrap(k, len(seq))
	if k == 0 {
		return seq
	}
	var sb strings.Builder
	sb.Grow(len(seq))
	sb.WriteString(seq[k:])
	sb.WriteString(seq[:k])
	return sb.String()
}

// Window returns the n bases of seq starting at start, continuing past the
// end of seq at its beginning.  n may exceed len(seq).
func Window(seq string, start, n int) string {
	if len(seq) == 0 || n <= 0 {
		return ""
	}
	start = Wrap(start, len(seq))
	if start+n <= len(seq) {
		return seq[start : start+n]
	}
	var sb strings.Builder
	sb.Grow(n)
	for n > 0 {
		chunk := len(seq) - start
		if chunk > n {
			chunk = n
		}
		sb.WriteString(seq[start : start+chunk])
		n -= chunk
		start = 0
	}
	return sb.String()
}

// Extend returns seq followed by its first n bases (read circularly), so that
// every length-(n+1) window of the circular sequence appears in the result.
func Extend(seq string, n int) string {
	if n <= 0 {
		return seq
	}
	return Window(seq, 0, len(seq)+n)
}
