// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides coordinate helpers for circular sequences, where
// position len(seq) is position 0 again.
package circular
