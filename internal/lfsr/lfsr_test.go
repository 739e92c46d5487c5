// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lfsr

import "testing"

func TestLFSR(t *testing.T) {
	r := New(0x12345678)
	seen := make(map[uint32]bool)
	for i := 0; i < 100000; i++ {
		v := r.Next()
		if v == 0 {
			t.Fatalf("register locked at zero after %d steps", i)
		}
		if seen[v] {
			t.Fatalf("state 0x%08x repeated after %d steps", v, i)
		}
		seen[v] = true
	}
}

func TestZeroSeed(t *testing.T) {
	r := New(0)
	if got := r.Next(); got == 0 {
		t.Fatalf("zero seed not remapped")
	}
}

func TestIntn(t *testing.T) {
	var (
		r    = New(1)
		hist [512]int
	)
	const n = 1 << 16
	for i := 0; i < n; i++ {
		v := r.Intn(512)
		if v < 0 || v >= 512 {
			t.Fatalf("value out of range: %d", v)
		}
		hist[v]++
	}
	// roughly uniform: every bucket within 4x of the mean.
	mean := n / 512
	for i, cnt := range hist {
		if cnt > 4*mean {
			t.Fatalf("bucket %d overpopulated: %d (mean=%d)", i, cnt, mean)
		}
	}
}
