// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import "testing"

func TestCoarse(t *testing.T) {
	var c Coarse

	// in reset the counter holds at zero
	c.TickSlow(true)
	for i := 0; i < FastPerSlow; i++ {
		if got := c.Value(); got != 0 {
			t.Fatalf("cycle %d: counter moved during reset: %d", i, got)
		}
		c.TickFast()
	}

	// in normal operation it free-runs and wraps
	c.TickSlow(false)
	for i := 0; i < 4*FastPerSlow; i++ {
		if got, want := c.Value(), uint8(i%FastPerSlow); got != want {
			t.Fatalf("cycle %d: invalid count: got=%d, want=%d", i, got, want)
		}
		c.TickFast()
	}

	// a new reset condition clears it again
	c.TickSlow(true)
	if got := c.Value(); got != 0 {
		t.Fatalf("counter not cleared on reset: %d", got)
	}
}
