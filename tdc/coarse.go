// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

// Coarse is the free-running coarse counter: it counts fast-clock
// cycles modulo FastPerSlow, aligned to the slow clock's rising edge,
// giving the fast sub-phase a sample falls in.
//
// The counter has two states, switching on the slow edge from an
// externally sampled reset condition: in reset it holds at zero, in
// normal operation it free-runs and wraps.
type Coarse struct {
	running bool
	cnt     uint8
}

// TickSlow performs one slow-clock edge, sampling the reset condition.
func (c *Coarse) TickSlow(reset bool) {
	if reset {
		c.running = false
		c.cnt = 0
		return
	}
	c.running = true
}

// TickFast performs one fast-clock edge.
func (c *Coarse) TickFast() {
	if c.running {
		c.cnt = (c.cnt + 1) & (FastPerSlow - 1)
	}
}

// Value returns the number of fast cycles elapsed (mod FastPerSlow)
// since the last slow-clock edge.
func (c *Coarse) Value() uint8 { return c.cnt }
