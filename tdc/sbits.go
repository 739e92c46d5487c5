// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import "github.com/go-lpc/sbit/internal/bitvec"

// Arrival is the slow-domain output of the arrival tracker.
type Arrival struct {
	Pos   uint8 // position in the window: 255 is newest, 0 oldest
	Valid bool
}

// Tracker records, per channel, the sbit history of the last 256 slow
// cycles and locates the earliest arrival accepted by the window mask.
//
// One OR-reduced sbit enters the history each slow cycle, optionally
// through a configurable delay pipe whose only purpose is to line the
// tracker's output timing up with the calibration path for packet
// assembly. The window is held with the newest sample at position 255
// and ages toward 0, i.e. already in the bit-reversed orientation the
// priority search wants: after masking, the lowest set position (the
// oldest accepted arrival) wins. The report is registered one cycle
// later, so an arrival injected alone shows up at position k exactly
// 256-k slow cycles after injection.
type Tracker struct {
	mask  bitvec.Vec // window mask: accept arrivals at these positions
	extra []bool     // delay pipe, newest at index 0
	win   bitvec.Vec
	out   Arrival
}

// NewTracker returns a tracker with an empty history, an all-accepting
// window mask and the given extra pipe latency.
func NewTracker(extra int) *Tracker {
	return &Tracker{
		mask:  bitvec.Run(0, bitvec.N-1),
		extra: make([]bool, extra),
	}
}

// SetWindowMask replaces the acceptance window mask.
func (trk *Tracker) SetWindowMask(mask bitvec.Vec) { trk.mask = mask }

// TickSlow performs one slow-clock edge. sbit is set when the channel
// saw an sbit this cycle.
func (trk *Tracker) TickSlow(sbit bool) Arrival {
	out := trk.out

	in := sbit
	if n := len(trk.extra); n > 0 {
		in = trk.extra[n-1]
		copy(trk.extra[1:], trk.extra[:n-1])
		trk.extra[0] = sbit
	}
	trk.win = trk.win.Rsh(1)
	if in {
		trk.win.Set(bitvec.N - 1)
	}
	idx, ok := priorityIndex(trk.win.And(trk.mask))
	trk.out = Arrival{Pos: idx, Valid: ok}

	return out
}

// Reset synchronously clears the history and the registered report.
// The window mask is configuration, not state, and is preserved.
func (trk *Tracker) Reset() {
	for i := range trk.extra {
		trk.extra[i] = false
	}
	trk.win = bitvec.Vec{}
	trk.out = Arrival{}
}
