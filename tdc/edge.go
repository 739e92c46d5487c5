// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import "github.com/go-lpc/sbit/internal/bitvec"

// EdgeMap holds the rising and falling transition bitmaps extracted
// from a tap snapshot. For a clean single pulse at most one bit is set
// per map; multiple set bits are not an error and are OR-combined by
// the decoder downstream.
type EdgeMap struct {
	Rising  bitvec.Vec
	Falling bitvec.Vec
}

// localize extracts the transition bitmaps of a tap snapshot.
//
// A rising edge is declared at i when the four taps starting at i are
// set and the tap immediately before i is clear; a falling edge is the
// mirror image. Windows extending past either end of the line are
// zero-padded (the shifts below pad for free). Requiring four
// consecutive set taps keeps isolated noise bits from being declared
// as transitions.
func localize(taps bitvec.Vec) EdgeMap {
	return EdgeMap{
		Rising: taps.Lsh(1).Not().And(taps).
			And(taps.Rsh(1)).And(taps.Rsh(2)).And(taps.Rsh(3)),
		Falling: taps.Rsh(1).Not().And(taps).
			And(taps.Lsh(1)).And(taps.Lsh(2)).And(taps.Lsh(3)),
	}
}

// Localizer registers the edge bitmaps one fast cycle after the input
// snapshot.
type Localizer struct {
	out EdgeMap
}

// Tick performs one fast-clock edge.
func (loc *Localizer) Tick(taps bitvec.Vec) EdgeMap {
	out := loc.out
	loc.out = localize(taps)
	return out
}

// Reset clears the registered bitmaps.
func (loc *Localizer) Reset() {
	loc.out = EdgeMap{}
}
