// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

// BridgeOut is the slow-domain output of the clock-domain bridge.
type BridgeOut struct {
	Fine   uint16
	Coarse uint8
	Valid  bool
}

// Bridge carries a (fine, coarse) sample from the fast clock domain
// into the slow one.
//
// On a fast-domain validity pulse the sample is latched into a holding
// register and the bridge closes for a full slow period, so the hold
// is stable while it crosses. When the stretch elapses the held copy
// is re-registered toward the slow clock domain together with a fresh
// flag; the next slow edge consumes the flag and reports that
// registered copy. A new capture may then re-use the holding register
// immediately: with at least FastPerSlow fast cycles between validity
// pulses no sample is lost or duplicated, and each crosses with its
// own (fine, coarse) pair. Validity pulses arriving while the bridge
// is closed are dropped.
type Bridge struct {
	fine   uint16
	coarse uint8
	open   bool
	cnt    int // fast cycles left in the stretch

	sfine   uint16 // slow-facing copy, loaded when the stretch elapses
	scoarse uint8
	fresh   bool // registered sample not yet seen by the slow domain
}

// NewBridge returns an open bridge.
func NewBridge() *Bridge { return &Bridge{open: true} }

// TickFast performs one fast-clock edge.
func (b *Bridge) TickFast(fine uint16, coarse uint8, valid bool) {
	switch {
	case b.open:
		if valid {
			b.fine = fine
			b.coarse = coarse
			b.open = false
			b.cnt = FastPerSlow - 1
		}
	default:
		b.cnt--
		if b.cnt == 0 {
			b.open = true
			b.sfine = b.fine
			b.scoarse = b.coarse
			b.fresh = true
		}
	}
}

// TickSlow performs one slow-clock edge, consuming the fresh flag.
func (b *Bridge) TickSlow() BridgeOut {
	out := BridgeOut{Fine: b.sfine, Coarse: b.scoarse, Valid: b.fresh}
	b.fresh = false
	return out
}

// Reset synchronously re-opens the bridge and drops any pending
// sample.
func (b *Bridge) Reset() {
	*b = Bridge{open: true}
}
