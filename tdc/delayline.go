// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"math/rand"

	"github.com/go-lpc/sbit/internal/bitvec"
)

// Frame is the per-fast-cycle output of the delay line: the digitized
// tap snapshot and its one-cycle validity pulse.
type Frame struct {
	Taps  bitvec.Vec
	Valid bool
}

const (
	dlWidth = 32 // launched pulse width, in taps
	dlSpeed = 64 // taps traversed per fast cycle
)

// DelayLine is a behavioral model of the tapped delay line and its
// snapshot register.
//
// A trigger edge on the hit input is resampled through a two-stage
// synchronizer. Once accepted, the launched pulse propagates along the
// line: each fast cycle the snapshot shows a monotone run of set taps
// whose leading edge advances until it saturates at the captured
// position. When the run is fully formed the validity output pulses
// for exactly one cycle. Further trigger edges are ignored until the
// measurement has been delivered and the (synchronized) hit input has
// returned low.
//
// The hit phase is the sub-cycle arrival time in half-tap units,
// in [0, FineBins): the sum of the leading and trailing edge taps of
// the formed run equals the phase, up to saturation at the ends of
// the line.
type DelayLine struct {
	width int
	speed int
	rng   *rand.Rand // optional tap-noise source

	sync  [2]bool // hit synchronizer
	phase int     // captured on the raw hit edge
	busy  bool
	done  bool // validity delivered
	age   int  // fast cycles since acceptance
	lead  int  // saturated leading-edge tap
	trail int  // saturated trailing-edge tap

	out Frame
}

// NewDelayLine returns a delay line with the default pulse width and
// propagation speed.
func NewDelayLine() *DelayLine {
	return &DelayLine{width: dlWidth, speed: dlSpeed}
}

// SetNoise enables bounded tap noise drawn from rng: isolated stray
// taps, kept clear of the run transitions so the edge localizer
// absorbs them. A nil rng disables noise.
func (dl *DelayLine) SetNoise(rng *rand.Rand) {
	dl.rng = rng
}

// edges maps a hit phase to the saturated (trail, lead) tap pair of
// the formed run: trail+lead == phase unless clamped by the line ends.
func edges(phase, width int) (trail, lead int) {
	lead = (phase + width - 1) / 2
	if lead > bitvec.N-1 {
		lead = bitvec.N - 1
	}
	if lead > phase {
		lead = phase
	}
	trail = phase - lead
	if trail > lead {
		trail = lead
	}
	return trail, lead
}

// Tick performs one fast-clock edge.
func (dl *DelayLine) Tick(hit bool, phase int) Frame {
	out := dl.out

	// capture the phase on the raw hit edge, ahead of the synchronizer
	if hit && !dl.sync[0] {
		dl.phase = phase & (FineBins - 1)
	}
	synced := dl.sync[1]
	dl.sync[1] = dl.sync[0]
	dl.sync[0] = hit

	var next Frame
	switch {
	case dl.busy:
		dl.age++
		b := dl.age*dl.speed - 1
		var a int
		if b >= dl.lead {
			b = dl.lead
			a = dl.trail
			if !dl.done {
				next.Valid = true
				dl.done = true
			}
		} else {
			a = b - (dl.width - 1)
			if a < 0 {
				a = 0
			}
		}
		next.Taps = dl.snapshot(a, b)
		if dl.done && !synced {
			dl.busy = false
		}
	default:
		if synced {
			dl.busy = true
			dl.done = false
			dl.age = 0
			dl.trail, dl.lead = edges(dl.phase, dl.width)
		}
	}

	dl.out = next
	return out
}

func (dl *DelayLine) snapshot(a, b int) bitvec.Vec {
	v := bitvec.Run(a, b)
	if dl.rng == nil {
		return v
	}
	for n := dl.rng.Intn(3); n > 0; n-- {
		i := dl.rng.Intn(bitvec.N)
		if i >= a-5 && i <= b+5 {
			continue
		}
		v.Set(i)
	}
	return v
}

// Reset synchronously clears the measurement state.
func (dl *DelayLine) Reset() {
	dl.sync = [2]bool{}
	dl.busy = false
	dl.done = false
	dl.age = 0
	dl.out = Frame{}
}
