// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

// Output is the fast-domain output of a TDC channel: the fine-time
// code and its single-cycle validity pulse.
type Output struct {
	Fine  uint16 // rising + falling tap indices, in [0, FineBins)
	Valid bool
}

// Channel wires one delay line through the edge localizer and the two
// one-hot decoders (rising, falling) into the fine-time adder.
//
// The channel accepts the delay line's validity pulse only while
// armed, disarms on acceptance, and re-arms only once the validity
// input has returned low, so a stretched or glitching validity signal
// cannot be counted twice. Its own validity output is asserted exactly
// once, four fast cycles after acceptance, matching the localizer and
// decoder latencies.
type Channel struct {
	dl   *DelayLine
	loc  Localizer
	decR Decoder
	decF Decoder

	armed bool
	vpipe [4]bool
}

// NewChannel returns an armed channel with a default delay line.
func NewChannel() *Channel {
	return &Channel{dl: NewDelayLine(), armed: true}
}

// DelayLine gives access to the channel's delay line, e.g. to enable
// tap noise.
func (ch *Channel) DelayLine() *DelayLine { return ch.dl }

// Tick performs one fast-clock edge.
func (ch *Channel) Tick(hit bool, phase int) Output {
	frame := ch.dl.Tick(hit, phase)
	em := ch.loc.Tick(frame.Taps)
	r := ch.decR.Tick(em.Rising)
	f := ch.decF.Tick(em.Falling)

	out := Output{
		Fine:  uint16(r) + uint16(f),
		Valid: ch.vpipe[3],
	}

	accept := frame.Valid && ch.armed
	switch {
	case accept:
		ch.armed = false
	case !frame.Valid:
		ch.armed = true
	}
	ch.vpipe[3], ch.vpipe[2], ch.vpipe[1], ch.vpipe[0] =
		ch.vpipe[2], ch.vpipe[1], ch.vpipe[0], accept

	return out
}

// Reset synchronously clears the pipeline and re-arms the channel.
func (ch *Channel) Reset() {
	ch.dl.Reset()
	ch.loc.Reset()
	ch.decR.Reset()
	ch.decF.Reset()
	ch.armed = true
	ch.vpipe = [4]bool{}
}
