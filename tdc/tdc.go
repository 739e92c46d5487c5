// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tdc implements a cycle-accurate behavioral model of the sbit
// fine-timing pipeline: delay-line digitization, edge localization,
// one-hot decode, clock-domain crossing, integral-nonlinearity
// calibration and per-channel arrival tracking.
//
// Components advance on explicit clock edges. A component's Tick method
// models one edge of its clock: it samples this cycle's inputs, loads
// its registers and returns the values that were visible on its output
// wires during the current cycle. Chaining Tick calls in pipeline order
// therefore reproduces the register-to-register latencies of the
// hardware.
//
// Two clock domains drive the model: a fast clock (digitization and
// decode) and a slow clock (coarse reference, calibration control,
// sbit tracking), with a fixed 8:1 phase-aligned ratio.
package tdc // import "github.com/go-lpc/sbit/tdc"

const (
	// NumTaps is the number of delay-line taps per channel.
	NumTaps = 256

	// NumChannels is the number of replicated TDC channels.
	NumChannels = 24

	// FineBins is the size of the fine-time code space: the sum of two
	// tap indices, each in [0,256).
	FineBins = 512

	// FastPerSlow is the fixed fast:slow clock ratio.
	FastPerSlow = 8

	// CalibEvents is the number of events accumulated in one
	// calibration histogram. Together with FineBins it is a design
	// constant of the correction table, not a run-time knob.
	CalibEvents = 25000

	lutShift = 3     // normalizes the 25k-sample, 3.125ns design point
	timeMask = 0xfff // LUT entries are 12 bits
	histMax  = 1<<15 - 1
)
