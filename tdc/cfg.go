// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import "github.com/go-lpc/sbit/internal/bitvec"

// Option configures a Device.
type Option func(*config)

type config struct {
	chanMask uint32     // set bit: channel output disabled
	winMask  bitvec.Vec // arrival acceptance window
	extra    int        // tracker pipe latency
	seed     uint32     // pulse-generator seed
	noise    bool       // tap noise on the delay lines
}

func newConfig() *config {
	return &config{
		winMask: bitvec.Run(0, bitvec.N-1),
		seed:    1,
	}
}

// WithChannelMask masks channels out of packet production: a set bit
// disables the corresponding channel's output port.
func WithChannelMask(mask uint32) Option {
	return func(cfg *config) {
		cfg.chanMask = mask
	}
}

// WithWindowMask sets the arrival trackers' acceptance window.
func WithWindowMask(mask bitvec.Vec) Option {
	return func(cfg *config) {
		cfg.winMask = mask
	}
}

// WithTrackerLatency inserts extra pipe stages in front of the arrival
// trackers, to line their timing up with the calibration path.
func WithTrackerLatency(n int) Option {
	return func(cfg *config) {
		cfg.extra = n
	}
}

// WithSeed seeds the calibration pulse generator (and the optional
// tap-noise sources).
func WithSeed(seed uint32) Option {
	return func(cfg *config) {
		cfg.seed = seed
	}
}

// WithNoise enables bounded tap noise on the delay lines.
func WithNoise(on bool) Option {
	return func(cfg *config) {
		cfg.noise = on
	}
}
