// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lfsr provides a 32-bit Galois linear-feedback shift register,
// used as the decorrelated pulse source during TDC calibration.
//
// The exact polynomial is not part of the calibration contract: any
// roughly uniform, decorrelated event generator does.
package lfsr // import "github.com/go-lpc/sbit/internal/lfsr"

// taps of a maximal-length 32-bit Galois LFSR (x^32 + x^22 + x^2 + x + 1).
const taps = 0x80200003

// LFSR is a 32-bit Galois linear-feedback shift register.
// The zero value is not a valid register: use New.
type LFSR struct {
	state uint32
}

// New returns a register seeded with seed. A zero seed is replaced with
// a fixed non-zero one, as the all-zero state locks the register.
func New(seed uint32) *LFSR {
	if seed == 0 {
		seed = 0xdeadcafe
	}
	return &LFSR{state: seed}
}

// Next advances the register by one step and returns the new state.
func (r *LFSR) Next() uint32 {
	lsb := r.state & 1
	r.state >>= 1
	if lsb == 1 {
		r.state ^= taps
	}
	return r.state
}

// Bit advances the register and returns its low bit.
func (r *LFSR) Bit() bool {
	return r.Next()&1 == 1
}

// Intn advances the register and returns a value in [0, n).
func (r *LFSR) Intn(n int) int {
	return int(r.Next() % uint32(n))
}
