// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitvec provides a fixed-size 256-bit vector, the natural width
// of a delay-line tap snapshot.
package bitvec // import "github.com/go-lpc/sbit/internal/bitvec"

import "math/bits"

// N is the number of bits in a Vec.
const N = 256

// Vec is a 256-bit vector. Bit 0 is the least significant bit of word 0.
type Vec [4]uint64

// Run returns a vector with bits [beg, end] set.
// Run panics if the interval is not contained in [0, N).
func Run(beg, end int) Vec {
	if beg < 0 || end >= N || beg > end {
		panic("bitvec: invalid run interval")
	}
	var v Vec
	for i := beg; i <= end; i++ {
		v.Set(i)
	}
	return v
}

// Set sets bit i.
func (v *Vec) Set(i int) {
	v[i>>6] |= 1 << uint(i&63)
}

// Clear clears bit i.
func (v *Vec) Clear(i int) {
	v[i>>6] &^= 1 << uint(i&63)
}

// Flip inverts bit i.
func (v *Vec) Flip(i int) {
	v[i>>6] ^= 1 << uint(i&63)
}

// Get reports whether bit i is set.
func (v Vec) Get(i int) bool {
	return v[i>>6]>>uint(i&63)&1 == 1
}

// And returns the bitwise AND of v and o.
func (v Vec) And(o Vec) Vec {
	return Vec{v[0] & o[0], v[1] & o[1], v[2] & o[2], v[3] & o[3]}
}

// Any reports whether any bit is set.
func (v Vec) Any() bool {
	return v[0]|v[1]|v[2]|v[3] != 0
}

// Count returns the number of set bits.
func (v Vec) Count() int {
	return bits.OnesCount64(v[0]) + bits.OnesCount64(v[1]) +
		bits.OnesCount64(v[2]) + bits.OnesCount64(v[3])
}

// Reverse returns v with the bit order reversed: bit i of the result is
// bit N-1-i of v.
func (v Vec) Reverse() Vec {
	return Vec{
		bits.Reverse64(v[3]),
		bits.Reverse64(v[2]),
		bits.Reverse64(v[1]),
		bits.Reverse64(v[0]),
	}
}

// Not returns the bitwise complement of v.
func (v Vec) Not() Vec {
	return Vec{^v[0], ^v[1], ^v[2], ^v[3]}
}

// Rsh returns v shifted toward lower indices by k bits, k in [0, 64).
// Bits shifted below index 0 are discarded.
func (v Vec) Rsh(k uint) Vec {
	if k == 0 {
		return v
	}
	var o Vec
	for i := range v {
		o[i] = v[i] >> k
		if i+1 < len(v) {
			o[i] |= v[i+1] << (64 - k)
		}
	}
	return o
}

// Lsh returns v shifted toward higher indices by k bits, k in [0, 64).
// Bits shifted past index N-1 are discarded.
func (v Vec) Lsh(k uint) Vec {
	if k == 0 {
		return v
	}
	var o Vec
	for i := range v {
		o[i] = v[i] << k
		if i > 0 {
			o[i] |= v[i-1] >> (64 - k)
		}
	}
	return o
}

// First returns the index of the lowest set bit.
// ok is false when no bit is set.
func (v Vec) First() (i int, ok bool) {
	for w := 0; w < len(v); w++ {
		if v[w] != 0 {
			return w<<6 + bits.TrailingZeros64(v[w]), true
		}
	}
	return 0, false
}
