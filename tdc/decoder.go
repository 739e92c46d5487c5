// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import "github.com/go-lpc/sbit/internal/bitvec"

// decode16 decodes a 16-bit (at most one-hot) vector into a 4-bit
// index and an any-set flag, using a fixed OR-tree rather than a
// priority encoder: with more than one bit set the index is the OR of
// the set positions, deterministic but meaningless.
func decode16(v uint16) (code uint8, any bool) {
	if v&0xaaaa != 0 {
		code |= 1
	}
	if v&0xcccc != 0 {
		code |= 2
	}
	if v&0xf0f0 != 0 {
		code |= 4
	}
	if v&0xff00 != 0 {
		code |= 8
	}
	return code, v != 0
}

// group extracts the g-th 16-bit group of a 256-bit vector.
func group(v bitvec.Vec, g int) uint16 {
	return uint16(v[g>>2] >> uint((g&3)<<4))
}

// Decoder converts a 256-bit one-hot vector into its 8-bit binary
// index with a fixed latency of three fast cycles.
//
// Stage 0 decodes the sixteen 16-bit groups into 4-bit local codes
// plus any-set flags. Stage 1 decodes the any-set flags into the high
// nibble and OR-reduces the flagged local codes into the low nibble.
// Stage 2 registers the concatenated result.
//
// The decode is correct only when the input has at most one bit set;
// otherwise the output is deterministic garbage.
type Decoder struct {
	s0    [16]uint8 // stage 0: group-local codes
	s0any uint16    // stage 0: any-set flags
	s1    uint8     // stage 1: concatenated index
	out   uint8     // stage 2: registered output
}

// Tick performs one fast-clock edge and returns the index decoded from
// the vector presented three cycles earlier.
func (dec *Decoder) Tick(in bitvec.Vec) uint8 {
	out := dec.out

	// stage 2
	dec.out = dec.s1

	// stage 1
	hi, _ := decode16(dec.s0any)
	var lo uint8
	for g := 0; g < 16; g++ {
		if dec.s0any>>uint(g)&1 == 1 {
			lo |= dec.s0[g]
		}
	}
	dec.s1 = hi<<4 | lo

	// stage 0
	dec.s0any = 0
	for g := 0; g < 16; g++ {
		code, any := decode16(group(in, g))
		dec.s0[g] = code
		if any {
			dec.s0any |= 1 << uint(g)
		}
	}

	return out
}

// Reset clears all pipeline registers.
func (dec *Decoder) Reset() {
	*dec = Decoder{}
}

// priorityIndex performs the 256-to-9 priority search used by the
// arrival tracker: lowest set index wins.
func priorityIndex(v bitvec.Vec) (idx uint8, ok bool) {
	i, ok := v.First()
	return uint8(i), ok
}
