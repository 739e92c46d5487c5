// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packet defines the fixed 32-bit sbit event record and its
// stream codec.
package packet // import "github.com/go-lpc/sbit/packet"

// Packet is one sbit event record.
//
// Wire layout of the 32-bit word, MSB first:
//
//	[31:24] reserved
//	[23]    arrival-valid
//	[22:15] arrival-position
//	[14:12] coarse count
//	[11:0]  calibrated time
type Packet struct {
	Reserved uint8
	ArrValid bool
	ArrPos   uint8
	Coarse   uint8  // 3 bits
	Time     uint16 // 12 bits
}

// Word packs p into its 32-bit wire representation.
func (p Packet) Word() uint32 {
	w := uint32(p.Reserved) << 24
	if p.ArrValid {
		w |= 1 << 23
	}
	w |= uint32(p.ArrPos) << 15
	w |= uint32(p.Coarse&0x7) << 12
	w |= uint32(p.Time & 0xfff)
	return w
}

// FromWord unpacks a 32-bit wire word into a Packet.
func FromWord(w uint32) Packet {
	return Packet{
		Reserved: uint8(w >> 24),
		ArrValid: w>>23&1 == 1,
		ArrPos:   uint8(w >> 15),
		Coarse:   uint8(w >> 12 & 0x7),
		Time:     uint16(w & 0xfff),
	}
}
