// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc16 implements the CRC-16/XMODEM checksum used to protect
// sbit event-record streams.
package crc16 // import "github.com/go-lpc/sbit/internal/crc16"

import "hash"

const (
	// Poly is the generator polynomial of CRC-16/XMODEM, MSB-first.
	Poly = 0x1021

	// Size of a CRC-16 checksum in bytes.
	Size = 2
)

// Table is a 256-entry lookup table for a CRC-16 polynomial.
type Table [256]uint16

// MakeTable returns a Table built from the given polynomial.
func MakeTable(poly uint16) *Table {
	var tab Table
	for i := range tab {
		crc := uint16(i) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		tab[i] = crc
	}
	return &tab
}

var xmodem = MakeTable(Poly)

// Hash16 is the common interface implemented by 16-bit hash functions.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

// New creates a new Hash16 computing the CRC-16 checksum using the
// polynomial represented by tab. A nil tab selects CRC-16/XMODEM.
func New(tab *Table) Hash16 {
	if tab == nil {
		tab = xmodem
	}
	return &digest{tab: tab}
}

type digest struct {
	crc uint16
	tab *Table
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return 1 }
func (d *digest) Reset()         { d.crc = 0 }

func (d *digest) Write(p []byte) (int, error) {
	crc := d.crc
	for _, v := range p {
		crc = crc<<8 ^ d.tab[byte(crc>>8)^v]
	}
	d.crc = crc
	return len(p), nil
}

func (d *digest) Sum16() uint16 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s>>8), byte(s))
}

// Checksum returns the CRC-16 checksum of data using the polynomial
// represented by tab.
func Checksum(data []byte, tab *Table) uint16 {
	d := digest{tab: tab}
	_, _ = d.Write(data)
	return d.Sum16()
}
