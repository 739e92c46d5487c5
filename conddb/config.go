// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import (
	"encoding/binary"
	"fmt"
)

// NumEntries is the number of entries of a calibration table.
const NumEntries = 512

// Config is one archived acquisition configuration of the sbit TDC.
type Config struct {
	ID       uint32
	Name     string
	Window   [4]uint64 // 256-bit arrival acceptance window, low word first
	Channels uint32    // per-channel output mask, set bit = disabled
}

// LUT is one archived per-channel calibration table.
type LUT struct {
	Config  string
	Channel uint8
	Blob    []byte // NumEntries big-endian 16-bit entries
}

// Entries decodes the archived table blob.
func (lut *LUT) Entries() ([]uint16, error) {
	if len(lut.Blob) != 2*NumEntries {
		return nil, fmt.Errorf(
			"conddb: invalid LUT blob size %d (cfg=%q, ch=%d)",
			len(lut.Blob), lut.Config, lut.Channel,
		)
	}
	tbl := make([]uint16, NumEntries)
	for i := range tbl {
		tbl[i] = binary.BigEndian.Uint16(lut.Blob[2*i:])
	}
	return tbl, nil
}

// BlobFrom encodes a calibration table into the archived blob format.
func BlobFrom(tbl []uint16) ([]byte, error) {
	if len(tbl) != NumEntries {
		return nil, fmt.Errorf("conddb: invalid LUT size %d (want %d)", len(tbl), NumEntries)
	}
	blob := make([]byte, 2*NumEntries)
	for i, v := range tbl {
		binary.BigEndian.PutUint16(blob[2*i:], v)
	}
	return blob, nil
}
