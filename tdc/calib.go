// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
)

// CalibState enumerates the states of the calibration engine.
type CalibState uint8

const (
	CalibIdle CalibState = iota
	CalibClear
	CalibAcquire
	CalibUpdateHist
	CalibUpdateLUT
	CalibFlush
)

func (st CalibState) String() string {
	switch st {
	case CalibIdle:
		return "idle"
	case CalibClear:
		return "clear"
	case CalibAcquire:
		return "acquire"
	case CalibUpdateHist:
		return "update-hist"
	case CalibUpdateLUT:
		return "update-lut"
	case CalibFlush:
		return "flush"
	}
	return fmt.Sprintf("CalibState(%d)", uint8(st))
}

// CalibIn is the slow-domain input of the calibration engine.
type CalibIn struct {
	Request bool // start a calibration run
	Fine    uint16
	Valid   bool
}

// CalibOut is the slow-domain output of the calibration engine.
type CalibOut struct {
	Time     uint16 // corrected time code, 12 bits
	Valid    bool
	Done     bool // level: no calibration in flight, from power-up on
	NeedData bool // engine wants pulser samples
}

// Engine builds and applies the code-density calibration of one TDC
// channel.
//
// Out of calibration the engine passes samples through the correction
// table: a valid input code yields the table entry for that code, one
// slow cycle later. A calibration request walks the engine through
// clearing the code histogram (one bin per cycle), accumulating at
// least CalibEvents pulser samples (one acquire cycle and one
// histogram-update cycle per sample, NeedData asserted throughout),
// then integrating the histogram into the table: each entry is the
// running bin sum, scaled down by lutShift and truncated to 12 bits.
// The table write trails the accumulation by one address, so a last
// flush cycle drains the final entry before the return to idle.
//
// Done is a level, asserted whenever the engine sits idle (power-up
// included) and dropped for the duration of a run. An unrecognized
// internal state falls back to idle, so the engine always makes
// forward progress.
//
// The table survives Reset; only a new calibration run or LoadLUT
// rewrites it.
type Engine struct {
	state  CalibState
	hist   [FineBins]uint16
	lut    [FineBins]uint16
	addr   int
	sum    uint32
	events int
	fine   uint16 // sample latched for the histogram update
	peek   int    // auto-incrementing table-peek address

	out CalibOut
}

// NewEngine returns an idle engine with a zero correction table.
func NewEngine() *Engine { return &Engine{out: CalibOut{Done: true}} }

// State returns the current calibration state.
func (eng *Engine) State() CalibState { return eng.state }

// Tick performs one slow-clock edge.
func (eng *Engine) Tick(in CalibIn) CalibOut {
	out := eng.out

	var next CalibOut
	switch eng.state {
	case CalibIdle:
		next.Done = true
		if in.Valid {
			next.Time = eng.lut[in.Fine&(FineBins-1)] & timeMask
			next.Valid = true
		}
		if in.Request {
			eng.state = CalibClear
			eng.addr = 0
			eng.events = 0
			next.Done = false
		}
	case CalibClear:
		next.NeedData = true
		eng.hist[eng.addr] = 0
		eng.addr++
		if eng.addr == FineBins {
			eng.addr = 0
			eng.state = CalibAcquire
		}
	case CalibAcquire:
		next.NeedData = true
		if in.Valid {
			eng.fine = in.Fine & (FineBins - 1)
			eng.state = CalibUpdateHist
		}
	case CalibUpdateHist:
		next.NeedData = true
		if eng.hist[eng.fine] < histMax {
			eng.hist[eng.fine]++
		}
		eng.events++
		switch {
		case eng.events >= CalibEvents:
			eng.addr = 0
			eng.sum = 0
			eng.state = CalibUpdateLUT
		default:
			eng.state = CalibAcquire
		}
	case CalibUpdateLUT:
		// the write trails the running sum by one address
		if eng.addr > 0 {
			eng.lut[eng.addr-1] = uint16(eng.sum>>lutShift) & timeMask
		}
		eng.sum += uint32(eng.hist[eng.addr])
		switch eng.addr {
		case FineBins - 1:
			eng.state = CalibFlush
		default:
			eng.addr++
		}
	case CalibFlush:
		eng.lut[FineBins-1] = uint16(eng.sum>>lutShift) & timeMask
		next.Done = true
		eng.state = CalibIdle
	default:
		eng.state = CalibIdle
	}

	eng.out = next
	return out
}

// LUTPeek reads the correction-table entry at the current peek
// address, then advances the address (wrapping at the table end).
// The read port is not interlocked with the calibration engine:
// during a table update it may observe a mix of old and new entries.
func (eng *Engine) LUTPeek() uint16 {
	v := eng.lut[eng.peek]
	eng.peek = (eng.peek + 1) & (FineBins - 1)
	return v
}

// SetLUTAddr rewinds the table-peek address.
func (eng *Engine) SetLUTAddr(addr int) {
	eng.peek = addr & (FineBins - 1)
}

// LUT returns a snapshot copy of the correction table.
func (eng *Engine) LUT() []uint16 {
	tbl := make([]uint16, FineBins)
	copy(tbl, eng.lut[:])
	return tbl
}

// LoadLUT overwrites the correction table, e.g. with entries archived
// in the conditions database.
func (eng *Engine) LoadLUT(tbl []uint16) error {
	if len(tbl) != FineBins {
		return fmt.Errorf("tdc: invalid LUT size %d (want %d)", len(tbl), FineBins)
	}
	for i, v := range tbl {
		eng.lut[i] = v & timeMask
	}
	return nil
}

// Histogram returns the code-density histogram of the last (or
// ongoing) calibration run.
func (eng *Engine) Histogram() *hbook.H1D {
	h := hbook.NewH1D(FineBins, 0, FineBins)
	for i, n := range eng.hist {
		h.Fill(float64(i)+0.5, float64(n))
	}
	return h
}

// Reset synchronously aborts any ongoing calibration and returns the
// engine to idle. The correction table is preserved.
func (eng *Engine) Reset() {
	eng.state = CalibIdle
	eng.addr = 0
	eng.sum = 0
	eng.events = 0
	eng.peek = 0
	eng.out = CalibOut{Done: true}
}
