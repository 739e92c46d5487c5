// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/go-lpc/sbit/internal/bitvec"
	"github.com/go-lpc/sbit/internal/lfsr"
	"github.com/go-lpc/sbit/packet"
)

// fast cycles between the slow-edge reset sample and the fast-domain
// pipeline reset
const rstLatency = 2

// slow cycles between calibration pulses, enough to let a full
// measurement drain through the delay line, the decode pipeline and
// the clock-domain bridge before the next one
const pulseGap = 3

type chanUnit struct {
	ch     *Channel
	bridge *Bridge
	eng    *Engine
	trk    *Tracker
	port   Port

	coarse uint8 // bridge coarse, delayed to match the engine latency
	need   bool  // engine wants pulser data
	gap    int   // slow cycles until the pulser may fire again
	inj    bool  // hit scheduled for the next fast cycle 0
	phase  int
}

// Device replicates the TDC channel pipeline NumChannels times and
// schedules the two clock domains in lockstep: each Step runs
// FastPerSlow fast-clock edges followed by the coincident slow-clock
// edge.
//
// The device owns the coarse counter, the reset synchronizer, the
// pseudo-random calibration pulse generator, the per-channel output
// ports and the packet assembly. A global reset, sampled on the slow
// edge and pipelined to the fast-domain consumers, re-initializes
// everything except the calibration tables.
type Device struct {
	msg *log.Logger
	cfg *config
	rng *lfsr.LFSR

	coarse Coarse
	units  [NumChannels]*chanUnit

	rstReq  bool
	calReq  bool
	rstPipe int // fast cycles until the fast domain resets

	resetting   bool
	calibrating bool
	calStart    uint64

	cycle uint64 // slow cycles elapsed
}

// New creates a TDC device.
func New(opts ...Option) *Device {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	dev := &Device{
		msg: log.New(os.Stdout, "sbit: ", 0),
		cfg: cfg,
		rng: lfsr.New(cfg.seed),
	}
	for i := range dev.units {
		unit := &chanUnit{
			ch:     NewChannel(),
			bridge: NewBridge(),
			eng:    NewEngine(),
			trk:    NewTracker(cfg.extra),
		}
		unit.trk.SetWindowMask(cfg.winMask)
		if cfg.noise {
			unit.ch.DelayLine().SetNoise(rand.New(rand.NewSource(int64(cfg.seed) + int64(i))))
		}
		dev.units[i] = unit
	}
	return dev
}

// Reset requests a global reset, sampled on the next slow edge.
func (dev *Device) Reset() {
	dev.rstReq = true
}

// Calibrate requests a calibration run on all channels, sampled on the
// next slow edge.
func (dev *Device) Calibrate() {
	dev.calReq = true
}

// Resetting reports whether the global reset is being applied.
func (dev *Device) Resetting() bool { return dev.resetting }

// Calibrating reports whether any channel's calibration is in flight.
func (dev *Device) Calibrating() bool { return dev.calibrating }

// Cycle returns the number of slow cycles elapsed.
func (dev *Device) Cycle() uint64 { return dev.cycle }

// Inject schedules a one-fast-cycle hit with the given sub-cycle
// phase on channel ch, applied on fast cycle 0 of the next Step.
func (dev *Device) Inject(ch, phase int) error {
	if ch < 0 || ch >= NumChannels {
		return fmt.Errorf("tdc: invalid channel %d", ch)
	}
	if phase < 0 || phase >= FineBins {
		return fmt.Errorf("tdc: invalid hit phase %d", phase)
	}
	unit := dev.units[ch]
	unit.inj = true
	unit.phase = phase
	return nil
}

// Port returns channel ch's event-record output port.
func (dev *Device) Port(ch int) *Port { return &dev.units[ch].port }

// Calib returns channel ch's calibration engine, for the table-peek
// interface, table load and histogram monitoring.
func (dev *Device) Calib(ch int) *Engine { return dev.units[ch].eng }

// SetWindowMask replaces the arrival acceptance window on all
// channels.
func (dev *Device) SetWindowMask(mask bitvec.Vec) {
	dev.cfg.winMask = mask
	for _, unit := range dev.units {
		unit.trk.SetWindowMask(mask)
	}
}

// SetChannelMask replaces the per-channel output mask: a set bit
// disables the corresponding channel's packet production.
func (dev *Device) SetChannelMask(mask uint32) {
	dev.cfg.chanMask = mask
}

// Step advances the device by one slow period.
func (dev *Device) Step() {
	// fast domain
	for f := 0; f < FastPerSlow; f++ {
		if dev.rstPipe > 0 {
			dev.rstPipe--
			if dev.rstPipe == 0 {
				for _, unit := range dev.units {
					unit.ch.Reset()
				}
			}
		}
		for _, unit := range dev.units {
			var (
				hit   bool
				phase int
			)
			if f == 0 && unit.inj {
				hit, phase = true, unit.phase
				unit.inj = false
			}
			out := unit.ch.Tick(hit, phase)
			unit.bridge.TickFast(out.Fine, dev.coarse.Value(), out.Valid)
		}
		dev.coarse.TickFast()
	}

	// slow domain
	rst := dev.rstReq
	dev.rstReq = false
	dev.coarse.TickSlow(rst)
	if rst {
		for _, unit := range dev.units {
			unit.bridge.Reset()
			unit.eng.Reset()
			unit.trk.Reset()
			unit.port.reset()
			unit.coarse = 0
			unit.need = false
			unit.gap = 0
			unit.inj = false
		}
		dev.rstPipe = rstLatency
		dev.resetting = true
		dev.calibrating = false
		dev.cycle++
		return
	}
	dev.resetting = false

	req := dev.calReq
	dev.calReq = false
	if req && !dev.calibrating {
		dev.calStart = dev.cycle
		dev.msg.Printf("calibration started (cycle=%d)", dev.cycle)
	}

	busy := false
	for i, unit := range dev.units {
		bout := unit.bridge.TickSlow()
		cout := unit.eng.Tick(CalibIn{Request: req, Fine: bout.Fine, Valid: bout.Valid})
		arr := unit.trk.TickSlow(bout.Valid)
		unit.need = cout.NeedData
		if unit.eng.State() != CalibIdle {
			busy = true
		}

		if cout.Valid && dev.cfg.chanMask>>uint(i)&1 == 0 {
			unit.port.push(packet.Packet{
				ArrValid: arr.Valid,
				ArrPos:   arr.Pos,
				Coarse:   unit.coarse,
				Time:     cout.Time,
			})
		}
		unit.coarse = bout.Coarse

		if unit.gap > 0 {
			unit.gap--
		}
		if unit.need && unit.gap == 0 {
			unit.inj = true
			unit.phase = dev.rng.Intn(FineBins)
			unit.gap = pulseGap
		}
	}
	if dev.calibrating && !busy {
		dev.msg.Printf("calibration done (%d slow cycles)", dev.cycle-dev.calStart)
	}
	dev.calibrating = busy
	dev.cycle++
}

// Run advances the device by n slow periods.
func (dev *Device) Run(n int) {
	for i := 0; i < n; i++ {
		dev.Step()
	}
}

// RunDAQ advances the device by n slow periods, streaming each
// channel's event records to the matching sink. A negative n runs
// until ctx is canceled.
func (dev *Device) RunDAQ(ctx context.Context, n int, sinks []io.Writer) error {
	if len(sinks) != NumChannels {
		return fmt.Errorf("tdc: invalid number of sinks: got=%d, want=%d",
			len(sinks), NumChannels,
		)
	}

	grp, ctx := errgroup.WithContext(ctx)
	outs := make([]chan packet.Packet, NumChannels)
	for i := range outs {
		i := i
		outs[i] = make(chan packet.Packet, 128)
		grp.Go(func() error {
			enc := packet.NewEncoder(sinks[i])
			for pkt := range outs[i] {
				pkt := pkt
				if err := enc.Encode(&pkt); err != nil {
					return fmt.Errorf("tdc: could not encode record (ch=%d): %w", i, err)
				}
			}
			return nil
		})
	}
	grp.Go(func() error {
		defer func() {
			for _, out := range outs {
				close(out)
			}
		}()
		for i := 0; n < 0 || i < n; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			dev.Step()
			for ch, unit := range dev.units {
				for unit.port.Len() > 0 {
					pkt, _ := unit.port.Read()
					select {
					case outs[ch] <- pkt:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		}
		return nil
	})
	return grp.Wait()
}
