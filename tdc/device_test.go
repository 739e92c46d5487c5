// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-lpc/sbit/packet"
)

func TestDeviceInjectPacket(t *testing.T) {
	dev := New()
	if err := dev.Inject(5, 100); err != nil {
		t.Fatalf("could not inject hit: %+v", err)
	}
	dev.Run(4)

	port := dev.Port(5)
	if got, want := port.Len(), 1; got != want {
		t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
	}
	pkt, ok := port.Read()
	if !ok {
		t.Fatalf("could not read record")
	}
	want := packet.Packet{
		ArrValid: true,
		ArrPos:   255,
		Coarse:   1,
		Time:     0, // uncalibrated table
	}
	if pkt != want {
		t.Fatalf("invalid record: got=%#v, want=%#v", pkt, want)
	}

	// no cross-talk to the other channels
	for ch := 0; ch < NumChannels; ch++ {
		if ch == 5 {
			continue
		}
		if n := dev.Port(ch).Len(); n != 0 {
			t.Fatalf("channel %d: unexpected record(s): %d", ch, n)
		}
	}
}

func TestDeviceInjectErrors(t *testing.T) {
	dev := New()
	for _, tc := range []struct {
		ch, phase int
	}{
		{-1, 0},
		{NumChannels, 0},
		{0, -1},
		{0, FineBins},
	} {
		if err := dev.Inject(tc.ch, tc.phase); err == nil {
			t.Fatalf("ch=%d phase=%d: expected an error", tc.ch, tc.phase)
		}
	}
}

func TestDeviceChannelMask(t *testing.T) {
	dev := New(WithChannelMask(1 << 5))
	if err := dev.Inject(5, 100); err != nil {
		t.Fatalf("could not inject hit: %+v", err)
	}
	if err := dev.Inject(4, 100); err != nil {
		t.Fatalf("could not inject hit: %+v", err)
	}
	dev.Run(8)

	if n := dev.Port(5).Len(); n != 0 {
		t.Fatalf("masked channel emitted %d record(s)", n)
	}
	if n := dev.Port(4).Len(); n != 1 {
		t.Fatalf("invalid number of records: got=%d, want=1", n)
	}
}

func TestDevicePortUnderflow(t *testing.T) {
	dev := New()
	port := dev.Port(0)

	if _, ok := port.Read(); ok {
		t.Fatalf("read from an empty port succeeded")
	}
	if !port.Underflow() {
		t.Fatalf("underflow flag not sticky after an empty read")
	}

	if err := dev.Inject(0, 42); err != nil {
		t.Fatalf("could not inject hit: %+v", err)
	}
	dev.Run(4)
	if _, ok := port.Read(); !ok {
		t.Fatalf("could not read record")
	}
	if port.Underflow() {
		t.Fatalf("underflow flag not cleared by a successful read")
	}
}

func TestDeviceResetCalibrate(t *testing.T) {
	dev := New(WithSeed(7))

	dev.Reset()
	dev.Step()
	if !dev.Resetting() {
		t.Fatalf("resetting flag not asserted")
	}
	dev.Step()
	if dev.Resetting() {
		t.Fatalf("resetting flag did not clear")
	}

	dev.Calibrate()
	dev.Step()
	if !dev.Calibrating() {
		t.Fatalf("calibrating flag not asserted")
	}

	dev.Run(515) // clear sweep done, acquisition underway
	if !dev.Calibrating() {
		t.Fatalf("calibrating flag dropped during acquisition")
	}

	// shorten the acquisition: only a few samples left to take
	for _, unit := range dev.units {
		unit.eng.events = CalibEvents - 3
	}
	for i := 0; dev.Calibrating(); i++ {
		if i >= 5000 {
			t.Fatalf("calibration did not complete")
		}
		dev.Step()
	}
	for ch := 0; ch < NumChannels; ch++ {
		if got, want := dev.Calib(ch).State(), CalibIdle; got != want {
			t.Fatalf("channel %d: invalid state: got=%v, want=%v", ch, got, want)
		}
	}
}

func TestDeviceResetPreservesLUT(t *testing.T) {
	dev := New()
	tbl := make([]uint16, FineBins)
	for i := range tbl {
		tbl[i] = uint16(i)
	}
	require.NoError(t, dev.Calib(3).LoadLUT(tbl))

	dev.Reset()
	dev.Run(3)

	assert.Equal(t, tbl, dev.Calib(3).LUT())
}

func TestDeviceCalibratedTime(t *testing.T) {
	dev := New()
	tbl := make([]uint16, FineBins)
	for i := range tbl {
		tbl[i] = uint16(3 * i)
	}
	require.NoError(t, dev.Calib(2).LoadLUT(tbl))

	require.NoError(t, dev.Inject(2, 200))
	dev.Run(4)

	pkt, ok := dev.Port(2).Read()
	require.True(t, ok)
	assert.Equal(t, uint16(600), pkt.Time)
}

func TestDeviceRunDAQ(t *testing.T) {
	dev := New()
	require.NoError(t, dev.Inject(5, 100))

	bufs := make([]*bytes.Buffer, NumChannels)
	sinks := make([]io.Writer, NumChannels)
	for i := range sinks {
		bufs[i] = new(bytes.Buffer)
		sinks[i] = bufs[i]
	}
	require.NoError(t, dev.RunDAQ(context.Background(), 6, sinks))

	for ch, buf := range bufs {
		dec := packet.NewDecoder(buf)
		var pkts []packet.Packet
		for {
			var pkt packet.Packet
			err := dec.Decode(&pkt)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			pkts = append(pkts, pkt)
		}
		switch ch {
		case 5:
			require.Len(t, pkts, 1, "channel %d", ch)
			assert.Equal(t, uint8(1), pkts[0].Coarse)
			assert.True(t, pkts[0].ArrValid)
		default:
			require.Empty(t, pkts, "channel %d", ch)
		}
	}

	err := dev.RunDAQ(context.Background(), 1, sinks[:3])
	require.Error(t, err)
}
