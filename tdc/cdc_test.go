// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import "testing"

func TestBridgeNoLossNoDup(t *testing.T) {
	// two fast-domain events spaced >= FastPerSlow cycles apart cross
	// into the slow domain exactly once each
	type event struct {
		fine   uint16
		coarse uint8
	}
	events := map[int]event{
		3:  {fine: 100, coarse: 3},
		19: {fine: 200, coarse: 3},
	}

	b := NewBridge()
	var got []BridgeOut
	for f := 0; f < 48; f++ {
		ev, ok := events[f]
		b.TickFast(ev.fine, ev.coarse, ok)
		if f%FastPerSlow == FastPerSlow-1 {
			if out := b.TickSlow(); out.Valid {
				got = append(got, out)
			}
		}
	}

	want := []BridgeOut{
		{Fine: 100, Coarse: 3, Valid: true},
		{Fine: 200, Coarse: 3, Valid: true},
	}
	if len(got) != len(want) {
		t.Fatalf("invalid number of slow-domain samples: got=%d, want=%d", len(got), len(want))
	}
	for i, out := range got {
		if out != want[i] {
			t.Fatalf("sample %d: got=%#v, want=%#v", i, out, want[i])
		}
	}
}

func TestBridgeMinimumSpacing(t *testing.T) {
	// two events exactly FastPerSlow cycles apart: the second capture
	// lands right after the first stretch elapses and must not
	// overwrite the sample the slow domain is about to consume
	type event struct {
		fine   uint16
		coarse uint8
	}
	events := map[int]event{
		1: {fine: 111, coarse: 1},
		9: {fine: 222, coarse: 1},
	}

	b := NewBridge()
	var got []BridgeOut
	for f := 0; f < 32; f++ {
		ev, ok := events[f]
		b.TickFast(ev.fine, ev.coarse, ok)
		if f%FastPerSlow == FastPerSlow-1 {
			if out := b.TickSlow(); out.Valid {
				got = append(got, out)
			}
		}
	}

	want := []BridgeOut{
		{Fine: 111, Coarse: 1, Valid: true},
		{Fine: 222, Coarse: 1, Valid: true},
	}
	if len(got) != len(want) {
		t.Fatalf("invalid number of slow-domain samples: got=%d, want=%d", len(got), len(want))
	}
	for i, out := range got {
		if out != want[i] {
			t.Fatalf("sample %d: got=%#v, want=%#v", i, out, want[i])
		}
	}
}

func TestBridgeDropWhileClosed(t *testing.T) {
	// a second event arriving during the stretch is dropped, not mixed
	// into the held sample
	b := NewBridge()
	var got []BridgeOut
	for f := 0; f < 32; f++ {
		var (
			fine  uint16
			valid bool
		)
		switch f {
		case 3:
			fine, valid = 100, true
		case 6:
			fine, valid = 200, true
		}
		b.TickFast(fine, 0, valid)
		if f%FastPerSlow == FastPerSlow-1 {
			if out := b.TickSlow(); out.Valid {
				got = append(got, out)
			}
		}
	}
	if len(got) != 1 {
		t.Fatalf("invalid number of slow-domain samples: got=%d, want=1", len(got))
	}
	if got[0].Fine != 100 {
		t.Fatalf("invalid captured sample: got=%d, want=100", got[0].Fine)
	}
}

func TestBridgeReset(t *testing.T) {
	b := NewBridge()
	b.TickFast(100, 2, true)
	b.Reset()
	for i := 0; i < 4; i++ {
		for f := 0; f < FastPerSlow; f++ {
			b.TickFast(0, 0, false)
		}
		if out := b.TickSlow(); out.Valid {
			t.Fatalf("stale sample after reset: %#v", out)
		}
	}
}
