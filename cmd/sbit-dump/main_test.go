// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-lpc/sbit/packet"
)

func TestProcess(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sbit.raw")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("could not create data file: %+v", err)
	}
	enc := packet.NewEncoder(f)
	for _, pkt := range []packet.Packet{
		{ArrValid: true, ArrPos: 255, Coarse: 1, Time: 600},
		{ArrValid: true, ArrPos: 240, Coarse: 4, Time: 321},
		{Time: 42},
	} {
		pkt := pkt
		if err := enc.Encode(&pkt); err != nil {
			t.Fatalf("could not encode record: %+v", err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("could not close data file: %+v", err)
	}

	out := new(bytes.Buffer)
	if err := process(out, fname); err != nil {
		t.Fatalf("could not process file: %+v", err)
	}

	want := `pkt: time= 600 coarse=1 arrival=(255, true)
pkt: time= 321 coarse=4 arrival=(240, true)
pkt: time=  42 coarse=0 arrival=(  0, false)
`
	if got := out.String(); got != want {
		t.Fatalf("invalid output:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestProcessErrors(t *testing.T) {
	if err := process(new(bytes.Buffer), "/no/such/file.raw"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}

	fname := filepath.Join(t.TempDir(), "trunc.raw")
	if err := os.WriteFile(fname, []byte{0xB4, 0x00}, 0644); err != nil {
		t.Fatalf("could not create data file: %+v", err)
	}
	if err := process(new(bytes.Buffer), fname); err == nil {
		t.Fatalf("expected an error for a truncated file")
	}
}
