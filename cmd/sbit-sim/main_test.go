// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-lpc/sbit/packet"
	"github.com/go-lpc/sbit/tdc"
)

func TestRun(t *testing.T) {
	odir := t.TempDir()
	err := run(64, 8, 1234, false, odir)
	if err != nil {
		t.Fatalf("could not run simulation: %+v", err)
	}

	recs := 0
	for ch := 0; ch < tdc.NumChannels; ch++ {
		fname := filepath.Join(odir, fmt.Sprintf("sbit-ch%02d.raw", ch))
		f, err := os.Open(fname)
		if err != nil {
			t.Fatalf("could not open output file %q: %+v", fname, err)
		}
		dec := packet.NewDecoder(f)
		for {
			var pkt packet.Packet
			err := dec.Decode(&pkt)
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				t.Fatalf("could not decode record (ch=%d): %+v", ch, err)
			}
			if !pkt.ArrValid {
				t.Fatalf("invalid arrival flag (ch=%d): got=%v, want=true", ch, pkt.ArrValid)
			}
			recs++
		}
		f.Close()
	}

	if got, want := recs, 8; got != want {
		t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
	}
}

func TestRunErrors(t *testing.T) {
	if err := run(1, 0, 1, false, "/no/such/dir"); err == nil {
		t.Fatalf("expected an error for a missing output directory")
	}
}
