// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sbit-sim exercises a TDC device with pseudo-random hits and writes
// the resulting event records to per-channel raw files.
package main // import "github.com/go-lpc/sbit/cmd/sbit-sim"

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/go-lpc/sbit/packet"
	"github.com/go-lpc/sbit/tdc"
)

func main() {
	log.SetPrefix("sbit-sim: ")
	log.SetFlags(0)

	var (
		n     = flag.Int("n", 10000, "number of slow cycles to run")
		rate  = flag.Int("rate", 8, "slow cycles between hits")
		seed  = flag.Int64("seed", 1234, "hit generator seed")
		noise = flag.Bool("noise", false, "enable delay-line noise injection")
		odir  = flag.String("o", ".", "output directory for raw files")
	)

	flag.Parse()

	err := run(*n, *rate, *seed, *noise, *odir)
	if err != nil {
		log.Fatalf("could not run simulation: %+v", err)
	}
}

func run(n, rate int, seed int64, noise bool, odir string) error {
	opts := []tdc.Option{tdc.WithSeed(uint32(seed))}
	if noise {
		opts = append(opts, tdc.WithNoise(true))
	}
	dev := tdc.New(opts...)
	dev.Reset()
	dev.Run(2) // let the reset drain through the fast-domain pipeline

	var (
		encs  [tdc.NumChannels]*packet.Encoder
		wbufs [tdc.NumChannels]*bufio.Writer
	)
	for ch := range encs {
		fname := filepath.Join(odir, fmt.Sprintf("sbit-ch%02d.raw", ch))
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("could not create output file %q: %w", fname, err)
		}
		defer f.Close()
		wbufs[ch] = bufio.NewWriter(f)
		encs[ch] = packet.NewEncoder(wbufs[ch])
	}

	var (
		rnd  = rand.New(rand.NewSource(seed))
		recs = 0
	)
	for i := 0; i < n; i++ {
		if rate > 0 && i%rate == 0 {
			ch := rnd.Intn(tdc.NumChannels)
			phase := 3 + rnd.Intn(tdc.FineBins-5)
			if err := dev.Inject(ch, phase); err != nil {
				return fmt.Errorf("could not inject hit: %w", err)
			}
		}
		dev.Step()
		for ch := 0; ch < tdc.NumChannels; ch++ {
			port := dev.Port(ch)
			for port.Len() > 0 {
				pkt, _ := port.Read()
				if err := encs[ch].Encode(&pkt); err != nil {
					return fmt.Errorf("could not encode record (ch=%d): %w", ch, err)
				}
				recs++
			}
		}
	}

	for ch, wbuf := range wbufs {
		if err := wbuf.Flush(); err != nil {
			return fmt.Errorf("could not flush output file (ch=%d): %w", ch, err)
		}
	}

	log.Printf("cycles:  %d", n)
	log.Printf("records: %d", recs)
	return nil
}
