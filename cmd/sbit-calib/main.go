// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sbit-calib runs the code-density calibration of a TDC device and
// displays the resulting correction table of one channel.
package main // import "github.com/go-lpc/sbit/cmd/sbit-calib"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/sbit/tdc"
)

// generous bound on the number of slow cycles a calibration run may
// take, pulser pacing included
const calibTimeout = 1000000

func main() {
	log.SetPrefix("sbit-calib: ")
	log.SetFlags(0)

	var (
		ch    = flag.Int("ch", 0, "channel whose correction table to display")
		seed  = flag.Int64("seed", 1234, "calibration pulser seed")
		noise = flag.Bool("noise", false, "enable delay-line noise injection")
		oname = flag.String("o", "", "path to output YODA file for the code-density histogram")
	)

	flag.Parse()

	if *ch < 0 || *ch >= tdc.NumChannels {
		log.Fatalf("invalid channel %d", *ch)
	}

	err := run(os.Stdout, *ch, *seed, *noise, *oname)
	if err != nil {
		log.Fatalf("could not run calibration: %+v", err)
	}
}

func run(w io.Writer, ch int, seed int64, noise bool, oname string) error {
	opts := []tdc.Option{tdc.WithSeed(uint32(seed))}
	if noise {
		opts = append(opts, tdc.WithNoise(true))
	}
	dev := tdc.New(opts...)
	dev.Reset()
	dev.Run(2)

	dev.Calibrate()
	dev.Step()
	n := 1
	for dev.Calibrating() {
		if n >= calibTimeout {
			return fmt.Errorf("calibration did not complete after %d cycles", n)
		}
		dev.Step()
		n++
	}
	log.Printf("calibration: %d slow cycles", n)

	return dump(w, dev.Calib(ch), oname)
}

func dump(w io.Writer, eng *tdc.Engine, oname string) error {
	eng.SetLUTAddr(0)
	for i := 0; i < tdc.FineBins; i++ {
		fmt.Fprintf(w, "lut[%03d]: %d\n", i, eng.LUTPeek())
	}

	if oname != "" {
		raw, err := eng.Histogram().MarshalYODA()
		if err != nil {
			return fmt.Errorf("could not marshal histogram to YODA: %w", err)
		}
		if err := os.WriteFile(oname, raw, 0644); err != nil {
			return fmt.Errorf("could not write YODA file %q: %w", oname, err)
		}
		log.Printf("histogram: %q", oname)
	}

	return nil
}
