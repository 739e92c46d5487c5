// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sbit-svc serves a TDC device over the sbit-ctl JSON
// protocol.
package main // import "github.com/go-lpc/sbit/cmd/sbit-svc"

import (
	"flag"
	"log"

	"github.com/go-lpc/sbit/tdc"
)

func main() {
	var (
		addr = flag.String("addr", ":8877", "sbit-ctl [addr]:port")
		odir = flag.String("o", "/home/root/run", "output dir")

		seed  = flag.Int64("seed", 1234, "calibration pulser seed")
		noise = flag.Bool("noise", false, "enable delay-line noise injection")
	)

	log.SetPrefix("sbit-svc: ")
	log.SetFlags(0)

	flag.Parse()

	opts := []tdc.Option{tdc.WithSeed(uint32(*seed))}
	if *noise {
		opts = append(opts, tdc.WithNoise(true))
	}

	err := tdc.Serve(*addr, *odir, opts...)
	if err != nil {
		log.Fatalf("could not create sbit-svc service: %+v", err)
	}
}
