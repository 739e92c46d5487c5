// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sbit-dump decodes and displays sbit event-record files.
//
// Usage: sbit-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> sbit-dump ./sbit-run000042-ch05.raw
//	pkt: time= 600 coarse=1 arrival=(255, true)
//	pkt: time= 321 coarse=4 arrival=(240, true)
//	[...]
package main // import "github.com/go-lpc/sbit/cmd/sbit-dump"

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/sbit/packet"
)

func main() {
	log.SetPrefix("sbit-dump: ")
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Printf(`sbit-dump decodes and displays sbit event-record files.

Usage: sbit-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> sbit-dump ./sbit-run000042-ch05.raw
 pkt: time= 600 coarse=1 arrival=(255, true)
 pkt: time= 321 coarse=4 arrival=(240, true)
 [...]

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input sbit file")
	}

	for _, fname := range flag.Args() {
		err := process(os.Stdout, fname)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	dec := packet.NewDecoder(f)
loop:
	for {
		var pkt packet.Packet
		err := dec.Decode(&pkt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode record: %w", err)
		}
		fmt.Fprintf(wbuf, "pkt: time=%4d coarse=%d arrival=(%3d, %v)\n",
			pkt.Time, pkt.Coarse, pkt.ArrPos, pkt.ArrValid,
		)
	}

	return nil
}
