// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import "github.com/go-lpc/sbit/packet"

const portDepth = 1024

// Port is one channel's event-record output port, a bounded FIFO with
// {data, valid, underflow-on-empty-read} semantics. When full, the
// oldest record is dropped to make room.
type Port struct {
	fifo []packet.Packet
	und  bool
}

// Read pops the oldest buffered record. Reading an empty port fails
// and sets the sticky underflow flag; the next successful read clears
// it.
func (p *Port) Read() (packet.Packet, bool) {
	if len(p.fifo) == 0 {
		p.und = true
		return packet.Packet{}, false
	}
	pkt := p.fifo[0]
	p.fifo = p.fifo[:copy(p.fifo, p.fifo[1:])]
	p.und = false
	return pkt, true
}

// Len returns the number of buffered records.
func (p *Port) Len() int { return len(p.fifo) }

// Underflow reports the sticky underflow flag.
func (p *Port) Underflow() bool { return p.und }

func (p *Port) push(pkt packet.Packet) {
	if len(p.fifo) == portDepth {
		p.fifo = p.fifo[:copy(p.fifo, p.fifo[1:])]
	}
	p.fifo = append(p.fifo, pkt)
}

func (p *Port) reset() {
	p.fifo = p.fifo[:0]
	p.und = false
}
