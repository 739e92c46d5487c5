// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sbit-srv starts a TDAQ server exposing a TDC device.
package main // import "github.com/go-lpc/sbit/cmd/sbit-srv"

import (
	"bytes"
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"

	"github.com/go-lpc/sbit/packet"
	"github.com/go-lpc/sbit/tdc"
)

func main() {
	cmd := flags.New()

	dev := srvdev{
		name: cmd.Args[0],
		seed: 1234,
	}

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/sbit", dev.sbit)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type srvdev struct {
	name string

	seed int64
	rnd  *rand.Rand
	tdc  *tdc.Device

	n    int
	data chan []byte
}

func (dev *srvdev) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (dev *srvdev) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	dev.reset()
	return nil
}

func (dev *srvdev) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	dev.reset()
	return nil
}

func (dev *srvdev) reset() {
	dev.rnd = rand.New(rand.NewSource(dev.seed))
	dev.tdc = tdc.New(tdc.WithSeed(uint32(dev.seed)))
	dev.tdc.Reset()
	dev.tdc.Run(2)
	dev.data = make(chan []byte, 1024)
	dev.n = 0
}

func (dev *srvdev) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (dev *srvdev) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n := dev.n
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (dev *srvdev) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (dev *srvdev) sbit(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.data:
		dst.Body = data
	}
	return nil
}

func (dev *srvdev) run(ctx tdaq.Context) error {
	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		default:
			ch := dev.rnd.Intn(tdc.NumChannels)
			phase := 3 + dev.rnd.Intn(tdc.FineBins-5)
			_ = dev.tdc.Inject(ch, phase)
			dev.tdc.Step()

			buf := new(bytes.Buffer)
			enc := packet.NewEncoder(buf)
			for i := 0; i < tdc.NumChannels; i++ {
				port := dev.tdc.Port(i)
				for port.Len() > 0 {
					pkt, _ := port.Read()
					if err := enc.Encode(&pkt); err != nil {
						return err
					}
				}
			}
			if buf.Len() > 0 {
				select {
				case dev.data <- buf.Bytes():
					dev.n++
				default:
				}
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
}
