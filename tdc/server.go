// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-lpc/sbit/internal/bitvec"
)

// upper bound on a calibration run, in slow cycles
const calibTimeout = 1000000

// server allows to control a TDC device over a JSON/TCP link.
type server struct {
	ctl net.Listener

	msg  *log.Logger
	odir string

	newDevice func(opts ...Option) *Device

	opts []Option
	dev  *Device

	runStop context.CancelFunc
	runDone chan error
	ofiles  []*os.File
}

// Serve runs a TDC control server on addr, writing event-record
// streams under odir.
func Serve(addr, odir string, opts ...Option) error {
	srv, err := newServer(addr, odir, opts...)
	if err != nil {
		return fmt.Errorf("tdc: could not create sbit server: %w", err)
	}
	return srv.serve()
}

func newServer(addr, odir string, opts ...Option) (*server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tdc: could not create sbit-ctl server on %q: %w", addr, err)
	}

	srv := &server{
		ctl:  ctl,
		msg:  log.New(os.Stdout, "sbit-svc: ", 0),
		odir: odir,

		newDevice: func(opts ...Option) *Device {
			return New(opts...)
		},

		opts: opts,
	}
	return srv, nil
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("tdc: could not accept connection: %w", err)
		}

		err = srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not run TDC device: %+v", err)
			continue
		}
	}
}

func (srv *server) handle(conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

	srv.dev = srv.newDevice(srv.opts...)
	defer srv.stopRun()

loop:
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err := json.NewDecoder(conn).Decode(&req)
		if err != nil {
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, err)
			if errors.Is(err, io.EOF) {
				break loop
			}
			continue
		}
		srv.msg.Printf("received request: name=%q", req.Name)

		switch strings.ToLower(req.Name) {
		case "configure":
			var args struct {
				Window   [4]uint64 `json:"window"`
				Channels uint32    `json:"channels"`
			}
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v",
					req.Name, err,
				)
				srv.reply(conn, err)
				continue
			}

			srv.dev.SetWindowMask(bitvec.Vec(args.Window))
			srv.dev.SetChannelMask(args.Channels)
			srv.reply(conn, nil)

		case "initialize":
			srv.dev.Reset()
			srv.dev.Step()
			srv.reply(conn, nil)

		case "calibrate":
			srv.dev.Calibrate()
			srv.dev.Step()
			for i := 0; srv.dev.Calibrating(); i++ {
				if i >= calibTimeout {
					err = fmt.Errorf("tdc: calibration did not converge after %d cycles", i)
					break
				}
				srv.dev.Step()
			}
			srv.reply(conn, err)
			if err != nil {
				srv.msg.Printf("could not calibrate TDC device: %+v", err)
				continue
			}

		case "lut":
			var args struct {
				Ch   int `json:"ch"`
				Addr int `json:"addr"`
				N    int `json:"n"`
			}
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v",
					req.Name, err,
				)
				srv.reply(conn, err)
				continue
			}
			if args.Ch < 0 || args.Ch >= NumChannels {
				srv.reply(conn, fmt.Errorf("tdc: invalid channel %d", args.Ch))
				continue
			}

			eng := srv.dev.Calib(args.Ch)
			eng.SetLUTAddr(args.Addr)
			data := make([]uint16, args.N)
			for i := range data {
				data[i] = eng.LUTPeek()
			}
			srv.replyData(conn, nil, data)

		case "start":
			var args []string
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v",
					req.Name, err,
				)
				srv.reply(conn, err)
				continue
			}

			run, err := strconv.Atoi(args[0])
			if err != nil {
				srv.msg.Printf("could not decode run-nbr for start-run (args=%v): %+v",
					req.Args, err,
				)
				srv.reply(conn, err)
				continue
			}

			err = srv.startRun(uint32(run))
			srv.reply(conn, err)
			if err != nil {
				srv.msg.Printf("could not start TDC device: %+v", err)
				continue
			}

		case "stop":
			err = srv.stopRun()
			srv.reply(conn, err)
			if err != nil {
				srv.msg.Printf("could not stop TDC device: %+v", err)
				return fmt.Errorf("tdc: could not stop TDC device: %w", err)
			}
			break loop

		default:
			srv.msg.Printf("unknown command name=%q, args=%q", req.Name, req.Args)
			err = fmt.Errorf("tdc: unknown command %q", req.Name)
			srv.reply(conn, err)
			continue
		}
	}

	return nil
}

func (srv *server) startRun(run uint32) error {
	if srv.runStop != nil {
		return fmt.Errorf("tdc: a run is already in flight")
	}

	sinks := make([]io.Writer, NumChannels)
	srv.ofiles = make([]*os.File, NumChannels)
	for ch := range sinks {
		fname := filepath.Join(srv.odir, fmt.Sprintf("sbit-run%06d-ch%02d.raw", run, ch))
		f, err := os.Create(fname)
		if err != nil {
			srv.closeFiles()
			return fmt.Errorf("tdc: could not create output file %q: %w", fname, err)
		}
		srv.ofiles[ch] = f
		sinks[ch] = f
	}

	ctx, stop := context.WithCancel(context.Background())
	srv.runStop = stop
	srv.runDone = make(chan error, 1)
	go func() {
		srv.runDone <- srv.dev.RunDAQ(ctx, -1, sinks)
	}()
	return nil
}

func (srv *server) stopRun() error {
	if srv.runStop == nil {
		return nil
	}
	srv.runStop()
	err := <-srv.runDone
	srv.runStop = nil
	srv.runDone = nil
	srv.closeFiles()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (srv *server) closeFiles() {
	for _, f := range srv.ofiles {
		if f != nil {
			_ = f.Close()
		}
	}
	srv.ofiles = nil
}

func (srv *server) reply(conn net.Conn, err error) {
	srv.replyData(conn, err, nil)
}

func (srv *server) replyData(conn net.Conn, err error, data []uint16) {
	rep := struct {
		Msg  string   `json:"msg"`
		Data []uint16 `json:"data,omitempty"`
	}{Msg: "ok", Data: data}
	if err != nil {
		rep.Msg = fmt.Sprintf("%+v", err)
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
