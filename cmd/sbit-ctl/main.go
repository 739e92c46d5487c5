// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sbit-ctl is an interactive shell to control a TDC device served by
// sbit-srv.
//
// Example:
//
//	$> sbit-ctl -addr clrtodaq0:8877
//	sbit> configure 0xffffffffffffffff 0xffffffffffffffff 0xffffffffffffffff 0xffffffffffffffff 0x0
//	sbit> init
//	sbit> calibrate
//	sbit> lut 5 0 8
//	sbit> start 42
//	sbit> stop
//	sbit> quit
package main // import "github.com/go-lpc/sbit/cmd/sbit-ctl"

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

func main() {
	log.SetPrefix("sbit-ctl: ")
	log.SetFlags(0)

	addr := flag.String("addr", "localhost:8877", "address of the sbit-srv control server")

	flag.Parse()

	err := run(*addr)
	if err != nil {
		log.Fatalf("could not run sbit-ctl: %+v", err)
	}
}

func run(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not dial %q: %w", addr, err)
	}
	defer conn.Close()

	cli := &client{
		conn: conn,
		out:  os.Stdout,
	}

	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)

	hfile := filepath.Join(os.TempDir(), ".sbit_ctl_history")
	if f, err := os.Open(hfile); err == nil {
		_, _ = term.ReadHistory(f)
		f.Close()
	}
	defer func() {
		f, err := os.Create(hfile)
		if err != nil {
			log.Printf("could not create history file %q: %+v", hfile, err)
			return
		}
		defer f.Close()
		_, _ = term.WriteHistory(f)
	}()

	for {
		line, err := term.Prompt("sbit> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return fmt.Errorf("could not read command: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		if line == "quit" {
			return nil
		}

		err = cli.send(line)
		if err != nil {
			log.Printf("could not run command %q: %+v", line, err)
		}
	}
}

type client struct {
	conn net.Conn
	out  io.Writer
}

// send parses one shell command, sends the matching request and
// displays the server reply.
func (cli *client) send(line string) error {
	toks := strings.Fields(line)
	name, args := toks[0], toks[1:]

	var payload interface{}
	switch name {
	case "configure":
		if len(args) != 5 {
			return fmt.Errorf("usage: configure w0 w1 w2 w3 channels")
		}
		var cfg struct {
			Window   [4]uint64 `json:"window"`
			Channels uint32    `json:"channels"`
		}
		for i := range cfg.Window {
			v, err := strconv.ParseUint(args[i], 0, 64)
			if err != nil {
				return fmt.Errorf("could not parse window word %q: %w", args[i], err)
			}
			cfg.Window[i] = v
		}
		v, err := strconv.ParseUint(args[4], 0, 32)
		if err != nil {
			return fmt.Errorf("could not parse channel mask %q: %w", args[4], err)
		}
		cfg.Channels = uint32(v)
		payload = cfg

	case "init":
		name = "initialize"

	case "calibrate", "stop":
		// no arguments

	case "lut":
		if len(args) != 3 {
			return fmt.Errorf("usage: lut ch addr n")
		}
		var req struct {
			Ch   int `json:"ch"`
			Addr int `json:"addr"`
			N    int `json:"n"`
		}
		for i, ptr := range []*int{&req.Ch, &req.Addr, &req.N} {
			v, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("could not parse %q: %w", args[i], err)
			}
			*ptr = v
		}
		payload = req

	case "start":
		if len(args) != 1 {
			return fmt.Errorf("usage: start run-nbr")
		}
		payload = args

	default:
		return fmt.Errorf("unknown command %q", name)
	}

	req := struct {
		Name string      `json:"name"`
		Args interface{} `json:"args,omitempty"`
	}{Name: name, Args: payload}

	err := json.NewEncoder(cli.conn).Encode(req)
	if err != nil {
		return fmt.Errorf("could not send %q request: %w", name, err)
	}

	var rep struct {
		Msg  string   `json:"msg"`
		Data []uint16 `json:"data"`
	}
	err = json.NewDecoder(cli.conn).Decode(&rep)
	if err != nil {
		return fmt.Errorf("could not read %q reply: %w", name, err)
	}

	if rep.Msg != "ok" {
		return fmt.Errorf("server error: %s", rep.Msg)
	}
	fmt.Fprintf(cli.out, "%s: ok\n", name)
	for i, v := range rep.Data {
		fmt.Fprintf(cli.out, "data[%d]: %d\n", i, v)
	}
	return nil
}
