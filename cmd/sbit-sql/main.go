// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sbit-sql inspects the sbit conditions database: acquisition
// configurations and archived per-channel calibration tables.
package main // import "github.com/go-lpc/sbit/cmd/sbit-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/sbit/conddb"
	_ "github.com/go-sql-driver/mysql"
)

const (
	dbname = "sbitsrv"
)

func main() {
	log.SetPrefix("sbit-sql: ")
	log.SetFlags(0)

	var (
		cfg = flag.String("cfg", "", "acquisition config to inspect")
		ch  = flag.Int("ch", 0, "channel whose calibration table to inspect")
	)

	flag.Parse()

	log.Printf("cfg: %q", *cfg)
	log.Printf("ch:  %02d", *ch)

	db, err := conddb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open sbit db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *cfg, uint8(*ch))
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *conddb.DB, name string, ch uint8) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if name == "" {
		v, err := db.LastConfig(ctx)
		if err != nil {
			return fmt.Errorf("could not get last config value: %w", err)
		}
		name = v
		log.Printf("config: %q", name)
	}

	cfg, err := db.Config(ctx, name)
	if err != nil {
		return fmt.Errorf("could not get config %q: %w", name, err)
	}
	log.Printf("id:       %d", cfg.ID)
	log.Printf("window:   [%#016x %#016x %#016x %#016x]",
		cfg.Window[0], cfg.Window[1], cfg.Window[2], cfg.Window[3],
	)
	log.Printf("channels: %#08x", cfg.Channels)

	lut, err := db.LUT(ctx, name, ch)
	if err != nil {
		return fmt.Errorf("could not get LUT (cfg=%q, ch=%d): %w",
			name, ch, err,
		)
	}
	tbl, err := lut.Entries()
	if err != nil {
		return fmt.Errorf("could not decode LUT (cfg=%q, ch=%d): %w",
			name, ch, err,
		)
	}
	for i, v := range tbl {
		log.Printf("lut[%03d]: %d", i, v)
	}

	return nil
}
