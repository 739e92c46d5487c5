// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to describe the condition and
// configuration database of the sbit TDC: acquisition configurations
// (arrival window and channel masks) and archived per-channel
// calibration tables.
package conddb // import "github.com/go-lpc/sbit/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve conditions data
// and configuration data from the sbit database.
type DB struct {
	db   *sql.DB
	name string // name of the sbit database
}

// Open opens a connection to the sbit database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastConfig returns the name of the most recently archived
// acquisition configuration.
func (db *DB) LastConfig(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name := ""
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name FROM configs ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return name, fmt.Errorf("conddb: could not query last config: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&name)
		if err != nil {
			return name, fmt.Errorf("conddb: could not get last config value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return name, fmt.Errorf("conddb: could not scan db for last config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return name, fmt.Errorf("conddb: context error while retrieving last config: %w", err)
	}

	return name, nil
}

// Config returns the acquisition configuration named name.
func (db *DB) Config(ctx context.Context, name string) (Config, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cfg Config
	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT identifier, name, window0, window1, window2, window3, chanmask
FROM configs WHERE name=?
`,
		name,
	)
	if err != nil {
		return cfg, fmt.Errorf("conddb: could not run config query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(
			&cfg.ID, &cfg.Name,
			&cfg.Window[0], &cfg.Window[1], &cfg.Window[2], &cfg.Window[3],
			&cfg.Channels,
		)
		if err != nil {
			return cfg, fmt.Errorf("conddb: could not scan row for config %q: %w", name, err)
		}
	}

	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: could not scan db for config %q: %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: context error while retrieving config %q: %w", name, err)
	}

	return cfg, nil
}

// LUT returns the archived calibration table of channel ch in the
// configuration named cfg.
func (db *DB) LUT(ctx context.Context, cfg string, ch uint8) (LUT, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var lut LUT
	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT luts.config, luts.channel, luts.entries FROM luts
JOIN configs ON configs.name=luts.config
WHERE (
	luts.config=? AND luts.channel=?
)
`,
		cfg, ch,
	)
	if err != nil {
		return lut, fmt.Errorf("conddb: could not run LUT query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&lut.Config, &lut.Channel, &lut.Blob)
		if err != nil {
			return lut, fmt.Errorf(
				"conddb: could not scan row for LUT (cfg=%q, ch=%d): %w",
				cfg, ch, err,
			)
		}
	}

	if err := rows.Err(); err != nil {
		return lut, fmt.Errorf("conddb: could not scan db for LUT: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return lut, fmt.Errorf("conddb: context error while retrieving LUT: %w", err)
	}

	return lut, nil
}
