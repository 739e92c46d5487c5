// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMonitorList(t *testing.T) {
	dir := t.TempDir()
	for _, fname := range []string{
		"sbit-run000042-ch00.raw",
		"sbit-run000042-ch01.raw",
		"not-a-run-file.txt",
	} {
		err := os.WriteFile(filepath.Join(dir, fname), []byte("data"), 0644)
		if err != nil {
			t.Fatalf("could not create file %q: %+v", fname, err)
		}
	}

	mon := newMonitor(dir, 1*time.Second)
	table, err := mon.list(dir)
	if err != nil {
		t.Fatalf("could not list files: %+v", err)
	}

	if got, want := len(table), 2; got != want {
		t.Fatalf("invalid number of files: got=%d, want=%d", got, want)
	}
	for fname, size := range table {
		if got, want := size, int64(4); got != want {
			t.Fatalf("invalid size for %q: got=%d, want=%d", fname, got, want)
		}
	}
}

func TestMonitorCompare(t *testing.T) {
	mon := newMonitor(".", 1*time.Second)

	ref := map[string]int64{
		"sbit-run000042-ch00.raw": 100,
		"sbit-run000042-ch01.raw": 100,
	}
	chk := map[string]int64{
		"sbit-run000042-ch00.raw": 200, // grew
		"sbit-run000042-ch01.raw": 100, // stalled
		"sbit-run000042-ch02.raw": 50,  // just appeared
	}

	mon.compare(ref, chk)

	if got, want := mon.alerts["sbit-run000042-ch00.raw"], 0; got != want {
		t.Fatalf("invalid alert count for growing file: got=%d, want=%d", got, want)
	}
	if got, want := mon.alerts["sbit-run000042-ch01.raw"], 1; got != want {
		t.Fatalf("invalid alert count for stalled file: got=%d, want=%d", got, want)
	}
	if got, want := mon.alerts["sbit-run000042-ch02.raw"], 0; got != want {
		t.Fatalf("invalid alert count for new file: got=%d, want=%d", got, want)
	}
}
