// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitvec

import (
	"fmt"
	"testing"
)

func TestSetGet(t *testing.T) {
	var v Vec
	for _, i := range []int{0, 1, 63, 64, 127, 128, 200, 255} {
		if v.Get(i) {
			t.Fatalf("bit %d set in zero vector", i)
		}
		v.Set(i)
		if !v.Get(i) {
			t.Fatalf("bit %d not set", i)
		}
	}
	if got, want := v.Count(), 8; got != want {
		t.Fatalf("invalid count: got=%d, want=%d", got, want)
	}
	v.Clear(64)
	if v.Get(64) {
		t.Fatalf("bit 64 still set after clear")
	}
	v.Flip(64)
	if !v.Get(64) {
		t.Fatalf("bit 64 not set after flip")
	}
}

func TestRun(t *testing.T) {
	for _, tc := range []struct {
		beg, end int
	}{
		{0, 0},
		{0, 255},
		{10, 73},
		{60, 70},
		{255, 255},
	} {
		t.Run(fmt.Sprintf("%d-%d", tc.beg, tc.end), func(t *testing.T) {
			v := Run(tc.beg, tc.end)
			for i := 0; i < N; i++ {
				want := i >= tc.beg && i <= tc.end
				if got := v.Get(i); got != want {
					t.Fatalf("bit %d: got=%v, want=%v", i, got, want)
				}
			}
			if got, want := v.Count(), tc.end-tc.beg+1; got != want {
				t.Fatalf("invalid count: got=%d, want=%d", got, want)
			}
		})
	}
}

func TestRunPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic")
		}
	}()
	_ = Run(10, 9)
}

func TestReverse(t *testing.T) {
	for _, idx := range [][]int{
		{0},
		{255},
		{0, 255},
		{1, 64, 130, 254},
	} {
		var v Vec
		for _, i := range idx {
			v.Set(i)
		}
		r := v.Reverse()
		for i := 0; i < N; i++ {
			if got, want := r.Get(i), v.Get(N-1-i); got != want {
				t.Fatalf("idx=%v: reversed bit %d: got=%v, want=%v", idx, i, got, want)
			}
		}
		if got, want := r.Reverse(), v; got != want {
			t.Fatalf("idx=%v: double-reverse: got=%v, want=%v", idx, got, want)
		}
	}
}

func TestRsh(t *testing.T) {
	for _, tc := range []struct {
		beg, end int
		k        uint
		want     Vec
	}{
		{0, 0, 1, Vec{}},
		{10, 20, 1, Run(9, 19)},
		{64, 64, 1, Run(63, 63)},
		{60, 70, 10, Run(50, 60)},
		{0, 255, 63, Run(0, 192)},
		{128, 130, 0, Run(128, 130)},
	} {
		t.Run(fmt.Sprintf("%d-%d>>%d", tc.beg, tc.end, tc.k), func(t *testing.T) {
			got := Run(tc.beg, tc.end).Rsh(tc.k)
			if got != tc.want {
				t.Fatalf("invalid shift: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestLsh(t *testing.T) {
	for _, tc := range []struct {
		beg, end int
		k        uint
		want     Vec
	}{
		{255, 255, 1, Vec{}},
		{10, 20, 1, Run(11, 21)},
		{63, 63, 1, Run(64, 64)},
		{50, 60, 10, Run(60, 70)},
		{63, 255, 63, Run(126, 255)},
		{128, 130, 0, Run(128, 130)},
	} {
		t.Run(fmt.Sprintf("%d-%d<<%d", tc.beg, tc.end, tc.k), func(t *testing.T) {
			got := Run(tc.beg, tc.end).Lsh(tc.k)
			if got != tc.want {
				t.Fatalf("invalid shift: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestNot(t *testing.T) {
	var v Vec
	v.Set(0)
	v.Set(100)
	n := v.Not()
	if got, want := n.Count(), N-2; got != want {
		t.Fatalf("invalid count: got=%d, want=%d", got, want)
	}
	for _, i := range []int{0, 100} {
		if n.Get(i) {
			t.Fatalf("bit %d still set after complement", i)
		}
	}
	if got, want := n.Not(), v; got != want {
		t.Fatalf("double-complement: got=%v, want=%v", got, want)
	}
}

func TestFirst(t *testing.T) {
	var v Vec
	if _, ok := v.First(); ok {
		t.Fatalf("found a set bit in the zero vector")
	}
	for _, tc := range []struct {
		idx  []int
		want int
	}{
		{[]int{0}, 0},
		{[]int{255}, 255},
		{[]int{7, 100, 200}, 7},
		{[]int{64, 65}, 64},
		{[]int{63, 64}, 63},
	} {
		var v Vec
		for _, i := range tc.idx {
			v.Set(i)
		}
		got, ok := v.First()
		if !ok {
			t.Fatalf("idx=%v: no set bit found", tc.idx)
		}
		if got != tc.want {
			t.Fatalf("idx=%v: got=%d, want=%d", tc.idx, got, tc.want)
		}
	}
}

func TestAndAny(t *testing.T) {
	a := Run(10, 20)
	b := Run(15, 30)
	c := a.And(b)
	if got, want := c, Run(15, 20); got != want {
		t.Fatalf("invalid and: got=%v, want=%v", got, want)
	}
	if !c.Any() {
		t.Fatalf("expected a non-empty intersection")
	}
	if got := a.And(Run(100, 110)); got.Any() {
		t.Fatalf("expected an empty intersection, got %v", got)
	}
}
