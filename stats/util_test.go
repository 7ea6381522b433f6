// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"
	"sort"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func aeq(expect, got float64) bool {
	return math.Abs(expect-got) < 0.00001
}

func aeqTol(expect, got, tol float64) bool {
	if math.IsInf(expect, 0) || math.IsNaN(expect) {
		return expect == got || math.IsNaN(expect) && math.IsNaN(got)
	}
	return math.Abs(expect-got) <= tol
}

// testFunc checks f against want at each key of want, in key order.
func testFunc(t *testing.T, name string, f func(float64) float64, want map[float64]float64) {
	t.Helper()
	xs := make([]float64, 0, len(want))
	for x := range want {
		xs = append(xs, x)
	}
	sort.Float64s(xs)
	for _, x := range xs {
		if got := f(x); !aeqTol(want[x], got, 0.00001) {
			t.Errorf("%s(%v): want %v, got %v", name, x, want[x], got)
		}
	}
}

type discreteDist interface {
	PMF(k float64) float64
	CDF1(k float64) float64
	Step() float64
	Bounds() (lo, hi []float64)
}

// testDiscreteCDF checks that the CDF of dist is the running sum of
// its PMF, both on and between steps.
func testDiscreteCDF(t *testing.T, name string, dist discreteDist) {
	t.Helper()
	lo, hi := dist.Bounds()
	step := dist.Step()
	want := 0.0
	for x := lo[0] - 3*step; x <= hi[0]+3*step; x += step {
		want += dist.PMF(x)
		for _, dx := range []float64{0, step / 2} {
			if got := dist.CDF1(x + dx); !aeq(want, got) {
				t.Errorf("%s(%v): want %v, got %v", name, x+dx, want, got)
			}
		}
	}
}

// rowsFrom returns a matrix with the given rows.
func rowsFrom(rows ...[]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

// stdNormal1 is the standard normal as a one-dimensional Product.
func stdNormal1() *Product {
	return NewProduct(distuv.Normal{Mu: 0, Sigma: 1})
}
