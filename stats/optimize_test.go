// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"errors"
	"math"
	"testing"
)

func TestNelderMead(t *testing.T) {
	rosen := func(x []float64) float64 {
		a, b := 1-x[0], x[1]-x[0]*x[0]
		return a*a + 100*b*b
	}
	tests := []struct {
		name   string
		lo, hi []float64
		x0     []float64
		want   []float64
	}{
		{"unbounded", []float64{-inf, -inf}, []float64{inf, inf}, []float64{-1, 2}, []float64{1, 1}},
		{"box", []float64{-2, -2}, []float64{2, 2}, []float64{0, 0}, []float64{1, 1}},
		{"half", []float64{0, -inf}, []float64{inf, 3}, []float64{0.5, 0.5}, []float64{1, 1}},
		// The minimum in the box is on its edge.
		{"edge", []float64{-2, -2}, []float64{0.5, 2}, []float64{0, 0}, []float64{0.5, 0.25}},
	}
	for _, test := range tests {
		opt, err := NelderMead{MaxIterations: 5000}.Minimize(rosen, test.lo, test.hi, test.x0)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if !opt.Converged {
			t.Errorf("%s: did not converge", test.name)
		}
		for i := range test.want {
			if math.Abs(opt.X[i]-test.want[i]) > 1e-3 {
				t.Errorf("%s: want %v, got %v", test.name, test.want, opt.X)
				break
			}
		}
		if opt.F != rosen(opt.X) && !aeq(opt.F, rosen(opt.X)) {
			t.Errorf("%s: F %v, f(X) %v", test.name, opt.F, rosen(opt.X))
		}
		if opt.Evaluations == 0 {
			t.Errorf("%s: no evaluations reported", test.name)
		}
	}
}

func TestNelderMeadLimit(t *testing.T) {
	f := func(x []float64) float64 { return (x[0]-3)*(x[0]-3) + (x[1]+1)*(x[1]+1) }
	opt, err := NelderMead{MaxIterations: 1}.Minimize(f, []float64{-inf, -inf}, []float64{inf, inf}, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if opt.Converged {
		t.Errorf("converged after one iteration")
	}
	if opt.X == nil || math.IsNaN(opt.F) {
		t.Errorf("no best point returned: %+v", opt)
	}
}

func TestNelderMeadNaN(t *testing.T) {
	// NaN outside the unit disk.
	f := func(x []float64) float64 {
		r := x[0]*x[0] + x[1]*x[1]
		if r > 1 {
			return nan
		}
		return (x[0]-0.5)*(x[0]-0.5) + x[1]*x[1]
	}
	opt, err := NelderMead{}.Minimize(f, []float64{-inf, -inf}, []float64{inf, inf}, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(opt.X[0]-0.5) > 1e-3 || math.Abs(opt.X[1]) > 1e-3 {
		t.Errorf("want [0.5 0], got %v", opt.X)
	}
}

func TestNelderMeadErrors(t *testing.T) {
	f := func(x []float64) float64 { return x[0] }
	if _, err := (NelderMead{}).Minimize(f, []float64{0}, []float64{1, 2}, []float64{0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("want ErrDimensionMismatch, got %v", err)
	}
	if _, err := (NelderMead{}).Minimize(f, []float64{0}, []float64{1}, []float64{2}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("want ErrInvalidArgument, got %v", err)
	}
}

func TestBoxTransform(t *testing.T) {
	bt := boxTransform{[]float64{0, 1, -inf, -inf}, []float64{2, inf, 5, inf}}
	x := []float64{0.5, 3, 4, -7}
	back := bt.toBox(nil, bt.fromBox(x))
	for i := range x {
		if !aeqTol(x[i], back[i], 1e-12) {
			t.Errorf("coordinate %d: %v round-trips to %v", i, x[i], back[i])
		}
	}
	// Any unconstrained point maps inside the box.
	for _, z := range []float64{-50, -1, 0, 1, 50} {
		y := bt.toBox(nil, []float64{z, z, z, z})
		if y[0] < 0 || y[0] > 2 || y[1] < 1 || y[2] > 5 {
			t.Errorf("toBox(%v) = %v outside the box", z, y)
		}
	}
}
