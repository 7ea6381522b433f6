// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// A Minimizer minimizes a function over an axis-aligned box.
//
// Minimize starts at x0, which must lie in [lo, hi]. Bounds may be
// infinite. If the method stops before converging, Minimize returns
// the best point found with Converged false and a nil error.
type Minimizer interface {
	Minimize(f func(x []float64) float64, lo, hi, x0 []float64) (Optimum, error)
}

// Optimum is the result of a minimization.
type Optimum struct {
	// X is the best point found and F is f(X).
	X []float64
	F float64

	// Converged reports whether the method met its convergence
	// criterion, rather than stopping at an iteration limit.
	Converged bool

	// Evaluations is the number of calls to f.
	Evaluations int
}

// NelderMead minimizes with gonum's Nelder–Mead simplex method. The
// box is removed by a change of variables: logistic for coordinates
// bounded on both sides, exponential for coordinates bounded on one
// side.
//
// The zero value is ready to use.
type NelderMead struct {
	// MaxIterations bounds the number of simplex iterations. If
	// zero, it is 1000.
	MaxIterations int

	// SimplexSize is the size of the initial simplex in the
	// unconstrained variables. If zero, it is 0.5.
	SimplexSize float64
}

func (m NelderMead) Minimize(f func(x []float64) float64, lo, hi, x0 []float64) (Optimum, error) {
	if len(lo) != len(x0) || len(hi) != len(x0) {
		return Optimum{}, fmt.Errorf("bounds of length %d and %d for a start of length %d: %w", len(lo), len(hi), len(x0), ErrDimensionMismatch)
	}
	for i := range x0 {
		if !(lo[i] <= x0[i] && x0[i] <= hi[i]) {
			return Optimum{}, fmt.Errorf("start %v outside [%v, %v]: %w", x0[i], lo[i], hi[i], ErrInvalidArgument)
		}
	}
	iters := m.MaxIterations
	if iters == 0 {
		iters = 1000
	}
	size := m.SimplexSize
	if size == 0 {
		size = 0.5
	}

	t := boxTransform{lo, hi}
	x := make([]float64, len(x0))
	p := optimize.Problem{
		Func: func(z []float64) float64 {
			v := f(t.toBox(x, z))
			if math.IsNaN(v) {
				return inf
			}
			return v
		},
	}
	settings := &optimize.Settings{MajorIterations: iters}
	res, err := optimize.Minimize(p, t.fromBox(x0), settings, &optimize.NelderMead{SimplexSize: size})
	if err != nil && res == nil {
		return Optimum{}, err
	}
	opt := Optimum{
		X:           t.toBox(nil, res.X),
		F:           res.F,
		Converged:   err == nil && !res.Status.Early(),
		Evaluations: res.Stats.FuncEvaluations,
	}
	return opt, nil
}

// boxTransform maps between the box [lo, hi] and R^n.
type boxTransform struct {
	lo, hi []float64
}

func (t boxTransform) toBox(dst, z []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(z))
	}
	for i, v := range z {
		lo, hi := t.lo[i], t.hi[i]
		switch {
		case !math.IsInf(lo, 0) && !math.IsInf(hi, 0):
			dst[i] = lo + (hi-lo)/(1+math.Exp(-v))
		case !math.IsInf(lo, 0):
			dst[i] = lo + math.Exp(v)
		case !math.IsInf(hi, 0):
			dst[i] = hi - math.Exp(v)
		default:
			dst[i] = v
		}
	}
	return dst
}

func (t boxTransform) fromBox(x []float64) []float64 {
	// Keep starts on the boundary at a finite distance.
	const eps = 1e-9
	z := make([]float64, len(x))
	for i, v := range x {
		lo, hi := t.lo[i], t.hi[i]
		switch {
		case !math.IsInf(lo, 0) && !math.IsInf(hi, 0):
			p := math.Min(math.Max((v-lo)/(hi-lo), eps), 1-eps)
			z[i] = math.Log(p / (1 - p))
		case !math.IsInf(lo, 0):
			z[i] = math.Log(math.Max(v-lo, eps))
		case !math.IsInf(hi, 0):
			z[i] = math.Log(math.Max(hi-v, eps))
		default:
			z[i] = v
		}
	}
	return z
}
