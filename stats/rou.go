// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// RatioOfUniforms draws exact samples from an unnormalized density
// f on a box. It samples (u, v) uniformly from the bounding box of
//
//	A = {(u, v) : 0 < u ≤ f(c + v/u)^(1/(1+d))}
//
// and returns c + v/u for points that fall in A. c is a center
// supplied by the caller, ideally the mode of f.
//
// The region A is bounded when f decays faster than |x|^-(d+1),
// which holds for any density on a bounded box.
type RatioOfUniforms struct {
	logf     func(x []float64) float64
	lo, hi   []float64
	center   []float64
	logScale float64 // logf(center)

	logSupU    float64
	infV, supV []float64

	proposals, accepts atomic.Int64
}

// rouInflation widens the bounding box to absorb optimizer error.
const rouInflation = 1.05

// NewRatioOfUniforms prepares a sampler for the density exp(logf)
// on [lo, hi], centered at center. It bounds A by minimizing with m.
// It returns an error wrapping ErrInvalidArgument if logf is not
// finite at center, or if A is unbounded.
func NewRatioOfUniforms(logf func(x []float64) float64, lo, hi, center []float64, m Minimizer) (*RatioOfUniforms, error) {
	d := len(center)
	if len(lo) != d || len(hi) != d {
		return nil, fmt.Errorf("bounds of length %d and %d for a center of length %d: %w", len(lo), len(hi), d, ErrDimensionMismatch)
	}
	scale := logf(center)
	if math.IsInf(scale, 0) || math.IsNaN(scale) {
		return nil, fmt.Errorf("log density %v at center %v: %w", scale, center, ErrInvalidArgument)
	}
	r := &RatioOfUniforms{
		logf:     logf,
		lo:       lo,
		hi:       hi,
		center:   append([]float64(nil), center...),
		logScale: scale,
		infV:     make([]float64, d),
		supV:     make([]float64, d),
	}
	k := 1 / float64(1+d)

	// Work in z = x - c.
	zlo, zhi := make([]float64, d), make([]float64, d)
	for i := range zlo {
		zlo[i], zhi[i] = lo[i]-center[i], hi[i]-center[i]
	}
	x := make([]float64, d)
	g := func(z []float64) float64 {
		for i := range x {
			x[i] = center[i] + z[i]
		}
		return logf(x) - scale
	}

	// sup u = sup f^(1/(1+d)).
	opt, err := m.Minimize(func(z []float64) float64 { return -k * g(z) }, zlo, zhi, make([]float64, d))
	if err != nil {
		return nil, err
	}
	r.logSupU = math.Max(0, -opt.F) + math.Log(rouInflation)

	// sup and inf of v_i = z_i f(z)^(1/(1+d)), over each half of the
	// box in coordinate i.
	for i := 0; i < d; i++ {
		for _, sign := range []float64{1, -1} {
			blo, bhi := append([]float64(nil), zlo...), append([]float64(nil), zhi...)
			if sign > 0 {
				blo[i] = 0
			} else {
				bhi[i] = 0
			}
			if blo[i] >= bhi[i] {
				continue
			}
			z0 := make([]float64, d)
			z0[i] = sign * rouStart(blo[i], bhi[i])
			opt, err := m.Minimize(func(z []float64) float64 {
				return -(math.Log(sign*z[i]) + k*g(z))
			}, blo, bhi, z0)
			if err != nil {
				return nil, err
			}
			v := sign * math.Exp(-opt.F) * rouInflation
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, fmt.Errorf("unbounded acceptance region in coordinate %d: %w", i, ErrInvalidArgument)
			}
			if sign > 0 {
				r.supV[i] = v
			} else {
				r.infV[i] = v
			}
		}
	}
	return r, nil
}

// rouStart returns a distance from 0 into the half-range [a, b] of
// one sign.
func rouStart(a, b float64) float64 {
	w := math.Min(math.Abs(a), math.Abs(b))
	if w == 0 {
		w = math.Max(math.Abs(a), math.Abs(b))
	}
	if math.IsInf(w, 0) {
		return 1
	}
	return w / 10
}

// Dim returns the dimension of the samples.
func (r *RatioOfUniforms) Dim() int { return len(r.center) }

// maxRejections bounds the proposals for one draw.
const maxRejections = 1 << 24

// Rand draws one sample into dst using src.
func (r *RatioOfUniforms) Rand(dst []float64, src rand.Source) []float64 {
	d := r.Dim()
	dst = resize(dst, d)
	supU := math.Exp(r.logSupU)
	for try := 0; try < maxRejections; try++ {
		u := supU * openUnit(src)
		for i := range dst {
			v := r.infV[i] + (r.supV[i]-r.infV[i])*openUnit(src)
			dst[i] = r.center[i] + v/u
		}
		r.proposals.Add(1)
		if !r.inBox(dst) {
			continue
		}
		if float64(1+d)*math.Log(u) <= r.logf(dst)-r.logScale {
			r.accepts.Add(1)
			return dst
		}
	}
	panic(fmt.Sprintf("ratio-of-uniforms rejected %d proposals in a row", maxRejections))
}

func (r *RatioOfUniforms) inBox(x []float64) bool {
	for i, v := range x {
		if v < r.lo[i] || v > r.hi[i] {
			return false
		}
	}
	return true
}

// Sample draws n samples. Row i is drawn using only rng.Stream(i).
func (r *RatioOfUniforms) Sample(n int, rng Streamer) *mat.Dense {
	if n == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(n, r.Dim(), nil)
	eachRow(n, func(i int) {
		r.Rand(out.RawRowView(i), rng.Stream(uint64(i)))
	})
	return out
}

// AcceptanceRate returns the fraction of proposals accepted so far,
// or NaN if there have been none.
func (r *RatioOfUniforms) AcceptanceRate() float64 {
	p := r.proposals.Load()
	if p == 0 {
		return nan
	}
	return float64(r.accepts.Load()) / float64(p)
}
