// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"
)

// An Interval is the axis-aligned box [Lo, Hi].
type Interval struct {
	Lo, Hi []float64
}

// Contains reports whether x lies in the box.
func (iv Interval) Contains(x []float64) bool {
	for i, v := range x {
		if v < iv.Lo[i] || v > iv.Hi[i] {
			return false
		}
	}
	return true
}

func (iv Interval) String() string {
	return fmt.Sprintf("%v..%v", iv.Lo, iv.Hi)
}

// An IntervalDist can compute marginal quantiles and box
// probabilities directly. Product and KernelDist are IntervalDists.
type IntervalDist interface {
	Dim() int

	// MarginalQuantile returns the q'th quantile of coordinate i.
	MarginalQuantile(i int, q float64) float64

	// BoxProbability returns the probability of [lo, hi].
	BoxProbability(lo, hi []float64) float64
}

// BilateralConfidenceInterval returns the box whose i'th side spans
// the (1-β)/2 and (1+β)/2 quantiles of marginal i, with β chosen so
// the box has probability alpha. It also returns β, the common
// marginal level.
//
// alpha must be in (0, 1). For a one-dimensional d, β equals alpha;
// for d with independent coordinates, β is alpha^(1/Dim).
//
// If d is not an IntervalDist, marginal quantiles are found by
// inverting the CDF with the other coordinates at +Inf and box
// probabilities by inclusion-exclusion over the corners.
func BilateralConfidenceInterval(d Dist, alpha float64) (Interval, float64, error) {
	if !(alpha > 0 && alpha < 1) {
		return Interval{}, 0, fmt.Errorf("confidence level %v not in (0, 1): %w", alpha, ErrInvalidArgument)
	}
	id, ok := d.(IntervalDist)
	if !ok {
		id = cdfIntervals{d}
	}
	dim := id.Dim()
	box := func(beta float64) Interval {
		iv := Interval{make([]float64, dim), make([]float64, dim)}
		for i := 0; i < dim; i++ {
			iv.Lo[i] = id.MarginalQuantile(i, (1-beta)/2)
			iv.Hi[i] = id.MarginalQuantile(i, (1+beta)/2)
		}
		return iv
	}
	f := func(beta float64) float64 {
		iv := box(beta)
		return id.BoxProbability(iv.Lo, iv.Hi) - alpha
	}

	// The box's probability is at least 1-dim(1-β) and at most β,
	// so β lies in [alpha, 1].
	const tol = 1e-10
	var beta float64
	if flo := f(alpha); flo >= -tol {
		beta = alpha
	} else if fhi := f(1); fhi <= tol {
		beta = 1
	} else {
		beta, _ = bisect(f, alpha, 1, tol)
	}
	return box(beta), beta, nil
}

// cdfIntervals computes interval quantities from a Dist's CDF.
type cdfIntervals struct {
	d Dist
}

func (c cdfIntervals) Dim() int { return c.d.Dim() }

func (c cdfIntervals) marginalCDF(i int, x float64) float64 {
	p := make([]float64, c.d.Dim())
	for j := range p {
		p[j] = inf
	}
	p[i] = x
	return c.d.CDF(p)
}

func (c cdfIntervals) MarginalQuantile(i int, q float64) float64 {
	lo, hi := c.d.Bounds()
	if q <= 0 {
		return lo[i]
	} else if q >= 1 {
		return hi[i]
	}
	f := func(x float64) float64 { return c.marginalCDF(i, x) - q }
	a, b := expandBracket(f, lo[i], hi[i])
	x, _ := bisect(f, a, b, 1e-12)
	return x
}

func (c cdfIntervals) BoxProbability(lo, hi []float64) float64 {
	dim := c.d.Dim()
	if dim > 20 {
		panic("inclusion-exclusion over too many corners")
	}
	corner := make([]float64, dim)
	p := 0.0
	for mask := 0; mask < 1<<dim; mask++ {
		sign := 1.0
		for j := range corner {
			if mask&(1<<j) != 0 {
				corner[j] = lo[j]
				sign = -sign
			} else {
				corner[j] = hi[j]
			}
		}
		p += sign * c.d.CDF(corner)
	}
	return math.Max(0, math.Min(1, p))
}
