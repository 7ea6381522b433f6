// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import "math"

// lchoose returns math.Log(choose(n, k)).
func lchoose(n, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

// bisect returns an x in [low, high] such that |f(x)| <= tolerance
// using the bisection method.
//
// f(low) and f(high) must have opposite signs.
//
// If f does not have a root in this interval (e.g., it is
// discontiguous), this returns the X of the apparent discontinuity
// and false.
func bisect(f func(float64) float64, low, high, tolerance float64) (float64, bool) {
	flow, fhigh := f(low), f(high)
	if -tolerance <= flow && flow <= tolerance {
		return low, true
	}
	if -tolerance <= fhigh && fhigh <= tolerance {
		return high, true
	}
	if math.Signbit(flow) == math.Signbit(fhigh) {
		panic("root of f is not bracketed by [low, high]")
	}
	for {
		mid := (high + low) / 2
		fmid := f(mid)
		if -tolerance <= fmid && fmid <= tolerance {
			return mid, true
		}
		if mid == high || mid == low {
			return mid, false
		}
		if math.Signbit(fmid) == math.Signbit(flow) {
			low = mid
			flow = fmid
		} else {
			high = mid
			fhigh = fmid
		}
	}
}

// series returns the sum of the series f(0), f(1), ...
//
// This implementation is fast, but subject to round-off error.
func series(f func(float64) float64) float64 {
	y, yp := 0.0, 1.0
	for n := 0.0; y != yp; n++ {
		yp = y
		y += f(n)
	}
	return y
}

// expandBracket widens [lo, hi] geometrically until f(lo) < 0 < f(hi)
// for a non-decreasing f. Infinite ends are replaced by finite
// starting points around the finite end.
func expandBracket(f func(float64) float64, lo, hi float64) (float64, float64) {
	switch {
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		lo, hi = -1, 1
	case math.IsInf(lo, -1):
		lo = hi - 1
	case math.IsInf(hi, 1):
		hi = lo + 1
	}
	for i := 0; f(lo) > 0 && i < 1100; i++ {
		lo -= hi - lo
	}
	for i := 0; f(hi) < 0 && i < 1100; i++ {
		hi += hi - lo
	}
	return lo, hi
}
