// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// KLDivergence estimates the Kullback-Leibler divergence of q from p,
//
//	KL(p‖q) = E_p[log p(X) - log q(X)]
//
// by averaging log p - log q over the rows of sample, which must be
// drawn from p. Points where p is 0 are skipped. The estimate is +Inf
// if q is 0 where p is not, and NaN for an empty sample.
func KLDivergence(p, q func(x []float64) float64, sample *mat.Dense) float64 {
	if sample.IsEmpty() {
		return nan
	}
	n, _ := sample.Dims()
	terms := make([]float64, n)
	eachRow(n, func(i int) {
		x := sample.RawRowView(i)
		px := p(x)
		if px == 0 {
			terms[i] = nan
			return
		}
		terms[i] = math.Log(px) - math.Log(q(x))
	})
	sum, count := 0.0, 0
	for _, t := range terms {
		if math.IsNaN(t) {
			continue
		}
		sum += t
		count++
	}
	if count == 0 {
		return nan
	}
	return sum / float64(count)
}
