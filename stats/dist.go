// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// A Dist is a statistical distribution over points in R^Dim().
//
// Methods taking a point panic if its length is not Dim().
type Dist interface {
	// Dim returns the dimension of points of this distribution.
	Dim() int

	// PDF returns the value of the probability density function
	// of this distribution at x. This is never negative and is 0
	// outside Bounds.
	PDF(x []float64) float64

	// LogPDF returns the log of PDF(x). This is -Inf, not NaN,
	// where the density is 0.
	LogPDF(x []float64) float64

	// CDF returns the probability that each coordinate of a draw
	// is at most the corresponding coordinate of x. x may contain
	// infinities.
	CDF(x []float64) float64

	// Rand draws one point from this distribution into dst using
	// only src. If dst is nil, a new slice is allocated.
	Rand(dst []float64, src rand.Source) []float64

	// Mean returns the mean of this distribution in dst. If dst
	// is nil, a new slice is allocated.
	Mean(dst []float64) []float64

	// Bounds returns the axis-aligned support of this
	// distribution. Bounds may be infinite.
	Bounds() (lo, hi []float64)

	// NumParameters returns the number of parameters of this
	// distribution.
	NumParameters() int
}

// A Family is a distribution whose parameters are supplied
// externally. It is the conditional distribution of X given a
// parameter vector θ.
type Family interface {
	// Dim returns the dimension of the distribution's points.
	Dim() int

	// NumParameters returns the length of θ.
	NumParameters() int

	// At returns the distribution with parameters theta. If
	// theta is outside the parameter domain, At returns an error
	// wrapping ErrInvalidArgument.
	At(theta []float64) (Dist, error)
}

// A Prior is a distribution of the latent variable Y feeding a Link.
//
// Quantile maps the unit hypercube onto the support of the prior,
// which makes every Prior a gonum distmv.Quantiler.
type Prior interface {
	Dist

	// Quantile maps p in the unit hypercube to a point of the
	// prior and stores it in dst.
	Quantile(dst, p []float64) []float64

	// Marginal returns the i'th marginal distribution.
	Marginal(i int) Univariate

	// Independent reports whether the coordinates are
	// independent, in which case Quantile applies each marginal
	// quantile separately.
	Independent() bool
}

// A Univariate is a one-dimensional distribution with fixed
// parameters. The method set matches gonum's distuv distributions,
// so distuv.Normal, distuv.Uniform and distuv.Triangle are
// Univariates.
type Univariate interface {
	Prob(x float64) float64
	LogProb(x float64) float64
	CDF(x float64) float64
	Quantile(p float64) float64
	Mean() float64
	NumParameters() int
}

func checkDim(d Dist, x []float64) {
	if len(x) != d.Dim() {
		panic(ErrDimensionMismatch)
	}
}

func resize(dst []float64, n int) []float64 {
	if dst == nil {
		return make([]float64, n)
	}
	if len(dst) != n {
		panic(ErrDimensionMismatch)
	}
	return dst
}

// eachRow calls f(i) for each i in [0, n), spreading the calls
// across GOMAXPROCS goroutines.
func eachRow(n int, f func(i int)) {
	const chunk = 256
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	g.Wait()
}

// PDFEach returns d.PDF(xs[i]) for each row i of xs.
func PDFEach(d Dist, xs *mat.Dense) []float64 {
	n, _ := xs.Dims()
	ys := make([]float64, n)
	eachRow(n, func(i int) { ys[i] = d.PDF(xs.RawRowView(i)) })
	return ys
}

// CDFEach returns d.CDF(xs[i]) for each row i of xs.
func CDFEach(d Dist, xs *mat.Dense) []float64 {
	n, _ := xs.Dims()
	ys := make([]float64, n)
	eachRow(n, func(i int) { ys[i] = d.CDF(xs.RawRowView(i)) })
	return ys
}

// Draw draws n points from d. Row i of the result is drawn using
// only rng.Stream(i), so the result depends on rng and n but not on
// scheduling. If n is 0, Draw returns an empty matrix.
func Draw(d Dist, n int, rng Streamer) *mat.Dense {
	if n == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(n, d.Dim(), nil)
	eachRow(n, func(i int) {
		d.Rand(out.RawRowView(i), rng.Stream(uint64(i)))
	})
	return out
}
