// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// NormalFamily is the family of D-dimensional normal distributions.
//
// The parameters are the mean and standard deviation of each
// coordinate, (μ1, σ1, ..., μD, σD), followed by the D(D-1)/2
// correlation coefficients R21, R31, R32, ..., R_D(D-1) in row order.
// If D is 0, it is treated as 1.
type NormalFamily struct {
	D int
}

func (f NormalFamily) dim() int {
	if f.D == 0 {
		return 1
	}
	return f.D
}

func (f NormalFamily) Dim() int { return f.dim() }

func (f NormalFamily) NumParameters() int {
	d := f.dim()
	return 2*d + d*(d-1)/2
}

func (f NormalFamily) At(theta []float64) (Dist, error) {
	if len(theta) != f.NumParameters() {
		return nil, fmt.Errorf("normal family needs %d parameters, got %d: %w", f.NumParameters(), len(theta), ErrDimensionMismatch)
	}
	d := f.dim()
	mu, sigma := make([]float64, d), make([]float64, d)
	for i := range mu {
		mu[i], sigma[i] = theta[2*i], theta[2*i+1]
		if math.IsNaN(mu[i]) || math.IsInf(mu[i], 0) {
			return nil, fmt.Errorf("normal mean %v: %w", mu[i], ErrInvalidArgument)
		}
		if !(sigma[i] > 0) || math.IsInf(sigma[i], 1) {
			return nil, fmt.Errorf("normal standard deviation %v: %w", sigma[i], ErrInvalidArgument)
		}
	}
	corr := theta[2*d:]
	independent := true
	for _, r := range corr {
		if !(-1 < r && r < 1) {
			return nil, fmt.Errorf("normal correlation %v: %w", r, ErrInvalidArgument)
		}
		if r != 0 {
			independent = false
		}
	}
	if independent {
		ms := make([]Univariate, d)
		for i := range ms {
			ms[i] = distuv.Normal{Mu: mu[i], Sigma: sigma[i]}
		}
		return NewProduct(ms...), nil
	}
	return newNormalDist(mu, sigma, corr)
}

// normalDist is a correlated multivariate normal distribution.
type normalDist struct {
	mu, sigma []float64
	corr      []float64
	mvn       *distmv.Normal
	chol      mat.Cholesky

	// cube holds standard points for estimating the CDF in
	// three or more dimensions.
	cubeOnce sync.Once
	cube     *mat.Dense
}

func newNormalDist(mu, sigma, corr []float64) (*normalDist, error) {
	d := len(mu)
	cov := mat.NewSymDense(d, nil)
	k := 0
	for i := 0; i < d; i++ {
		cov.SetSym(i, i, sigma[i]*sigma[i])
		for j := 0; j < i; j++ {
			cov.SetSym(i, j, sigma[i]*sigma[j]*corr[k])
			k++
		}
	}
	n := &normalDist{mu: mu, sigma: sigma, corr: corr}
	if !n.chol.Factorize(cov) {
		return nil, fmt.Errorf("normal correlation matrix is not positive definite: %w", ErrInvalidArgument)
	}
	n.mvn = distmv.NewNormalChol(mu, &n.chol, PCG{}.Stream(0))
	return n, nil
}

func (n *normalDist) Dim() int { return len(n.mu) }

func (n *normalDist) PDF(x []float64) float64 {
	checkDim(n, x)
	return n.mvn.Prob(x)
}

func (n *normalDist) LogPDF(x []float64) float64 {
	checkDim(n, x)
	return n.mvn.LogProb(x)
}

// normalTail is where the standard normal CDF is 0 or 1 to double
// precision.
const normalTail = 8.5

// CDF is exact up to quadrature error in two dimensions. In three or
// more it is a quasi-Monte Carlo estimate from 4096 points and is
// accurate to about 1e-3.
func (n *normalDist) CDF(x []float64) float64 {
	checkDim(n, x)
	if n.Dim() == 2 {
		z1 := (x[0] - n.mu[0]) / n.sigma[0]
		z2 := (x[1] - n.mu[1]) / n.sigma[1]
		return bivariateNormalCDF(z1, z2, n.corr[0])
	}

	n.cubeOnce.Do(n.initCube)
	r, _ := n.cube.Dims()
	count := 0
outer:
	for i := 0; i < r; i++ {
		for j, v := range n.cube.RawRowView(i) {
			if v > x[j] {
				continue outer
			}
		}
		count++
	}
	return float64(count) / float64(r)
}

func (n *normalDist) initCube() {
	const points = 4096
	n.cube = mat.NewDense(points, n.Dim(), nil)
	h := samplemv.Halton{Kind: samplemv.Owen, Q: n.mvn, Src: PCG{}.Stream(0)}
	h.Sample(n.cube)
}

// bivariateNormalCDF returns P(Z1 <= z1, Z2 <= z2) for standard
// normals with correlation rho by integrating the conditional CDF of
// Z2 against the density of Z1.
func bivariateNormalCDF(z1, z2, rho float64) float64 {
	std := distuv.UnitNormal
	switch {
	case math.IsInf(z1, 1):
		return std.CDF(z2)
	case math.IsInf(z2, 1):
		return std.CDF(z1)
	}
	upper := math.Min(z1, normalTail)
	if upper <= -normalTail || z2 <= -normalTail {
		return 0
	}
	s := math.Sqrt(1 - rho*rho)
	f := func(t float64) float64 {
		return std.Prob(t) * std.CDF((z2-rho*t)/s)
	}
	return quad.Fixed(f, -normalTail, upper, 64, nil, 0)
}

func (n *normalDist) Rand(dst []float64, src rand.Source) []float64 {
	dst = resize(dst, n.Dim())
	return distmv.NormalRand(dst, n.mu, &n.chol, src)
}

func (n *normalDist) Mean(dst []float64) []float64 {
	dst = resize(dst, n.Dim())
	copy(dst, n.mu)
	return dst
}

func (n *normalDist) Bounds() (lo, hi []float64) {
	lo, hi = make([]float64, n.Dim()), make([]float64, n.Dim())
	for i := range lo {
		lo[i], hi[i] = -inf, inf
	}
	return
}

func (n *normalDist) NumParameters() int {
	return NormalFamily{D: n.Dim()}.NumParameters()
}

// UniformFamily is the family of uniform distributions on
// D-dimensional boxes. The parameters are the bounds of each
// coordinate, (a1, b1, ..., aD, bD), with ai < bi. If D is 0, it is
// treated as 1.
type UniformFamily struct {
	D int
}

func (f UniformFamily) Dim() int {
	if f.D == 0 {
		return 1
	}
	return f.D
}

func (f UniformFamily) NumParameters() int { return 2 * f.Dim() }

func (f UniformFamily) At(theta []float64) (Dist, error) {
	if len(theta) != f.NumParameters() {
		return nil, fmt.Errorf("uniform family needs %d parameters, got %d: %w", f.NumParameters(), len(theta), ErrDimensionMismatch)
	}
	ms := make([]Univariate, f.Dim())
	for i := range ms {
		a, b := theta[2*i], theta[2*i+1]
		if !(a < b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("uniform bounds [%v, %v]: %w", a, b, ErrInvalidArgument)
		}
		ms[i] = distuv.Uniform{Min: a, Max: b}
	}
	return NewProduct(ms...), nil
}

// BinomialFamily is the family of binomial distributions with N
// trials. The single parameter is the success probability.
type BinomialFamily struct {
	N int
}

func (f BinomialFamily) Dim() int           { return 1 }
func (f BinomialFamily) NumParameters() int { return 1 }

func (f BinomialFamily) At(theta []float64) (Dist, error) {
	if len(theta) != 1 {
		return nil, fmt.Errorf("binomial family needs 1 parameter, got %d: %w", len(theta), ErrDimensionMismatch)
	}
	if f.N < 0 {
		return nil, fmt.Errorf("binomial trials %d: %w", f.N, ErrInvalidArgument)
	}
	if p := theta[0]; !(0 <= p && p <= 1) {
		return nil, fmt.Errorf("binomial probability %v: %w", p, ErrInvalidArgument)
	}
	return BinomialDist{N: f.N, P: theta[0]}, nil
}
