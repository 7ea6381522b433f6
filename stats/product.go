// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"

	"golang.org/x/exp/rand"
)

// Product is the distribution of independent coordinates with the
// given marginal distributions. It is the usual Prior.
//
// Marginal parameters are fixed; any random source stored in a
// distuv marginal is ignored because Product samples by inversion.
type Product struct {
	Marginals []Univariate
}

// NewProduct returns the product of the marginals ms.
func NewProduct(ms ...Univariate) *Product {
	return &Product{Marginals: ms}
}

func (p *Product) Dim() int { return len(p.Marginals) }

func (p *Product) PDF(x []float64) float64 {
	checkDim(p, x)
	y := 1.0
	for i, m := range p.Marginals {
		y *= m.Prob(x[i])
		if y == 0 {
			return 0
		}
	}
	return y
}

func (p *Product) LogPDF(x []float64) float64 {
	checkDim(p, x)
	y := 0.0
	for i, m := range p.Marginals {
		lp := m.LogProb(x[i])
		if lp == -inf || math.IsNaN(lp) && m.Prob(x[i]) == 0 {
			return -inf
		}
		y += lp
	}
	return y
}

func (p *Product) CDF(x []float64) float64 {
	checkDim(p, x)
	y := 1.0
	for i, m := range p.Marginals {
		y *= marginalCDF(m, x[i])
	}
	return y
}

// marginalCDF is m.CDF(x) extended to ±Inf.
func marginalCDF(m Univariate, x float64) float64 {
	switch {
	case math.IsInf(x, 1):
		return 1
	case math.IsInf(x, -1):
		return 0
	}
	return m.CDF(x)
}

func (p *Product) Rand(dst []float64, src rand.Source) []float64 {
	dst = resize(dst, p.Dim())
	for i, m := range p.Marginals {
		dst[i] = m.Quantile(openUnit(src))
	}
	return dst
}

func (p *Product) Mean(dst []float64) []float64 {
	dst = resize(dst, p.Dim())
	for i, m := range p.Marginals {
		dst[i] = m.Mean()
	}
	return dst
}

func (p *Product) Bounds() (lo, hi []float64) {
	lo, hi = make([]float64, p.Dim()), make([]float64, p.Dim())
	for i, m := range p.Marginals {
		lo[i], hi[i] = m.Quantile(0), m.Quantile(1)
	}
	return
}

func (p *Product) NumParameters() int {
	n := 0
	for _, m := range p.Marginals {
		n += m.NumParameters()
	}
	return n
}

func (p *Product) Quantile(dst, u []float64) []float64 {
	checkDim(p, u)
	dst = resize(dst, p.Dim())
	for i, m := range p.Marginals {
		dst[i] = m.Quantile(u[i])
	}
	return dst
}

func (p *Product) Marginal(i int) Univariate { return p.Marginals[i] }

func (p *Product) Independent() bool { return true }

// MarginalQuantile returns the p'th quantile of coordinate i.
func (p *Product) MarginalQuantile(i int, q float64) float64 {
	return p.Marginals[i].Quantile(q)
}

// BoxProbability returns the probability of the box [lo, hi].
func (p *Product) BoxProbability(lo, hi []float64) float64 {
	y := 1.0
	for i, m := range p.Marginals {
		y *= marginalCDF(m, hi[i]) - marginalCDF(m, lo[i])
	}
	return y
}
