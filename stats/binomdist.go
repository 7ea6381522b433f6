// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// BinomialDist is a binomial distribution. As a Dist its points are
// one-dimensional, and PDF is the probability mass function.
type BinomialDist struct {
	// N is the number of independent Bernoulli trials. N >= 0.
	//
	// If N=1, this is equivalent to the Bernoulli distribution.
	N int

	// P is the probability of success in each trial. 0 <= P <= 1.
	P float64
}

// PMF is the probability of getting exactly int(k) successes in d.N
// independent Bernoulli trials with probability d.P.
func (d BinomialDist) PMF(k float64) float64 {
	ki := int(math.Floor(k))
	if ki < 0 || ki > d.N {
		return 0
	}
	return math.Exp(d.logPMF(ki))
}

func (d BinomialDist) logPMF(k int) float64 {
	// Handle P at the edges explicitly so 0*log(0) is 0.
	switch {
	case d.P == 0:
		if k == 0 {
			return 0
		}
		return -inf
	case d.P == 1:
		if k == d.N {
			return 0
		}
		return -inf
	}
	return lchoose(d.N, k) + float64(k)*math.Log(d.P) + float64(d.N-k)*math.Log1p(-d.P)
}

// CDF1 is the probability of getting k or fewer successes in d.N
// independent Bernoulli trials with probability d.P.
func (d BinomialDist) CDF1(k float64) float64 {
	k = math.Floor(k)
	ki := int(k)
	if ki < 0 {
		return 0
	} else if ki >= d.N {
		return 1
	}
	switch d.P {
	case 0:
		return 1
	case 1:
		return 0
	}
	return mathext.RegIncBeta(float64(d.N-ki), k+1, 1-d.P)
}

func (d BinomialDist) Dim() int { return 1 }

func (d BinomialDist) PDF(x []float64) float64 {
	checkDim(d, x)
	return d.PMF(x[0])
}

func (d BinomialDist) LogPDF(x []float64) float64 {
	checkDim(d, x)
	ki := int(math.Floor(x[0]))
	if ki < 0 || ki > d.N {
		return -inf
	}
	return d.logPMF(ki)
}

func (d BinomialDist) CDF(x []float64) float64 {
	checkDim(d, x)
	switch {
	case math.IsInf(x[0], 1):
		return 1
	case math.IsInf(x[0], -1):
		return 0
	}
	return d.CDF1(x[0])
}

// Rand draws by inverting the CDF with a single uniform variate.
func (d BinomialDist) Rand(dst []float64, src rand.Source) []float64 {
	dst = resize(dst, 1)
	u := openUnit(src)
	k, cum := 0, 0.0
	for ; k < d.N; k++ {
		cum += d.PMF(float64(k))
		if u <= cum {
			break
		}
	}
	dst[0] = float64(k)
	return dst
}

func (d BinomialDist) Bounds() (lo, hi []float64) {
	return []float64{0}, []float64{float64(d.N)}
}

func (d BinomialDist) Step() float64 {
	return 1
}

func (d BinomialDist) Mean(dst []float64) []float64 {
	dst = resize(dst, 1)
	dst[0] = float64(d.N) * d.P
	return dst
}

func (d BinomialDist) Variance() float64 {
	return float64(d.N) * d.P * (1 - d.P)
}

func (d BinomialDist) NumParameters() int { return 1 }

// NormalApprox returns a normal distribution approximation of
// binomial distribution d.
//
// Because the binomial distribution is discrete and the normal
// distribution is continuous, the caller must apply a continuity
// correction when using this approximation. Specifically, if b is the
// binomial distribution and n is the normal approximation, operations
// map as follows:
//
//	b.PMF(k) => n.CDF(k+0.5) - n.CDF(k-0.5)
//	b.CDF1(k) => n.CDF(k+0.5)
func (d BinomialDist) NormalApprox() distuv.Normal {
	return distuv.Normal{Mu: float64(d.N) * d.P, Sigma: math.Sqrt(d.Variance())}
}
