// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// KDE represents options for constructing a kernel density estimate.
//
// Kernel density estimation is a method for constructing an estimate
// ƒ̂(x) of a unknown distribution ƒ(x) given a sample from that
// distribution. Unlike many techniques, kernel density estimation is
// non-parametric: in general, it doesn't assume any particular true
// distribution (note, however, that the resulting distribution
// depends deeply on the selected bandwidth, and many bandwidth
// estimation techniques assume normal reference rules).
//
// Multivariate samples use a product kernel: one one-dimensional
// kernel per coordinate, each with its own bandwidth.
//
// The default (zero) value of KDE is a reasonable default
// configuration.
type KDE struct {
	// Kernel is the kernel to use for the KDE.
	Kernel KDEKernel

	// Bandwidth is the bandwidth of each coordinate.
	//
	// If this is nil, the bandwidths are computed from the
	// provided data using BandwidthScott scaled to the sample's
	// dimension.
	Bandwidth []float64

	// BoundaryMethod is the boundary correction method to use for
	// the KDE. The default value is BoundaryReflect; however, the
	// default bounds are effectively +/-inf, which is equivalent
	// to performing no boundary correction.
	BoundaryMethod KDEBoundaryMethod

	// [BoundaryMin[i], BoundaryMax[i]) specify a bounded support
	// for coordinate i. If both are nil, they are treated as
	// +/-inf.
	//
	// To specify a half-bounded support, set Min to math.Inf(-1)
	// or Max to math.Inf(1).
	BoundaryMin []float64
	BoundaryMax []float64
}

// BandwidthSilverman is a bandwidth estimator implementing
// Silverman's Rule of Thumb. It's fast, but not very robust to
// outliers as it assumes data is approximately normal.
//
// Silverman, B. W. (1986) Density Estimation.
func BandwidthSilverman(data interface {
	StdDev() float64
	Weight() float64
}) float64 {
	return 1.06 * data.StdDev() * math.Pow(data.Weight(), -1.0/5)
}

// BandwidthScott is a bandwidth estimator implementing Scott's Rule.
// This is generally robust to outliers: it chooses the minimum
// between the sample's standard deviation and an robust estimator of
// a Gaussian distribution's standard deviation.
//
// Scott, D. W. (1992) Multivariate Density Estimation: Theory,
// Practice, and Visualization.
func BandwidthScott(data interface {
	StdDev() float64
	Weight() float64
	Percentile(float64) float64
}) float64 {
	iqr := data.Percentile(0.75) - data.Percentile(0.25)
	hScale := 1.06 * math.Pow(data.Weight(), -1.0/5)
	stdDev := data.StdDev()
	if stdDev < iqr/1.349 {
		// Use Silverman's Rule of Thumb
		return hScale * stdDev
	} else {
		// Use IQR/1.349 as a robust estimator of the standard
		// deviation of a Gaussian distribution.
		return hScale * (iqr / 1.349)
	}
}

// KDEKernel represents a kernel to use for a KDE.
type KDEKernel int

const (
	GaussianKernel KDEKernel = iota

	// DeltaKernel is a Dirac delta function. The PDF of such a
	// KDE is not well-defined and is reported as 0, but the CDF
	// will represent each sample as an instantaneous increase.
	// This kernel ignores bandwidth and never requires boundary
	// correction.
	DeltaKernel
)

// KDEBoundaryMethod represents a boundary correction method for
// constructing a KDE with bounded support.
type KDEBoundaryMethod int

const (
	// BoundaryReflect reflects the density estimate at the
	// boundaries. For example, for a KDE with support [0, inf),
	// this is equivalent to ƒ̂ᵣ(x)=ƒ̂(x)+ƒ̂(-x) for x>=0. This is a
	// simple and fast technique, but enforces that ƒ̂ᵣ'(0)=0, so
	// it may not be applicable to all distributions.
	BoundaryReflect KDEBoundaryMethod = iota

	// boundaryNone represents no boundary correction.
	//
	// This is used internally when the bounds are -/+inf.
	boundaryNone
)

// FromMatrix returns the kernel density estimate for the points in the
// rows of xs. xs must have at least one row.
func (k KDE) FromMatrix(xs *mat.Dense) *KernelDist {
	n, d := xs.Dims()
	if n == 0 {
		panic("KDE of an empty sample")
	}
	switch k.Kernel {
	case GaussianKernel, DeltaKernel:
	default:
		panic(fmt.Sprint("unknown kernel ", k.Kernel))
	}

	h := k.Bandwidth
	if h == nil {
		// Scott's rule scales as n^(-1/(d+4)). BandwidthScott is
		// the one-dimensional rule, so rescale it.
		scale := math.Pow(float64(n), 1.0/5-1.0/float64(d+4))
		h = make([]float64, d)
		for j := range h {
			h[j] = BandwidthScott(Column(xs, j)) * scale
			if !(h[j] > 0) {
				// Constant column.
				h[j] = 1e-6 * math.Max(1, math.Abs(xs.At(0, j)))
			}
		}
	} else if len(h) != d {
		panic(ErrDimensionMismatch)
	}

	kd := &KernelDist{
		kernel: k.Kernel,
		xs:     mat.DenseCopyOf(xs),
		h:      h,
		bm:     make([]KDEBoundaryMethod, d),
		min:    make([]float64, d),
		max:    make([]float64, d),
	}
	for j := 0; j < d; j++ {
		min, max := -inf, inf
		if k.BoundaryMin != nil || k.BoundaryMax != nil {
			min, max = k.BoundaryMin[j], k.BoundaryMax[j]
		}
		kd.min[j], kd.max[j] = min, max
		kd.bm[j] = k.BoundaryMethod
		if math.IsInf(min, -1) && math.IsInf(max, 1) || k.Kernel == DeltaKernel {
			kd.bm[j] = boundaryNone
		}
	}
	return kd
}

// KernelDist is a kernel density estimate. It is a Dist, and it can
// report box probabilities and marginal quantiles directly.
type KernelDist struct {
	kernel   KDEKernel
	xs       *mat.Dense
	h        []float64
	bm       []KDEBoundaryMethod
	min, max []float64 // Support bounds
}

// Bandwidth returns the bandwidth of coordinate j.
func (kd *KernelDist) Bandwidth(j int) float64 { return kd.h[j] }

func (kd *KernelDist) Dim() int {
	_, d := kd.xs.Dims()
	return d
}

func (kd *KernelDist) n() int {
	n, _ := kd.xs.Dims()
	return n
}

func (kd *KernelDist) kernelPDF(j int, x float64) float64 {
	if kd.kernel == DeltaKernel {
		return 0
	}
	return distuv.Normal{Mu: 0, Sigma: kd.h[j]}.Prob(x)
}

func (kd *KernelDist) kernelCDF(j int, x float64) float64 {
	if kd.kernel == DeltaKernel {
		if x >= 0 {
			return 1
		}
		return 0
	}
	return distuv.Normal{Mu: 0, Sigma: kd.h[j]}.CDF(x)
}

// pdf1 is the density of the kernel of coordinate j centered at c,
// with boundary correction.
func (kd *KernelDist) pdf1(j int, x, c float64) float64 {
	min, max := kd.min[j], kd.max[j]
	if x < min || x >= max {
		return 0
	}
	y := func(x float64) float64 { return kd.kernelPDF(j, x-c) }
	switch kd.bm[j] {
	default:
		panic("unknown boundary correction method")
	case boundaryNone:
		return y(x)
	case BoundaryReflect:
		if math.IsInf(max, 1) {
			return y(x) + y(2*min-x)
		} else if math.IsInf(min, -1) {
			return y(x) + y(2*max-x)
		}
		d := 2 * (max - min)
		w := 2 * (x - min)
		return series(func(n float64) float64 {
			// Points >= x
			return y(x+n*d) + y(x+n*d-w)
		}) + series(func(n float64) float64 {
			// Points < x
			return y(x-(n+1)*d-w) + y(x-(n+1)*d)
		})
	}
}

// cdf1 is the CDF of the kernel of coordinate j centered at c, with
// boundary correction.
func (kd *KernelDist) cdf1(j int, x, c float64) float64 {
	min, max := kd.min[j], kd.max[j]
	if x < min {
		return 0
	} else if x >= max {
		return 1
	}
	y := func(x float64) float64 { return kd.kernelCDF(j, x-c) }
	switch kd.bm[j] {
	default:
		panic("unknown boundary correction method")
	case boundaryNone:
		return y(x)
	case BoundaryReflect:
		if math.IsInf(max, 1) {
			return y(x) - y(2*min-x)
		} else if math.IsInf(min, -1) {
			return y(x) + (1 - y(2*max-x))
		}
		d := 2 * (max - min)
		w := 2 * (x - min)
		return series(func(n float64) float64 {
			// Windows >= x-w
			return y(x+n*d) - y(x+n*d-w)
		}) + series(func(n float64) float64 {
			// Windows < x-w
			return y(x-(n+1)*d) - y(x-(n+1)*d-w)
		})
	}
}

// average returns the mean over sample points of term(row).
func (kd *KernelDist) average(term func(row []float64) float64) float64 {
	n := kd.n()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += term(kd.xs.RawRowView(i))
	}
	return sum / float64(n)
}

func (kd *KernelDist) PDF(x []float64) float64 {
	checkDim(kd, x)
	return kd.average(func(row []float64) float64 {
		p := 1.0
		for j, c := range row {
			if p *= kd.pdf1(j, x[j], c); p == 0 {
				break
			}
		}
		return p
	})
}

func (kd *KernelDist) LogPDF(x []float64) float64 {
	return math.Log(kd.PDF(x))
}

func (kd *KernelDist) CDF(x []float64) float64 {
	checkDim(kd, x)
	return kd.average(func(row []float64) float64 {
		p := 1.0
		for j, c := range row {
			if p *= kd.cdf1(j, x[j], c); p == 0 {
				break
			}
		}
		return p
	})
}

// BoxProbability returns the probability of the box [lo, hi].
func (kd *KernelDist) BoxProbability(lo, hi []float64) float64 {
	checkDim(kd, lo)
	checkDim(kd, hi)
	return kd.average(func(row []float64) float64 {
		p := 1.0
		for j, c := range row {
			if p *= kd.cdf1(j, hi[j], c) - kd.cdf1(j, lo[j], c); p == 0 {
				break
			}
		}
		return p
	})
}

// MarginalCDF returns the CDF of coordinate j at x.
func (kd *KernelDist) MarginalCDF(j int, x float64) float64 {
	return kd.average(func(row []float64) float64 {
		return kd.cdf1(j, x, row[j])
	})
}

// MarginalQuantile returns the p'th quantile of coordinate j.
func (kd *KernelDist) MarginalQuantile(j int, p float64) float64 {
	if p <= 0 {
		return kd.min[j]
	} else if p >= 1 {
		return kd.max[j]
	}
	f := func(x float64) float64 { return kd.MarginalCDF(j, x) - p }
	lo, hi := Column(kd.xs, j).Bounds()
	lo, hi = math.Max(lo-kd.h[j], kd.min[j]), math.Min(hi+kd.h[j], kd.max[j])
	lo, hi = expandBracket(f, lo, hi)
	// Explicitly accept discontinuities, since we may be using a
	// discontiguous kernel.
	x, _ := bisect(f, lo, hi, 1e-12)
	return x
}

// Marginal returns the estimate of coordinate j as a Univariate.
func (kd *KernelDist) Marginal(j int) Univariate {
	return kernelMarginal{kd, j}
}

// Rand picks a sample point uniformly and perturbs each coordinate by
// its kernel, folding the result back into bounded supports.
func (kd *KernelDist) Rand(dst []float64, src rand.Source) []float64 {
	dst = resize(dst, kd.Dim())
	rnd := rand.New(src)
	row := kd.xs.RawRowView(rnd.Intn(kd.n()))
	for j, c := range row {
		x := c
		if kd.kernel == GaussianKernel {
			x += kd.h[j] * rnd.NormFloat64()
		}
		if kd.bm[j] == BoundaryReflect {
			x = reflectInto(x, kd.min[j], kd.max[j])
		}
		dst[j] = x
	}
	return dst
}

// reflectInto folds x into [min, max] by reflecting at the bounds.
func reflectInto(x, min, max float64) float64 {
	switch {
	case math.IsInf(max, 1):
		if x < min {
			return 2*min - x
		}
	case math.IsInf(min, -1):
		if x > max {
			return 2*max - x
		}
	default:
		d := 2 * (max - min)
		x = math.Mod(x-min, d)
		if x < 0 {
			x += d
		}
		if x > max-min {
			x = d - x
		}
		x += min
	}
	return x
}

// Mean returns the mean of the estimate. Without boundary correction
// this is the mean of the sample points.
func (kd *KernelDist) Mean(dst []float64) []float64 {
	dst = resize(dst, kd.Dim())
	for j := range dst {
		if kd.bm[j] != BoundaryReflect {
			dst[j] = Column(kd.xs, j).Mean()
			continue
		}
		dst[j] = kd.average(func(row []float64) float64 {
			return kd.mean1(j, row[j])
		})
	}
	return dst
}

// mean1 is the mean of the reflected kernel of coordinate j centered
// at c. Each image of c contributes its first moment over [min, max].
func (kd *KernelDist) mean1(j int, c float64) float64 {
	min, max, h := kd.min[j], kd.max[j], kd.h[j]
	m := func(image float64) float64 { return truncatedMoment(image, h, min, max) }
	switch {
	case math.IsInf(max, 1):
		return m(c) + m(2*min-c)
	case math.IsInf(min, -1):
		return m(c) + m(2*max-c)
	}
	d := 2 * (max - min)
	return series(func(n float64) float64 {
		return m(c-n*d) + m(2*min-c+n*d)
	}) + series(func(n float64) float64 {
		return m(c+(n+1)*d) + m(2*min-c-(n+1)*d)
	})
}

// truncatedMoment returns the integral of x·N(x; mu, sigma) over [a, b].
func truncatedMoment(mu, sigma, a, b float64) float64 {
	lo, hi := (a-mu)/sigma, (b-mu)/sigma
	n := distuv.UnitNormal
	return mu*(n.CDF(hi)-n.CDF(lo)) + sigma*(n.Prob(lo)-n.Prob(hi))
}

func (kd *KernelDist) Bounds() (lo, hi []float64) {
	lo = append([]float64(nil), kd.min...)
	hi = append([]float64(nil), kd.max...)
	return
}

// NumParameters returns the number of bandwidths.
func (kd *KernelDist) NumParameters() int { return kd.Dim() }

// kernelMarginal is one coordinate of a KernelDist.
type kernelMarginal struct {
	kd *KernelDist
	j  int
}

func (m kernelMarginal) Prob(x float64) float64 {
	return m.kd.average(func(row []float64) float64 {
		return m.kd.pdf1(m.j, x, row[m.j])
	})
}

func (m kernelMarginal) LogProb(x float64) float64 { return math.Log(m.Prob(x)) }
func (m kernelMarginal) CDF(x float64) float64     { return m.kd.MarginalCDF(m.j, x) }
func (m kernelMarginal) Quantile(p float64) float64 {
	return m.kd.MarginalQuantile(m.j, p)
}
func (m kernelMarginal) Mean() float64      { return Column(m.kd.xs, m.j).Mean() }
func (m kernelMarginal) NumParameters() int { return 1 }
