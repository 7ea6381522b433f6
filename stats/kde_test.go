// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestKDEOnePoint(t *testing.T) {
	kd := KDE{Bandwidth: []float64{2}}.FromMatrix(rowsFrom([]float64{1}))
	norm := distuv.Normal{Mu: 1, Sigma: 2}
	for _, x := range []float64{-3, 0, 1, 2.5} {
		if want, got := norm.Prob(x), kd.PDF([]float64{x}); !aeq(want, got) {
			t.Errorf("PDF(%v): want %v, got %v", x, want, got)
		}
		if want, got := norm.CDF(x), kd.CDF([]float64{x}); !aeq(want, got) {
			t.Errorf("CDF(%v): want %v, got %v", x, want, got)
		}
	}
	if got := kd.MarginalQuantile(0, 0.8); !aeq(norm.Quantile(0.8), got) {
		t.Errorf("Quantile(0.8): want %v, got %v", norm.Quantile(0.8), got)
	}
	if lo, hi := kd.Bounds(); !math.IsInf(lo[0], -1) || !math.IsInf(hi[0], 1) {
		t.Errorf("Bounds: want ±Inf, got %v..%v", lo, hi)
	}
}

func TestKDEProduct(t *testing.T) {
	xs := rowsFrom([]float64{0, 0}, []float64{1, 2}, []float64{-1, 3})
	kd := KDE{Bandwidth: []float64{0.5, 1}}.FromMatrix(xs)
	x := []float64{0.2, 1.7}
	want := 0.0
	for i := 0; i < 3; i++ {
		want += distuv.Normal{Mu: xs.At(i, 0), Sigma: 0.5}.Prob(x[0]) *
			distuv.Normal{Mu: xs.At(i, 1), Sigma: 1}.Prob(x[1])
	}
	want /= 3
	if got := kd.PDF(x); !aeq(want, got) {
		t.Errorf("PDF: want %v, got %v", want, got)
	}
	if got := kd.LogPDF(x); !aeq(math.Log(want), got) {
		t.Errorf("LogPDF: want %v, got %v", math.Log(want), got)
	}

	lo, hi := []float64{-0.5, 0}, []float64{1, 2.5}
	box := kd.BoxProbability(lo, hi)
	corners := kd.CDF(hi) - kd.CDF([]float64{lo[0], hi[1]}) - kd.CDF([]float64{hi[0], lo[1]}) + kd.CDF(lo)
	if !aeq(corners, box) {
		t.Errorf("BoxProbability %v, inclusion-exclusion %v", box, corners)
	}
	if got := kd.BoxProbability([]float64{-inf, -inf}, []float64{inf, inf}); !aeq(1, got) {
		t.Errorf("total probability %v", got)
	}

	if m := kd.Mean(nil); !aeq(0, m[0]) || !aeq(5.0/3, m[1]) {
		t.Errorf("Mean: want [0 5/3], got %v", m)
	}
}

func TestKDEReflect(t *testing.T) {
	xs := rowsFrom([]float64{0.1}, []float64{0.5}, []float64{0.95})
	for _, k := range []KDE{
		{Bandwidth: []float64{0.3}, BoundaryMin: []float64{0}, BoundaryMax: []float64{inf}},
		{Bandwidth: []float64{0.3}, BoundaryMin: []float64{-inf}, BoundaryMax: []float64{1}},
		{Bandwidth: []float64{0.3}, BoundaryMin: []float64{0}, BoundaryMax: []float64{1}},
	} {
		kd := k.FromMatrix(xs)
		lo, hi := kd.Bounds()
		a, b := math.Max(lo[0], -5), math.Min(hi[0], 6)
		total := quad.Fixed(func(x float64) float64 { return kd.PDF([]float64{x}) }, a, b, 400, nil, 0)
		if !aeqTol(1, total, 1e-6) {
			t.Errorf("%v..%v: density integrates to %v", lo, hi, total)
		}
		mean := quad.Fixed(func(x float64) float64 { return x * kd.PDF([]float64{x}) }, a, b, 400, nil, 0)
		if got := kd.Mean(nil)[0]; !aeqTol(mean, got, 1e-6) {
			t.Errorf("%v..%v: Mean %v, integrated mean %v", lo, hi, got, mean)
		}
		// The density is the derivative of the CDF.
		for _, x := range []float64{0.05, 0.5, 0.9} {
			const dx = 1e-5
			slope := (kd.CDF([]float64{x + dx}) - kd.CDF([]float64{x - dx})) / (2 * dx)
			if pdf := kd.PDF([]float64{x}); !aeqTol(slope, pdf, 1e-5) {
				t.Errorf("%v..%v: PDF(%v) = %v, CDF slope %v", lo, hi, x, pdf, slope)
			}
		}
		if got := kd.CDF([]float64{b}); !aeq(1, got) {
			t.Errorf("%v..%v: CDF(%v) = %v", lo, hi, b, got)
		}
		if got := kd.CDF([]float64{lo[0] - 1}); got != 0 && !math.IsInf(lo[0], -1) {
			t.Errorf("%v..%v: CDF below the support = %v", lo, hi, got)
		}
		for i, x := range Column(Draw(kd, 2000, PCG{Seed: 4}), 0).Xs {
			if x < lo[0] || x > hi[0] {
				t.Fatalf("%v..%v: draw %d = %v outside the support", lo, hi, i, x)
			}
		}
	}
}

func TestKDEBandwidth(t *testing.T) {
	norm := NewProduct(distuv.Normal{Mu: 0, Sigma: 1}, distuv.Normal{Mu: 0, Sigma: 3})
	xs := Draw(norm, 4000, PCG{Seed: 8})
	kd := KDE{}.FromMatrix(xs)
	// Scott's rule in two dimensions is 1.06 σ n^(-1/6).
	for j, sigma := range []float64{1, 3} {
		want := 1.06 * sigma * math.Pow(4000, -1.0/6)
		if h := kd.Bandwidth(j); math.Abs(h/want-1) > 0.05 {
			t.Errorf("bandwidth %d: want about %v, got %v", j, want, h)
		}
	}

	// Marginal quantiles approach the true ones.
	for j, sigma := range []float64{1, 3} {
		want := sigma * distuv.UnitNormal.Quantile(0.9)
		if got := kd.MarginalQuantile(j, 0.9); math.Abs(got-want) > 0.1*sigma {
			t.Errorf("marginal %d 0.9 quantile: want %v, got %v", j, want, got)
		}
	}
	m := kd.Marginal(1)
	if p := m.CDF(m.Quantile(0.3)); !aeqTol(0.3, p, 1e-9) {
		t.Errorf("CDF(Quantile(0.3)) = %v", p)
	}
}

func TestKDEDelta(t *testing.T) {
	kd := KDE{Kernel: DeltaKernel}.FromMatrix(rowsFrom([]float64{1}, []float64{2}, []float64{2}, []float64{4}))
	testFunc(t, "CDF", func(x float64) float64 { return kd.CDF([]float64{x}) },
		map[float64]float64{0: 0, 1: 0.25, 1.5: 0.25, 2: 0.75, 3.9: 0.75, 4: 1})
	if got := kd.PDF([]float64{2}); got != 0 {
		t.Errorf("delta PDF: want 0, got %v", got)
	}
}
