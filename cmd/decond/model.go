// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aclements/go-decond/stats"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// A model is a named family, prior and link.
type model struct {
	name        string
	description string
	family      stats.Family
	prior       stats.Prior
	link        stats.Link

	// exact is the deconditioned density, if known.
	exact func(x []float64) float64

	// truth is the latent value used to simulate observations.
	truth []float64
}

var models = map[string]*model{
	"regular": {
		name:        "regular",
		description: "X | Y ~ N(Y², Y), Y ~ U(1, 2)",
		family:      stats.NormalFamily{},
		prior:       stats.NewProduct(distuv.Uniform{Min: 1, Max: 2}),
		link: stats.LinkFunc{In: 1, Out: 2, F: func(dst, y []float64) {
			dst[0], dst[1] = y[0]*y[0], y[0]
		}},
		exact: func(x []float64) float64 {
			return quad.Fixed(func(y float64) float64 {
				return distuv.Normal{Mu: y * y, Sigma: y}.Prob(x[0])
			}, 1, 2, 200, nil, 0)
		},
		truth: []float64{1.5},
	},
	"irregular": {
		name:        "irregular",
		description: "X | Y ~ U(0, 1+Y²), Y ~ U(0, 1)",
		family:      stats.UniformFamily{},
		prior:       stats.NewProduct(distuv.Uniform{Min: 0, Max: 1}),
		link: stats.LinkFunc{In: 1, Out: 2, F: func(dst, y []float64) {
			dst[0], dst[1] = 0, 1+y[0]*y[0]
		}},
		exact: func(x []float64) float64 {
			switch {
			case x[0] < 0 || x[0] > 2:
				return 0
			case x[0] <= 1:
				return math.Pi / 4
			}
			return math.Pi/4 - math.Atan(math.Sqrt(x[0]-1))
		},
		truth: []float64{0.5},
	},
	"scale": {
		name:        "scale",
		description: "X | Y ~ N(0, diag(Y1², Y2²)), Y1, Y2 ~ Triangle(0, 2, 1)",
		family:      stats.NormalFamily{D: 2},
		prior:       stats.NewProduct(distuv.NewTriangle(0, 2, 1, nil), distuv.NewTriangle(0, 2, 1, nil)),
		link: stats.LinkFunc{In: 2, Out: 5, F: func(dst, y []float64) {
			dst[0], dst[1], dst[2], dst[3], dst[4] = 0, y[0], 0, y[1], 0
		}},
		truth: []float64{1.2, 0.8},
	},
	"binomial": {
		name:        "binomial",
		description: "X | Y ~ Binomial(10, Y), Y ~ U(0, 1)",
		family:      stats.BinomialFamily{N: 10},
		prior:       stats.NewProduct(distuv.Uniform{Min: 0, Max: 1}),
		link: stats.LinkFunc{In: 1, Out: 1, F: func(dst, y []float64) {
			dst[0] = y[0]
		}},
		exact: func(x []float64) float64 {
			if k := x[0]; k >= 0 && k <= 10 && k == math.Trunc(k) {
				return 1.0 / 11
			}
			return 0
		},
		truth: []float64{0.3},
	},
}

func modelNames() string {
	var names []string
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func lookupModel(name string) (*model, error) {
	m, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q; choose one of %s", name, modelNames())
	}
	return m, nil
}

// deconditioned builds the model with disc.
func (m *model) deconditioned(disc stats.Discretization) (*stats.Deconditioned, error) {
	return stats.NewDeconditionedWith(m.family, m.prior, m.link, disc)
}

// conditional returns the distribution of X at the latent value y.
func (m *model) conditional(y []float64) (stats.Dist, error) {
	if len(y) != m.prior.Dim() {
		return nil, fmt.Errorf("latent value %v for a %d-dimensional prior: %w", y, m.prior.Dim(), stats.ErrDimensionMismatch)
	}
	return m.family.At(m.link.Eval(nil, y))
}
