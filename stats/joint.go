// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// JointByConditioning is the joint distribution of (Y, X) when Y
// follows a Prior and X given Y follows a Family at g(Y) for a Link g.
// Points are the concatenation of y and x. Its density
//
//	p(y, x) = π(y) f(x; g(y))
//
// is exact, as is Rand. CDF and Mean integrate over the prior with a
// Gauss rule sized by the discretization captured at construction.
type JointByConditioning struct {
	family Family
	prior  Prior
	link   Link
	disc   Discretization
}

// NewJointByConditioning returns the joint distribution of prior and
// family through link. It returns an error wrapping
// ErrDimensionMismatch if link does not map the prior's space to the
// family's parameters.
func NewJointByConditioning(family Family, prior Prior, link Link) (*JointByConditioning, error) {
	if err := checkComposition(family, prior, link); err != nil {
		return nil, err
	}
	return &JointByConditioning{family, prior, link, DefaultDiscretization()}, nil
}

func (j *JointByConditioning) Dim() int { return j.prior.Dim() + j.family.Dim() }

func (j *JointByConditioning) split(z []float64) (y, x []float64) {
	checkDim(j, z)
	dy := j.prior.Dim()
	return z[:dy:dy], z[dy:]
}

// at returns the family at g(y), or nil if the family rejects it.
func (j *JointByConditioning) at(y []float64) Dist {
	c, err := j.family.At(j.link.Eval(nil, y))
	if err != nil {
		return nil
	}
	return c
}

func (j *JointByConditioning) PDF(z []float64) float64 {
	y, x := j.split(z)
	py := j.prior.PDF(y)
	if py == 0 {
		return 0
	}
	c := j.at(y)
	if c == nil {
		return 0
	}
	return py * c.PDF(x)
}

func (j *JointByConditioning) LogPDF(z []float64) float64 {
	y, x := j.split(z)
	lpy := j.prior.LogPDF(y)
	if lpy == -inf {
		return -inf
	}
	c := j.at(y)
	if c == nil {
		return -inf
	}
	return lpy + c.LogPDF(x)
}

// CDF integrates the conditional CDF of X over {Y <= y}. For an
// independent prior this is a tensor Gauss–Legendre rule on the box
// of probabilities below y. For a dependent prior it falls back to
// the prior's node set restricted to {Y <= y}.
func (j *JointByConditioning) CDF(z []float64) float64 {
	y, x := j.split(z)
	var nodes *NodeSet
	restrict := false
	if j.prior.Independent() {
		upper := make([]float64, len(y))
		for i := range y {
			upper[i] = marginalCDF(j.prior.Marginal(i), y[i])
			if upper[i] == 0 {
				return 0
			}
		}
		nodes = j.priorRule(upper)
	} else {
		nodes, restrict = j.mustNodes(), true
	}
	sum := 0.0
outer:
	for k, w := range nodes.Weights {
		node := nodes.Node(k)
		for i, v := range node {
			if restrict && v > y[i] {
				continue outer
			}
		}
		sum += w * j.mustAt(node).CDF(x)
	}
	return sum
}

// priorRule returns a tensor Gauss–Legendre rule for the independent
// prior restricted to the probability box [0, upper]. The weights sum
// to the prior probability of the box.
func (j *JointByConditioning) priorRule(upper []float64) *NodeSet {
	n := j.disc.PerMarginal(len(upper))
	xs, ws := make([][]float64, len(upper)), make([][]float64, len(upper))
	for i, u := range upper {
		xs[i], ws[i] = unitLegendre(n)
		floats.Scale(u, xs[i])
		floats.Scale(u, ws[i])
	}
	return tensor(xs, ws, func(row []float64) {
		u := append([]float64(nil), row...)
		j.prior.Quantile(row, u)
	})
}

func (j *JointByConditioning) mustNodes() *NodeSet {
	nodes, err := j.disc.Nodes(j.prior)
	if err != nil {
		panic(err)
	}
	return nodes
}

func (j *JointByConditioning) mustAt(y []float64) Dist {
	c, err := j.family.At(j.link.Eval(nil, y))
	if err != nil {
		panic(fmt.Sprintf("prior point %v: %v", y, err))
	}
	return c
}

// Rand draws Y from the prior, then X from the family at g(Y). It
// consumes src exactly as Deconditioned.Rand does for the same model.
func (j *JointByConditioning) Rand(dst []float64, src rand.Source) []float64 {
	dst = resize(dst, j.Dim())
	y, x := j.split(dst)
	conditionalRand(j.family, j.prior, j.link, y, x, src)
	return dst
}

// Mean returns the prior mean followed by the mean of X, which is
// integrated over the prior's node set.
func (j *JointByConditioning) Mean(dst []float64) []float64 {
	dst = resize(dst, j.Dim())
	y, x := j.split(dst)
	j.prior.Mean(y)
	for i := range x {
		x[i] = 0
	}
	nodes := j.mustNodes()
	m := make([]float64, len(x))
	for k, w := range nodes.Weights {
		floats.AddScaled(x, w, j.mustAt(nodes.Node(k)).Mean(m))
	}
	return dst
}

// Bounds returns the prior's bounds followed by the union of the
// conditional supports over the prior's node set.
func (j *JointByConditioning) Bounds() (lo, hi []float64) {
	nodes := j.mustNodes()
	conds := make([]Dist, nodes.Len())
	for k := range conds {
		conds[k] = j.mustAt(nodes.Node(k))
	}
	xlo, xhi := unionBounds(conds, j.family.Dim())
	lo, hi = j.prior.Bounds()
	return append(lo, xlo...), append(hi, xhi...)
}

func (j *JointByConditioning) NumParameters() int { return j.prior.NumParameters() }
