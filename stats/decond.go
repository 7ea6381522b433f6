// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Deconditioned is the marginal distribution of X when X given θ
// follows a Family, θ = g(Y) for a Link g, and Y follows a Prior.
// Its density is
//
//	p(x) = ∫ f(x; g(y)) π(y) dy
//
// PDF, LogPDF, CDF and Mean approximate this integral with a weighted
// node set of the prior, chosen by a Discretization. Rand is exact: it
// draws Y from the prior, then X from the family at g(Y), and never
// uses the node set.
//
// A Deconditioned is immutable and safe for concurrent use.
type Deconditioned struct {
	family Family
	prior  Prior
	link   Link
	disc   Discretization

	nodes *NodeSet
	// conds[k] is the family at g(nodes[k]).
	conds []Dist
	// logw[k] is log(nodes.Weights[k]).
	logw []float64
}

// NewDeconditioned returns the deconditioned distribution of family
// over prior through link, discretized according to a copy of
// DefaultDiscretization.
func NewDeconditioned(family Family, prior Prior, link Link) (*Deconditioned, error) {
	return NewDeconditionedWith(family, prior, link, DefaultDiscretization())
}

// NewDeconditionedWith is like NewDeconditioned, but uses disc instead
// of the default discretization.
//
// It returns an error wrapping ErrDimensionMismatch if the link does
// not map the prior's space to the family's parameters, and an error
// wrapping ErrInvalidArgument if disc is invalid or the family
// rejects the parameters at some node.
func NewDeconditionedWith(family Family, prior Prior, link Link, disc Discretization) (*Deconditioned, error) {
	if err := checkComposition(family, prior, link); err != nil {
		return nil, err
	}
	nodes, err := disc.Nodes(prior)
	if err != nil {
		return nil, err
	}
	d := &Deconditioned{
		family: family,
		prior:  prior,
		link:   link,
		disc:   disc,
		nodes:  nodes,
		conds:  make([]Dist, nodes.Len()),
		logw:   make([]float64, nodes.Len()),
	}
	thetas := EvalEach(link, nodes.Points)
	for k := range d.conds {
		d.conds[k], err = family.At(thetas.RawRowView(k))
		if err != nil {
			return nil, fmt.Errorf("prior node %v: %w", nodes.Node(k), err)
		}
		d.logw[k] = math.Log(nodes.Weights[k])
	}
	return d, nil
}

// Nodes returns the node set used to approximate the integral over
// the prior. The caller must not modify it.
func (d *Deconditioned) Nodes() *NodeSet { return d.nodes }

// Discretization returns the discretization d was built with.
func (d *Deconditioned) Discretization() Discretization { return d.disc }

func (d *Deconditioned) Family() Family { return d.family }
func (d *Deconditioned) Prior() Prior   { return d.prior }
func (d *Deconditioned) Link() Link     { return d.link }

func (d *Deconditioned) Dim() int { return d.family.Dim() }

// reduceChunk is the number of nodes summed by one goroutine. Node
// sets no larger than this are summed serially.
const reduceChunk = 8192

// weightedSum returns Σ_k f(k) over all nodes. The partial sums of
// fixed chunks of nodes are computed concurrently and added in chunk
// order, so the result does not depend on scheduling.
func (d *Deconditioned) weightedSum(f func(k int) float64) float64 {
	n := d.nodes.Len()
	if n <= reduceChunk {
		return sumRange(f, 0, n)
	}
	partial := make([]float64, (n+reduceChunk-1)/reduceChunk)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for c := range partial {
		c := c
		g.Go(func() error {
			partial[c] = sumRange(f, c*reduceChunk, min((c+1)*reduceChunk, n))
			return nil
		})
	}
	g.Wait()
	return sumRange(func(c int) float64 { return partial[c] }, 0, len(partial))
}

func sumRange(f func(k int) float64, lo, hi int) float64 {
	s := 0.0
	for k := lo; k < hi; k++ {
		s += f(k)
	}
	return s
}

func (d *Deconditioned) PDF(x []float64) float64 {
	checkDim(d, x)
	w := d.nodes.Weights
	return d.weightedSum(func(k int) float64 {
		return w[k] * d.conds[k].PDF(x)
	})
}

// LogPDF computes log p(x) as a log-sum-exp over the nodes, so it
// stays finite in tails where PDF underflows.
func (d *Deconditioned) LogPDF(x []float64) float64 {
	checkDim(d, x)
	terms := make([]float64, d.nodes.Len())
	term := func(k int) {
		terms[k] = d.logw[k] + d.conds[k].LogPDF(x)
	}
	if len(terms) <= reduceChunk {
		for k := range terms {
			term(k)
		}
	} else {
		eachRow(len(terms), term)
	}
	return floats.LogSumExp(terms)
}

func (d *Deconditioned) CDF(x []float64) float64 {
	checkDim(d, x)
	w := d.nodes.Weights
	return d.weightedSum(func(k int) float64 {
		return w[k] * d.conds[k].CDF(x)
	})
}

// Rand draws Y from the prior, then X from the family at g(Y). The
// draw is exact.
func (d *Deconditioned) Rand(dst []float64, src rand.Source) []float64 {
	dst = resize(dst, d.Dim())
	_, x := conditionalRand(d.family, d.prior, d.link, nil, dst, src)
	return x
}

// conditionalRand draws Y into y and X into x. Both
// Deconditioned.Rand and JointByConditioning.Rand use it, so they
// consume src identically.
func conditionalRand(family Family, prior Prior, link Link, y, x []float64, src rand.Source) ([]float64, []float64) {
	y = prior.Rand(y, src)
	cond, err := family.At(link.Eval(nil, y))
	if err != nil {
		// The link maps the prior's support outside the family's
		// parameter domain: the model itself is wrong.
		panic(fmt.Sprintf("prior draw %v: %v", y, err))
	}
	return y, cond.Rand(x, src)
}

// Mean returns the node-weighted average of the conditional means.
func (d *Deconditioned) Mean(dst []float64) []float64 {
	dst = resize(dst, d.Dim())
	for i := range dst {
		dst[i] = 0
	}
	m := make([]float64, d.Dim())
	for k, c := range d.conds {
		floats.AddScaled(dst, d.nodes.Weights[k], c.Mean(m))
	}
	return dst
}

// Bounds returns the union of the conditional supports over the
// nodes.
func (d *Deconditioned) Bounds() (lo, hi []float64) {
	return unionBounds(d.conds, d.Dim())
}

func unionBounds(ds []Dist, dim int) (lo, hi []float64) {
	lo, hi = make([]float64, dim), make([]float64, dim)
	for i := range lo {
		lo[i], hi[i] = inf, -inf
	}
	for _, c := range ds {
		clo, chi := c.Bounds()
		for i := range lo {
			lo[i] = math.Min(lo[i], clo[i])
			hi[i] = math.Max(hi[i], chi[i])
		}
	}
	return
}

// NumParameters returns the number of parameters of the prior, which
// are the only free parameters of d.
func (d *Deconditioned) NumParameters() int { return d.prior.NumParameters() }
