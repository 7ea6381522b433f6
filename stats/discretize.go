// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// Method is a strategy for discretizing a prior into weighted nodes.
//
// GaussProduct reaches machine precision with few nodes when the
// conditional density is a smooth function of the latent variable,
// which holds when the conditional support does not depend on θ.
// When it does (say, a uniform whose upper bound is θ), the integrand
// has a kink at every x and polynomial quadrature stops improving;
// QMC converges more slowly in general but keeps converging there.
// Neither is chosen automatically.
type Method int

const (
	// GaussProduct is the tensor product of one-dimensional Gauss
	// rules, one per prior marginal.
	GaussProduct Method = iota

	// QMC is an Owen-scrambled Halton sequence mapped through the
	// prior's quantile function.
	QMC
)

func (m Method) String() string {
	switch m {
	case GaussProduct:
		return "GaussProduct"
	case QMC:
		return "QMC"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod parses the name of a Method, ignoring case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "gaussproduct":
		return GaussProduct, nil
	case "qmc":
		return QMC, nil
	}
	return 0, fmt.Errorf("unknown discretization method %q: %w", s, ErrInvalidArgument)
}

// Discretization configures how a prior is discretized.
type Discretization struct {
	Method Method

	// NodesPerMarginal is the number of Gauss nodes per prior
	// coordinate. QMC ignores it. The total node count grows as
	// NodesPerMarginal^dim, so GaussProduct suits priors of
	// dimension at most 3 or 4.
	NodesPerMarginal int

	// MaxNodes is the number of QMC nodes. It also caps the total
	// number of GaussProduct nodes by reducing NodesPerMarginal.
	MaxNodes int

	// Seed seeds the QMC scrambling.
	Seed uint64
}

// Validate returns an error wrapping ErrInvalidArgument if c cannot
// be used.
func (c Discretization) Validate() error {
	if c.Method != GaussProduct && c.Method != QMC {
		return fmt.Errorf("discretization method %v: %w", c.Method, ErrInvalidArgument)
	}
	if c.Method == GaussProduct && c.NodesPerMarginal <= 0 {
		return fmt.Errorf("nodes per marginal %d: %w", c.NodesPerMarginal, ErrInvalidArgument)
	}
	if c.MaxNodes <= 0 {
		return fmt.Errorf("maximum nodes %d: %w", c.MaxNodes, ErrInvalidArgument)
	}
	return nil
}

var defaultDisc struct {
	sync.RWMutex
	c Discretization
}

func init() {
	ResetDefaultDiscretization()
}

// DefaultDiscretization returns the process-wide default
// discretization. Constructors copy it, so later changes do not affect
// existing distributions.
func DefaultDiscretization() Discretization {
	defaultDisc.RLock()
	defer defaultDisc.RUnlock()
	return defaultDisc.c
}

// SetDefaultDiscretization validates c and makes it the process-wide
// default.
func SetDefaultDiscretization(c Discretization) error {
	if err := c.Validate(); err != nil {
		return err
	}
	defaultDisc.Lock()
	defer defaultDisc.Unlock()
	defaultDisc.c = c
	return nil
}

// ResetDefaultDiscretization restores the default discretization:
// GaussProduct with 256 nodes per marginal and at most 100000 nodes.
func ResetDefaultDiscretization() {
	defaultDisc.Lock()
	defer defaultDisc.Unlock()
	defaultDisc.c = Discretization{
		Method:           GaussProduct,
		NodesPerMarginal: 256,
		MaxNodes:         100000,
	}
}

// A NodeSet is a weighted discretization of a distribution. Row k of
// Points has weight Weights[k]. The weights are non-negative and sum
// to 1.
type NodeSet struct {
	Points  *mat.Dense
	Weights []float64
}

// Len returns the number of nodes in s.
func (s *NodeSet) Len() int { return len(s.Weights) }

// Node returns the k'th point of s.
func (s *NodeSet) Node(k int) []float64 { return s.Points.RawRowView(k) }

// Nodes discretizes prior according to c.
func (c Discretization) Nodes(prior Prior) (*NodeSet, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if prior.Dim() == 0 {
		return nil, fmt.Errorf("zero-dimensional prior: %w", ErrDimensionMismatch)
	}
	if c.Method == QMC {
		return c.qmc(prior), nil
	}
	return c.gaussProduct(prior), nil
}

// PerMarginal returns the number of GaussProduct nodes per coordinate
// for a prior of dimension d.
func (c Discretization) PerMarginal(d int) int {
	n := c.NodesPerMarginal
	limit := int(math.Floor(math.Pow(float64(c.MaxNodes), 1/float64(d)) + 1e-9))
	if limit < n {
		n = max(limit, 1)
	}
	return n
}

func (c Discretization) qmc(prior Prior) *NodeSet {
	points := mat.NewDense(c.MaxNodes, prior.Dim(), nil)
	h := samplemv.Halton{Kind: samplemv.Owen, Q: prior, Src: PCG{Seed: c.Seed}.Stream(0)}
	h.Sample(points)
	weights := make([]float64, c.MaxNodes)
	for k := range weights {
		weights[k] = 1 / float64(c.MaxNodes)
	}
	return &NodeSet{points, weights}
}

func (c Discretization) gaussProduct(prior Prior) *NodeSet {
	d := prior.Dim()
	n := c.PerMarginal(d)
	xs, ws := make([][]float64, d), make([][]float64, d)
	independent := prior.Independent()
	for i := range xs {
		if independent {
			xs[i], ws[i] = GaussRule(prior.Marginal(i), n)
		} else {
			xs[i], ws[i] = unitLegendre(n)
		}
	}
	return tensor(xs, ws, func(row []float64) {
		if !independent {
			u := append([]float64(nil), row...)
			prior.Quantile(row, u)
		}
	})
}

// tensor returns the tensor product of the one-dimensional rules
// (xs[i], ws[i]). The last coordinate varies fastest. If mapRow is not
// nil, it is applied to each point in place.
func tensor(xs, ws [][]float64, mapRow func(row []float64)) *NodeSet {
	d := len(xs)
	total := 1
	for _, x := range xs {
		total *= len(x)
	}
	points := mat.NewDense(total, d, nil)
	weights := make([]float64, total)
	idx := make([]int, d)
	for k := 0; k < total; k++ {
		row := points.RawRowView(k)
		w := 1.0
		for i, j := range idx {
			row[i] = xs[i][j]
			w *= ws[i][j]
		}
		if mapRow != nil {
			mapRow(row)
		}
		weights[k] = w
		for i := d - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(xs[i]) {
				break
			}
			idx[i] = 0
		}
	}
	return &NodeSet{points, weights}
}

// A GaussRuler is a Univariate that supplies its own Gauss quadrature
// rule. GaussRule stores the nodes and weights in x and w, whose
// lengths are the number of nodes. The weights must sum to 1.
type GaussRuler interface {
	GaussRule(x, w []float64)
}

// maxGolubWelsch is the largest rule computed from a discretized
// Stieltjes recurrence. The recurrence loses orthogonality beyond
// this.
const maxGolubWelsch = 64

// GaussRule returns the n-point Gauss rule whose weight measure is m.
// The weights sum to 1.
//
// Uniform marginals use Gauss–Legendre and normal marginals use
// Gauss–Hermite. Other marginals with n <= 64 use Golub–Welsch on a
// discretized Stieltjes recurrence. Larger rules fall back to
// Gauss–Legendre in probability space, x = m.Quantile(u).
func GaussRule(m Univariate, n int) (x, w []float64) {
	x, w = make([]float64, n), make([]float64, n)
	switch m := m.(type) {
	case GaussRuler:
		m.GaussRule(x, w)
		return x, w
	case distuv.Uniform:
		quad.Legendre{}.FixedLocations(x, w, m.Min, m.Max)
	case distuv.Normal:
		quad.Hermite{}.FixedLocations(x, w, -inf, inf)
		for i := range x {
			x[i] = m.Mu + math.Sqrt2*m.Sigma*x[i]
		}
	default:
		if n <= maxGolubWelsch && golubWelsch(m, x, w) {
			break
		}
		u, uw := unitLegendre(n)
		for i := range x {
			x[i] = m.Quantile(u[i])
		}
		copy(w, uw)
	}
	floats.Scale(1/floats.Sum(w), w)
	return x, w
}

// unitLegendre returns the n-point Gauss–Legendre rule on [0, 1].
func unitLegendre(n int) (x, w []float64) {
	x, w = make([]float64, n), make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, 1)
	return
}

// golubWelsch computes the Gauss rule for m into x and w. It
// discretizes m, runs the Stieltjes procedure to obtain the
// three-term recurrence of the orthonormal polynomials, and takes the
// eigen-decomposition of the Jacobi matrix. It reports false if the
// discretized measure is degenerate.
func golubWelsch(m Univariate, x, w []float64) bool {
	n := len(x)
	M := max(2048, 16*n)

	// Discretize m. Bounded supports use Legendre nodes weighted by
	// the density; unbounded ones use Legendre nodes in
	// probability space.
	lo, hi := m.Quantile(0), m.Quantile(1)
	var mx, mw []float64
	if !math.IsInf(lo, 0) && !math.IsInf(hi, 0) && lo < hi {
		mx, mw = make([]float64, M), make([]float64, M)
		quad.Legendre{}.FixedLocations(mx, mw, lo, hi)
		for j := range mx {
			mw[j] *= m.Prob(mx[j])
		}
	} else {
		mx, mw = unitLegendre(M)
		for j := range mx {
			mx[j] = m.Quantile(mx[j])
		}
	}
	total := floats.Sum(mw)
	if !(total > 0) {
		return false
	}
	floats.Scale(1/total, mw)

	// Stieltjes procedure on orthonormal polynomials.
	alpha, beta := make([]float64, n), make([]float64, n)
	q, qPrev := make([]float64, M), make([]float64, M)
	for j := range q {
		q[j] = 1
	}
	r := make([]float64, M)
	for k := 0; k < n; k++ {
		a := 0.0
		for j := range q {
			a += mw[j] * mx[j] * q[j] * q[j]
		}
		alpha[k] = a
		if k == n-1 {
			break
		}
		norm := 0.0
		for j := range q {
			r[j] = (mx[j]-a)*q[j] - beta[k]*qPrev[j]
			norm += mw[j] * r[j] * r[j]
		}
		norm = math.Sqrt(norm)
		if !(norm > 0) {
			return false
		}
		beta[k+1] = norm
		qPrev, q, r = q, r, qPrev
		floats.Scale(1/norm, q)
	}

	jac := mat.NewSymDense(n, nil)
	for k := 0; k < n; k++ {
		jac.SetSym(k, k, alpha[k])
		if k > 0 {
			jac.SetSym(k, k-1, beta[k])
		}
	}
	var es mat.EigenSym
	if !es.Factorize(jac, true) {
		return false
	}
	es.Values(x)
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	for i := range w {
		v := vecs.At(0, i)
		w[i] = v * v
	}
	return true
}
