// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// moment returns Σ w_k x_k^p over the rule.
func moment(x, w []float64, p float64) float64 {
	s := 0.0
	for i := range x {
		s += w[i] * math.Pow(x[i], p)
	}
	return s
}

func TestGaussRule(t *testing.T) {
	tri := distuv.NewTriangle(0, 2, 1, nil)
	tests := []struct {
		name    string
		m       Univariate
		moments []float64 // E[X^p] for p = 0, 1, ...
		tol     float64
	}{
		{"uniform", distuv.Uniform{Min: 1, Max: 2}, []float64{1, 1.5, 7.0 / 3, 15.0 / 4}, 1e-8},
		{"normal", distuv.Normal{Mu: 1, Sigma: 2}, []float64{1, 1, 5, 13, 73}, 1e-8},
		// E[X^2] = μ² + (a²+b²+c²-ab-ac-bc)/18 = 1 + 1/6. The
		// density has a kink, so the rule is only accurate to
		// the discretization of the measure.
		{"triangle", tri, []float64{1, 1, 7.0 / 6}, 1e-5},
	}
	for _, test := range tests {
		for _, n := range []int{8, 32, 100} {
			x, w := GaussRule(test.m, n)
			if len(x) != n || len(w) != n {
				t.Fatalf("%s/%d: rule has %d nodes, %d weights", test.name, n, len(x), len(w))
			}
			for _, wi := range w {
				if wi < 0 {
					t.Errorf("%s/%d: negative weight %v", test.name, n, wi)
				}
			}
			for p, want := range test.moments {
				if got := moment(x, w, float64(p)); !aeqTol(want, got, test.tol*math.Max(1, math.Abs(want))) {
					t.Errorf("%s/%d: E[X^%d] want %v, got %v", test.name, n, p, want, got)
				}
			}
		}
	}
}

type fixedRule struct{ distuv.Uniform }

func (fixedRule) GaussRule(x, w []float64) {
	for i := range x {
		x[i], w[i] = float64(i), 1/float64(len(x))
	}
}

func TestGaussRuler(t *testing.T) {
	x, w := GaussRule(fixedRule{distuv.Uniform{Min: 0, Max: 1}}, 4)
	if x[3] != 3 || w[0] != 0.25 {
		t.Errorf("GaussRuler ignored: %v %v", x, w)
	}
}

func TestDiscretizationValidate(t *testing.T) {
	for _, c := range []Discretization{
		{Method: GaussProduct, NodesPerMarginal: 0, MaxNodes: 10},
		{Method: QMC, NodesPerMarginal: 4, MaxNodes: -1},
		{Method: Method(7), NodesPerMarginal: 4, MaxNodes: 10},
	} {
		if err := c.Validate(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%+v: want ErrInvalidArgument, got %v", c, err)
		}
		if err := SetDefaultDiscretization(c); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetDefaultDiscretization(%+v): want ErrInvalidArgument, got %v", c, err)
		}
	}
	if c := DefaultDiscretization(); c.Method != GaussProduct || c.NodesPerMarginal != 256 || c.MaxNodes != 100000 || c.Seed != 0 {
		t.Errorf("invalid configuration changed the default to %+v", c)
	}

	// QMC needs only a node count.
	if err := (Discretization{Method: QMC, MaxNodes: 64}).Validate(); err != nil {
		t.Errorf("QMC without NodesPerMarginal: %v", err)
	}
}

func TestDefaultDiscretization(t *testing.T) {
	defer ResetDefaultDiscretization()
	c := Discretization{Method: QMC, NodesPerMarginal: 16, MaxNodes: 512, Seed: 9}
	if err := SetDefaultDiscretization(c); err != nil {
		t.Fatal(err)
	}
	if got := DefaultDiscretization(); got != c {
		t.Errorf("want %+v, got %+v", c, got)
	}

	prior := NewProduct(distuv.Uniform{Min: 0, Max: 1})
	d, err := NewDeconditioned(NormalFamily{}, prior, LinkFunc{1, 2, func(dst, y []float64) {
		dst[0], dst[1] = y[0], 1
	}})
	if err != nil {
		t.Fatal(err)
	}

	x := []float64{0.3}
	pdf, cdf := d.PDF(x), d.CDF(x)

	// Changing the default does not affect existing models.
	ResetDefaultDiscretization()
	if got := d.Discretization(); got != c {
		t.Errorf("model discretization changed to %+v", got)
	}
	if n := d.Nodes().Len(); n != 512 {
		t.Errorf("want 512 QMC nodes, got %d", n)
	}
	if got := d.PDF(x); got != pdf {
		t.Errorf("PDF(%v) changed from %v to %v", x, pdf, got)
	}
	if got := d.CDF(x); got != cdf {
		t.Errorf("CDF(%v) changed from %v to %v", x, cdf, got)
	}
}

func TestParseMethod(t *testing.T) {
	for s, want := range map[string]Method{"GaussProduct": GaussProduct, "qmc": QMC, "QMC": QMC} {
		if got, err := ParseMethod(s); err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %v, %v; want %v", s, got, err, want)
		}
	}
	if _, err := ParseMethod("simpson"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("want ErrInvalidArgument, got %v", err)
	}
	if s := QMC.String(); s != "QMC" {
		t.Errorf("want QMC, got %s", s)
	}
}

func TestPerMarginal(t *testing.T) {
	c := Discretization{Method: GaussProduct, NodesPerMarginal: 256, MaxNodes: 100000}
	for d, want := range map[int]int{1: 256, 2: 256, 3: 46, 4: 17} {
		if got := c.PerMarginal(d); got != want {
			t.Errorf("PerMarginal(%d) = %d, want %d", d, got, want)
		}
	}
	c.MaxNodes = 1000
	if got := c.PerMarginal(3); got != 10 {
		t.Errorf("PerMarginal(3) with 1000 nodes = %d, want 10", got)
	}
}

func TestNodesGaussProduct(t *testing.T) {
	prior := NewProduct(distuv.Uniform{Min: 0, Max: 1}, distuv.Normal{Mu: 0, Sigma: 1})
	c := Discretization{Method: GaussProduct, NodesPerMarginal: 5, MaxNodes: 1000}
	s, err := c.Nodes(prior)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 25 {
		t.Fatalf("want 25 nodes, got %d", s.Len())
	}
	if sum := floats.Sum(s.Weights); !aeq(1, sum) {
		t.Errorf("weights sum to %v", sum)
	}
	// The last coordinate varies fastest.
	if s.Node(0)[0] != s.Node(4)[0] || s.Node(0)[1] == s.Node(1)[1] {
		t.Errorf("unexpected node order: %v %v %v", s.Node(0), s.Node(1), s.Node(4))
	}

	// E[Y1 Y2²] = 1/2.
	sum := 0.0
	for k, w := range s.Weights {
		y := s.Node(k)
		sum += w * y[0] * y[1] * y[1]
	}
	if !aeq(0.5, sum) {
		t.Errorf("E[Y1 Y2²] = %v, want 0.5", sum)
	}

	again, _ := c.Nodes(prior)
	if !mat.Equal(s.Points, again.Points) {
		t.Errorf("GaussProduct nodes are not deterministic")
	}
}

func TestNodesQMC(t *testing.T) {
	prior := NewProduct(distuv.Uniform{Min: 0, Max: 1}, distuv.Uniform{Min: 0, Max: 1})
	c := Discretization{Method: QMC, MaxNodes: 4096, Seed: 5}
	s, err := c.Nodes(prior)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4096 {
		t.Fatalf("want 4096 nodes, got %d", s.Len())
	}
	if sum := floats.Sum(s.Weights); !aeq(1, sum) {
		t.Errorf("weights sum to %v", sum)
	}
	// E[Y1 Y2] = 1/4, far better than Monte Carlo error.
	sum := 0.0
	for k, w := range s.Weights {
		y := s.Node(k)
		sum += w * y[0] * y[1]
	}
	if math.Abs(sum-0.25) > 1e-3 {
		t.Errorf("E[Y1 Y2] = %v, want 0.25", sum)
	}

	again, _ := c.Nodes(prior)
	if !mat.Equal(s.Points, again.Points) {
		t.Errorf("QMC nodes are not reproducible")
	}
	c.Seed = 6
	other, _ := c.Nodes(prior)
	if mat.Equal(s.Points, other.Points) {
		t.Errorf("QMC nodes do not depend on the seed")
	}
}

func TestNodesDependentPrior(t *testing.T) {
	// A prior whose second coordinate is the first plus uniform noise.
	prior := &shiftedPrior{}
	c := Discretization{Method: GaussProduct, NodesPerMarginal: 8, MaxNodes: 1000}
	s, err := c.Nodes(prior)
	if err != nil {
		t.Fatal(err)
	}
	// E[Y2] = E[Y1] + 1/2 = 1.
	sum := 0.0
	for k, w := range s.Weights {
		sum += w * s.Node(k)[1]
	}
	if !aeq(1, sum) {
		t.Errorf("E[Y2] = %v, want 1", sum)
	}
}

// shiftedPrior is Y1 ~ U(0,1), Y2 = Y1 + U(0,1).
type shiftedPrior struct{}

func (*shiftedPrior) Dim() int { return 2 }
func (*shiftedPrior) PDF(y []float64) float64 {
	if y[0] < 0 || y[0] > 1 || y[1]-y[0] < 0 || y[1]-y[0] > 1 {
		return 0
	}
	return 1
}
func (p *shiftedPrior) LogPDF(y []float64) float64 { return math.Log(p.PDF(y)) }
func (*shiftedPrior) CDF(y []float64) float64      { panic("not implemented") }
func (p *shiftedPrior) Rand(dst []float64, src rand.Source) []float64 {
	return p.Quantile(dst, []float64{openUnit(src), openUnit(src)})
}
func (*shiftedPrior) Mean(dst []float64) []float64 {
	dst = resize(dst, 2)
	dst[0], dst[1] = 0.5, 1
	return dst
}
func (*shiftedPrior) Bounds() (lo, hi []float64) { return []float64{0, 0}, []float64{1, 2} }
func (*shiftedPrior) NumParameters() int         { return 0 }
func (*shiftedPrior) Quantile(dst, u []float64) []float64 {
	dst = resize(dst, 2)
	dst[0], dst[1] = u[0], u[0]+u[1]
	return dst
}
func (*shiftedPrior) Marginal(i int) Univariate { panic("not implemented") }
func (*shiftedPrior) Independent() bool         { return false }
