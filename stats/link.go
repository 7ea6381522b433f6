// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// A Link is a deterministic map from the latent space Y to the
// parameter space of a Family. Implementations must be pure and safe
// for concurrent use.
type Link interface {
	InputDim() int
	OutputDim() int

	// Eval stores g(y) in dst and returns it. If dst is nil, a new
	// slice is allocated.
	Eval(dst, y []float64) []float64
}

// LinkFunc adapts an ordinary function to a Link.
type LinkFunc struct {
	In, Out int

	// F stores g(y) in dst. len(y) is In and len(dst) is Out.
	F func(dst, y []float64)
}

func (l LinkFunc) InputDim() int  { return l.In }
func (l LinkFunc) OutputDim() int { return l.Out }

func (l LinkFunc) Eval(dst, y []float64) []float64 {
	if len(y) != l.In {
		panic(ErrDimensionMismatch)
	}
	dst = resize(dst, l.Out)
	l.F(dst, y)
	return dst
}

// EvalEach evaluates l at each row of ys and returns the results as
// the rows of a new matrix.
func EvalEach(l Link, ys *mat.Dense) *mat.Dense {
	n, _ := ys.Dims()
	if n == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(n, l.OutputDim(), nil)
	eachRow(n, func(i int) {
		l.Eval(out.RawRowView(i), ys.RawRowView(i))
	})
	return out
}

// checkComposition returns an error if family, prior and link cannot
// be composed.
func checkComposition(family Family, prior Prior, link Link) error {
	if link.InputDim() != prior.Dim() {
		return fmt.Errorf("link input dimension %d, prior dimension %d: %w", link.InputDim(), prior.Dim(), ErrDimensionMismatch)
	}
	if link.OutputDim() != family.NumParameters() {
		return fmt.Errorf("link output dimension %d, family has %d parameters: %w", link.OutputDim(), family.NumParameters(), ErrDimensionMismatch)
	}
	return nil
}
