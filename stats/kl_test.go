// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestKLDivergence(t *testing.T) {
	p := NewProduct(distuv.Normal{Mu: 0, Sigma: 1})
	q := NewProduct(distuv.Normal{Mu: 1, Sigma: 1})
	sample := Draw(p, 20000, PCG{Seed: 3})

	// KL(N(0,1)‖N(1,1)) = 1/2.
	if kl := KLDivergence(p.PDF, q.PDF, sample); math.Abs(kl-0.5) > 0.03 {
		t.Errorf("want about 0.5, got %v", kl)
	}
	if kl := KLDivergence(p.PDF, p.PDF, sample); kl != 0 {
		t.Errorf("KL(p‖p): want 0, got %v", kl)
	}

	u := NewProduct(distuv.Uniform{Min: 0, Max: 1})
	if kl := KLDivergence(p.PDF, u.PDF, sample); !math.IsInf(kl, 1) {
		t.Errorf("disjoint support: want +Inf, got %v", kl)
	}
	// Points outside the support of p are skipped.
	if kl := KLDivergence(u.PDF, u.PDF, sample); kl != 0 {
		t.Errorf("want 0, got %v", kl)
	}

	if kl := KLDivergence(p.PDF, q.PDF, &mat.Dense{}); !math.IsNaN(kl) {
		t.Errorf("empty sample: want NaN, got %v", kl)
	}
}
