// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEvalEach(t *testing.T) {
	link := LinkFunc{2, 3, func(dst, y []float64) {
		dst[0], dst[1], dst[2] = y[0]+y[1], y[0]*y[1], 1
	}}
	const n = 1000
	ys := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		ys.Set(i, 0, float64(i))
		ys.Set(i, 1, 0.5-float64(i)/n)
	}
	out := EvalEach(link, ys)
	if r, c := out.Dims(); r != n || c != 3 {
		t.Fatalf("want %dx3 result, got %dx%d", n, r, c)
	}
	for i := 0; i < n; i++ {
		want := link.Eval(nil, ys.RawRowView(i))
		if got := out.RawRowView(i); !mat.Equal(mat.NewVecDense(3, want), mat.NewVecDense(3, got)) {
			t.Fatalf("row %d: want %v, got %v", i, want, got)
		}
	}

	if empty := EvalEach(link, &mat.Dense{}); !empty.IsEmpty() {
		t.Errorf("empty input: want empty result, got %v", mat.Formatted(empty))
	}
}
