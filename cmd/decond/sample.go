// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/aclements/go-decond/stats"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"
)

var SummaryFlag = cli.BoolFlag{
	Name:  "summary",
	Usage: "describe the draws instead of printing them",
}

// SampleCommand writes draws from a deconditioned model.
var SampleCommand = cli.Command{
	Action: sampleAction,
	Name:   "sample",
	Usage:  "draws from the deconditioned distribution of a model",
	Flags:  append([]cli.Flag{&CountFlag, &SummaryFlag}, discretizationFlags...),
	Description: `
The sample command writes --n draws of X from the chosen model, one
tab-separated row per line. With --summary it describes each
coordinate instead.`,
}

func sampleAction(ctx *cli.Context) error {
	_, log, err := setup(ctx, "Sample")
	if err != nil {
		return err
	}
	m, err := lookupModel(ctx.String(ModelFlag.Name))
	if err != nil {
		return err
	}
	n := ctx.Int(CountFlag.Name)
	if n <= 0 {
		return fmt.Errorf("draw count %d must be positive", n)
	}
	d, err := stats.NewDeconditioned(m.family, m.prior, m.link)
	if err != nil {
		return err
	}
	log.Infof("Model %s with %d nodes", m.name, d.Nodes().Len())
	xs := stats.Draw(d, n, stats.PCG{Seed: d.Discretization().Seed})

	if !ctx.Bool(SummaryFlag.Name) {
		return writeRows(ctx.App.Writer, xs)
	}
	for j := 0; j < d.Dim(); j++ {
		if j > 0 {
			fmt.Fprintln(ctx.App.Writer)
		}
		fmt.Fprintf(ctx.App.Writer, "X%d\n", j+1)
		describe(ctx.App.Writer, stats.Column(xs, j), d.Mean(nil)[j])
	}
	return nil
}

func writeRows(w io.Writer, xs *mat.Dense) error {
	bw := bufio.NewWriter(w)
	n, d := xs.Dims()
	var buf []byte
	for i := 0; i < n; i++ {
		buf = buf[:0]
		for j := 0; j < d; j++ {
			if j > 0 {
				buf = append(buf, '\t')
			}
			buf = strconv.AppendFloat(buf, xs.At(i, j), 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// describe prints the moments and quantiles of s and its kernel
// density estimate at the quartiles.
func describe(w io.Writer, s stats.Sample, mean float64) {
	s.Sort()

	fmt.Fprintf(w, "N %d  sum %.6g  mean %.6g  (model %.6g)", len(s.Xs), s.Sum(), s.Mean(), mean)
	fmt.Fprintf(w, "  std dev %.6g\n", s.StdDev())
	fmt.Fprintln(w)

	// Quartiles and tails.
	labels := map[int]string{0: "min", 50: "median", 100: "max"}
	for _, p := range []int{0, 1, 5, 25, 50, 75, 95, 99, 100} {
		label, ok := labels[p]
		if !ok {
			label = fmt.Sprintf("%d%%ile", p)
		}
		fmt.Fprintf(w, "%8s %.6g\n", label, s.Percentile(float64(p)/100))
	}
	fmt.Fprintln(w)

	// Kernel density estimate.
	col := mat.NewDense(len(s.Xs), 1, s.Xs)
	kde := stats.KDE{}.FromMatrix(col)
	for _, p := range []float64{0.25, 0.5, 0.75} {
		x := s.Percentile(p)
		fmt.Fprintf(w, "%8s %.6g\n", fmt.Sprintf("pdf@%g", p), kde.PDF([]float64{x}))
	}
}
