// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/aclements/go-decond/stats"
	"github.com/dgryski/go-onlinestats"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"
)

// JointCommand summarizes the joint distribution of a model.
var JointCommand = cli.Command{
	Action: jointAction,
	Name:   "joint",
	Usage:  "summarizes a sample of the joint distribution of latent and observed variables",
	Flags:  append([]cli.Flag{&CountFlag}, discretizationFlags...),
	Description: `
The joint command draws --n points (Y, X) from the chosen model and
compares the sample moments and quantiles of each coordinate with the
model's means.`,
}

func jointAction(ctx *cli.Context) error {
	_, log, err := setup(ctx, "Joint")
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

	j, err := stats.NewJointByConditioning(m.family, m.prior, m.link)
	if err != nil {
		return err
	}
	log.Noticef("Draw %d points from the joint distribution of %s", n, m.name)
	xs := stats.Draw(j, n, stats.PCG{Seed: stats.DefaultDiscretization().Seed})

	var names []string
	for i := 0; i < m.prior.Dim(); i++ {
		names = append(names, fmt.Sprintf("Y%d", i+1))
	}
	for i := 0; i < m.family.Dim(); i++ {
		names = append(names, fmt.Sprintf("X%d", i+1))
	}
	summarize(ctx, names, xs, j.Mean(nil))
	return nil
}

// summarize prints a table of the columns of xs next to the model
// means.
func summarize(ctx *cli.Context, names []string, xs *mat.Dense, means []float64) {
	tbl := tablewriter.NewWriter(ctx.App.Writer)
	tbl.SetHeader([]string{"Variable", "Model mean", "Mean", "Std dev", "5%", "Median", "95%"})
	tbl.SetBorder(true)
	tbl.SetAlignment(tablewriter.ALIGN_RIGHT)
	for c, name := range names {
		r := onlinestats.NewRunning()
		s := stats.Column(xs, c)
		for _, x := range s.Xs {
			r.Push(x)
		}
		s.Sort()
		tbl.Append([]string{
			name,
			fmt.Sprintf("%.4g", means[c]),
			fmt.Sprintf("%.4g", r.Mean()),
			fmt.Sprintf("%.4g", r.Stddev()),
			fmt.Sprintf("%.4g", s.Quantile(0.05)),
			fmt.Sprintf("%.4g", s.Quantile(0.5)),
			fmt.Sprintf("%.4g", s.Quantile(0.95)),
		})
	}
	tbl.Render()
}
