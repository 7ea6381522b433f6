// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aclements/go-decond/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var NodeCountsFlag = cli.IntSliceFlag{
	Name:  "node-counts",
	Usage: "node counts to compare",
	Value: cli.NewIntSlice(16, 64, 256, 1024, 4096),
}

// KLCommand compares discretizations of a model with a known density.
var KLCommand = cli.Command{
	Action: klAction,
	Name:   "kl",
	Usage:  "estimates the KL divergence of discretized models from the exact density",
	Flags:  append([]cli.Flag{&NodeCountsFlag, &CountFlag}, discretizationFlags...),
	Description: `
The kl command builds the chosen model with GaussProduct and QMC
discretizations of each node count, draws --n points from each and
reports the Monte-Carlo estimate of KL(discretized ‖ exact).

Only models with a known density (regular, irregular, binomial) can
be compared.`,
}

type klResult struct {
	method stats.Method
	nodes  int
	kl     float64
}

func klAction(ctx *cli.Context) error {
	cfg, log, err := setup(ctx, "KL")
	if err != nil {
		return err
	}
	m, err := lookupModel(ctx.String(ModelFlag.Name))
	if err != nil {
		return err
	}
	if m.exact == nil {
		return fmt.Errorf("model %s has no known density", m.name)
	}
	n := ctx.Int(CountFlag.Name)
	if n <= 0 {
		return fmt.Errorf("draw count %d must be positive", n)
	}
	base, err := cfg.StatsDiscretization()
	if err != nil {
		return err
	}

	log.Noticef("Model %s: %s", m.name, m.description)
	var results []klResult
	for _, method := range []stats.Method{stats.GaussProduct, stats.QMC} {
		for _, count := range ctx.IntSlice(NodeCountsFlag.Name) {
			disc := base
			disc.Method = method
			if method == stats.GaussProduct {
				disc.NodesPerMarginal = count
				if disc.MaxNodes < count {
					disc.MaxNodes = count
				}
			} else {
				disc.MaxNodes = count
			}
			start := time.Now()
			d, err := m.deconditioned(disc)
			if err != nil {
				return err
			}
			sample := stats.Draw(d, n, stats.PCG{Seed: base.Seed})
			kl := stats.KLDivergence(d.PDF, m.exact, sample)
			log.Infof("%v with %d nodes: KL %.3g in %v", method, d.Nodes().Len(), kl, time.Since(start).Round(time.Millisecond))
			results = append(results, klResult{method, d.Nodes().Len(), kl})
		}
	}
	printKL(ctx, results)
	return nil
}

func printKL(ctx *cli.Context, results []klResult) {
	tbl := tablewriter.NewWriter(ctx.App.Writer)
	tbl.SetHeader([]string{"Method", "Nodes", "KL"})
	tbl.SetBorder(true)
	tbl.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range results {
		tbl.Append([]string{r.method.String(), strconv.Itoa(r.nodes), fmt.Sprintf("%.3g", r.kl)})
	}
	tbl.Render()
}
