// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aclements/go-decond/stats"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"
)

var (
	TruthFlag = cli.Float64SliceFlag{
		Name:  "truth",
		Usage: "latent value used to simulate observations (default: the model's)",
	}
	ObservationsFlag = cli.IntFlag{
		Name:  "observations",
		Usage: "number of simulated observations",
		Value: 25,
	}
	AlphaFlag = cli.Float64Flag{
		Name:  "alpha",
		Usage: "probability of the confidence box",
		Value: 0.95,
	}
)

// PosteriorCommand fits the latent variable of a model to
// observations.
var PosteriorCommand = cli.Command{
	Action:    posteriorAction,
	Name:      "posterior",
	Usage:     "computes the posterior mode and a confidence box of the latent variable",
	ArgsUsage: "[<observations-file>]",
	Flags:     append([]cli.Flag{&TruthFlag, &ObservationsFlag, &AlphaFlag}, discretizationFlags...),
	Description: `
The posterior command reads observations of X, one whitespace-separated
row per line, from <observations-file> ("-" for stdin). Without a file
it simulates --observations draws at the latent value --truth.

It prints the posterior mode, the equal-tailed marginal box of
posterior probability --alpha, and Metropolis-Hastings diagnostics.`,
}

func posteriorAction(ctx *cli.Context) error {
	cfg, log, err := setup(ctx, "Posterior")
	if err != nil {
		return err
	}
	m, err := lookupModel(ctx.String(ModelFlag.Name))
	if err != nil {
		return err
	}
	if ctx.Args().Len() > 1 {
		return fmt.Errorf("too many arguments")
	}

	truth := m.truth
	var obs *mat.Dense
	if name := ctx.Args().First(); name != "" {
		log.Infof("Read observations from %v", name)
		if obs, err = readObservationsFile(name, m.family.Dim()); err != nil {
			return err
		}
		truth = nil
	} else {
		if ctx.IsSet(TruthFlag.Name) {
			truth = ctx.Float64Slice(TruthFlag.Name)
		}
		c, err := m.conditional(truth)
		if err != nil {
			return err
		}
		n := ctx.Int(ObservationsFlag.Name)
		log.Infof("Simulate %d observations at %v", n, truth)
		obs = stats.Draw(c, n, stats.PCG{Seed: cfg.Posterior.Seed + 1})
	}

	d, err := stats.NewDeconditioned(m.family, m.prior, m.link)
	if err != nil {
		return err
	}
	post, err := stats.NewPosterior(d, obs, cfg.PosteriorOptions())
	if err != nil {
		return err
	}

	log.Notice("Find the posterior mode")
	mode, err := post.Mode()
	if err != nil {
		return err
	}
	warn := color.New(color.FgYellow, color.Bold).SprintfFunc()
	if !mode.Converged {
		log.Warningf("Mode search stopped after %d evaluations without converging", mode.Evaluations)
		fmt.Fprintln(ctx.App.Writer, warn("warning: the mode did not converge"))
	}

	alpha := ctx.Float64(AlphaFlag.Name)
	log.Noticef("Estimate the %v confidence box", alpha)
	box, beta, err := post.MarginalConfidenceInterval(alpha)
	if err != nil {
		return err
	}

	opts := post.Options()
	log.Notice("Run the Metropolis-Hastings chain")
	_, chain, err := post.Sample(opts.SampleSize, stats.PCG{Seed: opts.Seed})
	if err != nil {
		return err
	}
	if chain.AcceptanceRate < 0.1 || chain.AcceptanceRate > 0.7 {
		log.Warningf("Acceptance rate %.3f is outside the tuned range", chain.AcceptanceRate)
	}

	printPosterior(ctx.App.Writer, truth, mode, box, chain)
	bold := color.New(color.Bold).SprintfFunc()
	fmt.Fprintf(ctx.App.Writer, "Marginal level β:\t%s\n", bold("%.4f", beta))
	fmt.Fprintf(ctx.App.Writer, "Log evidence:\t\t%s\n", bold("%.4f", post.LogNormalization()))
	fmt.Fprintf(ctx.App.Writer, "Acceptance rate:\t%s\n", bold("%.3f", chain.AcceptanceRate))
	fmt.Fprintf(ctx.App.Writer, "Proposal scale:\t\t%s\n", bold("%.3f", chain.Scale))
	return nil
}

func printPosterior(w io.Writer, truth []float64, mode stats.Optimum, box stats.Interval, chain stats.ChainStats) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Latent", "Truth", "Mode", "Box low", "Box high", "Chain mean", "Chain std dev"})
	tbl.SetBorder(true)
	tbl.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i := range mode.X {
		t := "-"
		if truth != nil {
			t = fmt.Sprintf("%.4g", truth[i])
		}
		tbl.Append([]string{
			fmt.Sprintf("Y%d", i+1),
			t,
			fmt.Sprintf("%.4g", mode.X[i]),
			fmt.Sprintf("%.4g", box.Lo[i]),
			fmt.Sprintf("%.4g", box.Hi[i]),
			fmt.Sprintf("%.4g", chain.Means[i]),
			fmt.Sprintf("%.4g", chain.StdDevs[i]),
		})
	}
	tbl.Render()
}

func readObservationsFile(name string, dim int) (*mat.Dense, error) {
	if name == "-" {
		return readObservations(os.Stdin, dim)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	obs, err := readObservations(f, dim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return obs, nil
}

// readObservations reads rows of dim numbers. Blank lines and lines
// starting with # are skipped.
func readObservations(r io.Reader, dim int) (*mat.Dense, error) {
	var data []float64
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		l := strings.TrimSpace(scanner.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		fields := strings.Fields(l)
		if len(fields) != dim {
			return nil, fmt.Errorf("line %d: %d values, want %d", line, len(fields), dim)
		}
		for _, f := range fields {
			value, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			data = append(data, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no observations: %w", stats.ErrInvalidArgument)
	}
	return mat.NewDense(len(data)/dim, dim, data), nil
}
