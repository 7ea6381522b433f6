// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"math"

	"github.com/dgryski/go-onlinestats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/samplemv"
)

// PosteriorOptions configures the sampling and optimization done by a
// Posterior. The zero value selects the defaults.
type PosteriorOptions struct {
	// SampleSize is the number of posterior draws behind
	// MarginalConfidenceInterval. If zero, it is 10000.
	SampleSize int

	// BurnIn is the number of Metropolis-Hastings steps discarded
	// before recording. If zero, it is 1000.
	BurnIn int

	// Thin is the number of steps per recorded draw. If zero, it
	// is 5.
	Thin int

	// Minimizer finds the mode and bounds the ratio-of-uniforms
	// region. If nil, it is NelderMead{}.
	Minimizer Minimizer

	// Seed seeds the sampling done by MarginalConfidenceInterval.
	Seed uint64
}

func (o PosteriorOptions) withDefaults() PosteriorOptions {
	if o.SampleSize == 0 {
		o.SampleSize = 10000
	}
	if o.BurnIn == 0 {
		o.BurnIn = 1000
	}
	if o.Thin == 0 {
		o.Thin = 5
	}
	if o.Minimizer == nil {
		o.Minimizer = NelderMead{}
	}
	return o
}

// Posterior is the unnormalized posterior density of the latent
// variable Y of a Deconditioned model given i.i.d. observations of X:
//
//	p(y | x_1..x_N) ∝ π(y) Π_i f(x_i; g(y))
type Posterior struct {
	model *Deconditioned
	obs   *mat.Dense
	opts  PosteriorOptions
}

// NewPosterior returns the posterior of model's latent variable
// given the observations in the rows of obs.
//
// It returns an error wrapping ErrInvalidArgument if obs has no rows
// and one wrapping ErrDimensionMismatch if its columns do not match
// the model.
func NewPosterior(model *Deconditioned, obs *mat.Dense, opts PosteriorOptions) (*Posterior, error) {
	if obs == nil || obs.IsEmpty() {
		return nil, fmt.Errorf("no observations: %w", ErrInvalidArgument)
	}
	if _, c := obs.Dims(); c != model.Dim() {
		return nil, fmt.Errorf("observations of dimension %d for a model of dimension %d: %w", c, model.Dim(), ErrDimensionMismatch)
	}
	if opts.SampleSize < 0 || opts.BurnIn < 0 || opts.Thin < 0 {
		return nil, fmt.Errorf("negative sampling option in %+v: %w", opts, ErrInvalidArgument)
	}
	return &Posterior{model, mat.DenseCopyOf(obs), opts.withDefaults()}, nil
}

// Dim returns the dimension of the latent variable.
func (p *Posterior) Dim() int { return p.model.prior.Dim() }

// Options returns the options with defaults filled in.
func (p *Posterior) Options() PosteriorOptions { return p.opts }

// logLikelihood returns Σ_i log c(x_i), stopping early at -Inf.
func (p *Posterior) logLikelihood(c Dist) float64 {
	n, _ := p.obs.Dims()
	l := 0.0
	for i := 0; i < n; i++ {
		if l += c.LogPDF(p.obs.RawRowView(i)); l == -inf {
			break
		}
	}
	return l
}

// LogPDF returns the log of the unnormalized posterior density at y.
func (p *Posterior) LogPDF(y []float64) float64 {
	if len(y) != p.Dim() {
		panic(ErrDimensionMismatch)
	}
	lp := p.model.prior.LogPDF(y)
	if lp == -inf {
		return -inf
	}
	c, err := p.model.family.At(p.model.link.Eval(nil, y))
	if err != nil {
		return -inf
	}
	return lp + p.logLikelihood(c)
}

// PDF returns the unnormalized posterior density at y. It underflows
// to 0 for many observations; use LogPDF instead.
func (p *Posterior) PDF(y []float64) float64 {
	return math.Exp(p.LogPDF(y))
}

// nodeLogWeights returns log w_k + Σ_i log f(x_i; g(y_k)) for each
// node of the model.
func (p *Posterior) nodeLogWeights() []float64 {
	m := p.model
	terms := make([]float64, len(m.conds))
	eachRow(len(terms), func(k int) {
		terms[k] = m.logw[k] + p.logLikelihood(m.conds[k])
	})
	return terms
}

// LogNormalization returns the log of the evidence ∫ π(y) Π_i
// f(x_i; g(y)) dy, integrated over the model's node set.
func (p *Posterior) LogNormalization() float64 {
	return floats.LogSumExp(p.nodeLogWeights())
}

// nodeMoments returns the posterior mean and standard deviation of
// each coordinate, integrated over the model's node set.
func (p *Posterior) nodeMoments() (mean, sd []float64) {
	terms := p.nodeLogWeights()
	lse := floats.LogSumExp(terms)
	d := p.Dim()
	mean, sd = make([]float64, d), make([]float64, d)
	if math.IsInf(lse, 0) {
		for i := range sd {
			mean[i], sd[i] = nan, nan
		}
		return
	}
	nodes := p.model.nodes
	for k, t := range terms {
		w := math.Exp(t - lse)
		if w == 0 {
			continue
		}
		y := nodes.Node(k)
		for i := range mean {
			mean[i] += w * y[i]
			sd[i] += w * y[i] * y[i]
		}
	}
	for i := range sd {
		sd[i] = math.Sqrt(math.Max(0, sd[i]-mean[i]*mean[i]))
	}
	return
}

// Mean returns the posterior mean, integrated over the model's node
// set.
func (p *Posterior) Mean(dst []float64) []float64 {
	dst = resize(dst, p.Dim())
	mean, _ := p.nodeMoments()
	copy(dst, mean)
	return dst
}

// Bounds returns the prior's bounds.
func (p *Posterior) Bounds() (lo, hi []float64) {
	return p.model.prior.Bounds()
}

// Mode returns the maximum of the posterior density, searching the
// prior's bounds from the prior's mean. F of the result is the
// negated log density. If the search stops at its iteration limit,
// Mode returns the best point with Converged false and no error.
func (p *Posterior) Mode() (Optimum, error) {
	x0, err := p.start()
	if err != nil {
		return Optimum{}, err
	}
	lo, hi := p.Bounds()
	return p.opts.Minimizer.Minimize(func(y []float64) float64 {
		return -p.LogPDF(y)
	}, lo, hi, x0)
}

// start returns the prior mean, or the heaviest node of the model if
// the posterior is 0 at the prior mean.
func (p *Posterior) start() ([]float64, error) {
	x0 := p.model.prior.Mean(nil)
	if !math.IsInf(p.LogPDF(x0), -1) {
		return x0, nil
	}
	terms := p.nodeLogWeights()
	k := floats.MaxIdx(terms)
	if math.IsInf(terms[k], -1) {
		return nil, fmt.Errorf("posterior density is 0 at every node: %w", ErrInvalidArgument)
	}
	return append([]float64(nil), p.model.nodes.Node(k)...), nil
}

// ChainStats summarizes a Metropolis-Hastings run.
type ChainStats struct {
	BurnIn, Thin int

	// Steps is the number of recorded steps, before thinning.
	Steps int

	// AcceptanceRate is the fraction of recorded steps that moved.
	AcceptanceRate float64

	// Scale is the proposal standard deviation multiplier chosen by
	// the pilot runs.
	Scale float64

	// Means and StdDevs summarize each coordinate of the returned
	// draws.
	Means, StdDevs []float64
}

// logProber adapts a Posterior to distmv.LogProber.
type logProber struct{ p *Posterior }

func (l logProber) LogProb(y []float64) float64 { return l.p.LogPDF(y) }

// Pilot tuning parameters.
const (
	pilotSteps  = 500
	pilotRounds = 10
	minAccept   = 0.2
	maxAccept   = 0.5
)

// Sample draws n approximate samples from the posterior by random-walk
// Metropolis-Hastings with a Gaussian proposal. The proposal
// covariance starts at 2.38²/d times the node-set posterior variance
// and its scale is tuned by short pilot runs. The chain starts at the
// prior mean, or at the mode if the posterior is 0 there.
//
// Pilot round i uses rng.Stream(i+1) and the chain uses
// rng.Stream(0). Successive draws are correlated; ChainStats reports
// diagnostics.
func (p *Posterior) Sample(n int, rng Streamer) (*mat.Dense, ChainStats, error) {
	stats := ChainStats{BurnIn: p.opts.BurnIn, Thin: p.opts.Thin}
	if n == 0 {
		return &mat.Dense{}, stats, nil
	}
	if n < 0 {
		return nil, stats, fmt.Errorf("sample size %d: %w", n, ErrInvalidArgument)
	}
	d := p.Dim()
	x0 := p.model.prior.Mean(nil)
	if math.IsInf(p.LogPDF(x0), -1) {
		mode, err := p.Mode()
		if err != nil {
			return nil, stats, err
		}
		x0 = mode.X
		if math.IsInf(p.LogPDF(x0), -1) {
			return nil, stats, fmt.Errorf("no starting point with positive posterior density: %w", ErrInvalidArgument)
		}
	}

	_, sd := p.nodeMoments()
	lo, hi := p.Bounds()
	for i, s := range sd {
		if !(s > 0) || math.IsInf(s, 0) {
			// Degenerate node moments: fall back to the prior's
			// width.
			s = (hi[i] - lo[i]) / 10
			if !(s > 0) || math.IsInf(s, 0) {
				s = 1
			}
			sd[i] = s
		}
	}
	base := 2.38 / math.Sqrt(float64(d))

	run := func(steps, burnIn int, scale float64, stream uint64) (*mat.Dense, float64) {
		cov := mat.NewSymDense(d, nil)
		for i, s := range sd {
			cov.SetSym(i, i, (scale*s)*(scale*s))
		}
		src := rng.Stream(stream)
		prop, ok := samplemv.NewProposalNormal(cov, src)
		if !ok {
			panic("proposal covariance not positive definite")
		}
		batch := mat.NewDense(steps, d, nil)
		samplemv.MetropolisHastingser{
			Initial:  x0,
			Target:   logProber{p},
			Proposal: prop,
			Src:      src,
			BurnIn:   burnIn,
		}.Sample(batch)
		return batch, acceptance(batch, x0)
	}

	scale := base
	for round := 0; round < pilotRounds; round++ {
		_, rate := run(pilotSteps, 0, scale, uint64(round+1))
		if rate < minAccept {
			scale /= 2
		} else if rate > maxAccept {
			scale *= 2
		} else {
			break
		}
	}

	steps := n * p.opts.Thin
	batch, rate := run(steps, p.opts.BurnIn, scale, 0)
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		out.SetRow(i, batch.RawRowView((i+1)*p.opts.Thin-1))
	}

	stats.Steps = steps
	stats.AcceptanceRate = rate
	stats.Scale = scale
	stats.Means, stats.StdDevs = make([]float64, d), make([]float64, d)
	for j := 0; j < d; j++ {
		r := onlinestats.NewRunning()
		for i := 0; i < n; i++ {
			r.Push(out.At(i, j))
		}
		stats.Means[j], stats.StdDevs[j] = r.Mean(), r.Stddev()
	}
	return out, stats, nil
}

// acceptance returns the fraction of rows of batch that differ from
// the row before. A rejected Metropolis-Hastings step repeats the
// previous row. The row before the first is prev.
func acceptance(batch *mat.Dense, prev []float64) float64 {
	n, _ := batch.Dims()
	moved := 0
	for i := 0; i < n; i++ {
		row := batch.RawRowView(i)
		if !floats.Equal(row, prev) {
			moved++
		}
		prev = row
	}
	return float64(moved) / float64(n)
}

// RatioOfUniforms returns an exact sampler for the posterior, centered
// on its mode.
func (p *Posterior) RatioOfUniforms() (*RatioOfUniforms, error) {
	mode, err := p.Mode()
	if err != nil {
		return nil, err
	}
	lo, hi := p.Bounds()
	return NewRatioOfUniforms(p.LogPDF, lo, hi, mode.X, p.opts.Minimizer)
}

// MarginalConfidenceInterval returns the box with posterior
// probability alpha whose sides are equal-tailed marginal intervals,
// along with the common marginal level β. See
// BilateralConfidenceInterval.
//
// The posterior is estimated by a Gaussian-kernel KDE of SampleSize
// draws. The draws are exact ratio-of-uniforms samples when that
// sampler can be built, and Metropolis-Hastings samples otherwise.
func (p *Posterior) MarginalConfidenceInterval(alpha float64) (Interval, float64, error) {
	if !(alpha > 0 && alpha < 1) {
		return Interval{}, 0, fmt.Errorf("confidence level %v not in (0, 1): %w", alpha, ErrInvalidArgument)
	}
	draws, err := p.intervalSample()
	if err != nil {
		return Interval{}, 0, err
	}
	lo, hi := p.Bounds()
	kde := KDE{BoundaryMin: lo, BoundaryMax: hi}.FromMatrix(draws)
	return BilateralConfidenceInterval(kde, alpha)
}

func (p *Posterior) intervalSample() (*mat.Dense, error) {
	rng := PCG{Seed: p.opts.Seed}
	if rou, err := p.RatioOfUniforms(); err == nil {
		return rou.Sample(p.opts.SampleSize, rng), nil
	}
	draws, _, err := p.Sample(p.opts.SampleSize, rng)
	return draws, err
}
