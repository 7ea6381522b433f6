// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads decond settings from TOML files.
//
// A file looks like
//
//	[discretization]
//	method = "QMC"
//	nodes_per_marginal = 256
//	max_nodes = 100000
//	seed = 1
//
//	[posterior]
//	sample_size = 10000
//	burn_in = 1000
//	thin = 5
//	max_iterations = 0
//
// Missing keys keep their defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/aclements/go-decond/stats"
)

type Discretization struct {
	Method           string `toml:"method"`
	NodesPerMarginal int    `toml:"nodes_per_marginal"`
	MaxNodes         int    `toml:"max_nodes"`
	Seed             uint64 `toml:"seed"`
}

type Posterior struct {
	SampleSize    int    `toml:"sample_size"`
	BurnIn        int    `toml:"burn_in"`
	Thin          int    `toml:"thin"`
	MaxIterations int    `toml:"max_iterations"`
	Seed          uint64 `toml:"seed"`
}

type Config struct {
	Discretization Discretization `toml:"discretization"`
	Posterior      Posterior      `toml:"posterior"`
}

// Default returns the built-in settings.
func Default() *Config {
	d := stats.DefaultDiscretization()
	return &Config{
		Discretization: Discretization{
			Method:           d.Method.String(),
			NodesPerMarginal: d.NodesPerMarginal,
			MaxNodes:         d.MaxNodes,
			Seed:             d.Seed,
		},
		Posterior: Posterior{
			SampleSize: 10000,
			BurnIn:     1000,
			Thin:       5,
		},
	}
}

// NewConfigWithFile reads the TOML file name over the defaults.
func NewConfigWithFile(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	c, err := NewConfig(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// NewConfig decodes TOML data over the defaults.
func NewConfig(data string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown setting %q", keys[0].String())
	}
	return c, nil
}

// StatsDiscretization converts the [discretization] section.
func (c *Config) StatsDiscretization() (stats.Discretization, error) {
	m, err := stats.ParseMethod(c.Discretization.Method)
	if err != nil {
		return stats.Discretization{}, err
	}
	d := stats.Discretization{
		Method:           m,
		NodesPerMarginal: c.Discretization.NodesPerMarginal,
		MaxNodes:         c.Discretization.MaxNodes,
		Seed:             c.Discretization.Seed,
	}
	return d, d.Validate()
}

// PosteriorOptions converts the [posterior] section.
func (c *Config) PosteriorOptions() stats.PosteriorOptions {
	p := c.Posterior
	return stats.PosteriorOptions{
		SampleSize: p.SampleSize,
		BurnIn:     p.BurnIn,
		Thin:       p.Thin,
		Minimizer:  stats.NelderMead{MaxIterations: p.MaxIterations},
		Seed:       p.Seed,
	}
}

// Apply validates c and installs its discretization as the default
// for models built afterwards.
func (c *Config) Apply() error {
	d, err := c.StatsDiscretization()
	if err != nil {
		return err
	}
	p := c.Posterior
	if p.SampleSize < 0 || p.BurnIn < 0 || p.Thin < 0 || p.MaxIterations < 0 {
		return fmt.Errorf("negative posterior setting in %+v: %w", p, stats.ErrInvalidArgument)
	}
	return stats.SetDefaultDiscretization(d)
}
