// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/aclements/go-decond/internal/config"
	"github.com/aclements/go-decond/internal/logger"
	"github.com/aclements/go-decond/stats"
	"github.com/urfave/cli/v2"
)

var (
	ConfigFlag = cli.PathFlag{
		Name:  "config",
		Usage: "TOML settings file",
	}
	ModelFlag = cli.StringFlag{
		Name:  "model",
		Usage: "built-in model (" + modelNames() + ")",
		Value: "regular",
	}
	MethodFlag = cli.StringFlag{
		Name:  "method",
		Usage: "discretization method (GaussProduct or QMC)",
	}
	NodesFlag = cli.IntFlag{
		Name:  "nodes",
		Usage: "Gauss nodes per prior coordinate",
	}
	MaxNodesFlag = cli.IntFlag{
		Name:  "max-nodes",
		Usage: "QMC node count and cap on Gauss product nodes",
	}
	SeedFlag = cli.Uint64Flag{
		Name:  "seed",
		Usage: "seed of the random streams",
	}
	CountFlag = cli.IntFlag{
		Name:    "n",
		Aliases: []string{"count"},
		Usage:   "number of draws",
		Value:   10000,
	}
)

// discretizationFlags are shared by commands that build models.
var discretizationFlags = []cli.Flag{
	&ConfigFlag,
	&ModelFlag,
	&MethodFlag,
	&NodesFlag,
	&MaxNodesFlag,
	&SeedFlag,
	&logger.LogLevelFlag,
}

// setup loads the settings named by ctx, applies flag overrides and
// installs the discretization default.
func setup(ctx *cli.Context, module string) (*config.Config, logger.Logger, error) {
	log := logger.NewLoggerTo(ctx.App.ErrWriter, ctx.String(logger.LogLevelFlag.Name), module)

	cfg := config.Default()
	if name := ctx.Path(ConfigFlag.Name); name != "" {
		var err error
		if cfg, err = config.NewConfigWithFile(name); err != nil {
			return nil, nil, err
		}
		log.Infof("Read settings from %v", name)
	}
	d := &cfg.Discretization
	if ctx.IsSet(MethodFlag.Name) {
		d.Method = ctx.String(MethodFlag.Name)
	}
	if ctx.IsSet(NodesFlag.Name) {
		d.NodesPerMarginal = ctx.Int(NodesFlag.Name)
	}
	if ctx.IsSet(MaxNodesFlag.Name) {
		d.MaxNodes = ctx.Int(MaxNodesFlag.Name)
	}
	if ctx.IsSet(SeedFlag.Name) {
		d.Seed = ctx.Uint64(SeedFlag.Name)
		cfg.Posterior.Seed = d.Seed
	}
	if err := cfg.Apply(); err != nil {
		return nil, nil, err
	}
	log.Debugf("Discretization %+v", stats.DefaultDiscretization())
	return cfg, log, nil
}
