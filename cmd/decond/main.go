// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// decond explores deconditioned distributions of the built-in models:
// the accuracy of their discretization, their joint distributions,
// posteriors of their latent variables, and draws from them.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// initDecondApp initializes the decond app. This function is called
// by the main function and unit tests.
func initDecondApp() *cli.App {
	return &cli.App{
		Name:     "decond",
		HelpName: "decond",
		Usage:    "compose distributions by conditioning",
		Commands: []*cli.Command{
			&KLCommand,
			&JointCommand,
			&PosteriorCommand,
			&SampleCommand,
		},
	}
}

func main() {
	app := initDecondApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
