// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats composes probability distributions by conditioning.
//
// Given a conditional Family, a Prior over a latent variable Y and a
// Link from Y to the family's parameters, the package builds the
// deconditioned (marginal) distribution of X, the joint distribution
// of (Y, X), and the Bayesian posterior of Y given observations of X.
package stats // import "github.com/aclements/go-decond/stats"

import (
	"errors"
	"math"
)

var inf = math.Inf(1)
var nan = math.NaN()

var (
	// ErrDimensionMismatch is returned when the dimensions of
	// composed objects disagree, for example when a link's output
	// dimension differs from a family's parameter count.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidArgument is returned for arguments outside their
	// domain, such as a non-positive node count or an empty
	// observation sample.
	ErrInvalidArgument = errors.New("invalid argument")
)
