// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import "golang.org/x/exp/rand"

// A Streamer provides independent, reproducible random streams
// indexed by an integer. Samplers draw point i from Stream(i), so the
// same Streamer and index always reproduce the same point regardless
// of how draws are scheduled.
type Streamer interface {
	Stream(i uint64) rand.Source
}

// PCG is a Streamer of PCG32 generators (see pcg-random.org). Stream
// i of a PCG uses Seed as its initial state and i as its increment,
// which selects one of 2^63 distinct sequences.
type PCG struct {
	Seed uint64
}

// Stream returns the i'th stream of p.
func (p PCG) Stream(i uint64) rand.Source {
	s := newPCG(p.Seed, i)
	return &s
}

// pcg is a PCG32 generator. It implements rand.Source by combining
// two 32-bit outputs.
type pcg struct {
	state uint64
	inc   uint64
}

const pcgMul = 6364136223846793005

// newPCG constructs a pcg with the given state and inc.
//
// This is equivalent to starting at state 0 with the updated inc,
// taking one step, adding state, and taking another step.
func newPCG(state, inc uint64) pcg {
	inc = inc<<1 | 1
	return pcg{
		state: (inc+state)*pcgMul + inc,
		inc:   inc,
	}
}

// Uint32 returns a random uint32.
func (p *pcg) Uint32() uint32 {
	// The zero value of a pcg behaves like newPCG(0, 0).
	if p.inc == 0 {
		*p = newPCG(0, 0)
	}

	oldstate := p.state
	p.state = oldstate*pcgMul + p.inc

	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return xorshifted>>rot | (xorshifted << ((-rot) & 31))
}

// Uint64 returns a random uint64.
func (p *pcg) Uint64() uint64 {
	hi := uint64(p.Uint32())
	return hi<<32 | uint64(p.Uint32())
}

// Seed restarts the current stream from state seed.
func (p *pcg) Seed(seed uint64) {
	*p = newPCG(seed, p.inc>>1)
}

// openUnit returns a uniform variate in the open interval (0, 1).
// Inversion sampling needs the open interval because many quantile
// functions are infinite at 0 and 1.
func openUnit(src rand.Source) float64 {
	return (float64(src.Uint64()>>12) + 0.5) / (1 << 52)
}
