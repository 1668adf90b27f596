// Package prand implements the deterministic pseudorandom stream used by
// combat resolution. Reseeding with the same value always reproduces the
// same sequence, which is what makes recorded matches replayable from
// their seed alone. The generator is mulberry32; do not substitute a
// different algorithm or stored seeds stop replaying correctly.
package prand

import "math"

// Stream is an infinite sequence of floats in [0,1) derived from a seed.
// It is restartable only by reseeding.
type Stream struct {
	state uint32
}

// New returns a fresh stream for the given seed.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// Float64 advances the stream and returns the next draw in [0,1).
func (s *Stream) Float64() float64 {
	s.state += 0x6d2b79f5
	t := s.state
	t = imul(t^(t>>15), t|1)
	t ^= t + imul(t^(t>>7), t|61)
	return float64(t^(t>>14)) / 4294967296
}

// IntN maps the next draw to an integer in [0, maxInclusive].
func (s *Stream) IntN(maxInclusive int) int {
	return int(math.Floor(s.Float64() * float64(maxInclusive+1)))
}

// imul multiplies with 32-bit wraparound, matching JS Math.imul semantics.
func imul(a, b uint32) uint32 {
	return uint32(uint64(a) * uint64(b))
}
