package sim

import "math"

// SpawnSeedXOR derives the spawn-decision stream's seed from the match seed,
// per the required constant in the external interface contract.
const SpawnSeedXOR = 0x2F7A1D

// SeedStride spaces successive training-phase seeds.
const SeedStride = 9973

// Stream is a deterministic mulberry32-style PRNG. It is never a
// package-global: the battle session, the spawn policy, and the genetics
// package each hold an explicit *Stream so that a job's output depends only
// on the seed it was given, never on goroutine scheduling or call order.
type Stream struct {
	state uint32
}

// NewStream seeds a stream. Two streams built from the same seed produce
// byte-identical sequences.
func NewStream(seed int32) *Stream {
	return &Stream{state: uint32(seed)}
}

// Next returns the next value in [0, 1) along with the raw internal state
// after the draw, so a caller can fork a reproducible sub-stream from it.
func (s *Stream) Next() (float64, int32) {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	result := float64(t^(t>>14)) / 4294967296.0
	return result, int32(s.state)
}

// Float64 draws the next value in [0, 1), discarding the raw state.
func (s *Stream) Float64() float64 {
	f, _ := s.Next()
	return f
}

// Range draws a float64 in [min, max).
func (s *Stream) Range(min, max float64) float64 {
	return min + s.Float64()*(max-min)
}

// IntRange draws an integer in [min, max] inclusive.
func (s *Stream) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(s.Float64()*float64(max-min+1))
}

// Bool draws a boolean with the given probability of true.
func (s *Stream) Bool(probTrue float64) bool {
	return s.Float64() < probTrue
}

// Sign draws -1 or +1 with equal probability.
func (s *Stream) Sign() float64 {
	if s.Bool(0.5) {
		return 1
	}
	return -1
}

// Gaussian draws from a standard normal distribution via Box–Muller,
// rejecting zero samples (log(0) is undefined) the way genetics' mutate
// does for its Gaussian perturbations.
func (s *Stream) Gaussian() float64 {
	var u1 float64
	for u1 == 0 {
		u1 = s.Float64()
	}
	u2 := s.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
