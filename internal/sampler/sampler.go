// Package sampler draws uniform samples from the admissible families of the
// robustness analyses: weight polytopes (hit-and-run), monotone value
// functions within envelopes, and interval or rank-ordered performance
// realizations.
package sampler

import "math/rand/v2"

// State is the lifecycle of a sampling chain.
type State int

// All chain states.
const (
	Uninitialized State = iota
	BurningIn
	Producing
)

// Stream returns the deterministic generator for one sample stream. Workers
// sharding samples each get their own stream index, so results depend only
// on (seed, parallelism), never on scheduling order.
func Stream(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
