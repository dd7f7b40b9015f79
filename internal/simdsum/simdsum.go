// Package simdsum provides a BLAS-backed vector sum, used by the collision
// energy diagnostic where a plain Go loop would otherwise do (SPEC_FULL.md
// DOMAIN STACK: gonum/blas32).
package simdsum

import "gonum.org/v1/gonum/blas/blas32"

// Sum returns the sum of v's elements via blas32's Sasum-free dot-with-ones
// trick (Ssum isn't part of the BLAS level-1 surface gonum exposes, so the
// sum is expressed as a dot product against a vector of ones).
func Sum(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	ones := make([]float32, len(v))
	for i := range ones {
		ones[i] = 1
	}
	x := blas32.Vector{N: len(v), Data: v, Inc: 1}
	y := blas32.Vector{N: len(ones), Data: ones, Inc: 1}
	return blas32.Implementation().Sdot(len(v), x.Data, x.Inc, y.Data, y.Inc)
}
