// Package rng provides deterministic random streams keyed by operation name.
package rng

import (
	"context"
	"math/rand"

	"drawlab/ports"
)

// SeededAdapter implements ports.RNGPort. Streams with the same name and seed
// replay identically; different names give independent streams.
type SeededAdapter struct{}

// NewSeededAdapter creates a new seeded RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

var _ ports.RNGPort = (*SeededAdapter)(nil)

// SeededStream creates a deterministic random number generator for a named operation
func (r *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(StreamSeed(name, seed))), nil
}

// StreamSeed mixes the operation name into the base seed.
func StreamSeed(name string, seed int64) int64 {
	if name == "" {
		return seed
	}
	return int64(hashString(name)) + seed
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
