package ports

import (
	"context"
	"math/rand"
)

// RNGPort hands out seeded random streams. The same name and seed always
// yield the same sequence, which keeps candidate generation reproducible.
type RNGPort interface {
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
