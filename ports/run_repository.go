package ports

import (
	"context"

	"drawlab/domain/core"
	"drawlab/domain/result"
)

// RunRepository stores finished analysis bundles.
type RunRepository interface {
	Save(ctx context.Context, bundle *result.Bundle) error
	Get(ctx context.Context, id core.RunID) (*result.Bundle, error)
	ListRecent(ctx context.Context, limit int) ([]result.RunSummary, error)
}
