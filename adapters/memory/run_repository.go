// Package memory keeps analysis runs in process memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"drawlab/domain/core"
	"drawlab/domain/result"
	"drawlab/ports"
)

// RunRepository holds encoded bundles so callers never share state with the
// store. Runs are lost on restart.
type RunRepository struct {
	mu      sync.RWMutex
	runs    map[core.RunID][]byte
	summary map[core.RunID]result.RunSummary
}

var _ ports.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates an empty store.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs:    make(map[core.RunID][]byte),
		summary: make(map[core.RunID]result.RunSummary),
	}
}

// Save stores the bundle.
func (r *RunRepository) Save(ctx context.Context, bundle *result.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	encoded, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[bundle.RunID]; exists {
		return fmt.Errorf("run %s already stored", bundle.RunID)
	}
	r.runs[bundle.RunID] = encoded
	r.summary[bundle.RunID] = bundle.RunSummary()
	return nil
}

// Get returns a copy of a stored bundle.
func (r *RunRepository) Get(ctx context.Context, id core.RunID) (*result.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	encoded, ok := r.runs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, core.NewNotFoundError("run", id.String())
	}

	var bundle result.Bundle
	if err := json.Unmarshal(encoded, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	bundle.RestoreDraws()
	return &bundle, nil
}

// ListRecent returns up to limit summaries, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]result.RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	list := make([]result.RunSummary, 0, len(r.summary))
	for _, s := range r.summary {
		list = append(list, s)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].RunID < list[j].RunID
	})
	if limit >= 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
