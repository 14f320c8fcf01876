package ports

import (
	"context"

	"drawlab/domain/draw"
)

// SeriesReader produces a draw series from an outside source (a spreadsheet,
// a text export, a results feed). Readers discard malformed rows and report
// them in the result instead of failing the whole read.
type SeriesReader interface {
	ReadSeries(ctx context.Context, rules draw.Rules) (*draw.Ingested, error)
}
