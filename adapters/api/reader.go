// Package api pulls draw histories from remote JSON feeds and parses
// prediction batches produced by outside tools.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"drawlab/domain/draw"
	"drawlab/internal/errors"
	"drawlab/ports"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// maxFeedBytes caps the body read from a feed.
const maxFeedBytes = 32 << 20

// FeedReader fetches a draw series from a JSON endpoint
type FeedReader struct {
	source     FeedSource
	httpClient *http.Client
	logger     zerolog.Logger
	metadata   FeedMetadata
}

var _ ports.SeriesReader = (*FeedReader)(nil)

// NewFeedReader creates a new feed reader
func NewFeedReader(source FeedSource, logger zerolog.Logger) (*FeedReader, error) {
	if err := source.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	timeout := source.Timeout
	if timeout == 0 {
		timeout = DefaultFeedTimeout
	}
	return &FeedReader{
		source:     source,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "feed_reader").Logger(),
	}, nil
}

// Metadata describes the last fetch.
func (r *FeedReader) Metadata() FeedMetadata {
	return r.metadata
}

// ReadSeries downloads the feed and validates every draw against rules.
func (r *FeedReader) ReadSeries(ctx context.Context, rules draw.Rules) (*draw.Ingested, error) {
	startTime := time.Now()

	req, err := r.buildRequest(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build feed request")
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("feed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, errors.ExternalServiceError("feed", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ExternalServiceError("feed", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	rows, err := r.parseRows(body)
	if err != nil {
		return nil, errors.ExternalServiceError("feed", err)
	}

	r.metadata = FeedMetadata{
		URL:          r.source.URL,
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		ResponseTime: time.Since(startTime),
		Records:      len(rows),
		FetchedAt:    startTime,
	}

	ingested, err := draw.Collect(rules, r.source.URL, rows)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	r.logger.Info().
		Str("url", r.source.URL).
		Int("records", len(rows)).
		Int("accepted", ingested.Accepted()).
		Int("discarded", len(ingested.Discarded)).
		Dur("elapsed", r.metadata.ResponseTime).
		Msg("feed fetched")
	return &ingested, nil
}

// buildRequest creates an HTTP request with authentication
func (r *FeedReader) buildRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.source.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.source.Headers {
		req.Header.Set(k, v)
	}
	switch r.source.AuthMethod {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+r.source.AuthToken)
	case "api_key":
		req.Header.Set("X-API-Key", r.source.AuthToken)
	}
	return req, nil
}

// parseRows extracts one raw row per draw, oldest first.
func (r *FeedReader) parseRows(body []byte) ([]draw.RawRow, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	data := gjson.ParseBytes(body)
	if r.source.DataPath != "" {
		data = gjson.GetBytes(body, r.source.DataPath)
		if !data.Exists() {
			return nil, fmt.Errorf("data path '%s' not found in response", r.source.DataPath)
		}
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("draws at '%s' are not a JSON array", r.source.DataPath)
	}

	items := data.Array()
	if r.source.OrderField != "" {
		sort.SliceStable(items, func(i, j int) bool {
			return lessByField(items[i].Get(r.source.OrderField), items[j].Get(r.source.OrderField))
		})
	} else if r.source.NewestFirst {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}

	rows := make([]draw.RawRow, len(items))
	for i, item := range items {
		rows[i] = draw.RawRow{Line: i + 1, Cells: cellsOf(r.numbersOf(item))}
	}
	return rows, nil
}

// numbersOf locates the numbers array of one feed item.
func (r *FeedReader) numbersOf(item gjson.Result) gjson.Result {
	if item.IsArray() {
		return item
	}
	if !item.IsObject() {
		return gjson.Result{}
	}
	if r.source.NumbersField != "" {
		return item.Get(r.source.NumbersField)
	}
	for _, field := range DefaultNumbersFields {
		if v := item.Get(field); v.IsArray() {
			return v
		}
	}
	return gjson.Result{}
}

// cellsOf renders array elements as cells; numbers keep their JSON text and
// strings such as "07" pass through.
func cellsOf(numbers gjson.Result) []string {
	if !numbers.IsArray() {
		return nil
	}
	var cells []string
	numbers.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.Number:
			cells = append(cells, v.Raw)
		case gjson.String:
			cells = append(cells, v.String())
		}
		return true
	})
	return cells
}

func lessByField(a, b gjson.Result) bool {
	if a.Type == gjson.Number && b.Type == gjson.Number {
		return a.Num < b.Num
	}
	return a.String() < b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
