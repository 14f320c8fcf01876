package api

import "time"

// FeedMetadata describes one feed fetch.
type FeedMetadata struct {
	URL          string        `json:"url"`
	StatusCode   int           `json:"status_code"`
	ContentType  string        `json:"content_type"`
	ResponseTime time.Duration `json:"response_time"`
	Records      int           `json:"records"`
	FetchedAt    time.Time     `json:"fetched_at"`
}
