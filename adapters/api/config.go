package api

import (
	"fmt"
	"time"
)

// FeedSource describes a remote JSON feed of past draws
type FeedSource struct {
	URL string `json:"url"`

	// DataPath is the gjson path of the draws array. Empty means the whole
	// body is the array.
	DataPath string `json:"data_path"`
	// NumbersField names the numbers array inside each draw object. Empty
	// tries DefaultNumbersFields in order. Ignored when draws are bare arrays.
	NumbersField string `json:"numbers_field"`
	// OrderField, when set, sorts draws ascending by that numeric field
	// (contest number, timestamp) before validation.
	OrderField string `json:"order_field"`
	// NewestFirst reverses feeds that list the latest draw first.
	NewestFirst bool `json:"newest_first"`

	AuthMethod string            `json:"auth_method"` // none, bearer or api_key
	AuthToken  string            `json:"-"`
	Headers    map[string]string `json:"headers,omitempty"`
	Timeout    time.Duration     `json:"timeout"`
}

// DefaultNumbersFields are tried when FeedSource.NumbersField is empty.
var DefaultNumbersFields = []string{"numbers", "dezenas", "balls", "draw"}

// DefaultFeedTimeout bounds one feed request.
const DefaultFeedTimeout = 30 * time.Second

// Validate checks if the feed configuration is usable
func (s FeedSource) Validate() error {
	if s.URL == "" {
		return &ValidationError{Field: "URL", Message: "is required"}
	}
	switch s.AuthMethod {
	case "", "none", "bearer", "api_key":
	default:
		return &ValidationError{Field: "AuthMethod", Message: fmt.Sprintf("unsupported method %q", s.AuthMethod)}
	}
	if (s.AuthMethod == "bearer" || s.AuthMethod == "api_key") && s.AuthToken == "" {
		return &ValidationError{Field: "AuthToken", Message: "is required for " + s.AuthMethod}
	}
	if s.Timeout < 0 {
		return &ValidationError{Field: "Timeout", Message: "must not be negative"}
	}
	return nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}
