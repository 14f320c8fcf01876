package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrEmptyInput    = errors.New("empty input")
	ErrMalformedDraw = errors.New("malformed draw")

	// Generation errors
	ErrNoveltyExhausted = errors.New("novelty exhausted")

	// Lookup errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// EmptyInputError is returned when an operation needs at least one draw.
type EmptyInputError struct {
	Operation string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: %s requires at least one draw", ErrEmptyInput, e.Operation)
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// MalformedDrawError describes a draw that does not hold exactly K distinct
// numbers inside [1, N].
type MalformedDrawError struct {
	Index   int // position in the series, -1 when not part of one
	Numbers []int
	Reason  string
}

func (e *MalformedDrawError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s at index %d %v: %s", ErrMalformedDraw, e.Index, e.Numbers, e.Reason)
	}
	return fmt.Sprintf("%s %v: %s", ErrMalformedDraw, e.Numbers, e.Reason)
}

func (e *MalformedDrawError) Is(target error) bool { return target == ErrMalformedDraw }

// NoveltyExhaustedError reports that the attempt budget ran out before the
// requested number of unique candidates was accepted.
type NoveltyExhaustedError struct {
	Target   int
	Accepted int
	Attempts int
}

func (e *NoveltyExhaustedError) Error() string {
	return fmt.Sprintf("%s: accepted %d of %d candidates after %d attempts",
		ErrNoveltyExhausted, e.Accepted, e.Target, e.Attempts)
}

func (e *NoveltyExhaustedError) Is(target error) bool { return target == ErrNoveltyExhausted }

// Error constructors with context
func NewEmptyInputError(operation string) error {
	return &EmptyInputError{Operation: operation}
}

func NewMalformedDrawError(index int, numbers []int, reason string) error {
	copied := append([]int(nil), numbers...)
	return &MalformedDrawError{Index: index, Numbers: copied, Reason: reason}
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrMalformedDraw)
}

func IsExhaustedError(err error) bool {
	return errors.Is(err, ErrNoveltyExhausted)
}
