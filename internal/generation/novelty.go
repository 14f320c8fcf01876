package generation

import (
	"context"
	"fmt"

	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/domain/result"
)

// Source produces candidate draws. *Generator is the standard implementation.
type Source interface {
	Generate() (draw.Draw, error)
}

// WithContext makes source fail with the context's error once ctx is done,
// which stops a Fill in progress.
func WithContext(ctx context.Context, source Source) Source {
	return contextSource{ctx: ctx, source: source}
}

type contextSource struct {
	ctx    context.Context
	source Source
}

func (s contextSource) Generate() (draw.Draw, error) {
	if err := s.ctx.Err(); err != nil {
		return draw.Draw{}, err
	}
	return s.source.Generate()
}

// Filter accepts only draws whose number set has not been seen in the history
// or among earlier accepted candidates. The seen set is the filter's state, so
// a Filter must be driven from a single goroutine.
type Filter struct {
	rules    draw.Rules
	seen     map[draw.Key]struct{}
	attempts int
}

// NewFilter seeds the seen set with every draw of the series.
func NewFilter(series draw.Series) *Filter {
	return &Filter{
		rules: series.Rules(),
		seen:  series.Keys(),
	}
}

// Attempts returns how many draws were requested from the source so far.
func (f *Filter) Attempts() int { return f.attempts }

// Seen reports whether a draw's number set is already taken.
func (f *Filter) Seen(d draw.Draw) bool {
	_, ok := f.seen[d.Key()]
	return ok
}

// Fill pulls draws from source until targetCount novel candidates are
// accepted. Each pull counts as one attempt; once maxAttempts attempts are
// spent without reaching the target a *core.NoveltyExhaustedError is
// returned. Draws that break the series rules are rejected like duplicates.
func (f *Filter) Fill(source Source, targetCount, maxAttempts int) ([]result.Candidate, error) {
	accepted := make([]result.Candidate, 0, max(targetCount, 0))
	rejections := 0
	spent := 0

	for len(accepted) < targetCount {
		if spent >= maxAttempts {
			return accepted, &core.NoveltyExhaustedError{
				Target:   targetCount,
				Accepted: len(accepted),
				Attempts: spent,
			}
		}
		spent++
		f.attempts++

		d, err := source.Generate()
		if err != nil {
			return accepted, fmt.Errorf("candidate source failed on attempt %d: %w", spent, err)
		}
		if f.rules.Check(-1, d.Numbers()) != nil || f.Seen(d) {
			rejections++
			continue
		}

		f.seen[d.Key()] = struct{}{}
		accepted = append(accepted, result.NewCandidate(d, spent, rejections))
		rejections = 0
	}
	return accepted, nil
}

// FillNovel runs a fresh filter over series.
func FillNovel(series draw.Series, source Source, targetCount, maxAttempts int) ([]result.Candidate, error) {
	return NewFilter(series).Fill(source, targetCount, maxAttempts)
}
