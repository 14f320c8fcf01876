package generation

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed draws, then repeats the last one.
type scriptedSource struct {
	draws []draw.Draw
	calls int
	err   error
}

func (s *scriptedSource) Generate() (draw.Draw, error) {
	if s.err != nil {
		return draw.Draw{}, s.err
	}
	i := s.calls
	if i >= len(s.draws) {
		i = len(s.draws) - 1
	}
	s.calls++
	return s.draws[i], nil
}

func TestFillNovel_CandidatesAreNovel(t *testing.T) {
	s := testkit.NewHistoryGenerator(testkit.DefaultHistoryConfig()).MustSeries()
	g, err := NewGenerator(basisFor(t, s), DefaultConfig(), rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	candidates, err := FillNovel(s, g, 10, 10000)
	require.NoError(t, err)
	require.Len(t, candidates, 10)

	history := s.Keys()
	seen := map[draw.Key]bool{}
	prevRound := 0
	for _, c := range candidates {
		key := c.Draw.Key()
		_, inHistory := history[key]
		assert.False(t, inHistory, "candidate %s is in the history", c.Draw)
		assert.False(t, seen[key], "candidate %s is duplicated", c.Draw)
		seen[key] = true

		assert.Greater(t, c.Round, prevRound, "rounds must increase")
		prevRound = c.Round
		assert.Equal(t, c.Draw.Numbers(), c.Numbers)
	}
}

func TestFill_RejectsHistoryAndDuplicates(t *testing.T) {
	rules := draw.Rules{K: 3, N: 5}
	s, err := draw.NewSeries(rules, [][]int{{1, 2, 3}, {2, 3, 4}})
	require.NoError(t, err)

	src := &scriptedSource{draws: []draw.Draw{
		draw.New(3, 2, 1), // history
		draw.New(1, 4, 5), // novel
		draw.New(5, 4, 1), // duplicate of accepted
		draw.New(1, 2, 9), // out of range
		draw.New(2, 3, 4), // history
		draw.New(1, 3, 5), // novel
	}}

	f := NewFilter(s)
	candidates, err := f.Fill(src, 2, 100)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, []int{1, 4, 5}, candidates[0].Numbers)
	assert.Equal(t, 2, candidates[0].Round)
	assert.Equal(t, 1, candidates[0].Rejections)

	assert.Equal(t, []int{1, 3, 5}, candidates[1].Numbers)
	assert.Equal(t, 6, candidates[1].Round)
	assert.Equal(t, 3, candidates[1].Rejections)
	assert.Equal(t, 6, f.Attempts())
}

func TestFillNovel_ExhaustedWhenOnlyDrawIsTaken(t *testing.T) {
	rules := draw.Rules{K: 3, N: 3}
	s, err := draw.NewSeries(rules, [][]int{{1, 2, 3}})
	require.NoError(t, err)

	g, err := NewGenerator(basisFor(t, s), DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	candidates, err := FillNovel(s, g, 1, 50)
	require.Error(t, err)
	assert.Empty(t, candidates)
	assert.True(t, errors.Is(err, core.ErrNoveltyExhausted))

	var exhausted *core.NoveltyExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 1, exhausted.Target)
	assert.Equal(t, 0, exhausted.Accepted)
	assert.Equal(t, 50, exhausted.Attempts)
}

func TestFillNovel_ExhaustedAfterPartialProgress(t *testing.T) {
	rules := draw.Rules{K: 2, N: 3}
	s, err := draw.NewSeries(rules, [][]int{{1, 2}})
	require.NoError(t, err)

	// only {1,3} and {2,3} are novel
	src := &scriptedSource{draws: []draw.Draw{draw.New(1, 3), draw.New(2, 3), draw.New(1, 2)}}

	candidates, err := FillNovel(s, src, 3, 20)
	require.Error(t, err)
	assert.Len(t, candidates, 2)

	var exhausted *core.NoveltyExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 2, exhausted.Accepted)
	assert.Equal(t, 20, exhausted.Attempts)
}

func TestFillNovel_SourceError(t *testing.T) {
	s, err := draw.NewSeries(draw.Rules{K: 3, N: 5}, [][]int{{1, 2, 3}})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = FillNovel(s, &scriptedSource{err: boom}, 1, 10)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, core.ErrNoveltyExhausted))
}

func TestFillNovel_StopsWhenContextDone(t *testing.T) {
	s, err := draw.NewSeries(draw.Rules{K: 3, N: 5}, [][]int{{1, 2, 3}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{draws: []draw.Draw{draw.New(1, 2, 3)}}
	cancelling := sourceFunc(func() (draw.Draw, error) {
		cancel()
		return src.Generate()
	})

	_, err = FillNovel(s, WithContext(ctx, cancelling), 1, 1000)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.calls)
}

type sourceFunc func() (draw.Draw, error)

func (f sourceFunc) Generate() (draw.Draw, error) { return f() }

func TestFillNovel_ZeroTarget(t *testing.T) {
	s, err := draw.NewSeries(draw.Rules{K: 3, N: 5}, [][]int{{1, 2, 3}})
	require.NoError(t, err)

	candidates, err := FillNovel(s, &scriptedSource{draws: []draw.Draw{draw.New(1, 2, 3)}}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
