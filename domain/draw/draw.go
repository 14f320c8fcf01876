package draw

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"drawlab/domain/core"
)

// Draw is one set of numbers. Numbers are kept sorted ascending so two draws
// holding the same set compare equal regardless of input order.
type Draw struct {
	numbers []int
}

// Key is the canonical identity of a draw's number set.
type Key string

// New builds a draw from numbers in any order. It does not check the domain
// rules; use Rules.NewDraw for validated construction.
func New(numbers ...int) Draw {
	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	return Draw{numbers: sorted}
}

// Numbers returns a copy of the sorted numbers.
func (d Draw) Numbers() []int {
	return append([]int(nil), d.numbers...)
}

// Len returns the number of numbers in the draw.
func (d Draw) Len() int { return len(d.numbers) }

// Contains reports whether n is part of the draw.
func (d Draw) Contains(n int) bool {
	i := sort.SearchInts(d.numbers, n)
	return i < len(d.numbers) && d.numbers[i] == n
}

// Sum returns the sum of the draw's numbers.
func (d Draw) Sum() int {
	total := 0
	for _, n := range d.numbers {
		total += n
	}
	return total
}

// Evens returns how many numbers of the draw are even.
func (d Draw) Evens() int {
	evens := 0
	for _, n := range d.numbers {
		if n%2 == 0 {
			evens++
		}
	}
	return evens
}

// Intersect returns the sorted numbers present in both draws.
func (d Draw) Intersect(other Draw) []int {
	shared := []int{}
	i, j := 0, 0
	for i < len(d.numbers) && j < len(other.numbers) {
		switch {
		case d.numbers[i] == other.numbers[j]:
			shared = append(shared, d.numbers[i])
			i++
			j++
		case d.numbers[i] < other.numbers[j]:
			i++
		default:
			j++
		}
	}
	return shared
}

// Key returns the set identity used for novelty checks.
func (d Draw) Key() Key {
	return Key(d.String())
}

// Equal reports set equality.
func (d Draw) Equal(other Draw) bool {
	return d.Key() == other.Key()
}

// String renders the draw as space separated numbers.
func (d Draw) String() string {
	parts := make([]string, len(d.numbers))
	for i, n := range d.numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// Rules holds the per-domain shape of a draw: K numbers drawn from [1, N].
type Rules struct {
	K int `json:"k"`
	N int `json:"n"`
}

// Validate checks the rules themselves.
func (r Rules) Validate() error {
	if r.K < 1 {
		return fmt.Errorf("draw size K must be at least 1, got %d", r.K)
	}
	if r.N < r.K {
		return fmt.Errorf("max number N (%d) must be at least K (%d)", r.N, r.K)
	}
	return nil
}

// Check validates numbers against the rules. index is reported in the error
// and may be -1 for draws outside a series.
func (r Rules) Check(index int, numbers []int) error {
	if len(numbers) != r.K {
		return core.NewMalformedDrawError(index, numbers,
			fmt.Sprintf("expected %d numbers, got %d", r.K, len(numbers)))
	}
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > r.N {
			return core.NewMalformedDrawError(index, numbers,
				fmt.Sprintf("number %d outside [1, %d]", n, r.N))
		}
		if seen[n] {
			return core.NewMalformedDrawError(index, numbers,
				fmt.Sprintf("duplicate number %d", n))
		}
		seen[n] = true
	}
	return nil
}

// NewDraw validates numbers and returns the draw.
func (r Rules) NewDraw(numbers ...int) (Draw, error) {
	if err := r.Check(-1, numbers); err != nil {
		return Draw{}, err
	}
	return New(numbers...), nil
}

// EvenCount returns how many even numbers exist in [1, N].
func (r Rules) EvenCount() int {
	return r.N / 2
}
