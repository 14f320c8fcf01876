package statistics

import (
	"errors"
	"math"
	"testing"

	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/internal/testkit"
)

func mustSeries(t *testing.T, rules draw.Rules, rows [][]int) draw.Series {
	t.Helper()
	s, err := draw.NewSeries(rules, rows)
	if err != nil {
		t.Fatalf("Failed to build series: %v", err)
	}
	return s
}

func TestCompute_WorkedExample(t *testing.T) {
	s := mustSeries(t, draw.Rules{K: 3, N: 5}, [][]int{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}})

	st, err := Compute(s)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// sums are 6, 9, 12
	if st.AverageSum != 9.0 {
		t.Errorf("Expected average sum 9, got %f", st.AverageSum)
	}
	if st.MinSum != 6 || st.MaxSum != 12 {
		t.Errorf("Expected sum range [6, 12], got [%d, %d]", st.MinSum, st.MaxSum)
	}
	if math.Abs(st.SumStdDev-math.Sqrt(6)) > 1e-9 {
		t.Errorf("Expected population std dev sqrt(6), got %f", st.SumStdDev)
	}

	expected := map[int]int{1: 1, 2: 2, 3: 3, 4: 2, 5: 1}
	for n, c := range expected {
		if st.Frequency.Count(n) != c {
			t.Errorf("Expected count %d for %d, got %d", c, n, st.Frequency.Count(n))
		}
	}

	// evens: 2 | 2,4 | 4 -> 4 ; odds: 1,3 | 3 | 3,5 -> 5
	if st.Parity.String() != "4:5" {
		t.Errorf("Expected parity 4:5, got %s", st.Parity)
	}
}

func TestCompute_AbsentNumbersCountZero(t *testing.T) {
	s := mustSeries(t, draw.Rules{K: 2, N: 10}, [][]int{{1, 2}, {1, 3}})

	st, err := Compute(s)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if _, present := st.Frequency[9]; present {
		t.Error("Unobserved numbers should be absent from the table")
	}
	if st.Frequency.Count(9) != 0 {
		t.Errorf("Expected zero count for unobserved number, got %d", st.Frequency.Count(9))
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	s := mustSeries(t, draw.Rules{K: 3, N: 5}, nil)

	_, err := Compute(s)
	if !errors.Is(err, core.ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput, got %v", err)
	}
	var empty *core.EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("Expected *EmptyInputError, got %T", err)
	}
}

func TestCompute_FrequencyTotalInvariant(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234} {
		s := testkit.NewHistoryGenerator(testkit.HistoryConfig{K: 15, N: 25, Draws: 60, Seed: seed}).MustSeries()

		st, err := Compute(s)
		if err != nil {
			t.Fatalf("Compute failed for seed %d: %v", seed, err)
		}
		if st.Frequency.Total() != 15*s.Len() {
			t.Errorf("Seed %d: expected frequency total %d, got %d", seed, 15*s.Len(), st.Frequency.Total())
		}
		if st.Parity.Even+st.Parity.Odd != 15*s.Len() {
			t.Errorf("Seed %d: parity counts do not cover every number", seed)
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	s := testkit.NewHistoryGenerator(testkit.HistoryConfig{K: 6, N: 49, Draws: 40, Seed: 99}).MustSeries()

	first, err := Compute(s)
	if err != nil {
		t.Fatalf("First compute failed: %v", err)
	}
	second, err := Compute(s)
	if err != nil {
		t.Fatalf("Second compute failed: %v", err)
	}

	if first.AverageSum != second.AverageSum || first.Parity != second.Parity {
		t.Error("Expected identical scalar statistics on repeated calls")
	}
	if len(first.Frequency) != len(second.Frequency) {
		t.Fatal("Expected identical frequency tables on repeated calls")
	}
	for n, c := range first.Frequency {
		if second.Frequency[n] != c {
			t.Errorf("Frequency mismatch for %d: %d vs %d", n, c, second.Frequency[n])
		}
	}
}

func TestSums(t *testing.T) {
	s := mustSeries(t, draw.Rules{K: 3, N: 5}, [][]int{{1, 2, 3}, {3, 4, 5}})
	sums := Sums(s)
	if len(sums) != 2 || sums[0] != 6 || sums[1] != 12 {
		t.Errorf("Expected [6 12], got %v", sums)
	}
}
