package scheduler

import (
	"errors"
	"math/rand"
	"optisched/internal/model"
	"testing"
)

func requireEqual[K comparable](name string, first K, second K, t *testing.T) {
	t.Helper()
	if first != second {
		t.Fatalf("expected %s to be equal, instead got %v and %v", name, first, second)
	}
}

func requireIntervals(expected, actual []model.Interval, t *testing.T) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Fatalf("expected %v, got %v", expected, actual)
		}
	}
}

func TestSelectIntervals(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.Interval
		expected []model.Interval
	}{
		{
			"meetings",
			[]model.Interval{{Start: 1, End: 3}, {Start: 2, End: 4}, {Start: 3, End: 5}, {Start: 0, End: 6}},
			[]model.Interval{{Start: 1, End: 3}, {Start: 3, End: 5}},
		},
		{
			"no overlap keeps everything",
			[]model.Interval{{Start: 1, End: 2}, {Start: 3, End: 4}, {Start: 5, End: 6}},
			[]model.Interval{{Start: 1, End: 2}, {Start: 3, End: 4}, {Start: 5, End: 6}},
		},
		{
			"no overlap is sorted by end",
			[]model.Interval{{Start: 5, End: 6}, {Start: 1, End: 2}, {Start: 3, End: 4}},
			[]model.Interval{{Start: 1, End: 2}, {Start: 3, End: 4}, {Start: 5, End: 6}},
		},
		{
			"touching intervals are compatible",
			[]model.Interval{{Start: 1, End: 4}, {Start: 2, End: 3}, {Start: 3, End: 5}},
			[]model.Interval{{Start: 2, End: 3}, {Start: 3, End: 5}},
		},
		{
			"total overlap leaves earliest end",
			[]model.Interval{{Start: 1, End: 4}, {Start: 2, End: 3}, {Start: 2, End: 5}},
			[]model.Interval{{Start: 2, End: 3}},
		},
		{
			"single interval",
			[]model.Interval{{Start: 7, End: 9}},
			[]model.Interval{{Start: 7, End: 9}},
		},
		{
			"duplicates",
			[]model.Interval{{Start: 1, End: 2}, {Start: 1, End: 2}, {Start: 1, End: 2}},
			[]model.Interval{{Start: 1, End: 2}},
		},
		{
			"ties keep input order",
			[]model.Interval{{Start: 2, End: 5}, {Start: 1, End: 5}, {Start: 5, End: 6}},
			[]model.Interval{{Start: 2, End: 5}, {Start: 5, End: 6}},
		},
		{
			"negative bounds",
			[]model.Interval{{Start: -3, End: -1}, {Start: -2, End: 0}, {Start: -1, End: 1}},
			[]model.Interval{{Start: -3, End: -1}, {Start: -1, End: 1}},
		},
		{
			"example script meetings",
			[]model.Interval{{Start: 1, End: 3}, {Start: 2, End: 4}, {Start: 3, End: 5}, {Start: 0, End: 6}, {Start: 5, End: 7}, {Start: 8, End: 9}},
			[]model.Interval{{Start: 1, End: 3}, {Start: 3, End: 5}, {Start: 5, End: 7}, {Start: 8, End: 9}},
		},
	}
	for _, test := range tests {
		t.Run("Test "+test.name, func(t *testing.T) {
			selected, err := SelectIntervals(test.input)
			if err != nil {
				t.Fatal(err)
			}
			requireIntervals(test.expected, selected, t)
		})
	}

	t.Run("Test empty input", func(t *testing.T) {
		selected, err := SelectIntervals([]model.Interval{})
		if err != nil {
			t.Fatal(err)
		}
		if selected == nil {
			t.Fatal("expected empty selection, got nil")
		}
		requireEqual("selection size", 0, len(selected), t)
	})

	t.Run("Test input is not modified", func(t *testing.T) {
		input := []model.Interval{{Start: 0, End: 6}, {Start: 1, End: 3}, {Start: 3, End: 5}}
		if _, err := SelectIntervals(input); err != nil {
			t.Fatal(err)
		}
		requireIntervals([]model.Interval{{Start: 0, End: 6}, {Start: 1, End: 3}, {Start: 3, End: 5}}, input, t)
	})

	t.Run("Test invalid interval", func(t *testing.T) {
		_, err := SelectIntervals([]model.Interval{{Start: 1, End: 3}, {Start: 4, End: 4}})
		if !errors.Is(err, model.ErrInvalidInput) {
			t.Fatalf("expected invalid input error, got %v", err)
		}
		var inputErr *model.InputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("expected *model.InputError, got %T", err)
		}
		requireEqual("index", 1, inputErr.Index, t)
	})
}

// maxCompatible counts the largest non-overlapping subset by trying them all.
func maxCompatible(intervals []model.Interval) int {
	best := 0
	for mask := 0; mask < 1<<len(intervals); mask++ {
		chosen := make([]model.Interval, 0)
		compatible := true
		for i, interval := range intervals {
			if mask&(1<<i) == 0 {
				continue
			}
			for _, other := range chosen {
				if interval.Overlaps(other) {
					compatible = false
					break
				}
			}
			if !compatible {
				break
			}
			chosen = append(chosen, interval)
		}
		if compatible && len(chosen) > best {
			best = len(chosen)
		}
	}
	return best
}

func TestSelectIntervalsIsOptimal(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		intervals := make([]model.Interval, rnd.Intn(10))
		for i := range intervals {
			start := rnd.Intn(20)
			intervals[i] = model.Interval{Start: start, End: start + 1 + rnd.Intn(6)}
		}
		selected, err := SelectIntervals(intervals)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(selected); i++ {
			if selected[i-1].End > selected[i].Start {
				t.Fatalf("selection %v overlaps at %d", selected, i)
			}
		}
		if best := maxCompatible(intervals); best != len(selected) {
			t.Fatalf("input %v: selected %d intervals, best is %d", intervals, len(selected), best)
		}
	}
}
