package scheduler

import (
	"fmt"
	"optisched/internal/model"
	"sort"
)

// SelectIntervals picks a largest set of mutually non-overlapping intervals,
// earliest finishing first. Intervals that touch are compatible. The result is
// ordered by end time; ties keep their input order.
func SelectIntervals(intervals []model.Interval) ([]model.Interval, error) {
	if err := model.ValidateIntervals(intervals); err != nil {
		return nil, fmt.Errorf("failed selecting intervals: %w", err)
	}

	selected := make([]model.Interval, 0, len(intervals))
	if len(intervals) == 0 {
		return selected, nil
	}

	sorted := make([]model.Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].End < sorted[j].End
	})

	selected = append(selected, sorted[0])
	lastEnd := sorted[0].End
	for _, interval := range sorted[1:] {
		if interval.Start >= lastEnd {
			selected = append(selected, interval)
			lastEnd = interval.End
		}
	}
	return selected, nil
}
