package render

import (
	"fmt"
	"io"
	"optisched/internal/model"
	"strings"
)

const ruleWidth = 50

// Intervals writes the selected meetings as a numbered list.
func Intervals(w io.Writer, selected []model.Interval) {
	fmt.Fprintln(w, "Final schedule:")
	fmt.Fprintf(w, "You can fit %d %s:\n", len(selected), plural(len(selected), "meeting"))
	for i, interval := range selected {
		fmt.Fprintf(w, "   %d. %d:00 - %d:00\n", i+1, interval.Start, interval.End)
	}
}

// JobShop writes the makespan, every machine's timeline and a per-job summary.
// Jobs are numbered from 1.
func JobShop(w io.Writer, schedule model.Schedule) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Schedule complete, total time: %d %s\n", schedule.Makespan, plural(schedule.Makespan, "unit"))
	fmt.Fprintln(w, rule)

	for _, id := range schedule.MachineIDs() {
		fmt.Fprintf(w, "\nMachine %d:\n", id)
		for _, op := range schedule.Machines[id] {
			fmt.Fprintf(w, "   [%d - %d): Job %d\n", op.Start, op.End, op.Job+1)
		}
	}

	fmt.Fprintln(w, "\nSummary:")
	for _, summary := range schedule.JobSummaries() {
		fmt.Fprintf(w, "   Job %d: starts at %d, finishes at %d\n", summary.Job+1, summary.Start, summary.End)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
