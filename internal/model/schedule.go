package model

import (
	"fmt"
	"sort"
)

// Schedule is the result of job-shop scheduling: every machine's timeline in
// the order operations were placed, and the time the last operation ends.
type Schedule struct {
	Machines map[MachineId][]Operation
	Makespan int
}

// JobSummary is the span of one job from its first operation's start to its
// last operation's end.
type JobSummary struct {
	Job   JobId `json:"job"`
	Start int   `json:"start"`
	End   int   `json:"end"`
}

func (s Schedule) MachineIDs() []MachineId {
	ids := make([]MachineId, 0, len(s.Machines))
	for id := range s.Machines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Operations lists every operation, machine by machine in ascending id order.
func (s Schedule) Operations() []Operation {
	ops := make([]Operation, 0)
	for _, id := range s.MachineIDs() {
		ops = append(ops, s.Machines[id]...)
	}
	return ops
}

// JobSummaries returns one summary per job that has operations, ordered by job.
func (s Schedule) JobSummaries() []JobSummary {
	byJob := make(map[JobId]*JobSummary)
	for _, op := range s.Operations() {
		summary, ok := byJob[op.Job]
		if !ok {
			byJob[op.Job] = &JobSummary{op.Job, op.Start, op.End}
			continue
		}
		if op.Start < summary.Start {
			summary.Start = op.Start
		}
		if op.End > summary.End {
			summary.End = op.End
		}
	}
	summaries := make([]JobSummary, 0, len(byJob))
	for _, summary := range byJob {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Job < summaries[j].Job })
	return summaries
}

// CheckFeasible verifies machine exclusivity, in-job ordering and the makespan.
func (s Schedule) CheckFeasible() error {
	maxEnd := 0
	jobs := make(map[JobId][]Operation)
	for _, id := range s.MachineIDs() {
		ops := s.Machines[id]
		for i, op := range ops {
			if !op.Scheduled() {
				return fmt.Errorf("operation %s is not scheduled", op)
			}
			if op.Machine != id {
				return fmt.Errorf("operation %s is listed under machine %d", op, id)
			}
			if op.End-op.Start != op.Duration {
				return fmt.Errorf("operation %s does not last %d", op, op.Duration)
			}
			if i > 0 && ops[i-1].End > op.Start {
				return fmt.Errorf("machine %d: %s overlaps %s", id, ops[i-1], op)
			}
			if op.End > maxEnd {
				maxEnd = op.End
			}
			jobs[op.Job] = append(jobs[op.Job], op)
		}
	}
	for job, ops := range jobs {
		sort.Slice(ops, func(i, j int) bool { return ops[i].Step < ops[j].Step })
		for i := 1; i < len(ops); i++ {
			if ops[i].Start < ops[i-1].End {
				return fmt.Errorf("job %d: %s starts before %s ends", job, ops[i], ops[i-1])
			}
		}
	}
	if maxEnd != s.Makespan {
		return fmt.Errorf("makespan %d differs from the last operation end %d", s.Makespan, maxEnd)
	}
	return nil
}
