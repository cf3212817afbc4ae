package scheduler

import (
	"fmt"
	"optisched/internal/model"
)

// ScheduleJobs places every operation as early as both its machine and its job
// allow. Operations are taken job by job, step by step, so an earlier job wins
// a machine whenever two operations could start at the same time. The result
// is always feasible but its makespan is not necessarily minimal.
func ScheduleJobs(jobs []model.Job) (model.Schedule, error) {
	if err := model.ValidateJobs(jobs); err != nil {
		return model.Schedule{}, fmt.Errorf("failed scheduling jobs: %w", err)
	}

	operations := make([]model.Operation, 0)
	for j, job := range jobs {
		for step, req := range job {
			operations = append(operations, model.NewOperation(model.JobId(j), step, req))
		}
	}

	machineFree := make(map[model.MachineId]int)
	jobCompletion := make([]int, len(jobs))
	machines := make(map[model.MachineId][]model.Operation)

	for _, op := range operations {
		start := machineFree[op.Machine]
		if jobCompletion[op.Job] > start {
			start = jobCompletion[op.Job]
		}
		op.Start = start
		op.End = start + op.Duration

		machineFree[op.Machine] = op.End
		jobCompletion[op.Job] = op.End
		machines[op.Machine] = append(machines[op.Machine], op)
	}

	makespan := 0
	for _, completion := range jobCompletion {
		if completion > makespan {
			makespan = completion
		}
	}
	return model.Schedule{Machines: machines, Makespan: makespan}, nil
}
