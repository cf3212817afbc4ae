package model

import "fmt"

// Unscheduled marks the start and end of an operation that has not been placed yet.
const Unscheduled = -1

type JobId int

type MachineId int

// OperationRequest is one step of a job: it needs Machine for Duration time units.
type OperationRequest struct {
	Machine  MachineId `json:"machine" validate:"gte=0"`
	Duration int       `json:"duration" validate:"gt=0"`
}

// Job is an ordered list of steps. Step i+1 cannot start before step i finishes.
type Job []OperationRequest

// Operation is a step of a job together with the time slot it was given.
type Operation struct {
	Job      JobId     `json:"job"`
	Step     int       `json:"step"`
	Machine  MachineId `json:"machine"`
	Duration int       `json:"duration"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
}

func NewOperation(job JobId, step int, req OperationRequest) Operation {
	return Operation{
		Job:      job,
		Step:     step,
		Machine:  req.Machine,
		Duration: req.Duration,
		Start:    Unscheduled,
		End:      Unscheduled,
	}
}

func (op Operation) Scheduled() bool {
	return op.Start != Unscheduled && op.End != Unscheduled
}

func (op Operation) String() string {
	return fmt.Sprintf("job %d step %d on machine %d: [%d, %d)", op.Job, op.Step, op.Machine, op.Start, op.End)
}
