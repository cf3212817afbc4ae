package scenario

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"optisched/internal/model"
	"os"
)

// Scenario is a batch of scheduling problems read from a YAML file.
// Meetings and steps are written as two-element lists: [start, end] and
// [machine, duration].
type Scenario struct {
	Meetings  [][]int    `yaml:"meetings"`
	Recurring *Recurring `yaml:"recurring"`
	Jobs      [][][]int  `yaml:"jobs"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	scenario, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return scenario, nil
}

func Parse(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := scenario.validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) HasMeetings() bool {
	return len(s.Meetings) > 0 || (s.Recurring != nil && len(s.Recurring.Meetings) > 0)
}

func (s *Scenario) HasJobs() bool {
	return len(s.Jobs) > 0
}

// Intervals returns the listed meetings followed by the expanded recurring ones.
func (s *Scenario) Intervals() ([]model.Interval, error) {
	intervals := make([]model.Interval, 0, len(s.Meetings))
	for _, meeting := range s.Meetings {
		intervals = append(intervals, model.Interval{Start: meeting[0], End: meeting[1]})
	}
	if s.Recurring != nil {
		expanded, err := s.Recurring.Expand()
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, expanded...)
	}
	return intervals, nil
}

func (s *Scenario) JobList() []model.Job {
	jobs := make([]model.Job, 0, len(s.Jobs))
	for _, steps := range s.Jobs {
		job := make(model.Job, 0, len(steps))
		for _, step := range steps {
			job = append(job, model.OperationRequest{Machine: model.MachineId(step[0]), Duration: step[1]})
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func (s *Scenario) validate() error {
	for i, meeting := range s.Meetings {
		if len(meeting) != 2 {
			return fmt.Errorf("meeting %d: expected [start, end], got %v", i, meeting)
		}
		if err := model.ValidateInterval(i, model.Interval{Start: meeting[0], End: meeting[1]}); err != nil {
			return err
		}
	}
	for j, steps := range s.Jobs {
		for step, pair := range steps {
			if len(pair) != 2 {
				return fmt.Errorf("job %d step %d: expected [machine, duration], got %v", j, step, pair)
			}
			req := model.OperationRequest{Machine: model.MachineId(pair[0]), Duration: pair[1]}
			if err := model.ValidateOperation(model.JobId(j), step, req); err != nil {
				return err
			}
		}
	}
	if s.Recurring != nil {
		if err := s.Recurring.validate(); err != nil {
			return fmt.Errorf("recurring meetings: %w", err)
		}
	}
	return nil
}
