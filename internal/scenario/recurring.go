package scenario

import (
	"fmt"
	"github.com/robfig/cron/v3"
	"math"
	"optisched/internal/model"
	"time"
)

const (
	// maxOccurrences bounds the expansion of a single recurring meeting.
	maxOccurrences = 10000
	// maxWindowHours is the longest window whose end still fits a time.Duration.
	maxWindowHours = math.MaxInt64 / int64(time.Hour)
)

type Unit string

const (
	UnitMinute Unit = "minute"
	UnitHour   Unit = "hour"
)

func (u Unit) duration() (time.Duration, error) {
	switch u {
	case UnitMinute, "":
		return time.Minute, nil
	case UnitHour:
		return time.Hour, nil
	}
	return 0, fmt.Errorf("unknown unit \"%s\"", u)
}

// Window is the stretch of wall-clock time recurring meetings are expanded in.
// Interval bounds are counted in Unit from From.
type Window struct {
	From  time.Time `yaml:"from"`
	Hours int       `yaml:"hours"`
	Unit  Unit      `yaml:"unit"`
}

type RecurringMeeting struct {
	Cron   string `yaml:"cron"`
	Length int    `yaml:"length"`
}

type Recurring struct {
	Window   Window             `yaml:"window"`
	Meetings []RecurringMeeting `yaml:"meetings"`
}

// Expand turns every activation of every cron expression inside the window into
// an interval of the meeting's length.
func (r *Recurring) Expand() ([]model.Interval, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	unit, err := r.Window.Unit.duration()
	if err != nil {
		return nil, err
	}
	end := r.Window.From.Add(time.Duration(r.Window.Hours) * time.Hour)

	intervals := make([]model.Interval, 0)
	for i, meeting := range r.Meetings {
		schedule, err := cron.ParseStandard(meeting.Cron)
		if err != nil {
			return nil, fmt.Errorf("failed parsing crontab string \"%s\" of meeting %d: %w", meeting.Cron, i, err)
		}
		count := 0
		for next := schedule.Next(r.Window.From.Add(-time.Nanosecond)); !next.IsZero() && next.Before(end); next = schedule.Next(next) {
			if count++; count > maxOccurrences {
				return nil, fmt.Errorf("meeting %d occurs more than %d times in the window", i, maxOccurrences)
			}
			start := int(next.Sub(r.Window.From) / unit)
			intervals = append(intervals, model.Interval{Start: start, End: start + meeting.Length})
		}
	}
	return intervals, nil
}

func (r *Recurring) validate() error {
	if r.Window.From.IsZero() {
		return fmt.Errorf("window start is required")
	}
	if r.Window.Hours <= 0 {
		return fmt.Errorf("window hours must be positive, got %d", r.Window.Hours)
	}
	if int64(r.Window.Hours) > maxWindowHours {
		return fmt.Errorf("window hours must be at most %d, got %d", maxWindowHours, r.Window.Hours)
	}
	if _, err := r.Window.Unit.duration(); err != nil {
		return err
	}
	for i, meeting := range r.Meetings {
		if meeting.Length <= 0 {
			return fmt.Errorf("meeting %d: length must be positive, got %d", i, meeting.Length)
		}
		if _, err := cron.ParseStandard(meeting.Cron); err != nil {
			return fmt.Errorf("meeting %d: failed parsing crontab string \"%s\": %w", i, meeting.Cron, err)
		}
	}
	return nil
}
