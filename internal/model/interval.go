package model

import "fmt"

// Interval is a time range requested by a meeting. Start must be less than End.
type Interval struct {
	Start int `json:"start" validate:"ltfield=End"`
	End   int `json:"end"`
}

// Overlaps reports whether both intervals share some time. Touching intervals
// do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d)", i.Start, i.End)
}
