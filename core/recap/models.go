package recap

import (
	"time"

	"github.com/trezcool/internat/core/attendance"
)

// DailyRecap is the generated narrative summary of one night, one row per day.
// Regeneration overwrites Content in place; ID and CreatedAt are stable.
type DailyRecap struct {
	ID        string    `json:"id"`
	Day       time.Time `json:"day"` // midnight UTC
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"` // UTC; first generation time
}

// GroupReport is one active group's aggregated data for the report.
type GroupReport struct {
	Group       attendance.Group `json:"group"`
	Observation string           `json:"observation"`
	// Absences holds absent students' display names, sorted alphabetically.
	Absences []string `json:"absences"`
}

// DayData is the aggregated snapshot of a day, groups in canonical order.
type DayData struct {
	Day    time.Time     `json:"day"`
	Groups []GroupReport `json:"groups"`
}

// IsEmpty reports whether no group took roll call that day.
func (d DayData) IsEmpty() bool {
	return len(d.Groups) == 0
}

func (d DayData) TotalAbsences() int {
	var n int
	for _, g := range d.Groups {
		n += len(g.Absences)
	}
	return n
}
