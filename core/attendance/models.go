package attendance

import (
	"time"

	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/roster"
)

// Status is the roll-call outcome recorded for a student on a given night.
type Status string

const (
	StatusPresent Status = "present"
	StatusACF     Status = "acf" // conditionally absent (absent with prior leave)
	StatusAbsent  Status = "absent"
)

var Statuses = []Status{StatusPresent, StatusACF, StatusAbsent}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusACF, StatusAbsent:
		return true
	}
	return false
}

const (
	// MaxBatchSize caps a roll-call batch at a grade level's expected population.
	MaxBatchSize = 100

	// MaxObservationLen caps the free-text group observation.
	MaxObservationLen = 500
)

// Record is one student's roll-call result for one calendar day.
// For a given (grade level, day) at most one batch of records exists;
// resubmission replaces the whole batch.
type Record struct {
	ID         string            `json:"id"`
	StudentID  string            `json:"student_id"`
	StaffID    string            `json:"staff_id"`
	GradeLevel roster.GradeLevel `json:"grade_level"`
	Day        time.Time         `json:"day"` // midnight UTC
	Status     Status            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"` // UTC

	// Student identity, populated on joined reads.
	Student roster.Student `json:"student,omitempty"`
}

// Group identifies a (grade level, cohort) roll-call group.
type Group struct {
	GradeLevel roster.GradeLevel `json:"grade_level"`
	Cohort     roster.Cohort     `json:"cohort"`
}

// Before orders groups canonically: grade level youngest to oldest, then cohort.
func (g Group) Before(other Group) bool {
	if g.GradeLevel.Order() != other.GradeLevel.Order() {
		return g.GradeLevel.Order() < other.GradeLevel.Order()
	}
	return g.Cohort < other.Cohort
}

// GroupObservation is the nightly free-text note of one group.
// Exactly one row exists per (day, grade level, cohort).
type GroupObservation struct {
	Day        time.Time         `json:"day"` // midnight UTC
	GradeLevel roster.GradeLevel `json:"grade_level"`
	Cohort     roster.Cohort     `json:"cohort"`
	Text       string            `json:"text"`
	StaffID    string            `json:"staff_id"`
	UpdatedAt  time.Time         `json:"updated_at"` // UTC
}

// RollCallEntry is one student's status within a submission.
type RollCallEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    Status `json:"status" validate:"required,attstatus"`
}

// NewRollCall is a full roll-call submission for one group.
// A blank Observation skips the observation upsert altogether.
type NewRollCall struct {
	StaffID     string            `json:"staff_id" validate:"required"`
	GradeLevel  roster.GradeLevel `json:"grade_level" validate:"required,gradelevel"`
	Cohort      roster.Cohort     `json:"cohort" validate:"required,cohort"`
	Day         time.Time         `json:"day"` // zero value = today
	Entries     []RollCallEntry   `json:"entries" validate:"required,min=1,max=100,dive"`
	Observation string            `json:"observation" validate:"omitempty,max=500"`
}

func (nrc *NewRollCall) Validate() error {
	nrc.Observation = core.CleanString(nrc.Observation)
	return core.Validate.Struct(nrc)
}

// QueryFilter narrows roll-call history reads. Zero fields are ignored.
type QueryFilter struct {
	From       time.Time         `query:"from"`
	To         time.Time         `query:"to"`
	GradeLevel roster.GradeLevel `query:"grade_level"`
	Cohort     roster.Cohort     `query:"cohort"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.From.IsZero() && qf.To.IsZero() && qf.GradeLevel == "" && qf.Cohort == ""
}
