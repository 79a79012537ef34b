package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/roster"
)

var (
	// errors
	ErrObservationNotFound = errors.New("group observation not found")
)

type (
	Repository interface {
		// ReplaceForGradeAndDay atomically deletes every record of
		// (grade level, day) and inserts the given batch. Readers never observe
		// a partial batch: on failure the prior batch remains intact.
		ReplaceForGradeAndDay(ctx context.Context, grade roster.GradeLevel, day time.Time, recs []Record) error
		// FindByGradeAndDay returns the active batch joined with student
		// identity, ordered by student surname; empty if none was saved.
		FindByGradeAndDay(ctx context.Context, grade roster.GradeLevel, day time.Time) ([]Record, error)
		// FilterRecords applies AND operation on available QueryFilter fields,
		// joined with student identity.
		FilterRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		CountRecords(ctx context.Context) (int, error)

		// UpsertGroupObservation inserts or overwrites the single observation
		// row of (day, grade level, cohort).
		UpsertGroupObservation(ctx context.Context, obs GroupObservation) (GroupObservation, error)
		GetGroupObservation(ctx context.Context, day time.Time, grade roster.GradeLevel, cohort roster.Cohort) (GroupObservation, error)

		// ActiveGroups returns every (grade level, cohort) pair with at least
		// one attendance record on the given day.
		ActiveGroups(ctx context.Context, day time.Time) ([]Group, error)
		ObservationsForDay(ctx context.Context, day time.Time) ([]GroupObservation, error)
		// AbsencesForDay returns every absent record of the day joined with
		// student identity.
		AbsencesForDay(ctx context.Context, day time.Time) ([]Record, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SaveRollCall validates and persists a roll call. The batch covers the WHOLE
// grade level: replacement is keyed on (grade level, day), so Entries must list
// every student of the grade, both cohorts — a per-cohort submission would wipe
// the other cohort's records. Cohort only scopes the observation, which is
// upserted when non-blank. Returns the number of records written.
// Resubmitting the same grade and day any number of times leaves a single batch.
// The observation upsert runs after the batch commits; if it fails, the batch
// still stands and the caller may simply resubmit.
func (svc *Service) SaveRollCall(ctx context.Context, nrc NewRollCall) (int, error) {
	if err := nrc.Validate(); err != nil {
		return 0, err
	}

	day := nrc.Day
	if day.IsZero() {
		day = time.Now()
	}
	day = core.NormalizeDay(day)

	now := time.Now().UTC()
	recs := make([]Record, 0, len(nrc.Entries))
	for _, entry := range nrc.Entries {
		recs = append(recs, Record{
			StudentID:  entry.StudentID,
			StaffID:    nrc.StaffID,
			GradeLevel: nrc.GradeLevel,
			Day:        day,
			Status:     entry.Status,
			CreatedAt:  now,
		})
	}
	if err := svc.repo.ReplaceForGradeAndDay(ctx, nrc.GradeLevel, day, recs); err != nil {
		return 0, err
	}

	if nrc.Observation != "" {
		obs := GroupObservation{
			Day:        day,
			GradeLevel: nrc.GradeLevel,
			Cohort:     nrc.Cohort,
			Text:       nrc.Observation,
			StaffID:    nrc.StaffID,
			UpdatedAt:  now,
		}
		if _, err := svc.repo.UpsertGroupObservation(ctx, obs); err != nil {
			return 0, err
		}
	}
	return len(recs), nil
}

// GetRollCall returns the saved batch for a grade and day; empty if none yet.
func (svc *Service) GetRollCall(ctx context.Context, grade roster.GradeLevel, day time.Time) ([]Record, error) {
	return svc.repo.FindByGradeAndDay(ctx, grade, core.NormalizeDay(day))
}

func (svc *Service) GetObservation(ctx context.Context, day time.Time, grade roster.GradeLevel, cohort roster.Cohort) (GroupObservation, error) {
	return svc.repo.GetGroupObservation(ctx, core.NormalizeDay(day), grade, cohort)
}

// History returns roll-call records matching the filter, for the admin views.
func (svc *Service) History(ctx context.Context, filter QueryFilter) ([]Record, error) {
	if !filter.From.IsZero() {
		filter.From = core.NormalizeDay(filter.From)
	}
	if !filter.To.IsZero() {
		filter.To = core.NormalizeDay(filter.To)
	}
	return svc.repo.FilterRecords(ctx, filter)
}

// Count returns the total number of roll-call records ever saved.
func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountRecords(ctx)
}
