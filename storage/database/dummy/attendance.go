package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/roster"
)

type attendanceRepository struct {
	records      *recordTable
	observations *observationTable
	students     *studentTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{
		records:      db.records,
		observations: db.observations,
		students:     db.students,
	}
}

// joinStudent fills the student identity the way the SQL repository's join does.
func (repo *attendanceRepository) joinStudent(rec attendance.Record) attendance.Record {
	repo.students.RLock()
	defer repo.students.RUnlock()

	if std, ok := repo.students.table[rec.StudentID]; ok {
		rec.Student = *std
	}
	return rec
}

func sortBySurname(recs []attendance.Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Student.Surname != recs[j].Student.Surname {
			return recs[i].Student.Surname < recs[j].Student.Surname
		}
		return recs[i].Student.GivenName < recs[j].Student.GivenName
	})
}

// ReplaceForGradeAndDay swaps the batch under a single lock; readers only ever
// see the old complete batch or the new one.
func (repo *attendanceRepository) ReplaceForGradeAndDay(_ context.Context, grade roster.GradeLevel, day time.Time, recs []attendance.Record) error {
	repo.records.Lock()
	defer repo.records.Unlock()

	for id, rec := range repo.records.table {
		if rec.GradeLevel == grade && rec.Day.Equal(day) {
			delete(repo.records.table, id)
		}
	}
	for _, rec := range recs {
		rec := rec
		rec.ID = uuid.New().String()
		repo.records.table[rec.ID] = &rec
	}
	return nil
}

func (repo *attendanceRepository) FindByGradeAndDay(_ context.Context, grade roster.GradeLevel, day time.Time) ([]attendance.Record, error) {
	repo.records.RLock()
	recs := make([]attendance.Record, 0)
	for _, rec := range repo.records.table {
		if rec.GradeLevel == grade && rec.Day.Equal(day) {
			recs = append(recs, *rec)
		}
	}
	repo.records.RUnlock()

	for i, rec := range recs {
		recs[i] = repo.joinStudent(rec)
	}
	sortBySurname(recs)
	return recs, nil
}

func (repo *attendanceRepository) FilterRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.records.RLock()
	recs := make([]attendance.Record, 0)
	for _, rec := range repo.records.table {
		if !filter.From.IsZero() && rec.Day.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && rec.Day.After(filter.To) {
			continue
		}
		if filter.GradeLevel != "" && rec.GradeLevel != filter.GradeLevel {
			continue
		}
		recs = append(recs, *rec)
	}
	repo.records.RUnlock()

	filtered := make([]attendance.Record, 0, len(recs))
	for _, rec := range recs {
		rec = repo.joinStudent(rec)
		if filter.Cohort != "" && rec.Student.Cohort != filter.Cohort {
			continue
		}
		filtered = append(filtered, rec)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].Day.Equal(filtered[j].Day) {
			return filtered[i].Day.After(filtered[j].Day)
		}
		if filtered[i].GradeLevel != filtered[j].GradeLevel {
			return filtered[i].GradeLevel.Order() < filtered[j].GradeLevel.Order()
		}
		return filtered[i].Student.Surname < filtered[j].Student.Surname
	})
	return filtered, nil
}

func (repo *attendanceRepository) CountRecords(_ context.Context) (int, error) {
	repo.records.RLock()
	defer repo.records.RUnlock()
	return len(repo.records.table), nil
}

func (repo *attendanceRepository) UpsertGroupObservation(_ context.Context, obs attendance.GroupObservation) (attendance.GroupObservation, error) {
	repo.observations.Lock()
	defer repo.observations.Unlock()

	key := obsKey{day: dayKey(obs.Day), gradeLevel: obs.GradeLevel, cohort: obs.Cohort}
	repo.observations.table[key] = &obs
	return obs, nil
}

func (repo *attendanceRepository) GetGroupObservation(_ context.Context, day time.Time, grade roster.GradeLevel, cohort roster.Cohort) (attendance.GroupObservation, error) {
	repo.observations.RLock()
	defer repo.observations.RUnlock()

	key := obsKey{day: dayKey(day), gradeLevel: grade, cohort: cohort}
	if obs, ok := repo.observations.table[key]; ok {
		return *obs, nil
	}
	return attendance.GroupObservation{}, attendance.ErrObservationNotFound
}

func (repo *attendanceRepository) ActiveGroups(_ context.Context, day time.Time) ([]attendance.Group, error) {
	repo.records.RLock()
	recs := make([]attendance.Record, 0)
	for _, rec := range repo.records.table {
		if rec.Day.Equal(day) {
			recs = append(recs, *rec)
		}
	}
	repo.records.RUnlock()

	seen := make(map[attendance.Group]struct{})
	groups := make([]attendance.Group, 0)
	for _, rec := range recs {
		rec = repo.joinStudent(rec)
		group := attendance.Group{GradeLevel: rec.GradeLevel, Cohort: rec.Student.Cohort}
		if _, ok := seen[group]; !ok {
			seen[group] = struct{}{}
			groups = append(groups, group)
		}
	}
	return groups, nil
}

func (repo *attendanceRepository) ObservationsForDay(_ context.Context, day time.Time) ([]attendance.GroupObservation, error) {
	repo.observations.RLock()
	defer repo.observations.RUnlock()

	observations := make([]attendance.GroupObservation, 0)
	for key, obs := range repo.observations.table {
		if key.day == dayKey(day) {
			observations = append(observations, *obs)
		}
	}
	return observations, nil
}

func (repo *attendanceRepository) AbsencesForDay(_ context.Context, day time.Time) ([]attendance.Record, error) {
	repo.records.RLock()
	recs := make([]attendance.Record, 0)
	for _, rec := range repo.records.table {
		if rec.Day.Equal(day) && rec.Status == attendance.StatusAbsent {
			recs = append(recs, *rec)
		}
	}
	repo.records.RUnlock()

	for i, rec := range recs {
		recs[i] = repo.joinStudent(rec)
	}
	sortBySurname(recs)
	return recs, nil
}
