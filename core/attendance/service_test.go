package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/roster"
	dummydb "github.com/trezcool/internat/storage/database/dummy"
)

func setup(t *testing.T) (*attendance.Service, attendance.Repository, roster.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	attRepo := dummydb.NewAttendanceRepository(db)
	return attendance.NewService(attRepo), attRepo, dummydb.NewRosterRepository(db)
}

func createStudent(t *testing.T, repo roster.Repository, surname, givenName string, grade roster.GradeLevel, cohort roster.Cohort) roster.Student {
	std, err := repo.CreateStudent(context.Background(), roster.Student{
		Surname:    surname,
		GivenName:  givenName,
		GradeLevel: grade,
		Cohort:     cohort,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func TestService_SaveRollCall(t *testing.T) {
	svc, _, rosterRepo := setup(t)
	ctx := context.Background()

	std1 := createStudent(t, rosterRepo, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)
	std2 := createStudent(t, rosterRepo, "Martin", "Hugo", roster.GradeSixieme, roster.CohortBoys)
	std3 := createStudent(t, rosterRepo, "Bernard", "Noah", roster.GradeSixieme, roster.CohortBoys)

	day := time.Date(2024, 3, 15, 21, 30, 0, 0, time.UTC) // normalized on save

	nrc := attendance.NewRollCall{
		StaffID:    "staff-1",
		GradeLevel: roster.GradeSixieme,
		Cohort:     roster.CohortBoys,
		Day:        day,
		Entries: []attendance.RollCallEntry{
			{StudentID: std1.ID, Status: attendance.StatusPresent},
			{StudentID: std2.ID, Status: attendance.StatusAbsent},
			{StudentID: std3.ID, Status: attendance.StatusACF},
		},
		Observation: "lights out on time",
	}
	count, err := svc.SaveRollCall(ctx, nrc)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	recs, err := svc.GetRollCall(ctx, roster.GradeSixieme, day)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.True(t, rec.Day.Equal(core.NormalizeDay(day)))
		assert.Equal(t, "staff-1", rec.StaffID)
	}

	obs, err := svc.GetObservation(ctx, day, roster.GradeSixieme, roster.CohortBoys)
	require.NoError(t, err)
	assert.Equal(t, "lights out on time", obs.Text)
}

// Resubmitting a group's roll call replaces the whole batch; no leftover
// records from the earlier submission survive.
func TestService_SaveRollCall_resubmissionReplacesBatch(t *testing.T) {
	svc, _, rosterRepo := setup(t)
	ctx := context.Background()

	std1 := createStudent(t, rosterRepo, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)
	std2 := createStudent(t, rosterRepo, "Martin", "Hugo", roster.GradeSixieme, roster.CohortBoys)

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	nrc := attendance.NewRollCall{
		StaffID:    "staff-1",
		GradeLevel: roster.GradeSixieme,
		Cohort:     roster.CohortBoys,
		Day:        day,
		Entries: []attendance.RollCallEntry{
			{StudentID: std1.ID, Status: attendance.StatusAbsent},
			{StudentID: std2.ID, Status: attendance.StatusPresent},
		},
	}
	_, err := svc.SaveRollCall(ctx, nrc)
	require.NoError(t, err)

	// corrected, shorter resubmission
	nrc.Entries = []attendance.RollCallEntry{
		{StudentID: std1.ID, Status: attendance.StatusPresent},
	}
	count, err := svc.SaveRollCall(ctx, nrc)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	recs, err := svc.GetRollCall(ctx, roster.GradeSixieme, day)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, std1.ID, recs[0].StudentID)
	assert.Equal(t, attendance.StatusPresent, recs[0].Status)

	// idempotency: resubmitting the same batch leaves a single batch
	for i := 0; i < 3; i++ {
		_, err = svc.SaveRollCall(ctx, nrc)
		require.NoError(t, err)
	}
	recs, err = svc.GetRollCall(ctx, roster.GradeSixieme, day)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestService_SaveRollCall_observationUpsert(t *testing.T) {
	svc, _, rosterRepo := setup(t)
	ctx := context.Background()

	std := createStudent(t, rosterRepo, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	nrc := attendance.NewRollCall{
		StaffID:     "staff-1",
		GradeLevel:  roster.GradeSixieme,
		Cohort:      roster.CohortBoys,
		Day:         day,
		Entries:     []attendance.RollCallEntry{{StudentID: std.ID, Status: attendance.StatusPresent}},
		Observation: "first note",
	}
	_, err := svc.SaveRollCall(ctx, nrc)
	require.NoError(t, err)

	// a later submission overwrites the group's single observation row
	nrc.Observation = "corrected note"
	_, err = svc.SaveRollCall(ctx, nrc)
	require.NoError(t, err)

	obs, err := svc.GetObservation(ctx, day, roster.GradeSixieme, roster.CohortBoys)
	require.NoError(t, err)
	assert.Equal(t, "corrected note", obs.Text)

	// a blank observation skips the upsert and keeps the stored one
	nrc.Observation = "   "
	_, err = svc.SaveRollCall(ctx, nrc)
	require.NoError(t, err)

	obs, err = svc.GetObservation(ctx, day, roster.GradeSixieme, roster.CohortBoys)
	require.NoError(t, err)
	assert.Equal(t, "corrected note", obs.Text)

	// the other cohort of the same grade has its own row
	_, err = svc.GetObservation(ctx, day, roster.GradeSixieme, roster.CohortGirls)
	assert.Equal(t, attendance.ErrObservationNotFound, errors.Cause(err))
}

func TestService_SaveRollCall_validation(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	valid := func() attendance.NewRollCall {
		return attendance.NewRollCall{
			StaffID:    "staff-1",
			GradeLevel: roster.GradeSixieme,
			Cohort:     roster.CohortBoys,
			Entries:    []attendance.RollCallEntry{{StudentID: "std-1", Status: attendance.StatusPresent}},
		}
	}

	hugeBatch := make([]attendance.RollCallEntry, 0, attendance.MaxBatchSize+1)
	for i := 0; i <= attendance.MaxBatchSize; i++ {
		hugeBatch = append(hugeBatch, attendance.RollCallEntry{StudentID: string(rune('a' + i)), Status: attendance.StatusPresent})
	}

	tests := []struct {
		name   string
		mutate func(nrc *attendance.NewRollCall)
	}{
		{name: "missing staff", mutate: func(nrc *attendance.NewRollCall) { nrc.StaffID = "" }},
		{name: "unknown grade level", mutate: func(nrc *attendance.NewRollCall) { nrc.GradeLevel = "CM2" }},
		{name: "unknown cohort", mutate: func(nrc *attendance.NewRollCall) { nrc.Cohort = "X" }},
		{name: "empty batch", mutate: func(nrc *attendance.NewRollCall) { nrc.Entries = nil }},
		{name: "batch too large", mutate: func(nrc *attendance.NewRollCall) { nrc.Entries = hugeBatch }},
		{name: "unknown status", mutate: func(nrc *attendance.NewRollCall) { nrc.Entries[0].Status = "late" }},
		{name: "duplicate student", mutate: func(nrc *attendance.NewRollCall) {
			nrc.Entries = append(nrc.Entries, attendance.RollCallEntry{StudentID: "std-1", Status: attendance.StatusAbsent})
		}},
		{name: "observation too long", mutate: func(nrc *attendance.NewRollCall) {
			long := make([]byte, attendance.MaxObservationLen+1)
			for i := range long {
				long[i] = 'a'
			}
			nrc.Observation = string(long)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nrc := valid()
			tt.mutate(&nrc)
			_, err := svc.SaveRollCall(ctx, nrc)
			assert.Error(t, err)
		})
	}
}

// failingRepository simulates a storage failure during the batch replace.
type failingRepository struct {
	attendance.Repository
}

func (repo failingRepository) ReplaceForGradeAndDay(context.Context, roster.GradeLevel, time.Time, []attendance.Record) error {
	return errors.New("storage exploded")
}

func TestService_SaveRollCall_priorBatchSurvivesFailure(t *testing.T) {
	svc, attRepo, rosterRepo := setup(t)
	ctx := context.Background()

	std := createStudent(t, rosterRepo, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	nrc := attendance.NewRollCall{
		StaffID:    "staff-1",
		GradeLevel: roster.GradeSixieme,
		Cohort:     roster.CohortBoys,
		Day:        day,
		Entries:    []attendance.RollCallEntry{{StudentID: std.ID, Status: attendance.StatusAbsent}},
	}
	_, err := svc.SaveRollCall(ctx, nrc)
	require.NoError(t, err)

	failingSvc := attendance.NewService(failingRepository{Repository: attRepo})
	nrc.Entries[0].Status = attendance.StatusPresent
	_, err = failingSvc.SaveRollCall(ctx, nrc)
	require.Error(t, err)

	// the prior batch is still intact and readable
	recs, err := svc.GetRollCall(ctx, roster.GradeSixieme, day)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, attendance.StatusAbsent, recs[0].Status)
}

func TestService_History(t *testing.T) {
	svc, _, rosterRepo := setup(t)
	ctx := context.Background()

	boy := createStudent(t, rosterRepo, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)
	girl := createStudent(t, rosterRepo, "Petit", "Emma", roster.GradeSixieme, roster.CohortGirls)
	senior := createStudent(t, rosterRepo, "Moreau", "Jade", roster.GradeTerminale, roster.CohortGirls)

	d1 := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	save := func(day time.Time, grade roster.GradeLevel, cohort roster.Cohort, entries ...attendance.RollCallEntry) {
		t.Helper()
		_, err := svc.SaveRollCall(ctx, attendance.NewRollCall{
			StaffID:    "staff-1",
			GradeLevel: grade,
			Cohort:     cohort,
			Day:        day,
			Entries:    entries,
		})
		require.NoError(t, err)
	}
	save(d1, roster.GradeSixieme, roster.CohortBoys, attendance.RollCallEntry{StudentID: boy.ID, Status: attendance.StatusPresent})
	save(d2, roster.GradeSixieme, roster.CohortGirls, attendance.RollCallEntry{StudentID: girl.ID, Status: attendance.StatusAbsent})
	save(d2, roster.GradeTerminale, roster.CohortGirls, attendance.RollCallEntry{StudentID: senior.ID, Status: attendance.StatusPresent})

	tests := []struct {
		name   string
		filter attendance.QueryFilter
		want   int
	}{
		{name: "no filter", filter: attendance.QueryFilter{}, want: 3},
		{name: "from", filter: attendance.QueryFilter{From: d2}, want: 2},
		{name: "to", filter: attendance.QueryFilter{To: d1}, want: 1},
		{name: "range", filter: attendance.QueryFilter{From: d1, To: d2}, want: 3},
		{name: "grade level", filter: attendance.QueryFilter{GradeLevel: roster.GradeSixieme}, want: 2},
		{name: "cohort", filter: attendance.QueryFilter{Cohort: roster.CohortGirls}, want: 2},
		{name: "combo", filter: attendance.QueryFilter{From: d2, GradeLevel: roster.GradeSixieme, Cohort: roster.CohortGirls}, want: 1},
		{name: "combo (empty)", filter: attendance.QueryFilter{To: d1, GradeLevel: roster.GradeTerminale}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := svc.History(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, recs, tt.want)
		})
	}

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
