package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/recap"
	"github.com/trezcool/internat/core/roster"
	dummydb "github.com/trezcool/internat/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server     Server
	rosterRepo roster.Repository
	attRepo    attendance.Repository
	attSvc     *attendance.Service
}

func setup(t *testing.T) *testApp {
	// error payloads take their production shape
	core.Conf.Set("debug", false)
	core.Conf.Set("testMode", true)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	rosterRepo := dummydb.NewRosterRepository(db)
	attRepo := dummydb.NewAttendanceRepository(db)
	attSvc := attendance.NewService(attRepo)

	gen := recap.NewGenerator(nopLogger{}, time.Second) // deterministic fallback only
	recapSvc := recap.NewService(dummydb.NewRecapRepository(db), recap.NewAggregator(attRepo), gen, nil, nopLogger{})

	server := NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		RosterSvc:      roster.NewService(rosterRepo),
		AttendanceSvc:  attSvc,
		RecapSvc:       recapSvc,
		Logger:         nopLogger{},
	})
	return &testApp{server: server, rosterRepo: rosterRepo, attRepo: attRepo, attSvc: attSvc}
}

func (app *testApp) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("request() failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) createStudent(t *testing.T, surname, givenName string, grade roster.GradeLevel, cohort roster.Cohort) roster.Student {
	std, err := app.rosterRepo.CreateStudent(context.Background(), roster.Student{
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

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode() failed: %v; body = %s", err, rec.Body.String())
	}
}

func TestHome(t *testing.T) {
	app := setup(t)
	rec := app.request(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internat")
}

func TestRollCallAPI_save(t *testing.T) {
	app := setup(t)
	std1 := app.createStudent(t, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)
	std2 := app.createStudent(t, "Martin", "Hugo", roster.GradeSixieme, roster.CohortBoys)

	body := SaveRollCallRequest{
		StaffID:    "staff-1",
		GradeLevel: roster.GradeSixieme,
		Cohort:     roster.CohortBoys,
		Day:        "2024-03-15",
		Entries: []attendance.RollCallEntry{
			{StudentID: std1.ID, Status: attendance.StatusPresent},
			{StudentID: std2.ID, Status: attendance.StatusAbsent},
		},
		Observation: "lights out on time",
	}
	rec := app.request(t, http.MethodPost, "/v1/rollcall", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp SaveRollCallResponse
	decode(t, rec, &resp)
	assert.Equal(t, 2, resp.Count)

	// resubmission replaces the batch
	body.Entries = body.Entries[:1]
	rec = app.request(t, http.MethodPost, "/v1/rollcall", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, 1, resp.Count)

	recs, err := app.attSvc.GetRollCall(context.Background(), roster.GradeSixieme, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRollCallAPI_save_validation(t *testing.T) {
	app := setup(t)

	valid := func() SaveRollCallRequest {
		return SaveRollCallRequest{
			StaffID:    "staff-1",
			GradeLevel: roster.GradeSixieme,
			Cohort:     roster.CohortBoys,
			Entries:    []attendance.RollCallEntry{{StudentID: "std-1", Status: attendance.StatusPresent}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *SaveRollCallRequest)
		wantKey string
	}{
		{name: "bad day", mutate: func(r *SaveRollCallRequest) { r.Day = "15/03/2024" }, wantKey: "day"},
		{name: "unknown grade level", mutate: func(r *SaveRollCallRequest) { r.GradeLevel = "CM2" }, wantKey: "grade_level"},
		{name: "unknown status", mutate: func(r *SaveRollCallRequest) { r.Entries[0].Status = "late" }, wantKey: "status"},
		{name: "empty batch", mutate: func(r *SaveRollCallRequest) { r.Entries = nil }, wantKey: "entries"},
		{name: "duplicate student", mutate: func(r *SaveRollCallRequest) {
			r.Entries = append(r.Entries, attendance.RollCallEntry{StudentID: "std-1", Status: attendance.StatusAbsent})
		}, wantKey: "entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.mutate(&body)
			rec := app.request(t, http.MethodPost, "/v1/rollcall", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var fldErrs map[string]string
			decode(t, rec, &fldErrs)
			assert.Contains(t, fldErrs, tt.wantKey)
		})
	}
}

func TestRollCallAPI_retrieve(t *testing.T) {
	app := setup(t)
	std := app.createStudent(t, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)

	// nothing saved yet
	rec := app.request(t, http.MethodGet, "/v1/rollcall?grade_level=6eme&day=2024-03-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RollCallResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Exists)
	assert.Empty(t, resp.Records)

	_, err := app.attSvc.SaveRollCall(context.Background(), attendance.NewRollCall{
		StaffID:     "staff-1",
		GradeLevel:  roster.GradeSixieme,
		Cohort:      roster.CohortBoys,
		Day:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Entries:     []attendance.RollCallEntry{{StudentID: std.ID, Status: attendance.StatusPresent}},
		Observation: "calm night",
	})
	require.NoError(t, err)

	rec = app.request(t, http.MethodGet, "/v1/rollcall?grade_level=6eme&day=2024-03-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.True(t, resp.Exists)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, std.ID, resp.Records[0].StudentID)
	assert.Equal(t, "calm night", resp.Observations[roster.CohortBoys])

	// unknown grade level is a validation error
	rec = app.request(t, http.MethodGet, "/v1/rollcall?grade_level=CM2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRollCallAPI_historyAndStats(t *testing.T) {
	app := setup(t)
	std := app.createStudent(t, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)

	_, err := app.attSvc.SaveRollCall(context.Background(), attendance.NewRollCall{
		StaffID:    "staff-1",
		GradeLevel: roster.GradeSixieme,
		Cohort:     roster.CohortBoys,
		Day:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Entries:    []attendance.RollCallEntry{{StudentID: std.ID, Status: attendance.StatusAbsent}},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "all", path: "/v1/rollcall/history", want: 1},
		{name: "range hit", path: "/v1/rollcall/history?from=2024-03-14&to=2024-03-16", want: 1},
		{name: "range miss", path: "/v1/rollcall/history?from=2024-03-16", want: 0},
		{name: "grade hit", path: "/v1/rollcall/history?grade_level=6eme", want: 1},
		{name: "grade miss", path: "/v1/rollcall/history?grade_level=Term", want: 0},
		{name: "cohort hit", path: "/v1/rollcall/history?cohort=M", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var recs []attendance.Record
			decode(t, rec, &recs)
			assert.Len(t, recs, tt.want)
		})
	}

	rec := app.request(t, http.MethodGet, "/v1/rollcall/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats StatsResponse
	decode(t, rec, &stats)
	assert.Equal(t, 1, stats.TotalRecords)
}

func TestRosterAPI_students(t *testing.T) {
	app := setup(t)
	std := app.createStudent(t, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)
	app.createStudent(t, "Petit", "Emma", roster.GradeSixieme, roster.CohortGirls)

	rec := app.request(t, http.MethodGet, "/v1/students?grade_level=6eme&cohort=M", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var students []roster.Student
	decode(t, rec, &students)
	require.Len(t, students, 1)
	assert.Equal(t, std.ID, students[0].ID)

	// missing cohort is a validation error
	rec = app.request(t, http.MethodGet, "/v1/students?grade_level=6eme", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(t, http.MethodGet, "/v1/students/"+std.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(t, http.MethodGet, "/v1/students/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.request(t, http.MethodPost, "/v1/students", roster.NewStudent{
		Surname: "Bernard", GivenName: "Noah", GradeLevel: roster.GradeSeconde, Cohort: roster.CohortBoys,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRosterAPI_staff(t *testing.T) {
	app := setup(t)

	body := roster.NewStaff{
		Email: "aed@test.cd", Password: "s3cr3tpwd", Role: roster.RoleAED, GradeLevel: "6eme", Cohort: "F",
	}
	rec := app.request(t, http.MethodPost, "/v1/staff", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var usr roster.StaffUser
	decode(t, rec, &usr)
	assert.Equal(t, "aed@test.cd", usr.Email)

	// duplicate email
	rec = app.request(t, http.MethodPost, "/v1/staff", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fldErrs map[string]string
	decode(t, rec, &fldErrs)
	assert.Contains(t, fldErrs, "email")

	// aed without scope
	rec = app.request(t, http.MethodPost, "/v1/staff", roster.NewStaff{
		Email: "aed2@test.cd", Password: "s3cr3tpwd", Role: roster.RoleAED,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(t, http.MethodGet, "/v1/staff/"+usr.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = app.request(t, http.MethodGet, "/v1/staff/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecapAPI(t *testing.T) {
	app := setup(t)
	std := app.createStudent(t, "Dupont", "Lucas", roster.GradeSixieme, roster.CohortBoys)

	// no data yet
	rec := app.request(t, http.MethodPost, "/v1/recaps/generate", GenerateRecapRequest{Day: "2024-03-15"})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	_, err := app.attSvc.SaveRollCall(context.Background(), attendance.NewRollCall{
		StaffID:     "staff-1",
		GradeLevel:  roster.GradeSixieme,
		Cohort:      roster.CohortBoys,
		Day:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Entries:     []attendance.RollCallEntry{{StudentID: std.ID, Status: attendance.StatusAbsent}},
		Observation: "one absence tonight",
	})
	require.NoError(t, err)

	rec = app.request(t, http.MethodPost, "/v1/recaps/generate", GenerateRecapRequest{Day: "2024-03-15"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var generated recap.DailyRecap
	decode(t, rec, &generated)
	assert.Contains(t, generated.Content, "one absence tonight")
	assert.Contains(t, generated.Content, "Dupont, Lucas")

	// regeneration keeps the same row
	rec = app.request(t, http.MethodPost, "/v1/recaps/generate", GenerateRecapRequest{Day: "2024-03-15"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var regenerated recap.DailyRecap
	decode(t, rec, &regenerated)
	assert.Equal(t, generated.ID, regenerated.ID)

	rec = app.request(t, http.MethodGet, "/v1/recaps/2024-03-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(t, http.MethodGet, "/v1/recaps/2024-03-16", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.request(t, http.MethodGet, "/v1/recaps/not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(t, http.MethodGet, "/v1/recaps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recaps []recap.DailyRecap
	decode(t, rec, &recaps)
	assert.Len(t, recaps, 1)
}
