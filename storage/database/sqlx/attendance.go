package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/roster"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

type recordRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	StaffID    string    `db:"staff_id"`
	GradeLevel string    `db:"grade_level"`
	Day        time.Time `db:"day"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`

	// joined student identity
	StudentSurname   string `db:"student_surname"`
	StudentGivenName string `db:"student_given_name"`
	StudentCohort    string `db:"student_cohort"`
}

const recordJoinSelect = `
	SELECT a.id, a.student_id, a.staff_id, a.grade_level, a.day, a.status, a.created_at,
	       s.surname AS student_surname, s.given_name AS student_given_name, s.cohort AS student_cohort
	FROM attendance_record a
	JOIN student s ON s.id = a.student_id`

func (row recordRow) toRecord() attendance.Record {
	return attendance.Record{
		ID:         row.ID,
		StudentID:  row.StudentID,
		StaffID:    row.StaffID,
		GradeLevel: roster.GradeLevel(row.GradeLevel),
		Day:        row.Day.UTC(),
		Status:     attendance.Status(row.Status),
		CreatedAt:  row.CreatedAt,
		Student: roster.Student{
			ID:         row.StudentID,
			Surname:    row.StudentSurname,
			GivenName:  row.StudentGivenName,
			GradeLevel: roster.GradeLevel(row.GradeLevel),
			Cohort:     roster.Cohort(row.StudentCohort),
		},
	}
}

func toRecords(rows []recordRow) []attendance.Record {
	recs := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toRecord())
	}
	return recs
}

type observationRow struct {
	Day        time.Time `db:"day"`
	GradeLevel string    `db:"grade_level"`
	Cohort     string    `db:"cohort"`
	Text       string    `db:"text"`
	StaffID    string    `db:"staff_id"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row observationRow) toObservation() attendance.GroupObservation {
	return attendance.GroupObservation{
		Day:        row.Day.UTC(),
		GradeLevel: roster.GradeLevel(row.GradeLevel),
		Cohort:     roster.Cohort(row.Cohort),
		Text:       row.Text,
		StaffID:    row.StaffID,
		UpdatedAt:  row.UpdatedAt,
	}
}

// ReplaceForGradeAndDay runs the delete and the bulk insert in one transaction:
// concurrent submissions serialize and readers only ever see a complete batch.
func (repo attendanceRepository) ReplaceForGradeAndDay(ctx context.Context, grade roster.GradeLevel, day time.Time, recs []attendance.Record) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning replace transaction")
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM attendance_record WHERE grade_level = $1 AND day = $2`, grade, day); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "deleting prior batch")
	}

	rows := make([]recordRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, recordRow{
			ID:         uuid.New().String(),
			StudentID:  rec.StudentID,
			StaffID:    rec.StaffID,
			GradeLevel: string(rec.GradeLevel),
			Day:        rec.Day,
			Status:     string(rec.Status),
			CreatedAt:  rec.CreatedAt,
		})
	}
	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO attendance_record (id, student_id, staff_id, grade_level, day, status, created_at)
		VALUES (:id, :student_id, :staff_id, :grade_level, :day, :status, :created_at)`, rows); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "inserting batch")
	}

	return errors.Wrap(tx.Commit(), "committing replace transaction")
}

func (repo attendanceRepository) FindByGradeAndDay(ctx context.Context, grade roster.GradeLevel, day time.Time) ([]attendance.Record, error) {
	var rows []recordRow
	err := repo.db.SelectContext(ctx, &rows,
		recordJoinSelect+` WHERE a.grade_level = $1 AND a.day = $2 ORDER BY s.surname, s.given_name`,
		grade, day,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying roll call")
	}
	return toRecords(rows), nil
}

func (repo attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	conds := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conds = append(conds, fmt.Sprintf("a.day >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conds = append(conds, fmt.Sprintf("a.day <= $%d", len(args)))
	}
	if filter.GradeLevel != "" {
		args = append(args, filter.GradeLevel)
		conds = append(conds, fmt.Sprintf("a.grade_level = $%d", len(args)))
	}
	if filter.Cohort != "" {
		args = append(args, filter.Cohort)
		conds = append(conds, fmt.Sprintf("s.cohort = $%d", len(args)))
	}

	query := recordJoinSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.day DESC, a.grade_level, s.surname, s.given_name"

	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering attendance records")
	}
	return toRecords(rows), nil
}

func (repo attendanceRepository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM attendance_record`); err != nil {
		return 0, errors.Wrap(err, "counting attendance records")
	}
	return count, nil
}

func (repo attendanceRepository) UpsertGroupObservation(ctx context.Context, obs attendance.GroupObservation) (attendance.GroupObservation, error) {
	var row observationRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO group_observation (day, grade_level, cohort, text, staff_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (day, grade_level, cohort)
		DO UPDATE SET text = EXCLUDED.text, staff_id = EXCLUDED.staff_id, updated_at = EXCLUDED.updated_at
		RETURNING day, grade_level, cohort, text, staff_id, updated_at`,
		obs.Day, obs.GradeLevel, obs.Cohort, obs.Text, obs.StaffID, obs.UpdatedAt,
	)
	if err != nil {
		return attendance.GroupObservation{}, errors.Wrap(err, "upserting group observation")
	}
	return row.toObservation(), nil
}

func (repo attendanceRepository) GetGroupObservation(ctx context.Context, day time.Time, grade roster.GradeLevel, cohort roster.Cohort) (attendance.GroupObservation, error) {
	var row observationRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT * FROM group_observation WHERE day = $1 AND grade_level = $2 AND cohort = $3`,
		day, grade, cohort,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.GroupObservation{}, attendance.ErrObservationNotFound
		}
		return attendance.GroupObservation{}, errors.Wrap(err, "finding group observation")
	}
	return row.toObservation(), nil
}

func (repo attendanceRepository) ActiveGroups(ctx context.Context, day time.Time) ([]attendance.Group, error) {
	var rows []struct {
		GradeLevel string `db:"grade_level"`
		Cohort     string `db:"cohort"`
	}
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT a.grade_level, s.cohort
		FROM attendance_record a
		JOIN student s ON s.id = a.student_id
		WHERE a.day = $1`,
		day,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying active groups")
	}
	groups := make([]attendance.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, attendance.Group{
			GradeLevel: roster.GradeLevel(row.GradeLevel),
			Cohort:     roster.Cohort(row.Cohort),
		})
	}
	return groups, nil
}

func (repo attendanceRepository) ObservationsForDay(ctx context.Context, day time.Time) ([]attendance.GroupObservation, error) {
	var rows []observationRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM group_observation WHERE day = $1 ORDER BY grade_level, cohort`, day)
	if err != nil {
		return nil, errors.Wrap(err, "querying observations")
	}
	observations := make([]attendance.GroupObservation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, row.toObservation())
	}
	return observations, nil
}

func (repo attendanceRepository) AbsencesForDay(ctx context.Context, day time.Time) ([]attendance.Record, error) {
	var rows []recordRow
	err := repo.db.SelectContext(ctx, &rows,
		recordJoinSelect+` WHERE a.day = $1 AND a.status = $2 ORDER BY s.surname, s.given_name`,
		day, attendance.StatusAbsent,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying absences")
	}
	return toRecords(rows), nil
}
