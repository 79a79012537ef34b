package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internat/core/roster"
)

type rosterRepository struct {
	db *sqlx.DB
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *sqlx.DB) *rosterRepository {
	return &rosterRepository{db: db}
}

type studentRow struct {
	ID         string    `db:"id"`
	Surname    string    `db:"surname"`
	GivenName  string    `db:"given_name"`
	GradeLevel string    `db:"grade_level"`
	Cohort     string    `db:"cohort"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row studentRow) toStudent() roster.Student {
	return roster.Student{
		ID:         row.ID,
		Surname:    row.Surname,
		GivenName:  row.GivenName,
		GradeLevel: roster.GradeLevel(row.GradeLevel),
		Cohort:     roster.Cohort(row.Cohort),
		IsActive:   row.IsActive,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

type staffRow struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	GradeLevel   null.String `db:"grade_level"`
	Cohort       null.String `db:"cohort"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row staffRow) toStaff() roster.StaffUser {
	return roster.StaffUser{
		ID:           row.ID,
		Email:        row.Email,
		Role:         row.Role,
		GradeLevel:   row.GradeLevel,
		Cohort:       row.Cohort,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo rosterRepository) CreateStudent(ctx context.Context, std roster.Student) (roster.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO student (id, surname, given_name, grade_level, cohort, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		std.ID, std.Surname, std.GivenName, std.GradeLevel, std.Cohort, std.IsActive, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return roster.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo rosterRepository) GetStudentByID(ctx context.Context, id string) (roster.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return roster.Student{}, roster.ErrStudentNotFound
	}
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return roster.Student{}, roster.ErrStudentNotFound
		}
		return roster.Student{}, errors.Wrap(err, "finding student by ID")
	}
	return row.toStudent(), nil
}

func (repo rosterRepository) QueryActiveStudents(ctx context.Context, grade roster.GradeLevel, cohort roster.Cohort) ([]roster.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM student
		WHERE grade_level = $1 AND cohort = $2 AND is_active
		ORDER BY surname, given_name`,
		grade, cohort,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying active students")
	}
	students := make([]roster.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo rosterRepository) CreateStaff(ctx context.Context, usr roster.StaffUser) (roster.StaffUser, error) {
	usr.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO staff_user (id, email, role, grade_level, cohort, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		usr.ID, usr.Email, usr.Role, usr.GradeLevel, usr.Cohort, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return roster.StaffUser{}, errors.Wrap(err, "inserting staff user")
	}
	return usr, nil
}

func (repo rosterRepository) GetStaffByID(ctx context.Context, id string) (roster.StaffUser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return roster.StaffUser{}, roster.ErrStaffNotFound
	}
	var row staffRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM staff_user WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return roster.StaffUser{}, roster.ErrStaffNotFound
		}
		return roster.StaffUser{}, errors.Wrap(err, "finding staff user by ID")
	}
	return row.toStaff(), nil
}

func (repo rosterRepository) GetStaffByEmail(ctx context.Context, email string) (roster.StaffUser, error) {
	var row staffRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM staff_user WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return roster.StaffUser{}, roster.ErrStaffNotFound
		}
		return roster.StaffUser{}, errors.Wrap(err, "finding staff user by email")
	}
	return row.toStaff(), nil
}
