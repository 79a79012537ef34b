package roster

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrStudentNotFound = errors.New("student not found")
	ErrStaffNotFound   = errors.New("staff user not found")
	ErrEmailExists     = errors.New("a staff user with this email already exists")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// QueryActiveStudents returns active students of a (grade level, cohort)
		// group, ordered by surname then given name.
		QueryActiveStudents(ctx context.Context, grade GradeLevel, cohort Cohort) ([]Student, error)

		CreateStaff(ctx context.Context, usr StaffUser) (StaffUser, error)
		GetStaffByID(ctx context.Context, id string) (StaffUser, error)
		GetStaffByEmail(ctx context.Context, email string) (StaffUser, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	now := time.Now().UTC()
	std := Student{
		Surname:    ns.Surname,
		GivenName:  ns.GivenName,
		GradeLevel: ns.GradeLevel,
		Cohort:     ns.Cohort,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) QueryActiveStudents(ctx context.Context, grade GradeLevel, cohort Cohort) ([]Student, error) {
	return svc.repo.QueryActiveStudents(ctx, grade, cohort)
}

func (svc *Service) CreateStaff(ctx context.Context, ns NewStaff) (StaffUser, error) {
	if err := ns.Validate(); err != nil {
		return StaffUser{}, err
	}
	if _, err := svc.repo.GetStaffByEmail(ctx, ns.Email); err == nil {
		return StaffUser{}, ErrEmailExists
	} else if err != ErrStaffNotFound {
		return StaffUser{}, err
	}

	now := time.Now().UTC()
	usr := StaffUser{
		Email:      ns.Email,
		Role:       ns.Role,
		GradeLevel: null.NewString(ns.GradeLevel, ns.GradeLevel != ""),
		Cohort:     null.NewString(ns.Cohort, ns.Cohort != ""),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(ns.Password); err != nil {
		return StaffUser{}, err
	}
	return svc.repo.CreateStaff(ctx, usr)
}

func (svc *Service) GetStaff(ctx context.Context, id string) (StaffUser, error) {
	return svc.repo.GetStaffByID(ctx, id)
}
