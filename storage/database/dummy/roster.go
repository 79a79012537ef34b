package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/internat/core/roster"
)

type rosterRepository struct {
	students *studentTable
	staff    *staffTable
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *DB) roster.Repository {
	return &rosterRepository{students: db.students, staff: db.staff}
}

func (repo *rosterRepository) CreateStudent(_ context.Context, std roster.Student) (roster.Student, error) {
	repo.students.Lock()
	defer repo.students.Unlock()

	std.ID = uuid.New().String()
	repo.students.table[std.ID] = &std
	return std, nil
}

func (repo *rosterRepository) GetStudentByID(_ context.Context, id string) (roster.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	if std, ok := repo.students.table[id]; ok {
		return *std, nil
	}
	return roster.Student{}, roster.ErrStudentNotFound
}

func (repo *rosterRepository) QueryActiveStudents(_ context.Context, grade roster.GradeLevel, cohort roster.Cohort) ([]roster.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	students := make([]roster.Student, 0)
	for _, std := range repo.students.table {
		if std.IsActive && std.GradeLevel == grade && std.Cohort == cohort {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Surname != students[j].Surname {
			return students[i].Surname < students[j].Surname
		}
		return students[i].GivenName < students[j].GivenName
	})
	return students, nil
}

func (repo *rosterRepository) CreateStaff(_ context.Context, usr roster.StaffUser) (roster.StaffUser, error) {
	repo.staff.Lock()
	defer repo.staff.Unlock()

	usr.ID = uuid.New().String()
	repo.staff.table[usr.ID] = &usr
	return usr, nil
}

func (repo *rosterRepository) GetStaffByID(_ context.Context, id string) (roster.StaffUser, error) {
	repo.staff.RLock()
	defer repo.staff.RUnlock()

	if usr, ok := repo.staff.table[id]; ok {
		return *usr, nil
	}
	return roster.StaffUser{}, roster.ErrStaffNotFound
}

func (repo *rosterRepository) GetStaffByEmail(_ context.Context, email string) (roster.StaffUser, error) {
	repo.staff.RLock()
	defer repo.staff.RUnlock()

	for _, usr := range repo.staff.table {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return roster.StaffUser{}, roster.ErrStaffNotFound
}
