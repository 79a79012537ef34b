package roster

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/internat/core"
)

// GradeLevel is one of the seven school-year levels, youngest to oldest.
type GradeLevel string

const (
	GradeSixieme   GradeLevel = "6eme"
	GradeCinquieme GradeLevel = "5eme"
	GradeQuatrieme GradeLevel = "4eme"
	GradeTroisieme GradeLevel = "3eme"
	GradeSeconde   GradeLevel = "2nde"
	GradePremiere  GradeLevel = "1ere"
	GradeTerminale GradeLevel = "Term"
)

// GradeLevels is the canonical ordering used everywhere a deterministic
// grade order is needed (reports, listings).
var GradeLevels = []GradeLevel{
	GradeSixieme,
	GradeCinquieme,
	GradeQuatrieme,
	GradeTroisieme,
	GradeSeconde,
	GradePremiere,
	GradeTerminale,
}

var gradeOrder = func() map[GradeLevel]int {
	order := make(map[GradeLevel]int, len(GradeLevels))
	for i, g := range GradeLevels {
		order[g] = i
	}
	return order
}()

func (g GradeLevel) IsValid() bool {
	_, ok := gradeOrder[g]
	return ok
}

// Order returns the canonical rank of the grade level; unknown levels sort last.
func (g GradeLevel) Order() int {
	if ord, ok := gradeOrder[g]; ok {
		return ord
	}
	return len(GradeLevels)
}

// Cohort is the gender-based subdivision within a grade level.
// Each cohort takes its own roll call and has its own nightly observation.
type Cohort string

const (
	CohortGirls Cohort = "F"
	CohortBoys  Cohort = "M"
)

var Cohorts = []Cohort{CohortGirls, CohortBoys}

func (c Cohort) IsValid() bool {
	return c == CohortGirls || c == CohortBoys
}

// Label returns the human-readable cohort name used in reports.
func (c Cohort) Label() string {
	switch c {
	case CohortGirls:
		return "girls"
	case CohortBoys:
		return "boys"
	}
	return string(c)
}

// Staff roles
const (
	// RoleAED is the front-line supervisor, scoped to one grade level and cohort.
	RoleAED = "aed"

	// Administrative roles; unscoped (full access).
	RoleCPE        = "cpe"
	RoleManager    = "manager"
	RoleSuperAdmin = "superadmin"
)

var (
	AdminRoles = []string{RoleCPE, RoleManager, RoleSuperAdmin}
	AllRoles   = append([]string{RoleAED}, AdminRoles...)
)

func IsAdminRole(role string) bool {
	for _, r := range AdminRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Student is a boarder. Students are soft-deleted via IsActive so that
// historical attendance records keep a valid reference.
type Student struct {
	ID         string     `json:"id"`
	Surname    string     `json:"surname"`
	GivenName  string     `json:"given_name"`
	GradeLevel GradeLevel `json:"grade_level"`
	Cohort     Cohort     `json:"cohort"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"` // UTC
	UpdatedAt  time.Time  `json:"updated_at"` // UTC
}

// DisplayName renders the student as "Surname, GivenName" for listings and reports.
func (s Student) DisplayName() string {
	return s.Surname + ", " + s.GivenName
}

// StaffUser is a supervision staff member. GradeLevel and Cohort are set
// if and only if Role is RoleAED.
type StaffUser struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	GradeLevel   null.String `json:"grade_level"`
	Cohort       null.String `json:"cohort"`
	IsActive     bool        `json:"is_active"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
}

func (u *StaffUser) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *StaffUser) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *StaffUser) IsAdmin() bool {
	return IsAdminRole(u.Role)
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Surname    string     `json:"surname" validate:"required"`
	GivenName  string     `json:"given_name" validate:"required"`
	GradeLevel GradeLevel `json:"grade_level" validate:"required,gradelevel"`
	Cohort     Cohort     `json:"cohort" validate:"required,cohort"`
}

func (ns *NewStudent) Validate() error {
	ns.Surname = core.CleanString(ns.Surname)
	ns.GivenName = core.CleanString(ns.GivenName)
	return core.Validate.Struct(ns)
}

// NewStaff contains information needed to register a new StaffUser.
// GradeLevel and Cohort are required for the "aed" role and forbidden otherwise.
type NewStaff struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"required,staffrole"`
	GradeLevel string `json:"grade_level" validate:"omitempty,gradelevel"`
	Cohort     string `json:"cohort" validate:"omitempty,cohort"`
}

func (ns *NewStaff) Validate() error {
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Role = core.CleanString(ns.Role, true /* lower */)
	return core.Validate.Struct(ns)
}
