package roster

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/internat/core"
)

var (
	gradeLevelTag  = "gradelevel"
	gradeLevelText = "invalid grade level"

	cohortTag  = "cohort"
	cohortText = "invalid cohort"

	staffRoleTag  = "staffrole"
	staffRoleText = "invalid role"

	aedScopeTag  = "aedscope"
	aedScopeText = "grade level and cohort are required for the aed role and forbidden for admin roles"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(gradeLevelTag, gradeLevelValidation)
	core.RegisterCustomTranslation(gradeLevelTag, gradeLevelText)

	_ = core.Validate.RegisterValidation(cohortTag, cohortValidation)
	core.RegisterCustomTranslation(cohortTag, cohortText)

	_ = core.Validate.RegisterValidation(staffRoleTag, staffRoleValidation)
	core.RegisterCustomTranslation(staffRoleTag, staffRoleText)

	core.Validate.RegisterStructValidation(staffStructValidation, NewStaff{})
	core.RegisterCustomTranslation(aedScopeTag, aedScopeText)
}

// Custom Validators

// gradeLevelValidation checks that the value is one of the seven known grade levels.
func gradeLevelValidation(fl validator.FieldLevel) bool {
	return GradeLevel(fl.Field().String()).IsValid()
}

// cohortValidation checks that the value is a known cohort.
func cohortValidation(fl validator.FieldLevel) bool {
	return Cohort(fl.Field().String()).IsValid()
}

// staffRoleValidation checks that the value is a known staff role.
func staffRoleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// staffStructValidation enforces the scoping invariant: grade level and cohort
// are non-empty if and only if the role is "aed".
func staffStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewStaff)
	if !ok {
		return
	}
	scoped := ns.GradeLevel != "" && ns.Cohort != ""
	partial := (ns.GradeLevel != "") != (ns.Cohort != "")
	switch {
	case partial:
		sl.ReportError(ns.GradeLevel, "grade_level", "GradeLevel", aedScopeTag, "")
	case ns.Role == RoleAED && !scoped:
		sl.ReportError(ns.GradeLevel, "grade_level", "GradeLevel", aedScopeTag, "")
	case ns.Role != RoleAED && scoped:
		sl.ReportError(ns.GradeLevel, "grade_level", "GradeLevel", aedScopeTag, "")
	}
}
