package attendance

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/internat/core"
)

var (
	statusTag  = "attstatus"
	statusText = "invalid attendance status"

	uniqueStudentsTag  = "uniquestudents"
	uniqueStudentsText = "a student may appear only once per roll call"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(statusTag, statusText)

	core.Validate.RegisterStructValidation(rollCallStructValidation, NewRollCall{})
	core.RegisterCustomTranslation(uniqueStudentsTag, uniqueStudentsText)
}

// Custom Validators

// statusValidation checks that the value is a known attendance status.
func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}

// rollCallStructValidation rejects submissions listing the same student twice;
// a batch must map each student to exactly one status.
func rollCallStructValidation(sl validator.StructLevel) {
	nrc, ok := sl.Current().Interface().(NewRollCall)
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(nrc.Entries))
	for _, entry := range nrc.Entries {
		if _, dup := seen[entry.StudentID]; dup {
			sl.ReportError(nrc.Entries, "entries", "Entries", uniqueStudentsTag, "")
			return
		}
		seen[entry.StudentID] = struct{}{}
	}
}
