package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/roster"
)

type rosterApi struct {
	svc *roster.Service
}

func registerRosterAPI(g *echo.Group, svc *roster.Service) {
	api := rosterApi{svc: svc}

	sg := g.Group("/students")
	sg.POST("", api.createStudent)
	sg.GET("", api.queryStudents)
	sg.GET("/:id", api.retrieveStudent)

	ug := g.Group("/staff")
	ug.POST("", api.createStaff)
	ug.GET("/:id", api.retrieveStaff)
}

// Handlers

func (api *rosterApi) createStudent(ctx echo.Context) error {
	var data roster.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

// queryStudents lists a group's active boarders, the roll-call checklist.
func (api *rosterApi) queryStudents(ctx echo.Context) error {
	grade := roster.GradeLevel(core.CleanString(ctx.QueryParam("grade_level")))
	if !grade.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "grade_level", Error: "invalid grade level"})
	}
	cohort := roster.Cohort(core.CleanString(ctx.QueryParam("cohort")))
	if !cohort.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "cohort", Error: "invalid cohort"})
	}

	students, err := api.svc.QueryActiveStudents(ctx.Request().Context(), grade, cohort)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []roster.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) retrieveStudent(ctx echo.Context) error {
	std, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *rosterApi) createStaff(ctx echo.Context) error {
	var data roster.NewStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaff")
	}

	usr, err := api.svc.CreateStaff(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == roster.ErrEmailExists {
			return core.NewValidationError(nil, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "creating staff user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *rosterApi) retrieveStaff(ctx echo.Context) error {
	usr, err := api.svc.GetStaff(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding staff user")
	}
	return ctx.JSON(http.StatusOK, usr)
}
