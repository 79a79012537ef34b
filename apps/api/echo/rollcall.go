package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/roster"
)

type rollCallApi struct {
	svc *attendance.Service
}

func registerRollCallAPI(g *echo.Group, svc *attendance.Service) {
	api := rollCallApi{svc: svc}

	rg := g.Group("/rollcall")
	rg.POST("", api.save)
	rg.GET("", api.retrieve)
	rg.GET("/history", api.history)
	rg.GET("/stats", api.stats)
}

// Handlers

func (api *rollCallApi) save(ctx echo.Context) error {
	var data SaveRollCallRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveRollCallRequest")
	}
	day, err := parseDay("day", data.Day)
	if err != nil {
		return err
	}

	nrc := attendance.NewRollCall{
		StaffID:     data.StaffID,
		GradeLevel:  data.GradeLevel,
		Cohort:      data.Cohort,
		Day:         day,
		Entries:     data.Entries,
		Observation: data.Observation,
	}
	count, err := api.svc.SaveRollCall(ctx.Request().Context(), nrc)
	if err != nil {
		return errors.Wrap(err, "saving roll call")
	}

	return ctx.JSON(http.StatusCreated, SaveRollCallResponse{Count: count})
}

func (api *rollCallApi) retrieve(ctx echo.Context) error {
	grade := roster.GradeLevel(core.CleanString(ctx.QueryParam("grade_level")))
	if !grade.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "grade_level", Error: "invalid grade level"})
	}
	day, err := parseDay("day", ctx.QueryParam("day"))
	if err != nil {
		return err
	}
	if day.IsZero() {
		day = time.Now()
	}

	recs, err := api.svc.GetRollCall(ctx.Request().Context(), grade, day)
	if err != nil {
		return errors.Wrap(err, "finding roll call")
	}

	// each cohort keeps its own nightly note
	observations := make(map[roster.Cohort]string)
	for _, cohort := range roster.Cohorts {
		if obs, oErr := api.svc.GetObservation(ctx.Request().Context(), day, grade, cohort); oErr == nil {
			observations[cohort] = obs.Text
		} else if errors.Cause(oErr) != attendance.ErrObservationNotFound {
			return errors.Wrap(oErr, "finding group observation")
		}
	}

	return ctx.JSON(http.StatusOK, RollCallResponse{
		GradeLevel:   grade,
		Day:          core.NormalizeDay(day),
		Exists:       len(recs) > 0,
		Records:      recs,
		Observations: observations,
	})
}

func (api *rollCallApi) history(ctx echo.Context) error {
	from, err := parseDay("from", ctx.QueryParam("from"))
	if err != nil {
		return err
	}
	to, err := parseDay("to", ctx.QueryParam("to"))
	if err != nil {
		return err
	}
	filter := attendance.QueryFilter{
		From:       from,
		To:         to,
		GradeLevel: roster.GradeLevel(core.CleanString(ctx.QueryParam("grade_level"))),
		Cohort:     roster.Cohort(core.CleanString(ctx.QueryParam("cohort"))),
	}

	recs, err := api.svc.History(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying roll-call history")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *rollCallApi) stats(ctx echo.Context) error {
	count, err := api.svc.Count(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting roll-call records")
	}
	return ctx.JSON(http.StatusOK, StatsResponse{TotalRecords: count})
}

type (
	SaveRollCallRequest struct {
		StaffID     string                     `json:"staff_id"`
		GradeLevel  roster.GradeLevel          `json:"grade_level"`
		Cohort      roster.Cohort              `json:"cohort"`
		Day         string                     `json:"day"` // YYYY-MM-DD; empty = today
		Entries     []attendance.RollCallEntry `json:"entries"`
		Observation string                     `json:"observation"`
	}

	SaveRollCallResponse struct {
		Count int `json:"count"`
	}

	RollCallResponse struct {
		GradeLevel   roster.GradeLevel        `json:"grade_level"`
		Day          time.Time                `json:"day"`
		Exists       bool                     `json:"exists"`
		Records      []attendance.Record      `json:"records"`
		Observations map[roster.Cohort]string `json:"observations"`
	}

	StatsResponse struct {
		TotalRecords int `json:"total_records"`
	}
)
