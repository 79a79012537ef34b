package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/internat/core/recap"
)

type recapApi struct {
	svc *recap.Service
}

func registerRecapAPI(g *echo.Group, svc *recap.Service) {
	api := recapApi{svc: svc}

	rg := g.Group("/recaps")
	rg.GET("", api.query)
	rg.GET("/:day", api.retrieve)
	rg.POST("/generate", api.generate)
}

// Handlers

func (api *recapApi) query(ctx echo.Context) error {
	recaps, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying daily recaps")
	}
	if recaps == nil {
		recaps = []recap.DailyRecap{}
	}
	return ctx.JSON(http.StatusOK, recaps)
}

func (api *recapApi) retrieve(ctx echo.Context) error {
	day, err := parseDay("day", ctx.Param("day"))
	if err != nil {
		return err
	}

	rec, err := api.svc.GetByDay(ctx.Request().Context(), day)
	if err != nil {
		return errors.Wrap(err, "finding daily recap")
	}
	return ctx.JSON(http.StatusOK, rec)
}

// generate builds the recap of the requested day, or of yesterday when no day
// is given; regenerating an existing day overwrites its content in place.
func (api *recapApi) generate(ctx echo.Context) error {
	var data GenerateRecapRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRecapRequest")
	}
	day, err := parseDay("day", data.Day)
	if err != nil {
		return err
	}

	var rec recap.DailyRecap
	if day.IsZero() {
		rec, err = api.svc.GenerateForYesterday(ctx.Request().Context())
	} else {
		rec, err = api.svc.Generate(ctx.Request().Context(), day)
	}
	if err != nil {
		return errors.Wrap(err, "generating daily recap")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

type GenerateRecapRequest struct {
	Day string `json:"day"` // YYYY-MM-DD; empty = yesterday
}
