package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/internat/apps/api/echo"
	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/recap"
	"github.com/trezcool/internat/core/roster"
	emailsvc "github.com/trezcool/internat/services/email"
	logsvc "github.com/trezcool/internat/services/logger"
	anthropicsvc "github.com/trezcool/internat/services/textgen/anthropic"
	openaisvc "github.com/trezcool/internat/services/textgen/openai"
	"github.com/trezcool/internat/storage/database"
	sqlxrepos "github.com/trezcool/internat/storage/database/sqlx"
)

func main() {
	debug := core.Conf.GetBool("debug")

	// set up logger
	std := log.New(os.Stdout, "INTERNAT API : ", log.LstdFlags|log.Lshortfile)
	var logger core.Logger
	if debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		host, _ := os.Hostname()
		logger = logsvc.NewRollbarLogger(std, core.Conf.GetString("env"), host, "")
	}

	// set up DB
	sqlDB, err := database.Open()
	errAndDie(err)
	defer func() { _ = sqlDB.Close() }()
	db := sqlx.NewDb(sqlDB, core.Conf.GetString("database.engine"))

	// set up services
	var mailSvc core.EmailService
	if debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	attRepo := sqlxrepos.NewAttendanceRepository(db)
	rosterSvc := roster.NewService(sqlxrepos.NewRosterRepository(db))
	attSvc := attendance.NewService(attRepo)

	var providers []recap.TextProvider
	if key := core.Conf.GetString("openaiApiKey"); key != "" {
		providers = append(providers, openaisvc.NewProvider(key, core.Conf.GetString("openaiModel")))
	}
	if key := core.Conf.GetString("anthropicApiKey"); key != "" {
		providers = append(providers, anthropicsvc.NewProvider(key, core.Conf.GetString("anthropicModel")))
	}
	gen := recap.NewGenerator(logger, core.Conf.GetDuration("textgenTimeout"), providers...)
	recapSvc := recap.NewService(
		sqlxrepos.NewRecapRepository(db),
		recap.NewAggregator(attRepo),
		gen,
		mailSvc,
		logger,
	)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       ":8000",
			RosterSvc:     rosterSvc,
			AttendanceSvc: attSvc,
			RecapSvc:      recapSvc,
			Logger:        logger,
		},
	)
	app.Start()
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
