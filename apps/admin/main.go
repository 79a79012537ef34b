package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

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

var stdLogger *log.Logger

func main() {
	defer os.Exit(0)

	stdLogger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewStdLogger(stdLogger)

	// set up DB
	errAndDie(database.CreateIfNotExist())
	sqlDB, err := database.Open()
	errAndDie(err)
	defer func() { _ = sqlDB.Close() }()
	errAndDie(sqlDB.Ping())
	db := sqlx.NewDb(sqlDB, core.Conf.GetString("database.engine"))

	// set up services
	var mailSvc core.EmailService
	if core.Conf.GetBool("debug") {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	attRepo := sqlxrepos.NewAttendanceRepository(db)

	var providers []recap.TextProvider
	if key := core.Conf.GetString("openaiApiKey"); key != "" {
		providers = append(providers, openaisvc.NewProvider(key, core.Conf.GetString("openaiModel")))
	}
	if key := core.Conf.GetString("anthropicApiKey"); key != "" {
		providers = append(providers, anthropicsvc.NewProvider(key, core.Conf.GetString("anthropicModel")))
	}
	gen := recap.NewGenerator(logger, core.Conf.GetDuration("textgenTimeout"), providers...)

	// start CLI
	cli := commandLine{
		db:        sqlDB,
		rosterSvc: roster.NewService(sqlxrepos.NewRosterRepository(db)),
		attSvc:    attendance.NewService(attRepo),
		recapSvc: recap.NewService(
			sqlxrepos.NewRecapRepository(db),
			recap.NewAggregator(attRepo),
			gen,
			mailSvc,
			logger,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		stdLogger.Fatal(err)
	}
}
