package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "Internat")
	Conf.SetDefault("defaultFromEmail", "noreply@localhost")
	Conf.SetDefault("recapRecipients", []string{})
	Conf.SetDefault("sendgridApiKey", "")
	Conf.SetDefault("rollbarToken", "")

	// text generation providers; a provider with an empty key is skipped
	Conf.SetDefault("openaiApiKey", "")
	Conf.SetDefault("openaiModel", "gpt-4o")
	Conf.SetDefault("anthropicApiKey", "")
	Conf.SetDefault("anthropicModel", "claude-3-5-sonnet-20241022")
	Conf.SetDefault("textgenTimeout", 30*time.Second)

	Conf.SetDefault("database.engine", "postgres")
	Conf.SetDefault("database.host", "localhost")
	Conf.SetDefault("database.port", "5432")
	Conf.SetDefault("database.user", "internat")
	Conf.SetDefault("database.password", "internat")
	Conf.SetDefault("database.name", "internat")
	Conf.SetDefault("database.adminUser", "")
	Conf.SetDefault("database.adminPassword", "")
	Conf.SetDefault("database.disableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		Conf.SetDefault("testMode", true)
	}
	Conf.Set("env", env)
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}
