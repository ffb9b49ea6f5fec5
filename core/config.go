package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

// Conf is the process-wide configuration. Apps may also pass it around explicitly.
var Conf *Config

type Config struct {
	Debug     bool
	TestMode  bool
	Env       string
	Build     string
	AppName   string
	SecretKey string

	RollbarToken string

	// remote LMS API
	API struct {
		BaseURL string
		Timeout time.Duration
	}

	Server struct {
		Host          string
		Port          string
		SessionCookie string
		SessionTTL    time.Duration
	}
}

func init() {
	Conf = NewConfig()
}

// NewConfig loads configuration from defaults, an optional .env.{env} file and
// environment variables (prefixed with the current ENV).
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "ShuleAdmin")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "w3n$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy-shule")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("apiBaseUrl", "http://localhost:8000/api")
	v.SetDefault("apiTimeout", 15*time.Second)
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", "8080")
	v.SetDefault("sessionCookie", "shule_sid")
	v.SetDefault("sessionTTL", 4*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.API.BaseURL = v.GetString("apiBaseUrl")
	conf.API.Timeout = v.GetDuration("apiTimeout")
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Port = v.GetString("serverPort")
	conf.Server.SessionCookie = v.GetString("sessionCookie")
	conf.Server.SessionTTL = v.GetDuration("sessionTTL")

	vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.AppName, "appName"),
		vala.StringNotEmpty(conf.SecretKey, "secretKey"),
		vala.StringNotEmpty(conf.API.BaseURL, "apiBaseUrl"),
		vala.StringNotEmpty(conf.Server.Port, "serverPort"),
		vala.GreaterThan(int(conf.API.Timeout), 0, "apiTimeout"),
		vala.GreaterThan(int(conf.Server.SessionTTL), 0, "sessionTTL"),
	).CheckAndPanic()

	return conf
}

// Addr returns the address the admin gateway binds to.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
