package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const dbPropertiesFile = "database.properties"

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		WorkDir          string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Database DatabaseConfig
		Server   ServerConfig
		Console  ConsoleConfig
	}

	// DatabaseConfig holds the store URL and credentials read from database.properties.
	DatabaseConfig struct {
		URL             string
		User            string
		Password        string
		DisableTLS      bool
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	ConsoleConfig struct {
		ActionTimeout time.Duration
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "SEMS")
	conf.SetDefault("secretKey", "x9v#2kq!m0s7-ltr$e8w+zn4&yb6(c3)pf1=hu5oj")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("dbMaxOpenConns", 10)
	conf.SetDefault("dbMaxIdleConns", 5)
	conf.SetDefault("dbConnMaxLifetime", 30*time.Minute)
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 8*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 24*time.Hour)
	conf.SetDefault("consoleActionTimeout", 10*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	workDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	configDir := filepath.Join(workDir, "config")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	db, err := LoadDatabaseProperties(filepath.Join(configDir, dbPropertiesFile))
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("config.LoadDatabaseProperties(): %v", err)
	}
	if url := conf.GetString("dbUrl"); url != "" {
		db.URL = url
	}
	if usr := conf.GetString("dbUser"); usr != "" {
		db.User = usr
	}
	if pwd := conf.GetString("dbPassword"); pwd != "" {
		db.Password = pwd
	}
	db.DisableTLS = conf.GetBool("dbDisableTLS")
	db.MaxOpenConns = conf.GetInt("dbMaxOpenConns")
	db.MaxIdleConns = conf.GetInt("dbMaxIdleConns")
	db.ConnMaxLifetime = conf.GetDuration("dbConnMaxLifetime")

	return &Config{
		AppName:          conf.GetString("appName"),
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		SecretKey:        conf.GetString("secretKey"),
		WorkDir:          workDir,
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Database:         db,
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Address:                   conf.GetString("serverAddress"),
			DebugHost:                 conf.GetString("serverDebugHost"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Console: ConsoleConfig{
			ActionTimeout: conf.GetDuration("consoleActionTimeout"),
		},
	}
}

// LoadDatabaseProperties reads the `url`, `username` and `password` keys of a properties file.
func LoadDatabaseProperties(path string) (DatabaseConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return DatabaseConfig{}, err
	}

	props := viper.New()
	props.SetConfigFile(path)
	props.SetConfigType("properties")
	if err := props.ReadInConfig(); err != nil {
		return DatabaseConfig{}, err
	}
	return DatabaseConfig{
		URL:      strings.TrimSpace(props.GetString("url")),
		User:     strings.TrimSpace(props.GetString("username")),
		Password: props.GetString("password"),
	}, nil
}
