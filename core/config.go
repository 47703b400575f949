package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string

		AppName          string
		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		PasswordResetTimeoutDelta time.Duration

		SendgridApiKey string
		RollbarToken   string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      string
		AllowedOrigins            []string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}
)

func (c ServerConfig) Address() string { return net.JoinHostPort(c.Host, c.Port) }

func (c DatabaseConfig) Address() string { return net.JoinHostPort(c.Host, c.Port) }

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables prefixed with the env name.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Kelasi")
	v.SetDefault("secretKey", "w3lc0me-t0-cl@ss_s1t-d0wn&0p3n-y0ur-b00ks!")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("shutdownTimeout", 20*time.Second)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "kelasi")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  env == "TEST",
		Build:                     v.GetString("build"),
		AppName:                   v.GetString("appName"),
		SecretKey:                 []byte(v.GetString("secretKey")),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetString("serverPort"),
			AllowedOrigins:            v.GetStringSlice("allowedOrigins"),
			ShutdownTimeout:           v.GetDuration("shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
	}

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing defaultFromEmail")
	}
	from.Name = conf.AppName
	conf.DefaultFromEmail = *from

	return conf, nil
}

// Getwd tries to find the project root "kelasi".
// go-test changes the working directory to the test package being run during tests...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	root := "kelasi"
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(currDir); err == nil {
			if filepath.Base(currDir) == root && fi.IsDir() {
				return currDir
			}
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			// deployed binaries run outside the repo; fall back to the working directory
			return wd
		}
		currDir = newDir
	}
}
