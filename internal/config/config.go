package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLiteDSN = "file:dept_builder.db?_pragma=foreign_keys(1)"
)

type Config struct {
	Driver             string        `env:"DB_DRIVER" envDefault:"sqlite" validate:"oneof=sqlite postgres"`
	DatabaseURL        string        `env:"DATABASE_URL" validate:"required_if=Driver postgres"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogPath            string        `env:"LOG_PATH" envDefault:"dept_builder.log"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"1s" validate:"gte=0"`
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("env")
	})
	return v
}

// DefaultEnvFiles are read, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

func Load(envFiles ...string) (Config, error) {
	if _, err := loadEnvFiles(envFiles); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills driver-dependent defaults and validates the result. It is
// called again after command-line overrides are applied.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.Driver == DriverSQLite && c.DatabaseURL == "" {
		c.DatabaseURL = defaultSQLiteDSN
	}

	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, describe(fe))
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required_if":
		return fmt.Errorf("%s required", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Errorf("%s must not be negative", fe.Field())
	}
	return fmt.Errorf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

func loadEnvFiles(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}
