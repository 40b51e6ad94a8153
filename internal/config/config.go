// Package config
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/amirphl/simple-indicators/internal/tfutils"
)

/*
YAML config example:
source: "postgres"
db_conn_str: "..."
db_max_open: 10
db_max_idle: 5
symbols: ["BTCIRT", "ETHIRT"]
interval: "1h"
from: 2024-01-01T00:00:00Z
to: 2024-02-01T00:00:00Z
profile: "custom"
custom_indicators: ["sma_50", "bb_20", "macd_12_26_9"]
profiles:
  basic: ["sma_10", "ema_10", "rsi_7"]
tail: 20
log_level: "debug"
log_file: "logs/indicators.log"
...
*/

// Source kinds.
const (
	SourceMemory   = "memory"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceWallex   = "wallex"
)

type Config struct {
	Source string `yaml:"source" validate:"oneof=memory csv postgres wallex"`

	// CSVPath may contain a {symbol} placeholder.
	CSVPath      string `yaml:"csv_path" validate:"required_if=Source csv"`
	CSVTimeframe string `yaml:"csv_timeframe" validate:"timeframe"`

	DBConnStr string `yaml:"db_conn_str" validate:"required_if=Source postgres"`
	DBMaxOpen int    `yaml:"db_max_open" validate:"gte=1"`
	DBMaxIdle int    `yaml:"db_max_idle" validate:"gte=0,ltefield=DBMaxOpen"`

	WallexAPIKey     string  `yaml:"wallex_api_key"`
	WallexRPS        float64 `yaml:"wallex_rps"`
	WallexMaxRetries uint64  `yaml:"wallex_max_retries" validate:"gte=1"`

	// Seed drives the random walk served by the memory source.
	Seed int64 `yaml:"seed"`

	Symbols  []string  `yaml:"symbols" validate:"required,min=1,dive,required"`
	Interval string    `yaml:"interval" validate:"timeframe"`
	From     time.Time `yaml:"from" validate:"required"`
	To       time.Time `yaml:"to" validate:"required,gtfield=From"`

	Profile          string              `yaml:"profile" validate:"oneof=basic momentum custom all"`
	CustomIndicators []string            `yaml:"custom_indicators" validate:"required_if=Profile custom"`
	Profiles         map[string][]string `yaml:"profiles"`

	// Concurrency bounds how many symbols are processed at once.
	Concurrency int    `yaml:"concurrency" validate:"gte=1"`
	Tail        int    `yaml:"tail" validate:"gte=0"`
	OutputCSV   string `yaml:"output_csv"`

	LogLevel string `yaml:"log_level" validate:"oneof=panic fatal error warn warning info debug trace"`
	LogFile  string `yaml:"log_file"`
}

// env holds the settings that may come from the environment. Empty values
// leave the loaded config untouched.
type env struct {
	WallexAPIKey string `envconfig:"WALLEX_API_KEY"`
	DBConnStr    string `envconfig:"DB_CONN_STR"`
	Source       string `envconfig:"INDICATORS_SOURCE"`
	LogLevel     string `envconfig:"INDICATORS_LOG_LEVEL"`
	LogFile      string `envconfig:"INDICATORS_LOG_FILE"`
}

// Default returns the config used when nothing else is given: a month of
// hourly random-walk candles for BTCIRT with the basic profile.
func Default() Config {
	to := time.Now().UTC().Truncate(time.Hour)
	return Config{
		Source:           SourceMemory,
		CSVTimeframe:     tfutils.BaseTimeframe,
		DBMaxOpen:        10,
		DBMaxIdle:        5,
		WallexRPS:        2,
		WallexMaxRetries: 3,
		Seed:             1,
		Symbols:          []string{"BTCIRT"},
		Interval:         "1h",
		From:             to.AddDate(0, 0, -30),
		To:               to,
		Profile:          "basic",
		Concurrency:      4,
		Tail:             10,
		LogLevel:         "info",
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then the environment. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("failed to load config from env: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return err
	}
	for dst, v := range map[*string]string{
		&c.WallexAPIKey: e.WallexAPIKey,
		&c.DBConnStr:    e.DBConnStr,
		&c.Source:       e.Source,
		&c.LogLevel:     e.LogLevel,
		&c.LogFile:      e.LogFile,
	} {
		if v != "" {
			*dst = v
		}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("timeframe", func(fl validator.FieldLevel) bool {
		return tfutils.IsValidTimeframe(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register timeframe validation: %v", err))
	}
	return v
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var errs error
	for _, fe := range fieldErrs {
		errs = multierr.Append(errs, fieldError(fe))
	}
	return errs
}

func fieldError(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "timeframe":
		return fmt.Errorf("%s: unsupported timeframe %q (supported: %s)", field, fe.Value(),
			strings.Join(tfutils.GetSupportedTimeframes(), ", "))
	case "gtfield":
		return fmt.Errorf("%s must be after %s", field, fe.Param())
	default:
		return fmt.Errorf("%s failed %s=%s (value %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
}
