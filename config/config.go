// Package config loads server settings from the environment, an optional
// .env file and an optional TOML rate file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/shifts"
)

type Config struct {
	Port              int
	DBPath            string
	Environment       string
	LogLevel          string
	JWTSecret         string
	RatesFile         string
	PayFrequency      string
	PeriodAnchor      string
	Timezone          string
	TwinsConvention   string
	SchedulerEnabled  bool
	SchedulerInterval time.Duration
	CORSOrigins       []string
}

// LoadDotEnv reads .env-style files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads NURSEPAY_* variables with defaults.
func Load() Config {
	return Config{
		Port:              getEnvInt("NURSEPAY_PORT", 8080),
		DBPath:            getEnv("NURSEPAY_DB", "nursepay.db"),
		Environment:       getEnv("NURSEPAY_ENV", "development"),
		LogLevel:          getEnv("NURSEPAY_LOG_LEVEL", "info"),
		JWTSecret:         getEnv("NURSEPAY_JWT_SECRET", ""),
		RatesFile:         getEnv("NURSEPAY_RATES_FILE", ""),
		PayFrequency:      getEnv("NURSEPAY_PAY_FREQUENCY", string(shifts.FrequencyBiweekly)),
		PeriodAnchor:      getEnv("NURSEPAY_PERIOD_ANCHOR", "2025-01-06"),
		Timezone:          getEnv("NURSEPAY_TIMEZONE", "UTC"),
		TwinsConvention:   getEnv("NURSEPAY_TWINS_CONVENTION", ""),
		SchedulerEnabled:  getEnvBool("NURSEPAY_SCHEDULER_ENABLED", true),
		SchedulerInterval: getEnvDuration("NURSEPAY_SCHEDULER_INTERVAL", time.Hour),
		CORSOrigins:       getEnvList("NURSEPAY_CORS_ORIGINS", []string{"http://localhost:8081", "http://localhost:19006"}),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("NURSEPAY_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("NURSEPAY_DB is required")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("NURSEPAY_JWT_SECRET must be set in production")
	}
	if c.SchedulerEnabled && c.SchedulerInterval <= 0 {
		return fmt.Errorf("NURSEPAY_SCHEDULER_INTERVAL must be positive")
	}
	if _, err := c.Periods(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := pay.ParseTwinsConvention(c.TwinsConvention); err != nil {
		return fmt.Errorf("NURSEPAY_TWINS_CONVENTION: %w", err)
	}
	return nil
}

// Periods builds the pay-period configuration.
func (c Config) Periods() (shifts.PeriodConfig, error) {
	freq, err := shifts.ParseFrequency(c.PayFrequency)
	if err != nil {
		return shifts.PeriodConfig{}, fmt.Errorf("NURSEPAY_PAY_FREQUENCY: %w", err)
	}
	anchor, err := shifts.ParseDate(c.PeriodAnchor)
	if err != nil {
		return shifts.PeriodConfig{}, fmt.Errorf("NURSEPAY_PERIOD_ANCHOR: %w", err)
	}
	return shifts.PeriodConfig{Frequency: freq, Anchor: anchor}, nil
}

// Location resolves the timezone shifts are classified in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("NURSEPAY_TIMEZONE: %w", err)
	}
	return loc, nil
}

// Calculator builds the pay calculator from the rate file (if any). A twins
// convention set in the environment wins over the file's.
func (c Config) Calculator() (*pay.Calculator, error) {
	calc := pay.NewCalculator()
	if c.RatesFile != "" {
		rf, err := LoadRatesFile(c.RatesFile)
		if err != nil {
			return nil, err
		}
		if err := rf.Apply(calc); err != nil {
			return nil, err
		}
	}
	if c.TwinsConvention != "" {
		conv, err := pay.ParseTwinsConvention(c.TwinsConvention)
		if err != nil {
			return nil, err
		}
		calc.Convention = conv
	}
	return calc, nil
}
