package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightwatch/nursepay/config"
	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/shifts"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "nursepay.db", cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Len(t, cfg.CORSOrigins, 2)
	require.NoError(t, cfg.Validate())

	periods, err := cfg.Periods()
	require.NoError(t, err)
	assert.Equal(t, shifts.DefaultPeriodConfig(), periods)

	calc, err := cfg.Calculator()
	require.NoError(t, err)
	assert.Equal(t, pay.TwinsSeparate, calc.Convention)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NURSEPAY_PORT", "9090")
	t.Setenv("NURSEPAY_PAY_FREQUENCY", "weekly")
	t.Setenv("NURSEPAY_TIMEZONE", "America/New_York")
	t.Setenv("NURSEPAY_TWINS_CONVENTION", "inclusive")
	t.Setenv("NURSEPAY_SCHEDULER_INTERVAL", "15m")
	t.Setenv("NURSEPAY_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := config.Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	periods, err := cfg.Periods()
	require.NoError(t, err)
	assert.Equal(t, shifts.FrequencyWeekly, periods.Frequency)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	calc, err := cfg.Calculator()
	require.NoError(t, err)
	assert.Equal(t, pay.TwinsInclusive, calc.Convention)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"production without secret", func(c *config.Config) { c.Environment = "production" }},
		{"bad port", func(c *config.Config) { c.Port = 0 }},
		{"empty db", func(c *config.Config) { c.DBPath = " " }},
		{"bad frequency", func(c *config.Config) { c.PayFrequency = "fortnightly-ish" }},
		{"bad anchor", func(c *config.Config) { c.PeriodAnchor = "01/06/2025" }},
		{"bad timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
		{"bad convention", func(c *config.Config) { c.TwinsConvention = "both" }},
		{"zero interval", func(c *config.Config) { c.SchedulerInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Load()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "NURSEPAY_DOTENV_PROBE"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv(key))
}

// =============================================================================
// RATE FILE
// =============================================================================

func TestParseRates_OverridesDefaults(t *testing.T) {
	rf, err := config.ParseRates([]byte(`
twins_convention = "inclusive"

[rates]
weekend_differential = "6.50"

[deductions]
insurance = "100"
`))
	require.NoError(t, err)

	assert.Equal(t, "6.5", rf.Rates.WeekendDifferential.String())
	assert.Equal(t, "4", rf.Rates.HolidayDifferential.String())
	assert.Equal(t, "5", rf.Rates.TwinsDifferential.String())
	assert.Equal(t, "100", rf.Deductions.Insurance.String())
	assert.Equal(t, "30", rf.Deductions.BackgroundCheck.String())

	calc := pay.NewCalculator()
	require.NoError(t, rf.Apply(calc))
	assert.Equal(t, pay.TwinsInclusive, calc.Convention)
	assert.Equal(t, "6.5", calc.Rates.WeekendDifferential.String())
}

func TestParseRates_Rejects(t *testing.T) {
	_, err := config.ParseRates([]byte("[rates]\nweekend_differential = \"-1\"\n"))
	assert.ErrorIs(t, err, pay.ErrInvalidInput)

	_, err = config.ParseRates([]byte("twins_convention = \"both\"\n"))
	assert.ErrorIs(t, err, pay.ErrInvalidInput)

	_, err = config.ParseRates([]byte("[rates"))
	assert.Error(t, err)
}

func TestRatesFile_EncodeRoundTrip(t *testing.T) {
	data, err := config.DefaultRatesFile().Encode()
	require.NoError(t, err)

	rf, err := config.ParseRates(data)
	require.NoError(t, err)
	assert.Equal(t, "125", rf.Deductions.Insurance.String())
}

func TestCalculator_FromRatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rates]\ntwins_differential = \"7\"\n"), 0o600))

	cfg := config.Load()
	cfg.RatesFile = path
	calc, err := cfg.Calculator()
	require.NoError(t, err)
	assert.Equal(t, "7", calc.Rates.TwinsDifferential.String())

	cfg.RatesFile = filepath.Join(t.TempDir(), "nope.toml")
	_, err = cfg.Calculator()
	assert.Error(t, err)
}
