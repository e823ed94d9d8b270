package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/nightwatch/nursepay/pay"
)

// RatesFile overrides the built-in pay tables. Omitted values keep their
// defaults.
//
//	twins_convention = "separate"
//
//	[rates]
//	weekend_differential = "4.00"
//	holiday_differential = "4.00"
//	twins_differential = "5.00"
//
//	[deductions]
//	insurance = "125.00"
//	background_check = "30.00"
type RatesFile struct {
	TwinsConvention string             `toml:"twins_convention"`
	Rates           pay.RateTable      `toml:"rates"`
	Deductions      pay.DeductionTable `toml:"deductions"`
}

// DefaultRatesFile mirrors the calculator's built-in tables.
func DefaultRatesFile() RatesFile {
	return RatesFile{
		TwinsConvention: string(pay.TwinsSeparate),
		Rates:           pay.DefaultRates(),
		Deductions:      pay.DefaultDeductions(),
	}
}

// LoadRatesFile reads and validates a TOML rate file.
func LoadRatesFile(path string) (RatesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RatesFile{}, fmt.Errorf("reading rates file: %w", err)
	}
	return ParseRates(data)
}

// ParseRates decodes TOML on top of the defaults.
func ParseRates(data []byte) (RatesFile, error) {
	rf := DefaultRatesFile()
	if err := toml.Unmarshal(data, &rf); err != nil {
		return RatesFile{}, fmt.Errorf("parsing rates file: %w", err)
	}
	if err := pay.ValidateTables(rf.Rates, rf.Deductions); err != nil {
		return RatesFile{}, err
	}
	if _, err := pay.ParseTwinsConvention(rf.TwinsConvention); err != nil {
		return RatesFile{}, err
	}
	return rf, nil
}

// Apply copies the tables into calc.
func (rf RatesFile) Apply(calc *pay.Calculator) error {
	conv, err := pay.ParseTwinsConvention(rf.TwinsConvention)
	if err != nil {
		return err
	}
	calc.Rates = rf.Rates
	calc.Deductions = rf.Deductions
	calc.Convention = conv
	return nil
}

// Encode renders the file as TOML, e.g. for `paycalc rates`.
func (rf RatesFile) Encode() ([]byte, error) {
	return toml.Marshal(rf)
}
