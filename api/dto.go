/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain records
  (payroll.Nurse, payroll.Run, payroll.Payslip, shifts.Shift) already carry
  JSON tags and are returned as-is; the types here cover request bodies and
  composite responses.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Composite response wrappers
  - *DTO: Everything else returned to clients

AMOUNTS:
  The pay calculator form sends whatever the user typed. Amount accepts a
  JSON number or a string like "$1,234.50"; text that is not a number
  becomes zero, matching the calculator's never-fail contract.

SEE ALSO:
  - handlers.go: Uses these types
  - pay/parse.go: Form coercion rules
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/shifts"
)

// =============================================================================
// PAY CALCULATOR
// =============================================================================

// Amount is a number as typed into a form.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(b)
	return nil
}

// CalculateRequest is the pay calculator form.
type CalculateRequest struct {
	BaseRate            Amount `json:"base_rate"`
	RegularHours        Amount `json:"regular_hours"`
	WeekendHours        Amount `json:"weekend_hours"`
	HolidayHours        Amount `json:"holiday_hours"`
	TwinsHours          Amount `json:"twins_hours"`
	TwinsWeekendHours   Amount `json:"twins_weekend_hours"`
	InsurancePaid       bool   `json:"insurance_paid"`
	BackgroundCheckPaid bool   `json:"background_check_paid"`
}

// Input coerces the form into calculator input.
func (r CalculateRequest) Input() pay.PayInput {
	return pay.ParseInput(pay.FormInput{
		BaseRate:            string(r.BaseRate),
		RegularHours:        string(r.RegularHours),
		WeekendHours:        string(r.WeekendHours),
		HolidayHours:        string(r.HolidayHours),
		TwinsHours:          string(r.TwinsHours),
		TwinsWeekendHours:   string(r.TwinsWeekendHours),
		InsurancePaid:       r.InsurancePaid,
		BackgroundCheckPaid: r.BackgroundCheckPaid,
	})
}

// CalculateResponse is the result screen: exact amounts, the breakdown, and
// the same amounts formatted for display.
type CalculateResponse struct {
	Input      pay.PayInput      `json:"input"`
	Output     pay.PayOutput     `json:"output"`
	Lines      []pay.LineItem    `json:"lines"`
	Deductions []pay.Deduction   `json:"deductions"`
	Display    map[string]string `json:"display"`
}

func displayAmounts(o pay.PayOutput) map[string]string {
	return map[string]string{
		"regular_pay":       pay.FormatMoney(o.RegularPay),
		"weekend_pay":       pay.FormatMoney(o.WeekendPay),
		"holiday_pay":       pay.FormatMoney(o.HolidayPay),
		"twins_pay":         pay.FormatMoney(o.TwinsPay),
		"twins_weekend_pay": pay.FormatMoney(o.TwinsWeekendPay),
		"gross_pay":         pay.FormatMoney(o.GrossPay),
		"deductions":        pay.FormatMoney(o.Deductions),
		"net_pay":           pay.FormatMoney(o.NetPay),
	}
}

// =============================================================================
// PEOPLE AND SHIFTS
// =============================================================================

// NurseRequest creates or updates a nurse. Active defaults to true.
type NurseRequest struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	BaseRate            decimal.Decimal `json:"base_rate"`
	InsurancePaid       bool            `json:"insurance_paid"`
	BackgroundCheckPaid bool            `json:"background_check_paid"`
	Active              *bool           `json:"active,omitempty"`
}

func (r NurseRequest) Nurse() payroll.Nurse {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return payroll.Nurse{
		ID:                  r.ID,
		Name:                r.Name,
		Email:               r.Email,
		BaseRate:            r.BaseRate,
		InsurancePaid:       r.InsurancePaid,
		BackgroundCheckPaid: r.BackgroundCheckPaid,
		Active:              active,
	}
}

// FamilyRequest creates a family.
type FamilyRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Twins bool   `json:"twins"`
}

// ShiftRequest books a shift. Times are RFC3339.
type ShiftRequest struct {
	NurseID  string    `json:"nurse_id"`
	FamilyID string    `json:"family_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Twins    bool      `json:"twins"`
	Notes    string    `json:"notes"`
}

// HolidayRequest adds a holiday. Date is YYYY-MM-DD.
type HolidayRequest struct {
	Date      shifts.Date `json:"date"`
	Name      string      `json:"name"`
	Recurring bool        `json:"recurring"`
}

// DefaultHolidaysRequest selects the year of federal holidays to add.
type DefaultHolidaysRequest struct {
	Year int `json:"year"`
}

// =============================================================================
// PERIODS AND RUNS
// =============================================================================

// PeriodResponse describes the pay period containing a date.
type PeriodResponse struct {
	Frequency shifts.Frequency `json:"frequency"`
	Current   shifts.PayPeriod `json:"current"`
	Previous  shifts.PayPeriod `json:"previous"`
	Next      shifts.PayPeriod `json:"next"`
	Days      int              `json:"days"`
}

// PayRunRequest runs the period containing Date (default: today).
type PayRunRequest struct {
	Date string `json:"date"`
}

// PayRunResponse is a run with its payslips.
type PayRunResponse struct {
	Run      payroll.Run       `json:"run"`
	Payslips []payroll.Payslip `json:"payslips"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
