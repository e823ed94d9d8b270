/*
Package payroll runs pay periods for the agency's nurses.

PURPOSE:
  Ties the pieces together: nurses and their rates, completed shifts
  classified into pay categories, the calculator, and the persisted pay run
  with one payslip per nurse.

LIFECYCLE OF A RUN:
  draft     -> created by RunPeriod (manually or by the scheduler). Running
               the same period again recomputes and replaces the payslips.
  finalized -> Finalize locks the run. A finalized period can no longer be
               re-run, and shifts inside it can no longer change status.

WARNINGS:
  Payslips carry warnings instead of failing the run, mirroring the
  calculator's never-fail contract:
    negative_net       deductions exceed gross pay
    no_hours           nurse is active but has no completed hours
    invalid_base_rate  base rate is zero or negative

SEE ALSO:
  - service.go: RunPeriod, Finalize, Preview, shift workflow
  - store.go: persistence interface (memstore/, store/sqlite/)
  - pdf.go: payslip documents
*/
package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/shifts"
)

// =============================================================================
// PEOPLE
// =============================================================================

// Nurse is a caregiver on the agency's payroll.
type Nurse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	BaseRate            decimal.Decimal `json:"base_rate"`
	InsurancePaid       bool            `json:"insurance_paid"`
	BackgroundCheckPaid bool            `json:"background_check_paid"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Validate checks the fields an admin must supply.
func (n Nurse) Validate() error {
	switch {
	case strings.TrimSpace(n.ID) == "":
		return invalid("nurse id is required")
	case strings.TrimSpace(n.Name) == "":
		return invalid("nurse name is required")
	case !n.BaseRate.IsPositive():
		return invalid("base rate must be greater than zero")
	case !pay.Plausible(n.BaseRate):
		return invalid("base rate is out of range")
	}
	return nil
}

// Family is a client household that books night shifts.
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Twins     bool      `json:"twins"` // shifts default to twins care
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// RUNS AND PAYSLIPS
// =============================================================================

// RunStatus is the state of a pay run and its payslips.
type RunStatus string

const (
	RunDraft     RunStatus = "draft"
	RunFinalized RunStatus = "finalized"
)

const (
	WarningNegativeNet     = "negative_net"
	WarningNoHours         = "no_hours"
	WarningInvalidBaseRate = "invalid_base_rate"
)

// Run is one pay period's payroll.
type Run struct {
	ID          string           `json:"id"`
	Period      shifts.PayPeriod `json:"period"`
	Status      RunStatus        `json:"status"`
	NurseCount  int              `json:"nurse_count"`
	Gross       decimal.Decimal  `json:"gross"`
	Deductions  decimal.Decimal  `json:"deductions"`
	Net         decimal.Decimal  `json:"net"`
	CreatedAt   time.Time        `json:"created_at"`
	FinalizedAt *time.Time       `json:"finalized_at,omitempty"`
}

// Payslip is what one nurse is paid for one run.
type Payslip struct {
	ID         string           `json:"id"`
	RunID      string           `json:"run_id"`
	NurseID    string           `json:"nurse_id"`
	NurseName  string           `json:"nurse_name"`
	Period     shifts.PayPeriod `json:"period"`
	Input      pay.PayInput     `json:"input"`
	Output     pay.PayOutput    `json:"output"`
	Lines      []pay.LineItem   `json:"lines"`
	Deductions []pay.Deduction  `json:"deductions"`
	ShiftCount int              `json:"shift_count"`
	Warnings   []string         `json:"warnings"`
	Status     RunStatus        `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// HasWarning reports whether w was raised.
func (p Payslip) HasWarning(w string) bool {
	for _, got := range p.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// ShiftFilter selects shifts. Zero fields do not filter. From/To select
// shifts overlapping [From, To).
type ShiftFilter struct {
	NurseID  string
	FamilyID string
	From     time.Time
	To       time.Time
	Status   shifts.Status
}

// Match applies the filter in memory.
func (f ShiftFilter) Match(s shifts.Shift) bool {
	if f.NurseID != "" && s.NurseID != f.NurseID {
		return false
	}
	if f.FamilyID != "" && s.FamilyID != f.FamilyID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if !f.To.IsZero() && !s.Start.Before(f.To) {
		return false
	}
	if !f.From.IsZero() && !s.End.After(f.From) {
		return false
	}
	return true
}
