package payroll

import (
	"context"

	"github.com/nightwatch/nursepay/shifts"
)

// Store persists everything payroll needs. Getters return the package's
// not-found sentinels (or shifts.ErrShiftNotFound) for missing records.
type Store interface {
	SaveNurse(ctx context.Context, n Nurse) error
	GetNurse(ctx context.Context, id string) (Nurse, error)
	ListNurses(ctx context.Context) ([]Nurse, error)

	SaveFamily(ctx context.Context, f Family) error
	GetFamily(ctx context.Context, id string) (Family, error)
	ListFamilies(ctx context.Context) ([]Family, error)

	SaveShift(ctx context.Context, s shifts.Shift) error
	GetShift(ctx context.Context, id string) (shifts.Shift, error)
	// ListShifts returns matching shifts ordered by start time.
	ListShifts(ctx context.Context, f ShiftFilter) ([]shifts.Shift, error)

	SaveHoliday(ctx context.Context, h shifts.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context) ([]shifts.Holiday, error)

	// SaveRun upserts a draft run and replaces all of its payslips
	// atomically. It returns ErrRunFinalized if the stored run is finalized
	// and ErrRunExists if a different run holds the same period.
	SaveRun(ctx context.Context, run Run, slips []Payslip) error
	GetRun(ctx context.Context, id string) (Run, error)
	GetRunByPeriod(ctx context.Context, p shifts.PayPeriod) (Run, error)
	// ListRuns returns runs, most recent period first.
	ListRuns(ctx context.Context) ([]Run, error)
	// FinalizeRun marks a draft run and its payslips finalized. It returns
	// ErrRunFinalized if the run already is.
	FinalizeRun(ctx context.Context, run Run) error

	GetPayslip(ctx context.Context, id string) (Payslip, error)
	ListPayslipsByRun(ctx context.Context, runID string) ([]Payslip, error)
	// ListPayslipsByNurse returns a nurse's payslips, most recent period first.
	ListPayslipsByNurse(ctx context.Context, nurseID string) ([]Payslip, error)

	// Reset deletes all data. Development and demo scenarios only.
	Reset(ctx context.Context) error
}
