package payroll

import (
	"errors"
	"fmt"

	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/shifts"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrNurseNotFound   = errors.New("nurse not found")
	ErrFamilyNotFound  = errors.New("family not found")
	ErrRunNotFound     = errors.New("pay run not found")
	ErrPayslipNotFound = errors.New("payslip not found")
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrRunFinalized is returned when a change would alter a finalized run.
	ErrRunFinalized = errors.New("pay run is finalized")

	// ErrRunExists is returned by Store.SaveRun when another run already
	// holds the period.
	ErrRunExists = errors.New("pay run already exists for period")

	// ErrShiftOverlap is returned when a nurse would be booked twice at once.
	ErrShiftOverlap = errors.New("shift overlaps an existing shift")

	ErrInvalidNurse = errors.New("invalid nurse")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidNurse, msg)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNurseNotFound) ||
		errors.Is(err, ErrFamilyNotFound) ||
		errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrPayslipNotFound) ||
		errors.Is(err, ErrHolidayNotFound) ||
		errors.Is(err, shifts.ErrShiftNotFound)
}

// IsConflict returns true if the request clashes with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrRunFinalized) ||
		errors.Is(err, ErrRunExists) ||
		errors.Is(err, ErrShiftOverlap) ||
		errors.Is(err, shifts.ErrShiftTransition)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidNurse) ||
		errors.Is(err, shifts.ErrInvalidShift) ||
		pay.IsClientError(err)
}
