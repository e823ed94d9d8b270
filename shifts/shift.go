package shifts

import (
	"errors"
	"fmt"
	"time"
)

// Status is where a shift is in its lifecycle.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether st is a known status.
func (st Status) Valid() bool {
	switch st {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// MaxShiftLength bounds a single booking.
const MaxShiftLength = 24 * time.Hour

var (
	ErrShiftNotFound   = errors.New("shift not found")
	ErrInvalidShift    = errors.New("invalid shift")
	ErrShiftTransition = errors.New("shift status cannot change")
)

// Shift is one booking of a nurse with a family.
type Shift struct {
	ID        string    `json:"id"`
	NurseID   string    `json:"nurse_id"`
	FamilyID  string    `json:"family_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Twins     bool      `json:"twins"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Duration is End - Start.
func (s Shift) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Validate checks the booking itself; it does not look at other shifts.
func (s Shift) Validate() error {
	if s.NurseID == "" {
		return fmt.Errorf("%w: nurse_id is required", ErrInvalidShift)
	}
	if s.Start.IsZero() || s.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidShift)
	}
	if !s.End.After(s.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidShift)
	}
	if s.Duration() > MaxShiftLength {
		return fmt.Errorf("%w: longer than %v", ErrInvalidShift, MaxShiftLength)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidShift, s.Status)
	}
	return nil
}

// Overlaps reports whether the two shifts share any instant.
func (s Shift) Overlaps(o Shift) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Transition moves a scheduled shift to completed or cancelled. Completed
// and cancelled shifts are final.
func (s Shift) Transition(to Status) (Shift, error) {
	if s.Status != StatusScheduled {
		return s, fmt.Errorf("%w: %s -> %s", ErrShiftTransition, s.Status, to)
	}
	if to != StatusCompleted && to != StatusCancelled {
		return s, fmt.Errorf("%w: %s -> %s", ErrShiftTransition, s.Status, to)
	}
	s.Status = to
	return s, nil
}
