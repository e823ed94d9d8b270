package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/shifts"
)

// Service is the payroll workflow over a Store.
type Service struct {
	Store      Store
	Calculator *pay.Calculator
	Periods    shifts.PeriodConfig
	Location   *time.Location
	Logger     *zap.Logger

	// mu serializes writes that depend on a run's status: shift bookings and
	// transitions, pay runs and finalization.
	mu  sync.Mutex
	now func() time.Time
}

// NewService wires a service. A nil calculator, location or logger gets a
// default.
func NewService(store Store, calc *pay.Calculator, periods shifts.PeriodConfig, loc *time.Location, logger *zap.Logger) *Service {
	if calc == nil {
		calc = pay.NewCalculator()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Store:      store,
		Calculator: calc,
		Periods:    periods,
		Location:   loc,
		Logger:     logger,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Used by tests and demo scenarios.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Today is the current date in the service's location.
func (s *Service) Today() shifts.Date {
	return shifts.DateOf(s.now().In(s.Location))
}

// Calendar loads the holiday calendar.
func (s *Service) Calendar(ctx context.Context) (*shifts.HolidaySet, error) {
	holidays, err := s.Store.ListHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading holidays: %w", err)
	}
	return shifts.NewHolidaySet(holidays), nil
}

// =============================================================================
// NURSES AND FAMILIES
// =============================================================================

// SaveNurse validates and stores a nurse, keeping the original CreatedAt on
// updates.
func (s *Service) SaveNurse(ctx context.Context, n Nurse) (Nurse, error) {
	if err := n.Validate(); err != nil {
		return Nurse{}, err
	}
	existing, err := s.Store.GetNurse(ctx, n.ID)
	switch {
	case err == nil:
		n.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNurseNotFound):
		n.CreatedAt = s.now().UTC()
	default:
		return Nurse{}, err
	}
	if err := s.Store.SaveNurse(ctx, n); err != nil {
		return Nurse{}, fmt.Errorf("saving nurse: %w", err)
	}
	return n, nil
}

// SaveFamily stores a family, generating an ID when missing.
func (s *Service) SaveFamily(ctx context.Context, f Family) (Family, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now().UTC()
	}
	if err := s.Store.SaveFamily(ctx, f); err != nil {
		return Family{}, fmt.Errorf("saving family: %w", err)
	}
	return f, nil
}

// =============================================================================
// SHIFT WORKFLOW
// =============================================================================

// ScheduleShift books a new shift. The nurse must exist, the shift must not
// overlap another live shift of the same nurse, and a shift may not be
// booked into a finalized period. Shifts for a twins family default to
// twins care.
func (s *Service) ScheduleShift(ctx context.Context, sh shifts.Shift) (shifts.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stored times have whole-second precision.
	sh.Start = sh.Start.Truncate(time.Second)
	sh.End = sh.End.Truncate(time.Second)
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	if sh.Status == "" {
		sh.Status = shifts.StatusScheduled
	}
	if err := sh.Validate(); err != nil {
		return shifts.Shift{}, err
	}
	if _, err := s.Store.GetNurse(ctx, sh.NurseID); err != nil {
		return shifts.Shift{}, err
	}
	if sh.FamilyID != "" {
		fam, err := s.Store.GetFamily(ctx, sh.FamilyID)
		if err != nil {
			return shifts.Shift{}, err
		}
		sh.Twins = sh.Twins || fam.Twins
	}

	existing, err := s.Store.ListShifts(ctx, ShiftFilter{NurseID: sh.NurseID, From: sh.Start, To: sh.End})
	if err != nil {
		return shifts.Shift{}, err
	}
	for _, other := range existing {
		if other.ID != sh.ID && other.Status != shifts.StatusCancelled && other.Overlaps(sh) {
			return shifts.Shift{}, fmt.Errorf("%w: %s", ErrShiftOverlap, other.ID)
		}
	}
	if err := s.ensureOpen(ctx, sh); err != nil {
		return shifts.Shift{}, err
	}

	sh.CreatedAt = s.now().UTC().Truncate(time.Second)
	if err := s.Store.SaveShift(ctx, sh); err != nil {
		return shifts.Shift{}, fmt.Errorf("saving shift: %w", err)
	}
	return sh, nil
}

// CompleteShift marks a scheduled shift as worked.
func (s *Service) CompleteShift(ctx context.Context, id string) (shifts.Shift, error) {
	return s.transition(ctx, id, shifts.StatusCompleted)
}

// CancelShift cancels a scheduled shift.
func (s *Service) CancelShift(ctx context.Context, id string) (shifts.Shift, error) {
	return s.transition(ctx, id, shifts.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id string, to shifts.Status) (shifts.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, err := s.Store.GetShift(ctx, id)
	if err != nil {
		return shifts.Shift{}, err
	}
	next, err := sh.Transition(to)
	if err != nil {
		return shifts.Shift{}, err
	}
	if err := s.ensureOpen(ctx, next); err != nil {
		return shifts.Shift{}, err
	}
	if err := s.Store.SaveShift(ctx, next); err != nil {
		return shifts.Shift{}, fmt.Errorf("saving shift: %w", err)
	}
	return next, nil
}

// ensureOpen rejects changes to shifts touching a finalized pay period.
func (s *Service) ensureOpen(ctx context.Context, sh shifts.Shift) error {
	first := s.Periods.PeriodFor(shifts.DateOf(sh.Start.In(s.Location)))
	last := s.Periods.PeriodFor(shifts.DateOf(sh.End.In(s.Location)))
	for p := first; !p.Start.After(last.Start); p = s.Periods.Next(p) {
		run, err := s.Store.GetRunByPeriod(ctx, p)
		if errors.Is(err, ErrRunNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if run.Status == RunFinalized {
			return fmt.Errorf("%w: period %s", ErrRunFinalized, p)
		}
	}
	return nil
}

// =============================================================================
// PAY RUNS
// =============================================================================

// Preview computes a nurse's payslip for the period containing date without
// saving anything.
func (s *Service) Preview(ctx context.Context, nurseID string, date shifts.Date) (Payslip, error) {
	nurse, err := s.Store.GetNurse(ctx, nurseID)
	if err != nil {
		return Payslip{}, err
	}
	cal, err := s.Calendar(ctx)
	if err != nil {
		return Payslip{}, err
	}
	return s.payslipFor(ctx, nurse, s.Periods.PeriodFor(date), cal)
}

// RunPeriod computes payroll for the period containing date. Running a draft
// period again replaces its payslips; a finalized period returns
// ErrRunFinalized.
func (s *Service) RunPeriod(ctx context.Context, date shifts.Date) (Run, []Payslip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	period := s.Periods.PeriodFor(date)
	run, slips, err := s.runPeriod(ctx, period)
	if errors.Is(err, ErrRunExists) {
		// Another writer created the period's run first; recompute onto it.
		run, slips, err = s.runPeriod(ctx, period)
	}
	if err != nil {
		return Run{}, nil, err
	}

	s.Logger.Info("pay run computed",
		zap.String("run_id", run.ID),
		zap.Stringer("period", period),
		zap.Int("nurses", run.NurseCount),
		zap.String("gross", run.Gross.StringFixed(2)),
		zap.String("net", run.Net.StringFixed(2)),
	)
	return run, slips, nil
}

func (s *Service) runPeriod(ctx context.Context, period shifts.PayPeriod) (Run, []Payslip, error) {
	run := Run{Status: RunDraft, Period: period}
	existing, err := s.Store.GetRunByPeriod(ctx, period)
	switch {
	case err == nil:
		if existing.Status == RunFinalized {
			return Run{}, nil, fmt.Errorf("%w: period %s", ErrRunFinalized, period)
		}
		run.ID = existing.ID
		run.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrRunNotFound):
		run.ID = uuid.NewString()
		run.CreatedAt = s.now().UTC()
	default:
		return Run{}, nil, err
	}

	nurses, err := s.Store.ListNurses(ctx)
	if err != nil {
		return Run{}, nil, fmt.Errorf("listing nurses: %w", err)
	}
	cal, err := s.Calendar(ctx)
	if err != nil {
		return Run{}, nil, err
	}

	run.Gross, run.Deductions, run.Net = decimal.Zero, decimal.Zero, decimal.Zero
	var slips []Payslip
	for _, n := range nurses {
		if !n.Active {
			continue
		}
		slip, err := s.payslipFor(ctx, n, period, cal)
		if err != nil {
			return Run{}, nil, err
		}
		slip.RunID = run.ID
		slips = append(slips, slip)

		run.Gross = run.Gross.Add(slip.Output.GrossPay)
		run.Deductions = run.Deductions.Add(slip.Output.Deductions)
		run.Net = run.Net.Add(slip.Output.NetPay)
	}
	run.NurseCount = len(slips)

	// The store refuses the write if the run was finalized meanwhile.
	if err := s.Store.SaveRun(ctx, run, slips); err != nil {
		return Run{}, nil, fmt.Errorf("saving pay run for %s: %w", period, err)
	}
	return run, slips, nil
}

// Finalize locks a draft run. Finalizing twice is a conflict.
func (s *Service) Finalize(ctx context.Context, runID string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.Store.GetRun(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	if run.Status == RunFinalized {
		return Run{}, fmt.Errorf("%w: %s", ErrRunFinalized, runID)
	}
	at := s.now().UTC()
	run.Status = RunFinalized
	run.FinalizedAt = &at
	if err := s.Store.FinalizeRun(ctx, run); err != nil {
		return Run{}, fmt.Errorf("finalizing pay run: %w", err)
	}
	s.Logger.Info("pay run finalized", zap.String("run_id", run.ID), zap.Stringer("period", run.Period))
	return run, nil
}

// DuePeriod returns the most recent fully elapsed period when it has no run
// yet.
func (s *Service) DuePeriod(ctx context.Context, today shifts.Date) (shifts.PayPeriod, bool, error) {
	last := s.Periods.Previous(s.Periods.PeriodFor(today))
	_, err := s.Store.GetRunByPeriod(ctx, last)
	switch {
	case err == nil:
		return last, false, nil
	case errors.Is(err, ErrRunNotFound):
		return last, true, nil
	default:
		return shifts.PayPeriod{}, false, err
	}
}

func (s *Service) payslipFor(ctx context.Context, n Nurse, period shifts.PayPeriod, cal shifts.Calendar) (Payslip, error) {
	list, err := s.Store.ListShifts(ctx, ShiftFilter{
		NurseID: n.ID,
		From:    period.Start.In(s.Location),
		To:      period.End.AddDays(1).In(s.Location),
		Status:  shifts.StatusCompleted,
	})
	if err != nil {
		return Payslip{}, fmt.Errorf("listing shifts for %s: %w", n.ID, err)
	}

	in := pay.PayInput{
		BaseRate:            n.BaseRate,
		Hours:               shifts.Aggregate(list, period, cal, s.Location),
		InsurancePaid:       n.InsurancePaid,
		BackgroundCheckPaid: n.BackgroundCheckPaid,
	}
	out := s.Calculator.Calculate(in)

	slip := Payslip{
		ID:         uuid.NewString(),
		NurseID:    n.ID,
		NurseName:  n.Name,
		Period:     period,
		Input:      in,
		Output:     out,
		Lines:      s.Calculator.Itemize(in),
		Deductions: s.Calculator.Deductions.Applicable(n.InsurancePaid, n.BackgroundCheckPaid),
		ShiftCount: len(list),
		Warnings:   []string{},
		Status:     RunDraft,
		CreatedAt:  s.now().UTC(),
	}
	if !n.BaseRate.IsPositive() {
		slip.Warnings = append(slip.Warnings, WarningInvalidBaseRate)
	}
	if in.Hours.IsZero() {
		slip.Warnings = append(slip.Warnings, WarningNoHours)
	}
	if out.NetPay.IsNegative() {
		slip.Warnings = append(slip.Warnings, WarningNegativeNet)
	}
	sort.Strings(slip.Warnings)
	return slip, nil
}
