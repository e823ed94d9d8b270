// Package memstore provides an in-memory payroll.Store for tests and local
// development.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/shifts"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	nurses   map[string]payroll.Nurse
	families map[string]payroll.Family
	shifts   map[string]shifts.Shift
	holidays map[string]shifts.Holiday
	runs     map[string]payroll.Run
	byPeriod map[shifts.PayPeriod]string
	payslips map[string]payroll.Payslip
}

var _ payroll.Store = (*Memory)(nil)

func New() *Memory {
	m := &Memory{}
	m.init()
	return m
}

func (m *Memory) init() {
	m.nurses = make(map[string]payroll.Nurse)
	m.families = make(map[string]payroll.Family)
	m.shifts = make(map[string]shifts.Shift)
	m.holidays = make(map[string]shifts.Holiday)
	m.runs = make(map[string]payroll.Run)
	m.byPeriod = make(map[shifts.PayPeriod]string)
	m.payslips = make(map[string]payroll.Payslip)
}

// Nurses

func (m *Memory) SaveNurse(_ context.Context, n payroll.Nurse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nurses[n.ID] = n
	return nil
}

func (m *Memory) GetNurse(_ context.Context, id string) (payroll.Nurse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nurses[id]
	if !ok {
		return payroll.Nurse{}, payroll.ErrNurseNotFound
	}
	return n, nil
}

func (m *Memory) ListNurses(_ context.Context) ([]payroll.Nurse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.Nurse, 0, len(m.nurses))
	for _, n := range m.nurses {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Families

func (m *Memory) SaveFamily(_ context.Context, f payroll.Family) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.families[f.ID] = f
	return nil
}

func (m *Memory) GetFamily(_ context.Context, id string) (payroll.Family, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.families[id]
	if !ok {
		return payroll.Family{}, payroll.ErrFamilyNotFound
	}
	return f, nil
}

func (m *Memory) ListFamilies(_ context.Context) ([]payroll.Family, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.Family, 0, len(m.families))
	for _, f := range m.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Shifts

func (m *Memory) SaveShift(_ context.Context, s shifts.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s
	return nil
}

func (m *Memory) GetShift(_ context.Context, id string) (shifts.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	if !ok {
		return shifts.Shift{}, shifts.ErrShiftNotFound
	}
	return s, nil
}

func (m *Memory) ListShifts(_ context.Context, f payroll.ShiftFilter) ([]shifts.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []shifts.Shift
	for _, s := range m.shifts {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Holidays

func (m *Memory) SaveHoliday(_ context.Context, h shifts.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return payroll.ErrHolidayNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]shifts.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]shifts.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Runs and payslips

// SaveRun replaces the run's payslips in one step. Finalized runs and
// periods held by another run are left untouched.
func (m *Memory) SaveRun(_ context.Context, run payroll.Run, slips []payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.runs[run.ID]; ok && stored.Status == payroll.RunFinalized {
		return payroll.ErrRunFinalized
	}
	if id, ok := m.byPeriod[run.Period]; ok && id != run.ID {
		if m.runs[id].Status == payroll.RunFinalized {
			return payroll.ErrRunFinalized
		}
		return payroll.ErrRunExists
	}

	for id, p := range m.payslips {
		if p.RunID == run.ID {
			delete(m.payslips, id)
		}
	}
	for _, p := range slips {
		m.payslips[p.ID] = p
	}
	m.runs[run.ID] = run
	m.byPeriod[run.Period] = run.ID
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (payroll.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return r, nil
}

func (m *Memory) GetRunByPeriod(_ context.Context, p shifts.PayPeriod) (payroll.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPeriod[p]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return m.runs[id], nil
}

func (m *Memory) ListRuns(_ context.Context) ([]payroll.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Start.After(out[j].Period.Start) })
	return out, nil
}

func (m *Memory) FinalizeRun(_ context.Context, run payroll.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.runs[run.ID]
	if !ok {
		return payroll.ErrRunNotFound
	}
	if stored.Status == payroll.RunFinalized {
		return payroll.ErrRunFinalized
	}
	m.runs[run.ID] = run
	for id, p := range m.payslips {
		if p.RunID == run.ID {
			p.Status = run.Status
			m.payslips[id] = p
		}
	}
	return nil
}

func (m *Memory) GetPayslip(_ context.Context, id string) (payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (m *Memory) ListPayslipsByRun(_ context.Context, runID string) ([]payroll.Payslip, error) {
	return m.listPayslips(func(p payroll.Payslip) bool { return p.RunID == runID }), nil
}

func (m *Memory) ListPayslipsByNurse(_ context.Context, nurseID string) ([]payroll.Payslip, error) {
	return m.listPayslips(func(p payroll.Payslip) bool { return p.NurseID == nurseID }), nil
}

func (m *Memory) listPayslips(keep func(payroll.Payslip) bool) []payroll.Payslip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.Payslip
	for _, p := range m.payslips {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Period.Start.Equal(out[j].Period.Start) {
			return out[i].Period.Start.After(out[j].Period.Start)
		}
		return out[i].NurseName < out[j].NurseName
	})
	return out
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	return nil
}
