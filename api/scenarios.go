/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos of the mobile app. Shifts are placed relative to today so
	the previous pay period always has worked nights to run payroll on.

AVAILABLE SCENARIOS:

	agency-basics:   Two nurses, a twins family and a single-child family
	holiday-night:   A night shift running into a holiday
	negative-net:    A new nurse whose fees exceed the first period's pay
	finalized-run:   agency-basics with the previous period already finalized

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create nurses, families and holidays
 3. Book night shifts and mark past ones completed
 4. Optionally run and finalize payroll

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "agency-basics"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Endpoint implementations
  - payroll/service.go: Shift workflow and pay runs
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/shifts"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "agency-basics",
		Name:        "Agency Basics",
		Description: "Two nurses, a twins family and a single-child family with a worked pay period",
	},
	{
		ID:          "holiday-night",
		Name:        "Holiday Night",
		Description: "A night shift that starts the evening before a holiday",
	},
	{
		ID:          "negative-net",
		Name:        "Negative Net",
		Description: "A new nurse whose insurance and background check exceed the first period's pay",
	},
	{
		ID:          "finalized-run",
		Name:        "Finalized Run",
		Description: "Agency basics with payroll for the previous period already finalized",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
			return
		}
		h.fail(w, err, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Store.Reset(r.Context()); err != nil {
		h.fail(w, err, "Failed to reset database")
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	loaders := map[string]func(context.Context) error{
		"agency-basics": h.loadAgencyBasicsScenario,
		"holiday-night": h.loadHolidayNightScenario,
		"negative-net":  h.loadNegativeNetScenario,
		"finalized-run": h.loadFinalizedRunScenario,
	}
	load, ok := loaders[id]
	if !ok {
		return errUnknownScenario
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Service.Store.Reset(ctx); err != nil {
		return err
	}
	h.currentScenario = ""
	if err := load(ctx); err != nil {
		return err
	}
	h.currentScenario = id
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadAgencyBasicsScenario(ctx context.Context) error {
	svc := h.Service
	today := svc.Today()
	for _, hol := range shifts.DefaultHolidays(today.Year()) {
		if err := svc.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}

	if err := h.addNurse(ctx, "nurse-maria", "Maria Santos", "28", true, true); err != nil {
		return err
	}
	if err := h.addNurse(ctx, "nurse-james", "James Okafor", "30", true, false); err != nil {
		return err
	}
	johnson, err := svc.SaveFamily(ctx, payroll.Family{ID: "family-johnson", Name: "Johnson Family", Email: "johnson@example.com", Twins: true})
	if err != nil {
		return err
	}
	patel, err := svc.SaveFamily(ctx, payroll.Family{ID: "family-patel", Name: "Patel Family", Email: "patel@example.com"})
	if err != nil {
		return err
	}

	// Maria covers the twins every night of the previous period's first
	// week; James covers the Patels on alternate nights.
	previous := svc.Periods.Previous(svc.Periods.PeriodFor(today))
	for i, day := range previous.Days() {
		if i < 7 {
			if err := h.workNight(ctx, "nurse-maria", johnson.ID, day, 8); err != nil {
				return err
			}
		}
		if i%2 == 0 {
			if err := h.workNight(ctx, "nurse-james", patel.ID, day, 10); err != nil {
				return err
			}
		}
	}

	// Upcoming bookings stay scheduled.
	for i := 0; i < 3; i++ {
		if _, err := h.bookNight(ctx, "nurse-maria", johnson.ID, today.AddDays(i), 8); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadHolidayNightScenario(ctx context.Context) error {
	svc := h.Service
	previous := svc.Periods.Previous(svc.Periods.PeriodFor(svc.Today()))
	holiday := previous.Start.AddDays(3)

	if err := svc.Store.SaveHoliday(ctx, shifts.Holiday{
		ID:   "holiday-" + holiday.String(),
		Date: holiday,
		Name: "Agency Appreciation Day",
	}); err != nil {
		return err
	}
	if err := h.addNurse(ctx, "nurse-aisha", "Aisha Rahman", "32", true, true); err != nil {
		return err
	}
	fam, err := svc.SaveFamily(ctx, payroll.Family{ID: "family-chen", Name: "Chen Family"})
	if err != nil {
		return err
	}

	// 22:00 the evening before through 08:00 on the holiday.
	return h.workNight(ctx, "nurse-aisha", fam.ID, holiday.AddDays(-1), 10)
}

func (h *Handler) loadNegativeNetScenario(ctx context.Context) error {
	svc := h.Service
	previous := svc.Periods.Previous(svc.Periods.PeriodFor(svc.Today()))

	if err := h.addNurse(ctx, "nurse-lena", "Lena Park", "25", true, true); err != nil {
		return err
	}
	fam, err := svc.SaveFamily(ctx, payroll.Family{ID: "family-garcia", Name: "Garcia Family"})
	if err != nil {
		return err
	}
	// One four-hour evening: 100 gross against 155 in fees.
	start := time.Date(previous.Start.Year(), previous.Start.Month(), previous.Start.Day()+1, 18, 0, 0, 0, svc.Location)
	return h.completeShift(ctx, shifts.Shift{NurseID: "nurse-lena", FamilyID: fam.ID, Start: start, End: start.Add(4 * time.Hour)})
}

func (h *Handler) loadFinalizedRunScenario(ctx context.Context) error {
	if err := h.loadAgencyBasicsScenario(ctx); err != nil {
		return err
	}
	svc := h.Service
	previous := svc.Periods.Previous(svc.Periods.PeriodFor(svc.Today()))
	run, _, err := svc.RunPeriod(ctx, previous.Start)
	if err != nil {
		return err
	}
	_, err = svc.Finalize(ctx, run.ID)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) addNurse(ctx context.Context, id, name, rate string, insurance, background bool) error {
	_, err := h.Service.SaveNurse(ctx, payroll.Nurse{
		ID:                  id,
		Name:                name,
		Email:               id + "@example.com",
		BaseRate:            decimal.RequireFromString(rate),
		InsurancePaid:       insurance,
		BackgroundCheckPaid: background,
		Active:              true,
	})
	return err
}

// bookNight schedules a shift starting at 22:00 local time on day.
func (h *Handler) bookNight(ctx context.Context, nurseID, familyID string, day shifts.Date, hours int) (shifts.Shift, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 22, 0, 0, 0, h.Service.Location)
	return h.Service.ScheduleShift(ctx, shifts.Shift{
		NurseID:  nurseID,
		FamilyID: familyID,
		Start:    start,
		End:      start.Add(time.Duration(hours) * time.Hour),
	})
}

func (h *Handler) workNight(ctx context.Context, nurseID, familyID string, day shifts.Date, hours int) error {
	sh, err := h.bookNight(ctx, nurseID, familyID, day, hours)
	if err != nil {
		return err
	}
	_, err = h.Service.CompleteShift(ctx, sh.ID)
	return err
}

func (h *Handler) completeShift(ctx context.Context, sh shifts.Shift) error {
	booked, err := h.Service.ScheduleShift(ctx, sh)
	if err != nil {
		return err
	}
	_, err = h.Service.CompleteShift(ctx, booked.ID)
	return err
}
