/*
handlers.go - HTTP API handlers for nurse payroll

PURPOSE:
  Exposes the pay calculator and the payroll workflow via REST API. Handles
  HTTP request/response, JSON serialization, access checks, and delegates
  to the payroll service.

ENDPOINTS:
  Calculator:
    POST   /api/pay/calculate            Price one period of hours (?strict=true)

  Nurses:
    GET    /api/nurses                   List nurses
    POST   /api/nurses                   Create nurse
    GET    /api/nurses/{id}              Nurse details
    PUT    /api/nurses/{id}              Update nurse
    GET    /api/nurses/{id}/shifts       Shifts (?from&to, RFC3339)
    GET    /api/nurses/{id}/schedule.ics iCalendar feed
    GET    /api/nurses/{id}/payslips     Payslip history
    GET    /api/nurses/{id}/preview      Unsaved payslip (?date=YYYY-MM-DD)

  Shifts:
    GET    /api/shifts                   Filter (?nurse_id&family_id&status&from&to)
    POST   /api/shifts                   Book shift
    POST   /api/shifts/{id}/complete     Mark worked
    POST   /api/shifts/{id}/cancel       Cancel

  Payroll:
    GET    /api/periods/current          Current pay period (?date=)
    GET    /api/payruns                  List runs
    POST   /api/payruns                  Run the period containing date
    GET    /api/payruns/{id}             Run with payslips
    POST   /api/payruns/{id}/finalize    Lock run
    GET    /api/payslips/{id}            Payslip
    GET    /api/payslips/{id}/pdf        Payslip PDF

ACCESS:
  Role checks per route group live in server.go. Handlers add the
  record-level checks: nurses only see their own records and families only
  their own shifts.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Record belongs to someone else
  - 404: Resource not found
  - 409: Conflict (finalized period, overlapping shift, bad transition)
  - 500: Internal errors (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nightwatch/nursepay/auth"
	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/shifts"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *payroll.Service
	Logger  *zap.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler around the payroll service.
func NewHandler(svc *payroll.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: svc, Logger: logger}
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculate prices one period of hours. With ?strict=true invalid input is
// rejected instead of being coerced.
// POST /api/pay/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc := h.Service.Calculator
	in := req.Input()

	var out pay.PayOutput
	if strict, _ := strconv.ParseBool(r.URL.Query().Get("strict")); strict {
		var err error
		if out, err = calc.CalculateStrict(in); err != nil {
			h.fail(w, err, "Invalid pay input")
			return
		}
	} else {
		out = calc.Calculate(in)
	}

	writeJSON(w, http.StatusOK, CalculateResponse{
		Input:      in,
		Output:     out,
		Lines:      calc.Itemize(in),
		Deductions: calc.Deductions.Applicable(in.InsurancePaid, in.BackgroundCheckPaid),
		Display:    displayAmounts(out),
	})
}

// =============================================================================
// NURSE HANDLERS
// =============================================================================

// ListNurses returns all nurses.
func (h *Handler) ListNurses(w http.ResponseWriter, r *http.Request) {
	nurses, err := h.Service.Store.ListNurses(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list nurses")
		return
	}
	writeJSON(w, http.StatusOK, nurses)
}

// CreateNurse adds a nurse.
func (h *Handler) CreateNurse(w http.ResponseWriter, r *http.Request) {
	var req NurseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := h.Service.Store.GetNurse(r.Context(), req.ID); err == nil {
		writeError(w, http.StatusConflict, "Nurse already exists", nil)
		return
	}

	n, err := h.Service.SaveNurse(r.Context(), req.Nurse())
	if err != nil {
		h.fail(w, err, "Failed to create nurse")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// GetNurse returns a single nurse.
func (h *Handler) GetNurse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.allowNurse(w, r, id, false) {
		return
	}

	n, err := h.Service.Store.GetNurse(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get nurse")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// UpdateNurse replaces a nurse's details.
func (h *Handler) UpdateNurse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req NurseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = id
	if _, err := h.Service.Store.GetNurse(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to get nurse")
		return
	}

	n, err := h.Service.SaveNurse(r.Context(), req.Nurse())
	if err != nil {
		h.fail(w, err, "Failed to update nurse")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// GetNurseShifts lists a nurse's shifts.
func (h *Handler) GetNurseShifts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.allowNurse(w, r, id, true) {
		return
	}

	filter, err := parseShiftFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	filter.NurseID = id

	list, err := h.Service.Store.ListShifts(r.Context(), filter)
	if err != nil {
		h.fail(w, err, "Failed to list shifts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetNurseSchedule serves the nurse's shifts as an iCalendar feed.
// GET /api/nurses/{id}/schedule.ics
func (h *Handler) GetNurseSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.allowNurse(w, r, id, true) {
		return
	}

	n, err := h.Service.Store.GetNurse(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get nurse")
		return
	}
	list, err := h.Service.Store.ListShifts(r.Context(), payroll.ShiftFilter{NurseID: id})
	if err != nil {
		h.fail(w, err, "Failed to list shifts")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", id+".ics"))
	if err := shifts.WriteICS(w, n.Name+" night shifts", list); err != nil {
		h.Logger.Error("Failed to write calendar", zap.String("nurse_id", id), zap.Error(err))
	}
}

// GetNursePayslips lists a nurse's payslips, most recent first.
func (h *Handler) GetNursePayslips(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.allowNurse(w, r, id, false) {
		return
	}

	slips, err := h.Service.Store.ListPayslipsByNurse(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to list payslips")
		return
	}
	writeJSON(w, http.StatusOK, slips)
}

// PreviewPayslip computes the nurse's payslip for a period without saving.
// GET /api/nurses/{id}/preview?date=YYYY-MM-DD
func (h *Handler) PreviewPayslip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.allowNurse(w, r, id, false) {
		return
	}

	date, err := h.dateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	slip, err := h.Service.Preview(r.Context(), id, date)
	if err != nil {
		h.fail(w, err, "Failed to preview payslip")
		return
	}
	writeJSON(w, http.StatusOK, slip)
}

// =============================================================================
// FAMILY HANDLERS
// =============================================================================

// ListFamilies returns all families.
func (h *Handler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := h.Service.Store.ListFamilies(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list families")
		return
	}
	writeJSON(w, http.StatusOK, families)
}

// CreateFamily adds a family.
func (h *Handler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req FamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	f, err := h.Service.SaveFamily(r.Context(), payroll.Family{
		ID: req.ID, Name: req.Name, Email: req.Email, Twins: req.Twins,
	})
	if err != nil {
		h.fail(w, err, "Failed to create family")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// GetFamily returns a single family.
func (h *Handler) GetFamily(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, _ := auth.FromContext(r.Context())
	if !p.IsAdmin() && !p.Is(auth.RoleFamily, id) {
		writeError(w, http.StatusForbidden, "Not your family record", nil)
		return
	}

	f, err := h.Service.Store.GetFamily(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get family")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts filters shifts. Families only see their own.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseShiftFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	filter.NurseID = r.URL.Query().Get("nurse_id")
	filter.FamilyID = r.URL.Query().Get("family_id")

	if p, _ := auth.FromContext(r.Context()); p.Role == auth.RoleFamily {
		filter.FamilyID = p.Subject
	}

	list, err := h.Service.Store.ListShifts(r.Context(), filter)
	if err != nil {
		h.fail(w, err, "Failed to list shifts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateShift books a shift. A family can only book for itself.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if p, _ := auth.FromContext(r.Context()); p.Role == auth.RoleFamily {
		req.FamilyID = p.Subject
	}

	sh, err := h.Service.ScheduleShift(r.Context(), shifts.Shift{
		NurseID:  req.NurseID,
		FamilyID: req.FamilyID,
		Start:    req.Start,
		End:      req.End,
		Twins:    req.Twins,
		Notes:    req.Notes,
	})
	if err != nil {
		h.fail(w, err, "Failed to book shift")
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

// CompleteShift marks a shift as worked.
// POST /api/shifts/{id}/complete
func (h *Handler) CompleteShift(w http.ResponseWriter, r *http.Request) {
	h.changeShift(w, r, h.Service.CompleteShift)
}

// CancelShift cancels a scheduled shift.
// POST /api/shifts/{id}/cancel
func (h *Handler) CancelShift(w http.ResponseWriter, r *http.Request) {
	h.changeShift(w, r, h.Service.CancelShift)
}

func (h *Handler) changeShift(w http.ResponseWriter, r *http.Request, change func(context.Context, string) (shifts.Shift, error)) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	if p, _ := auth.FromContext(ctx); p.Role == auth.RoleFamily {
		sh, err := h.Service.Store.GetShift(ctx, id)
		if err != nil {
			h.fail(w, err, "Failed to get shift")
			return
		}
		if sh.FamilyID != p.Subject {
			writeError(w, http.StatusForbidden, "Not your shift", nil)
			return
		}
	}

	sh, err := change(ctx, id)
	if err != nil {
		h.fail(w, err, "Failed to update shift")
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.Store.ListHolidays(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to get holidays")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": holidays})
}

// CreateHoliday adds a holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body (date is YYYY-MM-DD)", err)
		return
	}
	if req.Date.IsZero() || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}

	holiday := shifts.Holiday{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Name:      req.Name,
		Recurring: req.Recurring,
	}
	if err := h.Service.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.fail(w, err, "Failed to create holiday")
		return
	}
	writeJSON(w, http.StatusCreated, holiday)
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "Failed to delete holiday")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// AddDefaultHolidays adds the US federal holidays for a year (default: this
// year).
// POST /api/holidays/defaults
func (h *Handler) AddDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	var req DefaultHolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year == 0 {
		req.Year = h.Service.Today().Year()
	}

	defaults := shifts.DefaultHolidays(req.Year)
	for _, hol := range defaults {
		if err := h.Service.Store.SaveHoliday(r.Context(), hol); err != nil {
			h.fail(w, err, "Failed to add holidays")
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "created",
		"count":  len(defaults),
	})
}

// =============================================================================
// PERIOD AND PAY RUN HANDLERS
// =============================================================================

// GetCurrentPeriod returns the pay period containing ?date (default today).
// GET /api/periods/current
func (h *Handler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	pc := h.Service.Periods
	current := pc.PeriodFor(date)
	writeJSON(w, http.StatusOK, PeriodResponse{
		Frequency: pc.Frequency,
		Current:   current,
		Previous:  pc.Previous(current),
		Next:      pc.Next(current),
		Days:      current.Len(),
	})
}

// ListPayRuns returns all runs, most recent first.
func (h *Handler) ListPayRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Service.Store.ListRuns(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list pay runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// CreatePayRun computes (or recomputes) the draft run for a period.
// POST /api/payruns
func (h *Handler) CreatePayRun(w http.ResponseWriter, r *http.Request) {
	var req PayRunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	date, err := h.dateParam(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	run, slips, err := h.Service.RunPeriod(r.Context(), date)
	if err != nil {
		h.fail(w, err, "Failed to run payroll")
		return
	}
	if slips == nil {
		slips = []payroll.Payslip{}
	}
	writeJSON(w, http.StatusCreated, PayRunResponse{Run: run, Payslips: slips})
}

// GetPayRun returns a run with its payslips.
func (h *Handler) GetPayRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	run, err := h.Service.Store.GetRun(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to get pay run")
		return
	}
	slips, err := h.Service.Store.ListPayslipsByRun(ctx, run.ID)
	if err != nil {
		h.fail(w, err, "Failed to list payslips")
		return
	}
	writeJSON(w, http.StatusOK, PayRunResponse{Run: run, Payslips: slips})
}

// FinalizePayRun locks a run.
// POST /api/payruns/{id}/finalize
func (h *Handler) FinalizePayRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.Finalize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to finalize pay run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetPayslip returns one payslip.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.loadPayslip(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, slip)
}

// GetPayslipPDF renders one payslip as PDF.
// GET /api/payslips/{id}/pdf
func (h *Handler) GetPayslipPDF(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.loadPayslip(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("payslip-%s-%s.pdf", slip.NurseID, slip.Period.Start)))
	if err := payroll.RenderPDF(w, slip); err != nil {
		h.Logger.Error("Failed to render payslip PDF", zap.String("payslip_id", slip.ID), zap.Error(err))
	}
}

func (h *Handler) loadPayslip(w http.ResponseWriter, r *http.Request) (payroll.Payslip, bool) {
	slip, err := h.Service.Store.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to get payslip")
		return payroll.Payslip{}, false
	}
	if !h.allowNurse(w, r, slip.NurseID, false) {
		return payroll.Payslip{}, false
	}
	return slip, true
}

// =============================================================================
// HELPERS
// =============================================================================

// allowNurse writes 403 unless the caller is an admin, that same nurse, or
// (when familiesToo) a family.
func (h *Handler) allowNurse(w http.ResponseWriter, r *http.Request, nurseID string, familiesToo bool) bool {
	p, _ := auth.FromContext(r.Context())
	switch {
	case p.IsAdmin(), p.Is(auth.RoleNurse, nurseID):
		return true
	case familiesToo && p.Role == auth.RoleFamily:
		return true
	}
	writeError(w, http.StatusForbidden, "Not your record", nil)
	return false
}

// dateParam parses YYYY-MM-DD; empty means today in the service's timezone.
func (h *Handler) dateParam(s string) (shifts.Date, error) {
	if s == "" {
		return h.Service.Today(), nil
	}
	return shifts.ParseDate(s)
}

func parseShiftFilter(r *http.Request) (payroll.ShiftFilter, error) {
	q := r.URL.Query()
	var f payroll.ShiftFilter
	if s := q.Get("status"); s != "" {
		f.Status = shifts.Status(s)
		if !f.Status.Valid() {
			return f, fmt.Errorf("unknown status %q", s)
		}
	}
	for _, p := range []struct {
		key  string
		dest *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("%s must be RFC3339: %w", p.key, err)
		}
		*p.dest = t
	}
	return f, nil
}

// fail maps domain errors to HTTP statuses. Unexpected errors are logged.
func (h *Handler) fail(w http.ResponseWriter, err error, message string) {
	var verr *pay.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_input", Details: verr.Problems})
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case payroll.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
