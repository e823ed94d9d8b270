/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Persists nurses, families, shifts, holidays, pay runs and payslips. The
  same schema ports to PostgreSQL with minor dialect changes.

KEY TABLES:
  nurses:    caregivers and their base rate (decimal as TEXT)
  families:  client households
  shifts:    bookings, start/end as RFC3339 UTC text so they sort
  holidays:  calendar entries, recurring ones match every year
  pay_runs:  one row per pay period (unique on the period)
  payslips:  one row per nurse per run, amounts kept as JSON documents

INDEXES:
  - idx_shifts_nurse_start: per-nurse range scans (overlap checks, runs)
  - idx_pay_runs_period: enforces one run per period
  - idx_payslips_run_nurse: enforces one payslip per nurse per run

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In-memory databases are pinned to a
  single connection because every sqlite connection to ":memory:" opens a
  fresh database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block and
  a single writer at a time.

USAGE:
  store, err := sqlite.New("./data/nursepay.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := payroll.NewService(store, calc, periods, loc, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - payroll/store.go: Interface definition
  - payroll/memstore: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/shifts"
)

const timeLayout = time.RFC3339

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nurses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		base_rate TEXT NOT NULL,
		insurance_paid INTEGER NOT NULL DEFAULT 0,
		background_check_paid INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS families (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		twins INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		nurse_id TEXT NOT NULL REFERENCES nurses(id),
		family_id TEXT NOT NULL DEFAULT '',
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		twins INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_nurse_start
		ON shifts(nurse_id, start_at);
	CREATE INDEX IF NOT EXISTS idx_shifts_family
		ON shifts(family_id);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS pay_runs (
		id TEXT PRIMARY KEY,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL,
		nurse_count INTEGER NOT NULL DEFAULT 0,
		gross TEXT NOT NULL,
		deductions TEXT NOT NULL,
		net TEXT NOT NULL,
		created_at TEXT NOT NULL,
		finalized_at TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_pay_runs_period
		ON pay_runs(period_start, period_end);

	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES pay_runs(id) ON DELETE CASCADE,
		nurse_id TEXT NOT NULL,
		nurse_name TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		input_json TEXT NOT NULL,
		output_json TEXT NOT NULL,
		lines_json TEXT NOT NULL,
		deductions_json TEXT NOT NULL,
		warnings_json TEXT NOT NULL,
		shift_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_payslips_run_nurse
		ON payslips(run_id, nurse_id);
	CREATE INDEX IF NOT EXISTS idx_payslips_nurse
		ON payslips(nurse_id, period_start);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// NURSES AND FAMILIES
// =============================================================================

func (s *Store) SaveNurse(ctx context.Context, n payroll.Nurse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO nurses (id, name, email, base_rate, insurance_paid, background_check_paid, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			base_rate = excluded.base_rate,
			insurance_paid = excluded.insurance_paid,
			background_check_paid = excluded.background_check_paid,
			active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.Name, n.Email, n.BaseRate.String(),
		n.InsurancePaid, n.BackgroundCheckPaid, n.Active,
		formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save nurse: %w", err)
	}
	return nil
}

const nurseColumns = "id, name, email, base_rate, insurance_paid, background_check_paid, active, created_at"

// GetNurse retrieves a nurse by ID.
func (s *Store) GetNurse(ctx context.Context, id string) (payroll.Nurse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+nurseColumns+" FROM nurses WHERE id = ?", id)
	n, err := scanNurse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Nurse{}, payroll.ErrNurseNotFound
	}
	return n, err
}

// ListNurses returns all nurses ordered by name.
func (s *Store) ListNurses(ctx context.Context) ([]payroll.Nurse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+nurseColumns+" FROM nurses ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nurses := []payroll.Nurse{}
	for rows.Next() {
		n, err := scanNurse(rows)
		if err != nil {
			return nil, err
		}
		nurses = append(nurses, n)
	}
	return nurses, rows.Err()
}

func (s *Store) SaveFamily(ctx context.Context, f payroll.Family) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO families (id, name, email, twins, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			twins = excluded.twins
	`
	_, err := s.db.ExecContext(ctx, query, f.ID, f.Name, f.Email, f.Twins, formatTime(f.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save family: %w", err)
	}
	return nil
}

// GetFamily retrieves a family by ID.
func (s *Store) GetFamily(ctx context.Context, id string) (payroll.Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var f payroll.Family
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, twins, created_at FROM families WHERE id = ?", id,
	).Scan(&f.ID, &f.Name, &f.Email, &f.Twins, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Family{}, payroll.ErrFamilyNotFound
	}
	if err != nil {
		return payroll.Family{}, err
	}
	f.CreatedAt = parseTime(createdAt)
	return f, nil
}

// ListFamilies returns all families ordered by name.
func (s *Store) ListFamilies(ctx context.Context) ([]payroll.Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, twins, created_at FROM families ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	families := []payroll.Family{}
	for rows.Next() {
		var f payroll.Family
		var createdAt string
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Twins, &createdAt); err != nil {
			return nil, err
		}
		f.CreatedAt = parseTime(createdAt)
		families = append(families, f)
	}
	return families, rows.Err()
}

// =============================================================================
// SHIFTS
// =============================================================================

func (s *Store) SaveShift(ctx context.Context, sh shifts.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO shifts (id, nurse_id, family_id, start_at, end_at, twins, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nurse_id = excluded.nurse_id,
			family_id = excluded.family_id,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			twins = excluded.twins,
			status = excluded.status,
			notes = excluded.notes
	`
	_, err := s.db.ExecContext(ctx, query,
		sh.ID, sh.NurseID, sh.FamilyID,
		formatTime(sh.Start), formatTime(sh.End),
		sh.Twins, string(sh.Status), sh.Notes,
		formatTime(sh.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

const shiftColumns = "id, nurse_id, family_id, start_at, end_at, twins, status, notes, created_at"

// GetShift retrieves a shift by ID.
func (s *Store) GetShift(ctx context.Context, id string) (shifts.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+shiftColumns+" FROM shifts WHERE id = ?", id)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shifts.Shift{}, shifts.ErrShiftNotFound
	}
	return sh, err
}

// ListShifts returns shifts matching the filter, ordered by start.
func (s *Store) ListShifts(ctx context.Context, f payroll.ShiftFilter) ([]shifts.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if f.NurseID != "" {
		where = append(where, "nurse_id = ?")
		args = append(args, f.NurseID)
	}
	if f.FamilyID != "" {
		where = append(where, "family_id = ?")
		args = append(args, f.FamilyID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.To.IsZero() {
		where = append(where, "start_at < ?")
		args = append(args, formatTime(f.To))
	}
	if !f.From.IsZero() {
		where = append(where, "end_at > ?")
		args = append(args, formatTime(f.From))
	}

	query := "SELECT " + shiftColumns + " FROM shifts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []shifts.Shift{}
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, sh)
	}
	return list, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h shifts.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			recurring = excluded.recurring
	`
	_, err := s.db.ExecContext(ctx, query, h.ID, h.Date.String(), h.Name, h.Recurring)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// DeleteHoliday removes a holiday.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrHolidayNotFound
	}
	return nil
}

// ListHolidays returns all holidays ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]shifts.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, name, recurring FROM holidays ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []shifts.Holiday{}
	for rows.Next() {
		var h shifts.Holiday
		var date string
		if err := rows.Scan(&h.ID, &date, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		if h.Date, err = shifts.ParseDate(date); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// PAY RUNS
// =============================================================================

// SaveRun upserts a draft run and replaces its payslips in one transaction.
// A finalized run is never overwritten.
func (s *Store) SaveRun(ctx context.Context, run payroll.Run, slips []payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var heldBy, status string
	err = tx.QueryRowContext(ctx,
		"SELECT id, status FROM pay_runs WHERE period_start = ? AND period_end = ?",
		run.Period.Start.String(), run.Period.End.String(),
	).Scan(&heldBy, &status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to check pay run period: %w", err)
	case status == string(payroll.RunFinalized):
		return payroll.ErrRunFinalized
	case heldBy != run.ID:
		return payroll.ErrRunExists
	}

	query := `
		INSERT INTO pay_runs (id, period_start, period_end, status, nurse_count, gross, deductions, net, created_at, finalized_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			nurse_count = excluded.nurse_count,
			gross = excluded.gross,
			deductions = excluded.deductions,
			net = excluded.net,
			finalized_at = excluded.finalized_at
		WHERE pay_runs.status <> 'finalized'
	`
	res, err := tx.ExecContext(ctx, query,
		run.ID, run.Period.Start.String(), run.Period.End.String(), string(run.Status), run.NurseCount,
		run.Gross.String(), run.Deductions.String(), run.Net.String(),
		formatTime(run.CreatedAt), nullTime(run.FinalizedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.ErrRunExists
		}
		return fmt.Errorf("failed to save pay run: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return payroll.ErrRunFinalized
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM payslips WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("failed to clear payslips: %w", err)
	}
	for _, p := range slips {
		if err := insertPayslip(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

const runColumns = "id, period_start, period_end, status, nurse_count, gross, deductions, net, created_at, finalized_at"

// GetRun retrieves a pay run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM pay_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return run, err
}

// GetRunByPeriod retrieves the run for exactly this period.
func (s *Store) GetRunByPeriod(ctx context.Context, p shifts.PayPeriod) (payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM pay_runs WHERE period_start = ? AND period_end = ?",
		p.Start.String(), p.End.String(),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return run, err
}

// ListRuns returns all runs, most recent period first.
func (s *Store) ListRuns(ctx context.Context) ([]payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM pay_runs ORDER BY period_start DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []payroll.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FinalizeRun marks the run and its payslips finalized.
func (s *Store) FinalizeRun(ctx context.Context, run payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE pay_runs SET status = ?, finalized_at = ? WHERE id = ? AND status <> 'finalized'",
		string(run.Status), nullTime(run.FinalizedAt), run.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM pay_runs WHERE id = ?", run.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.ErrRunNotFound
		}
		if err != nil {
			return err
		}
		return payroll.ErrRunFinalized
	}
	if _, err := tx.ExecContext(ctx, "UPDATE payslips SET status = ? WHERE run_id = ?", string(run.Status), run.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func insertPayslip(ctx context.Context, db execer, p payroll.Payslip) error {
	input, err := json.Marshal(p.Input)
	if err != nil {
		return err
	}
	output, err := json.Marshal(p.Output)
	if err != nil {
		return err
	}
	lines, err := json.Marshal(p.Lines)
	if err != nil {
		return err
	}
	deductions, err := json.Marshal(p.Deductions)
	if err != nil {
		return err
	}
	warnings, err := json.Marshal(p.Warnings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payslips
		(id, run_id, nurse_id, nurse_name, period_start, period_end,
		 input_json, output_json, lines_json, deductions_json, warnings_json,
		 shift_count, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		p.ID, p.RunID, p.NurseID, p.NurseName,
		p.Period.Start.String(), p.Period.End.String(),
		string(input), string(output), string(lines), string(deductions), string(warnings),
		p.ShiftCount, string(p.Status), formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save payslip: %w", err)
	}
	return nil
}

const payslipColumns = `id, run_id, nurse_id, nurse_name, period_start, period_end,
	input_json, output_json, lines_json, deductions_json, warnings_json,
	shift_count, status, created_at`

// GetPayslip retrieves a payslip by ID.
func (s *Store) GetPayslip(ctx context.Context, id string) (payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+payslipColumns+" FROM payslips WHERE id = ?", id)
	p, err := scanPayslip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, err
}

// ListPayslipsByRun returns a run's payslips ordered by nurse name.
func (s *Store) ListPayslipsByRun(ctx context.Context, runID string) ([]payroll.Payslip, error) {
	return s.queryPayslips(ctx,
		"SELECT "+payslipColumns+" FROM payslips WHERE run_id = ? ORDER BY nurse_name", runID)
}

// ListPayslipsByNurse returns a nurse's payslips, most recent period first.
func (s *Store) ListPayslipsByNurse(ctx context.Context, nurseID string) ([]payroll.Payslip, error) {
	return s.queryPayslips(ctx,
		"SELECT "+payslipColumns+" FROM payslips WHERE nurse_id = ? ORDER BY period_start DESC", nurseID)
}

func (s *Store) queryPayslips(ctx context.Context, query string, args ...any) ([]payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slips := []payroll.Payslip{}
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		slips = append(slips, p)
	}
	return slips, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payslips", "pay_runs", "shifts", "holidays", "families", "nurses"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNurse(row scanner) (payroll.Nurse, error) {
	var n payroll.Nurse
	var rate, createdAt string
	if err := row.Scan(&n.ID, &n.Name, &n.Email, &rate, &n.InsurancePaid, &n.BackgroundCheckPaid, &n.Active, &createdAt); err != nil {
		return payroll.Nurse{}, err
	}
	n.BaseRate = parseDecimal(rate)
	n.CreatedAt = parseTime(createdAt)
	return n, nil
}

func scanShift(row scanner) (shifts.Shift, error) {
	var sh shifts.Shift
	var start, end, status, createdAt string
	if err := row.Scan(&sh.ID, &sh.NurseID, &sh.FamilyID, &start, &end, &sh.Twins, &status, &sh.Notes, &createdAt); err != nil {
		return shifts.Shift{}, err
	}
	sh.Start = parseTime(start)
	sh.End = parseTime(end)
	sh.Status = shifts.Status(status)
	sh.CreatedAt = parseTime(createdAt)
	return sh, nil
}

func scanRun(row scanner) (payroll.Run, error) {
	var r payroll.Run
	var start, end, status, gross, deductions, net, createdAt string
	var finalizedAt sql.NullString
	err := row.Scan(&r.ID, &start, &end, &status, &r.NurseCount, &gross, &deductions, &net, &createdAt, &finalizedAt)
	if err != nil {
		return payroll.Run{}, err
	}
	if r.Period, err = parsePeriod(start, end); err != nil {
		return payroll.Run{}, err
	}
	r.Status = payroll.RunStatus(status)
	r.Gross = parseDecimal(gross)
	r.Deductions = parseDecimal(deductions)
	r.Net = parseDecimal(net)
	r.CreatedAt = parseTime(createdAt)
	if finalizedAt.Valid {
		t := parseTime(finalizedAt.String)
		r.FinalizedAt = &t
	}
	return r, nil
}

func scanPayslip(row scanner) (payroll.Payslip, error) {
	var p payroll.Payslip
	var start, end, input, output, lines, deductions, warnings, status, createdAt string
	err := row.Scan(&p.ID, &p.RunID, &p.NurseID, &p.NurseName, &start, &end,
		&input, &output, &lines, &deductions, &warnings,
		&p.ShiftCount, &status, &createdAt)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if p.Period, err = parsePeriod(start, end); err != nil {
		return payroll.Payslip{}, err
	}
	docs := []struct {
		raw  string
		dest any
	}{
		{input, &p.Input},
		{output, &p.Output},
		{lines, &p.Lines},
		{deductions, &p.Deductions},
		{warnings, &p.Warnings},
	}
	for _, d := range docs {
		if err := json.Unmarshal([]byte(d.raw), d.dest); err != nil {
			return payroll.Payslip{}, fmt.Errorf("decoding payslip %s: %w", p.ID, err)
		}
	}
	p.Status = payroll.RunStatus(status)
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// Helper functions

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parsePeriod(start, end string) (shifts.PayPeriod, error) {
	s, err := shifts.ParseDate(start)
	if err != nil {
		return shifts.PayPeriod{}, err
	}
	e, err := shifts.ParseDate(end)
	if err != nil {
		return shifts.PayPeriod{}, err
	}
	return shifts.PayPeriod{Start: s, End: e}, nil
}
