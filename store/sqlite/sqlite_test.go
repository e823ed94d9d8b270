package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/shifts"
	"github.com/nightwatch/nursepay/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestService(t *testing.T) (*payroll.Service, *sqlite.Store) {
	store := newTestStore(t)
	svc := payroll.NewService(store, nil, shifts.DefaultPeriodConfig(), time.UTC, nil)
	svc.SetClock(func() time.Time { return time.Date(2025, 1, 22, 9, 0, 0, 0, time.UTC) })
	return svc, store
}

func seedNurse(t *testing.T, store *sqlite.Store, id, name string) payroll.Nurse {
	n := payroll.Nurse{
		ID:                  id,
		Name:                name,
		Email:               id + "@example.com",
		BaseRate:            decimal.RequireFromString("28.50"),
		InsurancePaid:       true,
		BackgroundCheckPaid: false,
		Active:              true,
		CreatedAt:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveNurse(context.Background(), n))
	return n
}

// =============================================================================
// RECORD TESTS
// =============================================================================

func TestStore_Nurses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedNurse(t, store, "n2", "Zoe")
	want := seedNurse(t, store, "n1", "Ana")

	got, err := store.GetNurse(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.True(t, want.BaseRate.Equal(got.BaseRate))
	assert.True(t, got.InsurancePaid)
	assert.False(t, got.BackgroundCheckPaid)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	list, err := store.ListNurses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].Name)

	_, err = store.GetNurse(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrNurseNotFound)
}

func TestStore_NurseUpsertKeepsCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	n := seedNurse(t, store, "n1", "Ana")

	n.Name = "Ana Maria"
	n.Active = false
	n.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveNurse(ctx, n))

	got, err := store.GetNurse(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Name)
	assert.False(t, got.Active)
	assert.Equal(t, 2025, got.CreatedAt.Year())
}

func TestStore_ListShiftsFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedNurse(t, store, "n1", "Ana")
	at := func(day, hour int) time.Time { return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC) }

	for _, sh := range []shifts.Shift{
		{ID: "s2", NurseID: "n1", FamilyID: "f1", Start: at(4, 22), End: at(5, 6), Status: shifts.StatusScheduled},
		{ID: "s1", NurseID: "n1", FamilyID: "f1", Start: at(3, 22), End: at(4, 6), Status: shifts.StatusCompleted},
		{ID: "s3", NurseID: "n1", FamilyID: "f2", Start: at(9, 22), End: at(10, 6), Status: shifts.StatusCompleted, Twins: true},
	} {
		require.NoError(t, store.SaveShift(ctx, sh))
	}

	all, err := store.ListShifts(ctx, payroll.ShiftFilter{NurseID: "n1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[2].Twins)

	// Overlap with [Mar 4 05:00, Mar 5 00:00) picks s1 (ends 06:00) and s2.
	window, err := store.ListShifts(ctx, payroll.ShiftFilter{From: at(4, 5), To: at(5, 0)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	done, err := store.ListShifts(ctx, payroll.ShiftFilter{Status: shifts.StatusCompleted, FamilyID: "f2"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "s3", done[0].ID)

	_, err = store.GetShift(ctx, "missing")
	assert.ErrorIs(t, err, shifts.ErrShiftNotFound)
}

func TestStore_Holidays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, h := range shifts.DefaultHolidays(2025) {
		require.NoError(t, store.SaveHoliday(ctx, h))
	}

	list, err := store.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, list, 11)
	assert.Equal(t, shifts.NewDate(2025, time.January, 1), list[0].Date)
	assert.True(t, list[0].Recurring)

	require.NoError(t, store.DeleteHoliday(ctx, list[0].ID))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, list[0].ID), payroll.ErrHolidayNotFound)
}

// =============================================================================
// PAY RUN TESTS - exercised through the service
// =============================================================================

func TestStore_PayRunLifecycle(t *testing.T) {
	// GIVEN: A nurse with one completed Friday night shift
	svc, store := newTestService(t)
	ctx := context.Background()
	seedNurse(t, store, "n1", "Ana")
	sh, err := svc.ScheduleShift(ctx, shifts.Shift{
		NurseID: "n1",
		Start:   time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 1, 11, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.CompleteShift(ctx, sh.ID)
	require.NoError(t, err)

	// WHEN: The period is run twice and then finalized
	run, _, err := svc.RunPeriod(ctx, shifts.NewDate(2025, time.January, 10))
	require.NoError(t, err)
	again, slips, err := svc.RunPeriod(ctx, shifts.NewDate(2025, time.January, 10))
	require.NoError(t, err)
	require.Equal(t, run.ID, again.ID)

	// THEN: Payslips round-trip with exact amounts
	stored, err := store.ListPayslipsByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	got := stored[0]
	assert.Equal(t, slips[0].ID, got.ID)
	// 2h * 28.50 + 6h * 32.50 = 57 + 195 = 252, less 125 insurance
	assert.Equal(t, "252", got.Output.GrossPay.String())
	assert.Equal(t, "127", got.Output.NetPay.String())
	assert.True(t, got.Input.WeekendHours.Equal(decimal.NewFromInt(6)))
	assert.Len(t, got.Lines, 5)
	require.Len(t, got.Deductions, 1)
	assert.Equal(t, "125", got.Deductions[0].Amount.String())
	assert.Empty(t, got.Warnings)
	assert.Equal(t, shifts.NewDate(2025, time.January, 6), got.Period.Start)

	byPeriod, err := store.GetRunByPeriod(ctx, run.Period)
	require.NoError(t, err)
	assert.Equal(t, "127", byPeriod.Net.String())

	_, err = svc.Finalize(ctx, run.ID)
	require.NoError(t, err)

	finalized, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunFinalized, finalized.Status)
	require.NotNil(t, finalized.FinalizedAt)

	slip, err := store.GetPayslip(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunFinalized, slip.Status)

	byNurse, err := store.ListPayslipsByNurse(ctx, "n1")
	require.NoError(t, err)
	assert.Len(t, byNurse, 1)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// finalizingStore finalizes the period's run through another service the
// first time ListNurses is called, between RunPeriod's status check and its
// save.
type finalizingStore struct {
	payroll.Store
	once   sync.Once
	during func()
}

func (s *finalizingStore) ListNurses(ctx context.Context) ([]payroll.Nurse, error) {
	s.once.Do(s.during)
	return s.Store.ListNurses(ctx)
}

func TestStore_RecomputeCannotReopenFinalizedRun(t *testing.T) {
	// GIVEN: A draft run, and a second service sharing the database
	svc, store := newTestService(t)
	ctx := context.Background()
	seedNurse(t, store, "n1", "Ana")
	day := shifts.NewDate(2025, time.January, 10)
	draft, _, err := svc.RunPeriod(ctx, day)
	require.NoError(t, err)

	wrapped := &finalizingStore{Store: store}
	wrapped.during = func() {
		_, err := svc.Finalize(ctx, draft.ID)
		require.NoError(t, err)
	}
	recompute := payroll.NewService(wrapped, nil, shifts.DefaultPeriodConfig(), time.UTC, nil)

	// WHEN: The run is finalized while the second service recomputes it
	_, _, err = recompute.RunPeriod(ctx, day)

	// THEN: The write is refused and the run keeps its finalized state
	assert.ErrorIs(t, err, payroll.ErrRunFinalized)
	stored, err := store.GetRun(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunFinalized, stored.Status)
	assert.NotNil(t, stored.FinalizedAt)
}

func TestStore_RunWritesRespectFinalization(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	period := shifts.DefaultPeriodConfig().PeriodFor(shifts.NewDate(2025, time.January, 10))
	created := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	draft := func(id string) payroll.Run {
		return payroll.Run{ID: id, Period: period, Status: payroll.RunDraft, CreatedAt: created,
			Gross: decimal.Zero, Deductions: decimal.Zero, Net: decimal.Zero}
	}

	require.NoError(t, store.SaveRun(ctx, draft("run-1"), nil))
	require.NoError(t, store.SaveRun(ctx, draft("run-1"), nil))
	assert.ErrorIs(t, store.SaveRun(ctx, draft("run-2"), nil), payroll.ErrRunExists)

	at := time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)
	final := draft("run-1")
	final.Status, final.FinalizedAt = payroll.RunFinalized, &at
	require.NoError(t, store.FinalizeRun(ctx, final))

	assert.ErrorIs(t, store.FinalizeRun(ctx, final), payroll.ErrRunFinalized)
	assert.ErrorIs(t, store.SaveRun(ctx, draft("run-1"), nil), payroll.ErrRunFinalized)
	assert.ErrorIs(t, store.SaveRun(ctx, draft("run-2"), nil), payroll.ErrRunFinalized)
	assert.ErrorIs(t, store.FinalizeRun(ctx, payroll.Run{ID: "missing", Status: payroll.RunFinalized, FinalizedAt: &at}), payroll.ErrRunNotFound)

	stored, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunFinalized, stored.Status)
	require.NotNil(t, stored.FinalizedAt)
	assert.True(t, at.Equal(*stored.FinalizedAt))
}

func TestStore_ShiftTimesMatchService(t *testing.T) {
	// Sub-second input is truncated before storage, so the returned shift
	// and the stored one agree.
	svc, store := newTestService(t)
	ctx := context.Background()
	seedNurse(t, store, "n1", "Ana")
	start := time.Date(2025, 1, 10, 22, 0, 0, 750_000_000, time.UTC)

	sh, err := svc.ScheduleShift(ctx, shifts.Shift{NurseID: "n1", Start: start, End: start.Add(8 * time.Hour)})
	require.NoError(t, err)

	got, err := store.GetShift(ctx, sh.ID)
	require.NoError(t, err)
	assert.True(t, sh.Start.Equal(got.Start), "start %s vs %s", sh.Start, got.Start)
	assert.True(t, sh.End.Equal(got.End), "end %s vs %s", sh.End, got.End)
	assert.True(t, sh.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, 0, got.Start.Nanosecond())
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedNurse(t, store, "n1", "Ana")
	require.NoError(t, store.Reset(ctx))

	list, err := store.ListNurses(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
