package payroll_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/payroll/memstore"
	"github.com/nightwatch/nursepay/shifts"
)

// interleavingStore runs a callback the first time ListNurses is called,
// which is after RunPeriod has read the run's status and before it saves.
type interleavingStore struct {
	payroll.Store
	once   sync.Once
	during func()
}

func (s *interleavingStore) ListNurses(ctx context.Context) ([]payroll.Nurse, error) {
	s.once.Do(s.during)
	return s.Store.ListNurses(ctx)
}

// twoServices returns a service whose recompute is interrupted by other,
// and other itself. Both share one store, like two server processes.
func twoServices(t *testing.T, during func(other *payroll.Service)) (*payroll.Service, *payroll.Service, *memstore.Memory) {
	store := memstore.New()
	clock := func() time.Time { return time.Date(2025, 1, 22, 9, 0, 0, 0, time.UTC) }

	other := payroll.NewService(store, nil, shifts.DefaultPeriodConfig(), time.UTC, nil)
	other.SetClock(clock)

	wrapped := &interleavingStore{Store: store}
	svc := payroll.NewService(wrapped, nil, shifts.DefaultPeriodConfig(), time.UTC, nil)
	svc.SetClock(clock)
	wrapped.during = func() { during(other) }
	return svc, other, store
}

func TestRunPeriod_FinalizeDuringRecomputeWins(t *testing.T) {
	// GIVEN: A draft run
	ctx := context.Background()
	day := shifts.NewDate(2025, time.January, 10)
	var draft payroll.Run
	var finalizeErr error
	svc, other, store := twoServices(t, func(other *payroll.Service) {
		_, finalizeErr = other.Finalize(ctx, draft.ID)
	})
	addNurse(t, other, "ana", "28")
	workShift(t, other, "ana", utc(time.January, 10, 22), utc(time.January, 11, 6))

	var err error
	draft, _, err = other.RunPeriod(ctx, day)
	require.NoError(t, err)

	// WHEN: The run is finalized while svc is recomputing it
	_, _, err = svc.RunPeriod(ctx, day)

	// THEN: The recompute is refused and the run stays finalized
	require.NoError(t, finalizeErr)
	assert.ErrorIs(t, err, payroll.ErrRunFinalized)

	stored, err := store.GetRun(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunFinalized, stored.Status)
	assert.NotNil(t, stored.FinalizedAt)

	slips, err := store.ListPayslipsByRun(ctx, draft.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.Equal(t, payroll.RunFinalized, slips[0].Status)
}

func TestRunPeriod_FirstRunsRaceShareOneRun(t *testing.T) {
	// GIVEN: Another writer creates the period's run while svc computes
	ctx := context.Background()
	day := shifts.NewDate(2025, time.January, 10)
	var first payroll.Run
	svc, other, store := twoServices(t, func(other *payroll.Service) {
		var err error
		first, _, err = other.RunPeriod(ctx, day)
		require.NoError(t, err)
	})
	addNurse(t, other, "ana", "28")

	// WHEN
	run, slips, err := svc.RunPeriod(ctx, day)

	// THEN: svc recomputes onto the existing run instead of adding a second
	require.NoError(t, err)
	assert.Equal(t, first.ID, run.ID)
	require.Len(t, slips, 1)
	assert.Equal(t, first.ID, slips[0].RunID)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunPeriod_ConcurrentCallsCreateOneRun(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	addNurse(t, svc, "ana", "28")
	day := shifts.NewDate(2025, time.January, 10)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run, _, err := svc.RunPeriod(ctx, day)
			ids[i], errs[i] = run.ID, err
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestFinalize_ConcurrentWithShiftCompletion(t *testing.T) {
	// GIVEN: A scheduled shift in a draft period
	svc, store := newTestService(t)
	ctx := context.Background()
	addNurse(t, svc, "ana", "28")
	sh, err := svc.ScheduleShift(ctx, shifts.Shift{NurseID: "ana", Start: utc(time.January, 10, 22), End: utc(time.January, 11, 6)})
	require.NoError(t, err)
	run, _, err := svc.RunPeriod(ctx, shifts.NewDate(2025, time.January, 10))
	require.NoError(t, err)

	// WHEN: Completion and finalization race
	var wg sync.WaitGroup
	var completeErr, finalizeErr error
	wg.Add(2)
	go func() { defer wg.Done(); _, completeErr = svc.CompleteShift(ctx, sh.ID) }()
	go func() { defer wg.Done(); _, finalizeErr = svc.Finalize(ctx, run.ID) }()
	wg.Wait()

	// THEN: Finalization always succeeds; completion either happened first
	// or was refused, never after
	require.NoError(t, finalizeErr)
	got, err := store.GetShift(ctx, sh.ID)
	require.NoError(t, err)
	if completeErr != nil {
		assert.ErrorIs(t, completeErr, payroll.ErrRunFinalized)
		assert.Equal(t, shifts.StatusScheduled, got.Status)
	} else {
		assert.Equal(t, shifts.StatusCompleted, got.Status)
	}
}

func TestMemoryStore_RunWritesRespectFinalization(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	period := shifts.DefaultPeriodConfig().PeriodFor(shifts.NewDate(2025, time.January, 10))
	run := payroll.Run{ID: "run-1", Period: period, Status: payroll.RunDraft}

	require.NoError(t, store.SaveRun(ctx, run, nil))
	assert.ErrorIs(t, store.SaveRun(ctx, payroll.Run{ID: "run-2", Period: period, Status: payroll.RunDraft}, nil), payroll.ErrRunExists)

	at := time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)
	final := run
	final.Status, final.FinalizedAt = payroll.RunFinalized, &at
	require.NoError(t, store.FinalizeRun(ctx, final))

	assert.ErrorIs(t, store.FinalizeRun(ctx, final), payroll.ErrRunFinalized)
	assert.ErrorIs(t, store.SaveRun(ctx, run, nil), payroll.ErrRunFinalized)
	assert.ErrorIs(t, store.SaveRun(ctx, payroll.Run{ID: "run-2", Period: period, Status: payroll.RunDraft}, nil), payroll.ErrRunFinalized)
	assert.ErrorIs(t, store.FinalizeRun(ctx, payroll.Run{ID: "missing"}), payroll.ErrRunNotFound)

	stored, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunFinalized, stored.Status)
}
