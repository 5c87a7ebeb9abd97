package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inventory-import/core/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory ItemStore. onWrite runs before every Create/Update
// with the 1-based write number.
type memStore struct {
	mu      sync.Mutex
	items   map[importer.ItemID]importer.Fields
	order   []importer.ItemID
	failSKU map[string]bool
	onWrite func(n int)

	writes  atomic.Int32
	lookups atomic.Int32
}

func newMemStore() *memStore {
	return &memStore{
		items:   make(map[importer.ItemID]importer.Fields),
		failSKU: make(map[string]bool),
	}
}

func (s *memStore) seed(name, sku string) importer.ItemID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := importer.ItemID(fmt.Sprintf("seed-%d", len(s.order)+1))
	s.items[id] = importer.Fields{importer.FieldName: name, importer.FieldSKU: sku}
	s.order = append(s.order, id)
	return id
}

func (s *memStore) Lookup(ctx context.Context, sku, name string) (importer.ItemRef, bool, error) {
	s.lookups.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	find := func(field, value string) (importer.ItemRef, bool) {
		for _, id := range s.order {
			f := s.items[id]
			if f.String(field) == value {
				return importer.ItemRef{ID: id, SKU: f.String(importer.FieldSKU), Name: f.String(importer.FieldName)}, true
			}
		}
		return importer.ItemRef{}, false
	}
	if sku != "" {
		if ref, ok := find(importer.FieldSKU, sku); ok {
			return ref, true, nil
		}
	}
	if name != "" {
		if ref, ok := find(importer.FieldName, name); ok {
			return ref, true, nil
		}
	}
	return importer.ItemRef{}, false, nil
}

func (s *memStore) Create(ctx context.Context, fields importer.Fields) (importer.ItemID, error) {
	n := int(s.writes.Add(1))
	if s.onWrite != nil {
		s.onWrite(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSKU[fields.String(importer.FieldSKU)] {
		return "", errors.New("duplicate key")
	}
	id := importer.ItemID(fmt.Sprintf("item-%d", len(s.order)+1))
	s.items[id] = fields
	s.order = append(s.order, id)
	return id, nil
}

func (s *memStore) Update(ctx context.Context, id importer.ItemID, fields importer.Fields) error {
	n := int(s.writes.Add(1))
	if s.onWrite != nil {
		s.onWrite(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSKU[fields.String(importer.FieldSKU)] {
		return errors.New("lock wait timeout")
	}
	existing, ok := s.items[id]
	if !ok {
		return errors.New("item not found")
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[importer.Outcome]int
	finished []importer.Snapshot
}

func (o *countingObserver) RowProcessed(mode importer.Mode, outcome importer.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[importer.Outcome]int)
	}
	o.outcomes[outcome]++
}

func (o *countingObserver) JobFinished(snap importer.Snapshot, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, snap)
}

var testConfig = importer.Config{PollIntervalMs: 5}

const scenarioCSV = "name,sku,quantity\nWidget,W1,10\nGadget,,5\n"

func bulkCSV(n int) string {
	var b strings.Builder
	b.WriteString("name,sku,quantity\n")
	for i := 0; i < n; i++ {
		switch i % 5 {
		case 3:
			b.WriteString(",,1\n") // missing identity
		default:
			fmt.Fprintf(&b, "Item %d,SKU-%d,%d\n", i, i%7, i)
		}
	}
	return b.String()
}

func runCSV(t *testing.T, ctrl *importer.Controller, text string, mode importer.Mode) importer.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, ctrl.StartCSV(ctx, text, mode))
	snap, err := ctrl.Wait(ctx)
	require.NoError(t, err)
	return snap
}

func TestController_CreateMode(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)

	snap := runCSV(t, ctrl, scenarioCSV, importer.ModeCreate)

	assert.Equal(t, importer.StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 2, snap.Current)
	assert.Equal(t, 2, snap.SuccessCount)
	assert.Equal(t, 0, snap.ErrorCount)
	assert.Equal(t, 100, snap.Percentage)
	assert.Equal(t, 2, store.count())
	assert.Zero(t, store.lookups.Load())
}

func TestController_UpdateBySKUMode(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)

	snap := runCSV(t, ctrl, scenarioCSV, importer.ModeUpdateBySKU)

	assert.Equal(t, importer.StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.ErrorCount)
	assert.Equal(t, 0, snap.SuccessCount)
	assert.Equal(t, []importer.RowError{
		{Row: 2, Message: `SKU "W1" not found for update`},
		{Row: 3, Message: "SKU required for update mode"},
	}, ctrl.Errors())
	assert.Zero(t, store.writes.Load())
}

func TestController_UpsertMode(t *testing.T) {
	store := newMemStore()
	existing := store.seed("Old Widget", "W1")
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)

	snap := runCSV(t, ctrl, scenarioCSV, importer.ModeUpsert)

	assert.Equal(t, 1, snap.UpdatedCount)
	assert.Equal(t, 1, snap.SuccessCount)
	assert.Equal(t, 0, snap.ErrorCount)
	assert.Equal(t, 2, store.count())
	assert.Equal(t, "Widget", store.items[existing].String(importer.FieldName))
}

func TestController_RowErrorsDoNotStopTheLoop(t *testing.T) {
	store := newMemStore()
	store.failSKU["BAD"] = true
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)

	text := "name,sku\nA,A1\nB,BAD\n,\nD,D1\n"
	snap := runCSV(t, ctrl, text, importer.ModeCreate)

	assert.Equal(t, importer.StatusCompleted, snap.Status)
	assert.Equal(t, 4, snap.Current)
	assert.Equal(t, 2, snap.SuccessCount)
	assert.Equal(t, 2, snap.ErrorCount)

	errs := ctrl.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Row)
	assert.Contains(t, errs[0].Message, "duplicate key")
	assert.Equal(t, importer.RowError{Row: 4, Message: importer.MissingIdentityMessage}, errs[1])
}

func TestController_MalformedInputIsFatal(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)
	updates, stop := ctrl.Subscribe()
	defer stop()

	err := ctrl.StartCSV(context.Background(), "name,sku,quantity\n", importer.ModeCreate)
	require.Error(t, err)
	assert.ErrorIs(t, err, importer.ErrMalformedInput)

	var statuses []importer.Status
	for s := range updates {
		statuses = append(statuses, s.Status)
	}
	assert.NotContains(t, statuses, importer.StatusProcessing)

	snap := ctrl.Snapshot()
	assert.Equal(t, importer.StatusError, snap.Status)
	assert.Equal(t, 0, snap.Current)
	assert.Zero(t, store.writes.Load())
}

func TestController_StartPreconditions(t *testing.T) {
	t.Run("Invalid mode keeps the job idle", func(t *testing.T) {
		ctrl := importer.NewController(newMemStore(), zap.NewNop(), testConfig)
		err := ctrl.StartCSV(context.Background(), scenarioCSV, importer.Mode("merge"))
		assert.ErrorIs(t, err, importer.ErrInvalidMode)
		assert.Equal(t, importer.StatusIdle, ctrl.Snapshot().Status)
	})

	t.Run("No records", func(t *testing.T) {
		ctrl := importer.NewController(newMemStore(), zap.NewNop(), testConfig)
		err := ctrl.Start(context.Background(), nil, importer.ModeCreate)
		assert.ErrorIs(t, err, importer.ErrNoRecords)
		assert.Equal(t, importer.StatusError, ctrl.Snapshot().Status)
	})

	t.Run("Start requires idle", func(t *testing.T) {
		ctrl := importer.NewController(newMemStore(), zap.NewNop(), testConfig)
		runCSV(t, ctrl, scenarioCSV, importer.ModeCreate)

		err := ctrl.StartCSV(context.Background(), scenarioCSV, importer.ModeCreate)
		assert.ErrorIs(t, err, importer.ErrInvalidState)

		require.NoError(t, ctrl.Reset())
		assert.Equal(t, importer.StatusIdle, ctrl.Snapshot().Status)
		snap := runCSV(t, ctrl, scenarioCSV, importer.ModeCreate)
		assert.Equal(t, importer.StatusCompleted, snap.Status)
	})

	t.Run("Controls require the right state", func(t *testing.T) {
		ctrl := importer.NewController(newMemStore(), zap.NewNop(), testConfig)
		assert.ErrorIs(t, ctrl.Pause(), importer.ErrInvalidState)
		assert.ErrorIs(t, ctrl.Resume(), importer.ErrInvalidState)
		assert.ErrorIs(t, ctrl.Cancel(), importer.ErrInvalidState)
		assert.NoError(t, ctrl.Reset())
	})
}

func TestController_SnapshotInvariants(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)
	updates, stop := ctrl.Subscribe()
	defer stop()

	var (
		seen []importer.Snapshot
		wg   sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for s := range updates {
			seen = append(seen, s)
		}
	}()

	final := runCSV(t, ctrl, bulkCSV(60), importer.ModeUpsert)
	wg.Wait()

	require.NotEmpty(t, seen)
	last := -1
	for _, s := range seen {
		assert.Equal(t, s.Current, s.Processed(), "counters must add up to current")
		assert.GreaterOrEqual(t, s.Current, last, "current must not decrease")
		last = s.Current
		if s.Status != importer.StatusIdle && s.Status != importer.StatusPreparing {
			assert.Equal(t, 60, s.Total)
		}
	}
	assert.Equal(t, final, seen[len(seen)-1])
	assert.Equal(t, importer.StatusCompleted, final.Status)
	assert.Equal(t, 12, final.ErrorCount)
}

func TestController_CancelDuringProcessing(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)
	store.onWrite = func(n int) {
		if n == 3 {
			assert.NoError(t, ctrl.Cancel())
		}
	}

	snap := runCSV(t, ctrl, bulkCSV(10), importer.ModeCreate)

	// Row index 2 was in flight and completes; nothing after it runs.
	assert.Equal(t, importer.StatusError, snap.Status)
	assert.Equal(t, importer.CancelledMessage, snap.Message)
	assert.True(t, snap.Cancelled())
	assert.Equal(t, 3, snap.Current)
	assert.Equal(t, 3, snap.Processed())
	assert.Equal(t, int32(3), store.writes.Load())

	errs := ctrl.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, importer.RowError{Row: 0, Message: importer.CancelledMessage}, errs[len(errs)-1])
}

func TestController_CancelWhilePaused(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)
	store.onWrite = func(n int) {
		if n == 2 {
			assert.NoError(t, ctrl.Pause())
		}
	}

	require.NoError(t, ctrl.StartCSV(context.Background(), bulkCSV(10), importer.ModeCreate))
	require.Eventually(t, func() bool {
		s := ctrl.Snapshot()
		return s.Status == importer.StatusPaused && s.Current == 2
	}, 5*time.Second, 5*time.Millisecond)

	// Nothing moves while paused.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, ctrl.Snapshot().Current)
	assert.Equal(t, int32(2), store.writes.Load())

	require.NoError(t, ctrl.Cancel())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := ctrl.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, importer.StatusError, snap.Status)
	assert.True(t, snap.Cancelled())
	assert.Equal(t, 2, snap.Current)
	assert.Equal(t, int32(2), store.writes.Load())
}

func TestController_PauseResumeMatchesUninterruptedRun(t *testing.T) {
	text := bulkCSV(40)

	plain := runCSV(t, importer.NewController(newMemStore(), zap.NewNop(), testConfig), text, importer.ModeUpsert)

	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)
	store.onWrite = func(n int) {
		if n == 10 || n == 20 {
			assert.NoError(t, ctrl.Pause())
		}
	}
	resumed := make(chan struct{})
	go func() {
		defer close(resumed)
		for i := 0; i < 2; i++ {
			if !assert.Eventually(t, func() bool {
				return ctrl.Snapshot().Status == importer.StatusPaused
			}, 5*time.Second, 2*time.Millisecond) {
				return
			}
			time.Sleep(20 * time.Millisecond)
			assert.NoError(t, ctrl.Resume())
		}
	}()

	paused := runCSV(t, ctrl, text, importer.ModeUpsert)
	<-resumed

	assert.Equal(t, importer.StatusCompleted, paused.Status)
	assert.Equal(t, plain.Current, paused.Current)
	assert.Equal(t, plain.SuccessCount, paused.SuccessCount)
	assert.Equal(t, plain.UpdatedCount, paused.UpdatedCount)
	assert.Equal(t, plain.ErrorCount, paused.ErrorCount)
}

func TestController_ContextCancelAborts(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.onWrite = func(n int) {
		if n == 1 {
			assert.NoError(t, ctrl.Pause())
			cancel()
		}
	}

	require.NoError(t, ctrl.StartCSV(ctx, bulkCSV(5), importer.ModeCreate))
	<-ctrl.Done()

	snap := ctrl.Snapshot()
	assert.Equal(t, importer.StatusError, snap.Status)
	assert.Equal(t, "import aborted: context canceled", snap.Message)
	assert.False(t, snap.Cancelled())
	assert.Equal(t, 1, snap.Current)
}

func TestController_ResetRejectedWhileRunning(t *testing.T) {
	store := newMemStore()
	ctrl := importer.NewController(store, zap.NewNop(), testConfig)
	store.onWrite = func(n int) {
		if n == 1 {
			assert.NoError(t, ctrl.Pause())
		}
	}

	require.NoError(t, ctrl.StartCSV(context.Background(), bulkCSV(5), importer.ModeCreate))
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().Status == importer.StatusPaused
	}, 5*time.Second, 2*time.Millisecond)

	assert.ErrorIs(t, ctrl.Reset(), importer.ErrInvalidState)
	assert.ErrorIs(t, ctrl.Pause(), importer.ErrInvalidState)

	require.NoError(t, ctrl.Resume())
	<-ctrl.Done()
	assert.Equal(t, importer.StatusCompleted, ctrl.Snapshot().Status)
}

func TestController_SubscribeAfterFinish(t *testing.T) {
	ctrl := importer.NewController(newMemStore(), zap.NewNop(), testConfig)
	final := runCSV(t, ctrl, scenarioCSV, importer.ModeCreate)

	updates, stop := ctrl.Subscribe()
	defer stop()

	s, ok := <-updates
	require.True(t, ok)
	assert.Equal(t, final, s)
	_, ok = <-updates
	assert.False(t, ok)
}

func TestController_UnsubscribeClosesChannel(t *testing.T) {
	ctrl := importer.NewController(newMemStore(), zap.NewNop(), testConfig)
	updates, stop := ctrl.Subscribe()

	<-updates
	stop()
	stop()

	_, ok := <-updates
	assert.False(t, ok)
}

func TestController_Observer(t *testing.T) {
	obs := &countingObserver{}
	store := newMemStore()
	store.seed("Widget", "W1")
	ctrl := importer.NewController(store, zap.NewNop(), testConfig, importer.WithObserver(obs))

	runCSV(t, ctrl, "name,sku\nWidget,W1\nNew,N1\n,\n", importer.ModeUpsert)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.outcomes[importer.OutcomeInserted])
	assert.Equal(t, 1, obs.outcomes[importer.OutcomeUpdated])
	assert.Equal(t, 1, obs.outcomes[importer.OutcomeError])
	require.Len(t, obs.finished, 1)
	assert.Equal(t, importer.StatusCompleted, obs.finished[0].Status)
}

func TestController_Run(t *testing.T) {
	records, err := importer.ParseRecords(scenarioCSV)
	require.NoError(t, err)

	ctrl := importer.NewController(newMemStore(), nil, importer.Config{})
	snap, err := ctrl.Run(context.Background(), records, importer.ModeCreate)

	require.NoError(t, err)
	assert.Equal(t, importer.StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.SuccessCount)
}
