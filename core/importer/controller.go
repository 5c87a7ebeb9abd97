package importer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// CancelledMessage is the job message of a job stopped through Cancel.
// Callers compare against it to tell a deliberate cancel from a failure.
const CancelledMessage = "cancelled by user"

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers an observer for row and job events.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// Controller owns the lifecycle of one import job at a time.
//
// The row loop is the only writer of counters. Presenters read snapshots and may call
// Pause, Resume and Cancel from any goroutine; those only flip flags that the loop
// observes between rows.
type Controller struct {
	store    ItemStore
	logger   *zap.Logger
	cfg      Config
	observer Observer

	mu   sync.Mutex
	job  ImportJob
	done chan struct{}
	subs map[chan Snapshot]struct{}

	snap      atomic.Pointer[Snapshot]
	paused    atomic.Bool
	cancelled atomic.Bool
	wake      chan struct{}
}

// NewController creates an idle controller.
func NewController(store ItemStore, logger *zap.Logger, cfg Config, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:  store,
		logger: logger,
		cfg:    cfg,
		job:    ImportJob{Status: StatusIdle},
		done:   make(chan struct{}),
		subs:   make(map[chan Snapshot]struct{}),
		wake:   make(chan struct{}, 1),
	}
	close(c.done)
	for _, opt := range opts {
		opt(c)
	}
	c.publishLocked()
	return c
}

// Start validates the input and launches the row loop in the background.
// The context bounds the whole run; cancelling it aborts the job like Cancel does.
func (c *Controller) Start(ctx context.Context, records []CandidateRecord, mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepareLocked(mode); err != nil {
		return err
	}
	return c.beginLocked(ctx, records)
}

// StartCSV parses the text and starts the job. A parse failure moves the job to
// StatusError before any row is processed and is returned to the caller.
func (c *Controller) StartCSV(ctx context.Context, text string, mode Mode) error {
	c.mu.Lock()
	if err := c.prepareLocked(mode); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	records, err := ParseRecords(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked(err.Error())
		return err
	}
	return c.beginLocked(ctx, records)
}

// Run starts the job and blocks until it reaches a terminal state or ctx is done.
func (c *Controller) Run(ctx context.Context, records []CandidateRecord, mode Mode) (Snapshot, error) {
	if err := c.Start(ctx, records, mode); err != nil {
		return c.Snapshot(), err
	}
	return c.Wait(ctx)
}

// Pause suspends the row loop before the next row.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job.Status != StatusProcessing {
		return stateError("pause", c.job.Status)
	}
	c.paused.Store(true)
	c.job.Status = StatusPaused
	c.publishLocked()
	c.logger.Info("Import paused", zap.Int("current", c.job.Current), zap.Int("total", c.job.Total))
	return nil
}

// Resume continues a paused job.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job.Status != StatusPaused {
		return stateError("resume", c.job.Status)
	}
	c.paused.Store(false)
	c.job.Status = StatusProcessing
	c.signal()
	c.publishLocked()
	c.logger.Info("Import resumed", zap.Int("current", c.job.Current), zap.Int("total", c.job.Total))
	return nil
}

// Cancel asks the row loop to stop at its next safe point. A store call already in
// flight completes first. Rows already written stay written.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.job.Status.IsActive() {
		return stateError("cancel", c.job.Status)
	}
	c.cancelled.Store(true)
	c.signal()
	return nil
}

// Reset discards a finished job and returns the controller to StatusIdle.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job.Status.IsActive() {
		return stateError("reset", c.job.Status)
	}
	c.job = ImportJob{Status: StatusIdle}
	c.paused.Store(false)
	c.cancelled.Store(false)
	c.publishLocked()
	return nil
}

// Snapshot returns the latest published progress.
func (c *Controller) Snapshot() Snapshot {
	return *c.snap.Load()
}

// Errors returns a copy of the row errors recorded so far.
func (c *Controller) Errors() []RowError {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]RowError, len(c.job.Errors))
	copy(out, c.job.Errors)
	return out
}

// Done is closed when the current run ends. It is already closed when nothing runs.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the current run ends or ctx is done.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-c.Done():
		return c.Snapshot(), nil
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	}
}

// Subscribe returns a channel of snapshots and a function to stop receiving.
//
// The channel holds only the latest snapshot: a slow reader skips intermediate ones but
// never sees progress go backwards. It receives the current snapshot immediately and is
// closed after the terminal snapshot of the job.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	ch <- c.Snapshot()
	if c.job.Status.IsTerminal() {
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
}

func (c *Controller) prepareLocked(mode Mode) error {
	if c.job.Status != StatusIdle {
		return stateError("start", c.job.Status)
	}
	if !mode.IsValid() {
		return fmt.Errorf("start import: %w", &ModeError{Value: string(mode)})
	}

	c.paused.Store(false)
	c.cancelled.Store(false)
	c.job = ImportJob{
		Status:    StatusPreparing,
		Mode:      mode,
		StartedAt: time.Now(),
	}
	c.publishLocked()
	return nil
}

func (c *Controller) beginLocked(ctx context.Context, records []CandidateRecord) error {
	if len(records) == 0 {
		c.failLocked(ErrNoRecords.Error())
		return ErrNoRecords
	}

	c.job.Total = len(records)
	c.job.Status = StatusProcessing
	c.done = make(chan struct{})
	c.publishLocked()

	go c.run(ctx, records, c.job.Mode, c.done)
	return nil
}

func (c *Controller) run(ctx context.Context, records []CandidateRecord, mode Mode, done chan struct{}) {
	defer close(done)

	c.logger.Info("Import started", zap.String("mode", string(mode)), zap.Int("total", len(records)))

	// Store calls must finish once begun, even if ctx is cancelled mid-call.
	storeCtx := context.WithoutCancel(ctx)

	ticker := time.NewTicker(c.cfg.PollInterval())
	defer ticker.Stop()

	for _, rec := range records {
		if reason, stop := c.checkpoint(ctx, ticker); stop {
			c.abort(reason)
			return
		}
		outcome, rowErr := c.process(storeCtx, rec, mode)
		c.advance(mode, outcome, rowErr)
	}
	c.finish()
}

// checkpoint is the safe point between rows. It blocks while paused and reports
// whether the loop must stop.
func (c *Controller) checkpoint(ctx context.Context, ticker *time.Ticker) (string, bool) {
	for {
		if c.cancelled.Load() {
			return CancelledMessage, true
		}
		if err := ctx.Err(); err != nil {
			return fmt.Sprintf("import aborted: %v", err), true
		}
		if !c.paused.Load() {
			return "", false
		}
		select {
		case <-ctx.Done():
		case <-c.wake:
		case <-ticker.C:
		}
	}
}

func (c *Controller) process(ctx context.Context, rec CandidateRecord, mode Mode) (Outcome, *RowError) {
	if rec.Invalid != "" {
		return OutcomeError, &RowError{Row: rec.RowNumber, Message: rec.Invalid}
	}

	decision := Reconcile(ctx, rec, mode, c.store)
	switch decision.Action {
	case ActionInsert:
		if _, err := c.store.Create(ctx, rec.Fields); err != nil {
			return OutcomeError, &RowError{Row: rec.RowNumber, Message: fmt.Sprintf("failed to create item: %v", err)}
		}
		return OutcomeInserted, nil
	case ActionUpdate:
		if err := c.store.Update(ctx, decision.ItemID, rec.Fields); err != nil {
			return OutcomeError, &RowError{Row: rec.RowNumber, Message: fmt.Sprintf("failed to update item: %v", err)}
		}
		return OutcomeUpdated, nil
	default:
		return OutcomeError, &RowError{Row: rec.RowNumber, Message: decision.Message}
	}
}

func (c *Controller) advance(mode Mode, outcome Outcome, rowErr *RowError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch outcome {
	case OutcomeInserted:
		c.job.SuccessCount++
	case OutcomeUpdated:
		c.job.UpdatedCount++
	default:
		c.job.ErrorCount++
		if rowErr != nil {
			c.job.Errors = append(c.job.Errors, *rowErr)
			c.logger.Debug("Row rejected", zap.Int("row", rowErr.Row), zap.String("reason", rowErr.Message))
		}
	}
	c.job.Current++
	c.publishLocked()

	if c.observer != nil {
		c.observer.RowProcessed(mode, outcome)
	}
}

func (c *Controller) abort(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.job.Errors = append(c.job.Errors, RowError{Row: 0, Message: reason})
	c.failLocked(reason)
	c.logger.Warn("Import stopped",
		zap.String("reason", reason),
		zap.Int("current", c.job.Current),
		zap.Int("total", c.job.Total),
	)
}

func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paused.Store(false)
	c.job.Status = StatusCompleted
	c.job.FinishedAt = time.Now()
	c.publishLocked()
	c.closeSubsLocked()
	c.notifyFinishedLocked()

	c.logger.Info("Import completed",
		zap.Int("total", c.job.Total),
		zap.Int("inserted", c.job.SuccessCount),
		zap.Int("updated", c.job.UpdatedCount),
		zap.Int("errors", c.job.ErrorCount),
	)
}

func (c *Controller) failLocked(reason string) {
	c.paused.Store(false)
	c.job.Status = StatusError
	c.job.Message = reason
	c.job.FinishedAt = time.Now()
	c.publishLocked()
	c.closeSubsLocked()
	c.notifyFinishedLocked()
}

func (c *Controller) notifyFinishedLocked() {
	if c.observer == nil {
		return
	}
	c.observer.JobFinished(NewSnapshot(c.job), c.job.FinishedAt.Sub(c.job.StartedAt))
}

// publishLocked stores a fresh snapshot and hands it to every subscriber,
// replacing any snapshot they have not read yet.
func (c *Controller) publishLocked() {
	s := NewSnapshot(c.job)
	c.snap.Store(&s)

	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (c *Controller) closeSubsLocked() {
	for ch := range c.subs {
		close(ch)
		delete(c.subs, ch)
	}
}

func (c *Controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
