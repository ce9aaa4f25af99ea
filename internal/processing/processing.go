package processing

import (
	"context"
	"sync"
	"time"

	"footage-tracker/internal/database"
	"footage-tracker/internal/logging"
	"footage-tracker/internal/metrics"
)

// processDelay is the simulated per-record work interval. Placeholder until
// real processing replaces the simulation; only the state transition is part
// of the contract, not the timing.
const processDelay = 100 * time.Millisecond

// Coordinator owns the processing-state transitions of the ledger. Per
// record the state machine is Discovered -> Processed, one way; Processed is
// terminal.
type Coordinator struct {
	db *database.Database

	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*task
}

// task is the mutable bookkeeping for one simulated processing run.
type task struct {
	id        int64
	batchSize int
	selected  int
	processed int
	done      bool
	startedAt time.Time
	endedAt   time.Time
}

// TaskStatus is a point-in-time snapshot of a simulated processing run,
// queryable so callers can observe completion without blocking on it.
type TaskStatus struct {
	ID        int64      `json:"id"`
	BatchSize int        `json:"batch_size"`
	Selected  int        `json:"selected"`
	Processed int        `json:"processed"`
	Done      bool       `json:"done"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// New creates a Coordinator operating on db.
func New(db *database.Database) *Coordinator {
	return &Coordinator{
		db:    db,
		tasks: make(map[int64]*task),
	}
}

// MarkProcessed transitions one record to Processed. Returns
// database.ErrNotFound when the id is not tracked. Re-invoking on an
// already-processed id succeeds with no observable change beyond a possibly
// updated processed_at timestamp.
func (c *Coordinator) MarkProcessed(ctx context.Context, id int64) error {
	return c.db.MarkProcessed(ctx, id)
}

// MarkProcessedBatch transitions every existing id in the set; unknown ids
// are silently skipped. Returns the count of rows actually changed. Partial
// application on failure is acceptable: the update is not all-or-nothing
// across invocations.
func (c *Coordinator) MarkProcessedBatch(ctx context.Context, ids []int64) (int64, error) {
	return c.db.MarkProcessedBatch(ctx, ids)
}

// Simulate schedules background processing of up to batchSize unprocessed,
// non-directory records and returns immediately with a task handle; callers
// poll the task, stats, or the unprocessed queue to observe completion.
//
// Concurrent invocations may select overlapping record sets. That is safe
// because the transition is idempotent; the overlap only wastes simulated
// work time. Once started a run is not cancellable.
func (c *Coordinator) Simulate(batchSize int) TaskStatus {
	c.mu.Lock()
	c.nextID++
	t := &task{
		id:        c.nextID,
		batchSize: batchSize,
		startedAt: time.Now(),
	}
	c.tasks[t.id] = t
	c.mu.Unlock()

	metrics.ProcessingSimulationsTotal.Inc()

	go c.run(t)

	return c.snapshot(t.id)
}

// run executes one simulated processing pass. Detached from the triggering
// request: it uses its own background context and survives the response.
func (c *Coordinator) run(t *task) {
	metrics.ProcessingSimulationsRunning.Inc()
	defer metrics.ProcessingSimulationsRunning.Dec()

	ctx := context.Background()

	ids, err := c.db.UnprocessedIDs(ctx, t.batchSize)
	if err != nil {
		logging.Error("Simulated processing: selection failed: %v", err)
		c.finish(t, 0, 0)
		return
	}

	c.mu.Lock()
	t.selected = len(ids)
	c.mu.Unlock()

	processed := 0
	for _, id := range ids {
		time.Sleep(processDelay)

		if err := c.db.MarkProcessed(ctx, id); err != nil {
			// The record may have been processed or the store may be
			// unavailable; either way this pass carries on.
			logging.Warn("Simulated processing: mark %d failed: %v", id, err)
			continue
		}
		processed++

		c.mu.Lock()
		t.processed = processed
		c.mu.Unlock()
	}

	c.finish(t, len(ids), processed)
	logging.Info("Simulated processing complete: %d/%d records processed (task %d)", processed, len(ids), t.id)
}

func (c *Coordinator) finish(t *task, selected, processed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t.selected = selected
	t.processed = processed
	t.done = true
	t.endedAt = time.Now()
}

// TaskStatus returns the snapshot of a simulated processing run, or false if
// the id is unknown.
func (c *Coordinator) TaskStatus(id int64) (TaskStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok {
		return TaskStatus{}, false
	}
	return statusLocked(t), true
}

func (c *Coordinator) snapshot(id int64) TaskStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return statusLocked(c.tasks[id])
}

func statusLocked(t *task) TaskStatus {
	s := TaskStatus{
		ID:        t.id,
		BatchSize: t.batchSize,
		Selected:  t.selected,
		Processed: t.processed,
		Done:      t.done,
		StartedAt: t.startedAt,
	}
	if t.done {
		ended := t.endedAt
		s.EndedAt = &ended
	}
	return s
}
