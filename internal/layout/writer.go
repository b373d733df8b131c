package layout

import (
	"context"
	"sync"
	"time"

	"prysma/internal/model"
)

// SaveFunc persists a full section list for a user.
type SaveFunc func(ctx context.Context, userID string, sections []model.Section) error

type writeJob struct {
	userID   string
	sections []model.Section
	seq      uint64
}

// Writer is the background write queue behind a Controller.
//
// Enqueued snapshots are coalesced: only the most recent one is written once the debounce
// window passes. At most one save runs at a time, so snapshots reach the store in the order
// they were taken.
type Writer struct {
	save     SaveFunc
	debounce time.Duration
	timeout  time.Duration
	onResult func(userID string, seq uint64, err error)

	mu      sync.Mutex
	idle    *sync.Cond
	timer   *time.Timer
	pending *writeJob
	running bool
	// saving is true only while save itself runs, not while its result is reported.
	saving bool
	closed bool
}

type WriterOpts struct {
	Debounce time.Duration
	// Timeout bounds a single save. Zero means no timeout.
	Timeout  time.Duration
	OnResult func(userID string, seq uint64, err error)
}

func NewWriter(save SaveFunc, opts WriterOpts) *Writer {
	debounce := opts.Debounce
	if debounce < 0 {
		debounce = 0
	}
	w := &Writer{
		save:     save,
		debounce: debounce,
		timeout:  opts.Timeout,
		onResult: opts.OnResult,
	}
	w.idle = sync.NewCond(&w.mu)
	return w
}

// Enqueue replaces any pending snapshot with job and (re)arms the debounce timer.
func (w *Writer) Enqueue(job writeJob) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = &job
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.onTimer)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Writer) onTimer() {
	w.mu.Lock()
	if w.running {
		// The in-flight run picks up pending work when it finishes.
		w.mu.Unlock()
		return
	}
	job := w.pending
	if job == nil {
		w.mu.Unlock()
		return
	}
	w.pending = nil
	w.running = true
	w.mu.Unlock()

	w.run(context.Background(), *job)

	w.mu.Lock()
	w.running = false
	if w.pending != nil && !w.closed && w.timer != nil {
		w.timer.Reset(w.debounce)
	}
	w.idle.Broadcast()
	w.mu.Unlock()
}

func (w *Writer) run(ctx context.Context, job writeJob) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	w.setSaving(true)
	err := w.save(ctx, job.userID, job.sections)
	w.setSaving(false)
	if w.onResult != nil {
		w.onResult(job.userID, job.seq, err)
	}
}

func (w *Writer) setSaving(v bool) {
	w.mu.Lock()
	w.saving = v
	w.mu.Unlock()
}

// Pending reports whether a snapshot is queued or being written.
func (w *Writer) Pending() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil || w.saving
}

// Flush writes any queued snapshot now and waits for in-flight saves to finish.
func (w *Writer) Flush(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	for {
		for w.running {
			w.idle.Wait()
		}
		if err := ctx.Err(); err != nil {
			w.mu.Unlock()
			return err
		}
		job := w.pending
		if job == nil {
			break
		}
		w.pending = nil
		w.running = true
		w.mu.Unlock()

		w.run(ctx, *job)

		w.mu.Lock()
		w.running = false
		w.idle.Broadcast()
	}
	w.mu.Unlock()
	return nil
}

// Close flushes and stops accepting new snapshots.
func (w *Writer) Close(ctx context.Context) error {
	if w == nil {
		return nil
	}
	err := w.Flush(ctx)
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}
