package layout

import (
	"context"
	"sync"
	"testing"
	"time"

	"prysma/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSave struct {
	mu    sync.Mutex
	calls [][]model.Section
	err   error
}

func (r *recordingSave) save(ctx context.Context, userID string, sections []model.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sections)
	return r.err
}

func (r *recordingSave) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestWriter_DebounceFiresInBackground(t *testing.T) {
	rec := &recordingSave{}
	done := make(chan uint64, 1)
	w := NewWriter(rec.save, WriterOpts{
		Debounce: 5 * time.Millisecond,
		OnResult: func(userID string, seq uint64, err error) { done <- seq },
	})
	defer func() { _ = w.Close(context.Background()) }()

	w.Enqueue(writeJob{userID: "u", seq: 1})
	w.Enqueue(writeJob{userID: "u", seq: 2})

	select {
	case seq := <-done:
		if seq != 2 {
			t.Fatalf("expected latest snapshot, got seq %d", seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced save never ran")
	}
	if n := rec.count(); n != 1 {
		t.Fatalf("expected 1 save, got %d", n)
	}
}

func TestWriter_FlushRunsPendingNow(t *testing.T) {
	rec := &recordingSave{}
	w := NewWriter(rec.save, WriterOpts{Debounce: time.Hour})

	w.Enqueue(writeJob{userID: "u", sections: []model.Section{{ID: "a", Type: "bio"}}})
	if !w.Pending() {
		t.Fatalf("expected pending write")
	}
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if w.Pending() {
		t.Fatalf("expected nothing pending after flush")
	}
	if n := rec.count(); n != 1 {
		t.Fatalf("expected 1 save, got %d", n)
	}
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	w.Enqueue(writeJob{userID: "u"})
	if w.Pending() {
		t.Fatalf("closed writer accepted a job")
	}
}

func TestWriter_ReportsErrorsAndTimeout(t *testing.T) {
	var got error
	w := NewWriter(func(ctx context.Context, userID string, sections []model.Section) error {
		<-ctx.Done()
		return ctx.Err()
	}, WriterOpts{
		Debounce: time.Hour,
		Timeout:  10 * time.Millisecond,
		OnResult: func(userID string, seq uint64, err error) { got = err },
	})

	w.Enqueue(writeJob{userID: "u"})
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", got)
	}
}

func TestWriter_FlushHonorsCanceledContext(t *testing.T) {
	rec := &recordingSave{}
	w := NewWriter(rec.save, WriterOpts{Debounce: time.Hour})
	w.Enqueue(writeJob{userID: "u"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Flush(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := rec.count(); n != 1 {
		t.Fatalf("expected pending job written on close, got %d", n)
	}
}

func TestWriter_SnapshotsQueuedDuringSaveCoalesceAfterIt(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu       sync.Mutex
		saved    []string
		inFlight int
		overlap  bool
	)
	w := NewWriter(func(ctx context.Context, userID string, sections []model.Section) error {
		mu.Lock()
		inFlight++
		if inFlight > 1 {
			overlap = true
		}
		saved = append(saved, sections[0].ID)
		first := len(saved) == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}, WriterOpts{Debounce: time.Millisecond})

	snapshot := func(seq uint64, id string) writeJob {
		return writeJob{userID: "u", seq: seq, sections: []model.Section{{ID: id, Type: "bio"}}}
	}
	w.Enqueue(snapshot(1, "s1"))
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first save never started")
	}
	w.Enqueue(snapshot(2, "s2"))
	w.Enqueue(snapshot(3, "s3"))
	// Let the rearmed timer fire while the first save is still running.
	time.Sleep(20 * time.Millisecond)
	close(release)

	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"s1", "s3"}, saved); diff != "" {
		t.Fatalf("saves (-want +got):\n%s", diff)
	}
	if overlap {
		t.Fatal("saves overlapped")
	}
}
