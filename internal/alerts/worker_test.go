package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/weatherwatch/backend/internal/domain"
)

// fakeStore implements Store with canned alerts and recorded inserts.
type fakeStore struct {
	mu       sync.Mutex
	alerts   map[string][]domain.Alert
	listErr  map[string]error
	inserted [][]domain.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		alerts:  make(map[string][]domain.Alert),
		listErr: make(map[string]error),
	}
}

func (f *fakeStore) ListAlertsByLocation(ctx context.Context, location string) ([]domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[location]; err != nil {
		return nil, err
	}
	return f.alerts[location], nil
}

func (f *fakeStore) InsertNotifications(ctx context.Context, ns []domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]domain.Notification, len(ns))
	copy(batch, ns)
	f.inserted = append(f.inserted, batch)
	return nil
}

func (f *fakeStore) batches() [][]domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]domain.Notification, len(f.inserted))
	copy(out, f.inserted)
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func reading(location string, humidity float64) domain.Reading {
	return domain.Reading{
		Location:  location,
		Humidity:  humidity,
		Timestamp: time.Now().UTC(),
	}
}

func TestWorkerRecordsNotification(t *testing.T) {
	store := newFakeStore()
	store.alerts["moscow"] = []domain.Alert{{
		ID: 1, UserID: 7, Location: "moscow",
		Field: domain.FieldHumidity, Comparator: ">=", Threshold: 75,
	}}

	w := NewWorker(store)
	w.Start()
	defer w.Stop()

	// The reading carries the original casing; the worker normalizes.
	w.Enqueue(reading("Moscow", 78))

	waitFor(t, 2*time.Second, func() bool { return len(store.batches()) == 1 })

	batch := store.batches()[0]
	if len(batch) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(batch))
	}
	n := batch[0]
	if n.ActualValue != 78 {
		t.Errorf("ActualValue = %v, want 78", n.ActualValue)
	}
	if n.UserID != 7 || n.Field != domain.FieldHumidity || n.Comparator != ">=" || n.Threshold != 75 {
		t.Errorf("notification did not preserve alert attributes: %+v", n)
	}
}

func TestWorkerSkipsUnrecognizedField(t *testing.T) {
	store := newFakeStore()
	store.alerts["oslo"] = []domain.Alert{{
		ID: 1, UserID: 1, Location: "oslo",
		Field: domain.AlertField("wind_speed"), Comparator: ">=", Threshold: 0,
	}}
	// Sentinel alert for a second location; once its notification lands,
	// the oslo reading has already been drained (FIFO, single consumer).
	store.alerts["bergen"] = []domain.Alert{{
		ID: 2, UserID: 1, Location: "bergen",
		Field: domain.FieldHumidity, Comparator: ">=", Threshold: 0,
	}}

	w := NewWorker(store)
	w.Start()
	defer w.Stop()

	w.Enqueue(reading("oslo", 99))
	w.Enqueue(reading("bergen", 50))

	waitFor(t, 2*time.Second, func() bool { return len(store.batches()) == 1 })

	if got := store.batches()[0][0].Location; got != "bergen" {
		t.Fatalf("unexpected notification for %q; unrecognized field should be skipped", got)
	}
}

func TestWorkerContinuesAfterStoreError(t *testing.T) {
	store := newFakeStore()
	store.listErr["broken"] = errors.New("connection reset")
	store.alerts["healthy"] = []domain.Alert{{
		ID: 1, UserID: 1, Location: "healthy",
		Field: domain.FieldTemperature, Comparator: "<", Threshold: 100,
	}}

	w := NewWorker(store)
	w.Start()
	defer w.Stop()

	w.Enqueue(reading("broken", 10))
	w.Enqueue(reading("healthy", 10))

	waitFor(t, 2*time.Second, func() bool { return len(store.batches()) == 1 })

	if got := store.batches()[0][0].Location; got != "healthy" {
		t.Fatalf("expected notification for %q after swallowed failure, got %q", "healthy", got)
	}
}

func TestWorkerPreservesPerLocationOrder(t *testing.T) {
	store := newFakeStore()
	store.alerts["kyoto"] = []domain.Alert{{
		ID: 1, UserID: 1, Location: "kyoto",
		Field: domain.FieldHumidity, Comparator: ">=", Threshold: 0,
	}}

	w := NewWorker(store)
	w.Start()
	defer w.Stop()

	w.Enqueue(reading("kyoto", 10))
	w.Enqueue(reading("kyoto", 20))
	w.Enqueue(reading("kyoto", 30))

	waitFor(t, 2*time.Second, func() bool { return len(store.batches()) == 3 })

	want := []float64{10, 20, 30}
	for i, batch := range store.batches() {
		if batch[0].ActualValue != want[i] {
			t.Errorf("batch %d recorded actual %v, want %v (FIFO violated)", i, batch[0].ActualValue, want[i])
		}
	}
}

func TestWorkerStop(t *testing.T) {
	store := newFakeStore()

	w := NewWorker(store)
	w.Start()

	waitFor(t, time.Second, func() bool { return w.State() == StateIdle })

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return within two poll intervals")
	}

	if got := w.State(); got != StateStopped {
		t.Fatalf("State() = %v after Stop, want %v", got, StateStopped)
	}

	// Stop is idempotent.
	w.Stop()
}

func TestWorkerDiscardsQueueOnStop(t *testing.T) {
	store := newFakeStore()
	store.alerts["quito"] = []domain.Alert{{
		ID: 1, UserID: 1, Location: "quito",
		Field: domain.FieldHumidity, Comparator: ">=", Threshold: 0,
	}}

	w := NewWorker(store)
	// Never started: everything enqueued stays queued.
	w.Enqueue(reading("quito", 1))
	w.Enqueue(reading("quito", 2))

	w.Start()
	w.Stop()

	// After stop, remaining readings must not be drained.
	depth := w.QueueDepth()
	time.Sleep(300 * time.Millisecond)
	if got := w.QueueDepth(); got != depth {
		t.Fatalf("queue drained after Stop: depth went from %d to %d", depth, got)
	}
	if w.State() != StateStopped {
		t.Fatalf("State() = %v, want %v", w.State(), StateStopped)
	}
}
