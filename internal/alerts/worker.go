// Package alerts implements the background alert-evaluation pipeline: a
// FIFO queue of fresh readings drained by a single long-lived worker that
// matches each reading against stored threshold alerts and records
// notifications for the ones that fire.
package alerts

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weatherwatch/backend/internal/domain"
	"github.com/weatherwatch/backend/internal/metrics"
)

// State describes the worker lifecycle.
type State int32

const (
	StateIdle State = iota
	StateProcessing
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Store is the slice of persistence the worker needs: read alerts for a
// location, write the resulting notifications in one unit.
type Store interface {
	ListAlertsByLocation(ctx context.Context, location string) ([]domain.Alert, error)
	InsertNotifications(ctx context.Context, ns []domain.Notification) error
}

const (
	defaultPollInterval   = 100 * time.Millisecond
	defaultProcessTimeout = 5 * time.Second
)

// Worker is the sole consumer of the reading queue. It runs for the
// process lifetime, started once from main. Evaluation is best-effort and
// at-most-once: a failure processing one reading is logged and the item
// dropped, never retried and never propagated to the request path.
type Worker struct {
	store Store
	queue queue

	pollInterval   time.Duration
	processTimeout time.Duration

	state    atomic.Int32
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a Worker draining into store. Start must be called
// before readings are evaluated; Enqueue is safe at any point.
func NewWorker(store Store) *Worker {
	return &Worker{
		store:          store,
		pollInterval:   defaultPollInterval,
		processTimeout: defaultProcessTimeout,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Enqueue hands a reading to the worker. Never blocks; the queue is
// unbounded. Called by the ingestion path after the cache write completes,
// so a notification is never recorded for a reading the cache never saw.
func (w *Worker) Enqueue(r domain.Reading) {
	w.queue.push(r)
	metrics.QueueDepth.Set(float64(w.queue.len()))
}

// QueueDepth returns the number of readings awaiting evaluation.
func (w *Worker) QueueDepth() int {
	return w.queue.len()
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Start launches the consumer goroutine.
func (w *Worker) Start() {
	go w.run()
}

// Stop signals the worker to exit and blocks until it has. An in-flight
// reading is allowed to finish; queued-but-undrained readings are
// discarded. The stop signal is observed within one poll interval.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		if State(w.state.Load()) != StateStopped {
			w.state.Store(int32(StateStopping))
		}
		close(w.stopCh)
	})
	<-w.doneCh
}

func (w *Worker) run() {
	defer func() {
		w.state.Store(int32(StateStopped))
		close(w.doneCh)
	}()

	for {
		r, ok := w.queue.pop()
		if !ok {
			w.setState(StateIdle)
			select {
			case <-w.stopCh:
				return
			case <-time.After(w.pollInterval):
			}
			continue
		}

		metrics.QueueDepth.Set(float64(w.queue.len()))
		w.setState(StateProcessing)
		w.process(r)

		select {
		case <-w.stopCh:
			return
		default:
		}
	}
}

// setState transitions unless a stop has already been requested; Stopping
// is sticky so an observer never sees Stopping revert to Idle.
func (w *Worker) setState(s State) {
	w.state.CompareAndSwap(int32(StateIdle), int32(s))
	w.state.CompareAndSwap(int32(StateProcessing), int32(s))
}

// process evaluates one reading against all alerts stored for its
// location and records the firings as one batch. Errors are terminal for
// the item only: logged, counted, and swallowed so the worker keeps
// draining.
func (w *Worker) process(r domain.Reading) {
	ctx, cancel := context.WithTimeout(context.Background(), w.processTimeout)
	defer cancel()

	location := domain.NormalizeLocation(r.Location)

	stored, err := w.store.ListAlertsByLocation(ctx, location)
	if err != nil {
		log.Printf("alerts: failed to load alerts for %q: %v", location, err)
		metrics.ReadingsProcessedTotal.WithLabelValues("error").Inc()
		return
	}

	now := time.Now().UTC()
	var firings []domain.Notification
	for _, a := range stored {
		actual, known := r.FieldValue(a.Field)
		if !known {
			// Unrecognized field, nothing to compare against.
			continue
		}
		if !Matches(a.Comparator, actual, a.Threshold) {
			continue
		}
		firings = append(firings, domain.Notification{
			UserID:      a.UserID,
			Location:    a.Location,
			Field:       a.Field,
			Comparator:  a.Comparator,
			Threshold:   a.Threshold,
			ActualValue: actual,
			Timestamp:   now,
		})
	}

	if len(firings) > 0 {
		if err := w.store.InsertNotifications(ctx, firings); err != nil {
			log.Printf("alerts: failed to record %d notifications for %q: %v", len(firings), location, err)
			metrics.ReadingsProcessedTotal.WithLabelValues("error").Inc()
			return
		}
		metrics.NotificationsRecordedTotal.Add(float64(len(firings)))
	}

	metrics.ReadingsProcessedTotal.WithLabelValues("success").Inc()
}
