package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/tours-service/internal/events"
)

// ErrQueueFull is returned when the worker cannot accept more events.
var ErrQueueFull = errors.New("notification queue full")

const handlerTimeout = 30 * time.Second

// NotificationWorker moves event delivery off the request path. Publish enqueues;
// a single goroutine hands events to the dispatcher in order.
type NotificationWorker struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	queue      chan events.Event

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker creates a worker with the given queue size.
func NewNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{
		dispatcher: dispatcher,
		logger:     logger,
		queue:      make(chan events.Event, buffer),
	}
}

// Publish enqueues the event without blocking.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrQueueFull
	}
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the delivery loop.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			w.deliver(event)
		}
	}()
}

// Stop drains queued events and waits for the loop to exit.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) deliver(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if err := w.dispatcher.Publish(ctx, event); err != nil {
		w.logger.Warn("event handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
