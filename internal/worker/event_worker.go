package worker

import (
	"context"
	"log/slog"
	"time"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/metrics"
	"poll-registry/internal/retry"
)

// Publisher receives events after they are journaled. Failures are logged
// and counted but never block the journal.
type Publisher interface {
	Publish(ctx context.Context, e poll.Event) error
}

// EventWorker moves events from the registry queue into the journal in
// sequence order. An event that cannot be written stays at the head of the
// backlog, so later events are never journaled ahead of it.
type EventWorker struct {
	queue     *poll.EventQueue
	journal   poll.Journal
	publisher Publisher
	log       *slog.Logger

	attempts     int
	baseDelay    time.Duration
	retryEvery   time.Duration
	flushTimeout time.Duration

	backlog []poll.Event
}

func NewEventWorker(queue *poll.EventQueue, journal poll.Journal, log *slog.Logger) *EventWorker {
	if log == nil {
		log = slog.Default()
	}
	return &EventWorker{
		queue:        queue,
		journal:      journal,
		log:          log,
		attempts:     5,
		baseDelay:    200 * time.Millisecond,
		retryEvery:   5 * time.Second,
		flushTimeout: 10 * time.Second,
	}
}

func (w *EventWorker) WithPublisher(p Publisher) *EventWorker {
	w.publisher = p
	return w
}

// WithRetry sets the per-event retry budget and the interval at which a
// stuck backlog is retried.
func (w *EventWorker) WithRetry(attempts int, baseDelay, retryEvery time.Duration) *EventWorker {
	if attempts > 0 {
		w.attempts = attempts
	}
	if baseDelay > 0 {
		w.baseDelay = baseDelay
	}
	if retryEvery > 0 {
		w.retryEvery = retryEvery
	}
	return w
}

// Run processes events until ctx is cancelled, then flushes what is left.
func (w *EventWorker) Run(ctx context.Context) {
	w.log.Info("event worker started")
	ticker := time.NewTicker(w.retryEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush()
			w.log.Info("event worker stopped", "pending", w.Pending())
			return
		case <-w.queue.Ready():
			w.process(ctx)
		case <-ticker.C:
			if len(w.backlog) > 0 {
				w.process(ctx)
			}
		}
	}
}

// Pending reports events not yet journaled.
func (w *EventWorker) Pending() int {
	return len(w.backlog) + w.queue.Len()
}

func (w *EventWorker) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), w.flushTimeout)
	defer cancel()
	w.process(ctx)
}

func (w *EventWorker) process(ctx context.Context) {
	w.backlog = append(w.backlog, w.queue.Drain()...)

	for len(w.backlog) > 0 {
		e := w.backlog[0]
		err := retry.DoWithRetry(ctx, w.attempts, w.baseDelay, func() error {
			return w.journal.Append(ctx, e)
		})
		metrics.IncJournaled(err == nil)
		if err != nil {
			w.log.Error("journal append failed",
				"seq", e.Seq,
				"type", e.Type,
				"backlog", len(w.backlog),
				"error", err,
			)
			return
		}
		w.backlog = w.backlog[1:]
		w.publish(ctx, e)
	}
	w.backlog = nil
}

func (w *EventWorker) publish(ctx context.Context, e poll.Event) {
	if w.publisher == nil {
		return
	}
	err := w.publisher.Publish(ctx, e)
	metrics.IncPublished(err == nil)
	if err != nil {
		w.log.Warn("event publish failed", "seq", e.Seq, "type", e.Type, "error", err)
	}
}
