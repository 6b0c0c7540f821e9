package worker

import (
	"context"
	"log/slog"

	audit "shareregistry/pkg/platform/audit"
)

// Worker drains audit events from a channel into one or more sinks. A failing
// sink is logged and skipped so one broken backend does not starve the others.
type Worker struct {
	sinks  []audit.Sink
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(inbox <-chan audit.Event, logger *slog.Logger, sinks ...audit.Sink) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sinks: sinks, inbox: inbox, logger: logger}
}

// Run processes events until the inbox is closed or ctx is cancelled.
// A closed inbox is a clean shutdown and returns nil.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event audit.Event) {
	for _, sink := range w.sinks {
		if err := sink.Append(ctx, event); err != nil {
			w.logger.ErrorContext(ctx, "audit sink append failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
	}
}
