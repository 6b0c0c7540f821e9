package credential

import (
	"context"
	"sync"
	"time"
)

// Dispatcher runs fire-and-forget work off the request goroutine.
type Dispatcher interface {
	Go(ctx context.Context, fn func(ctx context.Context))
}

// AsyncDispatcher runs each task in its own goroutine with a context that
// survives the request but is bounded by timeout.
type AsyncDispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncDispatcher(timeout time.Duration) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AsyncDispatcher{timeout: timeout}
}

func (d *AsyncDispatcher) Go(ctx context.Context, fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every dispatched task has returned or ctx is done.
func (d *AsyncDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InlineDispatcher runs tasks synchronously. Used by tests and the CLI.
type InlineDispatcher struct{}

func (InlineDispatcher) Go(ctx context.Context, fn func(ctx context.Context)) { fn(ctx) }
