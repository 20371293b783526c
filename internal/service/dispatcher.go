package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/panemexpress/rail-booking/internal/logger"
)

// Dispatcher runs best-effort background tasks outside the request that
// scheduled them.  A task gets its own context with a timeout, so a client
// disconnect does not abort it.  Errors and panics are logged, never
// returned.
type Dispatcher struct {
	wg      sync.WaitGroup
	timeout time.Duration
	log     *logrus.Entry
}

// NewDispatcher creates a dispatcher whose tasks time out after timeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{timeout: timeout, log: logger.Module("tasks")}
}

// Go schedules fn.  fields are attached to any failure log line.
func (d *Dispatcher) Go(task string, fields logrus.Fields, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		entry := d.log.WithFields(fields).WithField("task", task)
		defer func() {
			if r := recover(); r != nil {
				entry.Errorf("task panicked: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			entry.WithError(err).Warn("task failed")
		}
	}()
}

// Wait blocks until every scheduled task has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
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
