// Package refresh reloads the calendar view from its event source, on demand
// and on a cron schedule.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tripcal/internal/calendar"
	appLog "tripcal/internal/log"
	"tripcal/internal/metrics"
	"tripcal/internal/source"
)

// DefaultTimeout bounds one scheduled reload.
const DefaultTimeout = 60 * time.Second

// Reloader loads src into view and records the outcome.
type Reloader struct {
	view    *calendar.View
	src     source.Loader
	metrics *metrics.Metrics
	loc     *time.Location
	timeout time.Duration

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a Reloader. m may be nil. Cron schedules are evaluated in loc.
func New(view *calendar.View, src source.Loader, m *metrics.Metrics, loc *time.Location) *Reloader {
	if loc == nil {
		loc = time.Local
	}
	return &Reloader{
		view:    view,
		src:     src,
		metrics: m,
		loc:     loc,
		timeout: DefaultTimeout,
	}
}

// SourceName reports which source the reloader loads from.
func (r *Reloader) SourceName() string { return r.src.Name() }

// Reload runs one load. Dropped results (superseded load, closed view, or
// ctx done before the result was applied) leave the view untouched and are
// not recorded.
func (r *Reloader) Reload(ctx context.Context) error {
	start := time.Now()
	err := r.view.Load(ctx, r.src)
	if errors.Is(err, calendar.ErrSuperseded) || errors.Is(err, calendar.ErrClosed) {
		return err
	}
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	r.metrics.ObserveLoad(r.src.Name(), time.Since(start), r.view.EventCount(), err)
	if err != nil {
		return fmt.Errorf("reload from %s: %w", r.src.Name(), err)
	}
	return nil
}

// Start schedules Reload on spec, a standard five-field cron expression or
// a descriptor such as "@hourly". A run still in progress when the next
// tick fires makes that tick a no-op.
func (r *Reloader) Start(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return errors.New("refresh: already started")
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(r.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, r.scheduled); err != nil {
		return fmt.Errorf("refresh: invalid schedule %q: %w", spec, err)
	}
	c.Start()
	r.cron = c

	appLog.Info("refresh: scheduler started", "schedule", spec, "source", r.src.Name())
	return nil
}

// Stop halts the scheduler and waits for a running reload, or ctx.
func (r *Reloader) Stop(ctx context.Context) {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	appLog.Info("refresh: scheduler stopped")
}

func (r *Reloader) scheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.Reload(ctx); err != nil {
		appLog.Error("refresh: scheduled reload failed", err)
	}
}

// cronLogger routes cron's own logging to the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
