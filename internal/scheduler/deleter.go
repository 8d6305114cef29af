package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fabricbot/fabricbot/internal/core"
	"github.com/fabricbot/fabricbot/internal/health"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const component = "deleter"

// Clock supplies waits to the deleter. Tests replace it to avoid sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Recorder persists failures nobody is waiting on.
type Recorder interface {
	LogError(component, message string) error
}

// State is a position in a deletion's lifecycle.
type State int32

const (
	StatePending State = iota
	StateAttempting
	StateDone
	StateFailed
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCanceled
}

// Task is the handle returned for one scheduled deletion. The caller may
// ignore it; it exists for observation and tests.
type Task struct {
	ID     uuid.UUID
	Target core.MessageHandle
	Delay  time.Duration

	state       atomic.Int32
	attempts    atomic.Int32
	alreadyGone bool
	err         error
	done        chan struct{}
}

// State returns the current state.
func (t *Task) State() State { return State(t.state.Load()) }

// Attempts returns how many delete calls have been issued.
func (t *Task) Attempts() int { return int(t.attempts.Load()) }

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the last delete error of a failed task. Only valid after Done.
func (t *Task) Err() error { return t.err }

// AlreadyGone reports whether the task finished because the message was
// missing. Only valid after Done.
func (t *Task) AlreadyGone() bool { return t.alreadyGone }

// Deleter runs delayed message deletions, each on its own goroutine, with one
// retry (after the same delay) on any failure other than core.ErrNotFound.
type Deleter struct {
	client   core.MessageDeleter
	clock    Clock
	recorder Recorder
	ctx      context.Context
	wg       sync.WaitGroup

	inflight atomic.Int64
	done     atomic.Int64
	failed   atomic.Int64
	lastFail atomic.Int64 // unix nanos
}

// Stats counts tasks by outcome since the Deleter was created.
type Stats struct {
	InFlight int64
	Done     int64
	Failed   int64
}

// Option configures a Deleter.
type Option func(*Deleter)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(d *Deleter) { d.clock = c }
}

// WithRecorder persists terminal failures in addition to logging them.
func WithRecorder(r Recorder) Option {
	return func(d *Deleter) { d.recorder = r }
}

// NewDeleter creates a Deleter whose tasks live as long as ctx.
// Cancelling ctx abandons every task that has not finished.
func NewDeleter(ctx context.Context, client core.MessageDeleter, opts ...Option) *Deleter {
	d := &Deleter{
		client: client,
		clock:  realClock{},
		ctx:    ctx,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule arranges for msg to be deleted after delay and returns at once.
// A negative delay counts as zero.
func (d *Deleter) Schedule(msg core.MessageHandle, delay time.Duration, allowRetry bool) *Task {
	if delay < 0 {
		delay = 0
	}
	t := &Task{
		ID:     uuid.New(),
		Target: msg,
		Delay:  delay,
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	d.inflight.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.inflight.Add(-1)
		d.run(t, retryPolicy(delay, allowRetry))
		switch t.State() {
		case StateDone:
			d.done.Add(1)
		case StateFailed:
			d.failed.Add(1)
			d.lastFail.Store(d.clock.Now().UnixNano())
		}
	}()
	return t
}

// Wait blocks until every scheduled task has finished.
func (d *Deleter) Wait() {
	d.wg.Wait()
}

// Stats returns the current counters.
func (d *Deleter) Stats() Stats {
	return Stats{
		InFlight: d.inflight.Load(),
		Done:     d.done.Load(),
		Failed:   d.failed.Load(),
	}
}

// HealthCheck reports degraded once any deletion has failed for good.
func (d *Deleter) HealthCheck() health.ComponentHealth {
	s := d.Stats()
	h := health.ComponentHealth{
		Name:    component,
		Status:  health.StatusOK,
		Message: fmt.Sprintf("%d in flight, %d done, %d failed", s.InFlight, s.Done, s.Failed),
	}
	if s.Failed > 0 {
		h.Status = health.StatusDegraded
		h.LastError = time.Unix(0, d.lastFail.Load()).UTC()
	}
	return h
}

// retryPolicy yields the wait before each retry: the original delay, at most once.
func retryPolicy(delay time.Duration, allowRetry bool) retry.Backoff {
	var max uint64
	if allowRetry {
		max = 1
	}
	constant := retry.BackoffFunc(func() (time.Duration, bool) { return delay, false })
	return retry.WithMaxRetries(max, constant)
}

func (d *Deleter) run(t *Task, policy retry.Backoff) {
	defer close(t.done)
	log := slog.With("component", component, "task_id", t.ID.String(), "message", t.Target.String())

	wait := t.Delay
	for {
		t.state.Store(int32(StatePending))
		select {
		case <-d.ctx.Done():
			t.state.Store(int32(StateCanceled))
			log.Debug("Deletion abandoned", "reason", d.ctx.Err())
			return
		case <-d.clock.After(wait):
		}

		t.state.Store(int32(StateAttempting))
		attempt := t.attempts.Add(1)
		err := d.client.DeleteMessage(d.ctx, t.Target)
		switch {
		case err == nil:
			t.state.Store(int32(StateDone))
			log.Debug("Message deleted", "attempt", attempt)
			return
		case errors.Is(err, core.ErrNotFound):
			t.alreadyGone = true
			t.state.Store(int32(StateDone))
			log.Debug("Message already gone", "attempt", attempt)
			return
		case d.ctx.Err() != nil:
			t.state.Store(int32(StateCanceled))
			log.Debug("Deletion abandoned", "reason", d.ctx.Err())
			return
		}

		next, stop := policy.Next()
		if stop {
			t.err = err
			t.state.Store(int32(StateFailed))
			log.Error("Message deletion failed", "attempt", attempt, "error", err)
			d.record(t, err)
			return
		}
		log.Warn("Message deletion failed, retrying", "attempt", attempt, "retry_in", next, "error", err)
		wait = next
	}
}

func (d *Deleter) record(t *Task, err error) {
	if d.recorder == nil {
		return
	}
	msg := fmt.Sprintf("delete %s failed after %d attempts: %v", t.Target, t.Attempts(), err)
	if rerr := d.recorder.LogError(component, msg); rerr != nil {
		slog.Warn("Failed to record deletion failure", "component", component, "error", rerr)
	}
}
