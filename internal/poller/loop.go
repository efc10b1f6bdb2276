package poller

import (
	"context"
	"errors"
	"fmt"
	"optchain-archive/internal/components/assert"
	"optchain-archive/internal/components/chrono"
	"optchain-archive/internal/components/telemetry"
	"time"
)

const (
	report_loop_iteration = "loop.iteration"
	report_loop_close     = "loop.close"
	report_loop_policy    = "loop.policy"
)

const (
	DefaultInterval = 300 * time.Second
	DefaultCooldown = 60 * time.Second
)

// Job is the work driven by Loop. Open establishes a session, Cycle runs once
// on the open session and Close discards it.
type Job interface {
	Open(ctx context.Context) error
	Cycle(ctx context.Context) error
	Close() error
}

type State int

const (
	// Idle means there is no live session, the next iteration opens one.
	Idle State = iota
	// Active means the session is open and cycles run on it.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

type Options struct {
	// Interval is the sleep after a successful cycle, defaults to DefaultInterval.
	Interval time.Duration
	// Policy decides the sleep after a failure, defaults to Uniform{DefaultCooldown}.
	Policy Policy
	// Clock defaults to the standard clock.
	Clock chrono.API
}

// Loop runs a Job forever. Any failure, in Open or in Cycle, is reported,
// tears the session down and is followed by a cool-down. Nothing escapes the
// loop except context cancellation.
type Loop struct {
	job      Job
	interval time.Duration
	policy   Policy
	clock    chrono.API
	tel      telemetry.API

	state    State
	failures int64
}

func New(job Job, opts Options, tel telemetry.API) *Loop {
	assert.NotNil(job)
	assert.NotNil(tel)

	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Policy == nil {
		opts.Policy = Uniform{Duration: DefaultCooldown}
	}
	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardImpl(nil)
	}

	return &Loop{
		job:      job,
		interval: opts.Interval,
		policy:   opts.Policy,
		clock:    opts.Clock,
		tel:      telemetry.NewScopedAPI("poller", tel),
		state:    Idle,
	}
}

func (l *Loop) State() State {
	return l.state
}

// Run iterates until ctx is done, it then closes the job and returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	for {
		wait, _ := l.Step(ctx)
		if ctx.Err() != nil {
			l.close()
			return ctx.Err()
		}

		err := l.clock.Sleep(ctx, wait)
		if err != nil {
			l.close()
			return err
		}
	}
}

// Step runs a single iteration and returns how long to wait before the next
// one, along with the error of the iteration (which has already been handled).
func (l *Loop) Step(ctx context.Context) (wait time.Duration, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = fmt.Errorf("poller: recovered from panic: %v", r)
		wait = l.fail(err)
	}()

	if l.state == Idle {
		err = l.job.Open(ctx)
		if err != nil {
			return l.fail(fmt.Errorf("open: %w", err)), err
		}
		l.state = Active
		l.tel.ReportDebug("session opened")
	}

	err = l.job.Cycle(ctx)
	if err != nil {
		return l.fail(err), err
	}
	return l.interval, nil
}

func (l *Loop) fail(err error) time.Duration {
	l.failures++

	cooldown := l.cooldown(err)
	if errors.Is(err, context.Canceled) {
		cooldown = 0
	}

	l.tel.ReportBroken(
		report_loop_iteration,
		err,
		l.clock.Now().Format(time.RFC3339),
		Classify(err).String(),
		cooldown.String(),
	)
	l.tel.ReportCount("failures", l.failures)

	l.close()
	return cooldown
}

// cooldown asks the policy for the cool-down of `err`, a panicking policy
// falls back to DefaultCooldown.
func (l *Loop) cooldown(err error) (d time.Duration) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		l.tel.ReportBroken(report_loop_policy, fmt.Errorf("poller: policy panicked: %v", r))
		d = DefaultCooldown
	}()
	return l.policy.Cooldown(err)
}

// close discards the job's session. The loop is Idle afterwards even if
// Close fails or panics.
func (l *Loop) close() {
	defer func() {
		l.state = Idle
		r := recover()
		if r != nil {
			l.tel.ReportWarning(report_loop_close, fmt.Errorf("poller: close panicked: %v", r))
		}
	}()

	err := l.job.Close()
	if err != nil {
		l.tel.ReportWarning(report_loop_close, err)
	}
}
