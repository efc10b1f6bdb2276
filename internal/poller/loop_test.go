package poller

import (
	"context"
	"errors"
	"optchain-archive/internal/components/chrono"
	"optchain-archive/internal/components/telemetry"
	"optchain-archive/internal/scrapers/yahoo"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	openErr      func(n int) error
	cycleErr     func(n int) error
	panicOn      int
	panicOnClose bool

	opens  int
	cycles int
	closes int
}

func (f *fakeJob) Open(ctx context.Context) error {
	f.opens++
	if f.openErr != nil {
		return f.openErr(f.opens)
	}
	return nil
}

func (f *fakeJob) Cycle(ctx context.Context) error {
	f.cycles++
	if f.panicOn != 0 && f.cycles == f.panicOn {
		panic("index out of range")
	}
	if f.cycleErr != nil {
		return f.cycleErr(f.cycles)
	}
	return nil
}

func (f *fakeJob) Close() error {
	f.closes++
	if f.panicOnClose {
		panic("close on a nil connection")
	}
	return nil
}

type panickingPolicy struct{}

func (panickingPolicy) Cooldown(err error) time.Duration {
	panic("unknown error kind")
}

// runFor runs the loop until it has slept `sleeps` times.
func runFor(t testing.TB, loop *Loop, clock *chrono.FakeImpl, sleeps int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(n int) {
		if n >= sleeps {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
		return nil
	}
}

func newTestLoop(job Job, policy Policy) (*Loop, *chrono.FakeImpl, *telemetry.Recorder) {
	clock := chrono.NewFakeImpl(time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC))
	rec := &telemetry.Recorder{}
	loop := New(job, Options{Clock: clock, Policy: policy}, rec)
	return loop, clock, rec
}

func TestLoopAlwaysFailing(t *testing.T) {
	job := &fakeJob{cycleErr: func(int) error {
		return &yahoo.FetchError{URL: "https://finance.yahoo.com/quote/SPY/options", StatusCode: 503}
	}}
	loop, clock, rec := newTestLoop(job, nil)

	err := runFor(t, loop, clock, 25)
	require.ErrorIs(t, err, context.Canceled)

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 25)
	for _, d := range sleeps {
		require.Equal(t, 60*time.Second, d)
	}
	// a fresh session for every attempt
	require.Equal(t, 25, job.opens)
	require.Equal(t, 25, job.cycles)
	require.GreaterOrEqual(t, job.closes, 25)
	require.Len(t, rec.Find("broken", report_loop_iteration), 25)
}

func TestLoopSuccessKeepsSession(t *testing.T) {
	job := &fakeJob{}
	loop, clock, _ := newTestLoop(job, nil)

	err := runFor(t, loop, clock, 4)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, []time.Duration{300 * time.Second, 300 * time.Second, 300 * time.Second, 300 * time.Second}, clock.Sleeps())
	require.Equal(t, 1, job.opens)
	require.Equal(t, 4, job.cycles)
	// closed once when the loop stops
	require.Equal(t, 1, job.closes)
	require.Equal(t, Idle, loop.State())
}

func TestLoopRecoversAfterFailure(t *testing.T) {
	job := &fakeJob{cycleErr: func(n int) error {
		if n == 2 {
			return &yahoo.ParseError{Ticker: "SPY", Reason: "no table element found"}
		}
		return nil
	}}
	loop, clock, _ := newTestLoop(job, nil)

	require.ErrorIs(t, runFor(t, loop, clock, 3), context.Canceled)
	require.Equal(t, []time.Duration{300 * time.Second, 60 * time.Second, 300 * time.Second}, clock.Sleeps())
	require.Equal(t, 2, job.opens)
}

func TestLoopOpenFailure(t *testing.T) {
	job := &fakeJob{openErr: func(n int) error {
		if n == 1 {
			return &yahoo.TransportError{URL: "https://finance.yahoo.com", Err: errors.New("no such host")}
		}
		return nil
	}}
	loop, clock, _ := newTestLoop(job, nil)

	require.ErrorIs(t, runFor(t, loop, clock, 2), context.Canceled)
	require.Equal(t, []time.Duration{60 * time.Second, 300 * time.Second}, clock.Sleeps())
	require.Equal(t, 2, job.opens)
	require.Equal(t, 1, job.cycles)
}

func TestLoopRecoversPanic(t *testing.T) {
	job := &fakeJob{panicOn: 1}
	loop, clock, rec := newTestLoop(job, nil)

	require.ErrorIs(t, runFor(t, loop, clock, 2), context.Canceled)
	require.Equal(t, []time.Duration{60 * time.Second, 300 * time.Second}, clock.Sleeps())
	require.Len(t, rec.Find("broken", report_loop_iteration), 1)
}

func TestStepStates(t *testing.T) {
	failing := true
	job := &fakeJob{cycleErr: func(int) error {
		if failing {
			return errors.New("boom")
		}
		return nil
	}}
	loop, _, _ := newTestLoop(job, nil)
	require.Equal(t, Idle, loop.State())

	wait, err := loop.Step(context.Background())
	require.Error(t, err)
	require.Equal(t, DefaultCooldown, wait)
	require.Equal(t, Idle, loop.State())

	failing = false
	wait, err = loop.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultInterval, wait)
	require.Equal(t, Active, loop.State())
}

func TestLoopByKindPolicy(t *testing.T) {
	kinds := []error{
		&yahoo.FetchError{StatusCode: 429},
		&yahoo.ParseError{Ticker: "SPY"},
		&yahoo.TransportError{Err: errors.New("timeout")},
		errors.New("disk full"),
	}
	job := &fakeJob{cycleErr: func(n int) error {
		return kinds[(n-1)%len(kinds)]
	}}
	policy := ByKind{
		Durations: map[Kind]time.Duration{
			KindFetch:     10 * time.Minute,
			KindParse:     time.Hour,
			KindTransport: 30 * time.Second,
		},
		Fallback: time.Minute,
	}
	loop, clock, _ := newTestLoop(job, policy)

	require.ErrorIs(t, runFor(t, loop, clock, 4), context.Canceled)
	require.Equal(t, []time.Duration{10 * time.Minute, time.Hour, 30 * time.Second, time.Minute}, clock.Sleeps())
}

func TestClassify(t *testing.T) {
	require.Equal(t, KindFetch, Classify(errors.Join(errors.New("fetch SPY"), &yahoo.FetchError{StatusCode: 503})))
	require.Equal(t, KindParse, Classify(&yahoo.ParseError{}))
	require.Equal(t, KindTransport, Classify(&yahoo.TransportError{Err: context.DeadlineExceeded}))
	require.Equal(t, KindOther, Classify(errors.New("other")))
	require.Equal(t, "transport", KindTransport.String())
}

func TestLoopSurvivesPanickingPolicyAndClose(t *testing.T) {
	job := &fakeJob{
		panicOn:      1,
		panicOnClose: true,
		cycleErr: func(n int) error {
			return errors.New("boom")
		},
	}
	loop, clock, rec := newTestLoop(job, panickingPolicy{})

	wait, err := loop.Step(context.Background())
	require.Error(t, err)
	require.Equal(t, DefaultCooldown, wait)
	require.Equal(t, Idle, loop.State())

	// an ordinary failure goes through the same guarded path
	wait, err = loop.Step(context.Background())
	require.EqualError(t, err, "boom")
	require.Equal(t, DefaultCooldown, wait)
	require.Equal(t, Idle, loop.State())

	require.Len(t, rec.Find("broken", report_loop_policy), 2)
	require.Len(t, rec.Find("warning", report_loop_close), 2)

	require.ErrorIs(t, runFor(t, loop, clock, 3), context.Canceled)
	require.Equal(t, []time.Duration{DefaultCooldown, DefaultCooldown, DefaultCooldown}, clock.Sleeps())
}
