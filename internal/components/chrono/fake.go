package chrono

import (
	"context"
	"sync"
	"time"
)

// FakeImpl is an API whose Sleep returns immediately and only advances a virtual clock.
// OnSleep, if set, is called after every sleep with the number of sleeps so far.
type FakeImpl struct {
	OnSleep func(n int)

	mutex  sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFakeImpl creates a FakeImpl starting at `start`.
func NewFakeImpl(start time.Time) *FakeImpl {
	return &FakeImpl{now: start}
}

func (f *FakeImpl) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.now
}

func (f *FakeImpl) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mutex.Lock()
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
	n := len(f.sleeps)
	f.mutex.Unlock()

	if f.OnSleep != nil {
		f.OnSleep(n)
	}
	return ctx.Err()
}

// Sleeps returns every duration passed to Sleep so far.
func (f *FakeImpl) Sleeps() []time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
