package poller

import (
	"errors"
	"optchain-archive/internal/scrapers/yahoo"
	"time"
)

// Policy decides how long the loop cools down after a failed iteration.
type Policy interface {
	Cooldown(err error) time.Duration
}

// Uniform applies the same cool-down to every error.
type Uniform struct {
	Duration time.Duration
}

func (u Uniform) Cooldown(error) time.Duration {
	return u.Duration
}

// Kind is the class of an iteration error.
type Kind int

const (
	KindOther Kind = iota
	KindFetch
	KindParse
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindParse:
		return "parse"
	case KindTransport:
		return "transport"
	default:
		return "other"
	}
}

// Classify returns the Kind of `err` by looking through its wrap chain.
func Classify(err error) Kind {
	var fetchErr *yahoo.FetchError
	var parseErr *yahoo.ParseError
	var transportErr *yahoo.TransportError
	switch {
	case errors.As(err, &fetchErr):
		return KindFetch
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindOther
	}
}

// ByKind picks the cool-down by the Kind of the error, kinds without an entry
// use Fallback.
type ByKind struct {
	Durations map[Kind]time.Duration
	Fallback  time.Duration
}

func (b ByKind) Cooldown(err error) time.Duration {
	d, ok := b.Durations[Classify(err)]
	if !ok {
		return b.Fallback
	}
	return d
}
