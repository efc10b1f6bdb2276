package snapshot

import (
	"context"
	"errors"
	"fmt"
	"optchain-archive/internal/components/assert"
	"optchain-archive/internal/components/telemetry"
	"optchain-archive/internal/scrapers/yahoo"
	"optchain-archive/lib/restyutil"
)

const (
	report_archiver_open   = "archiver.open"
	report_archiver_cycle  = "archiver.cycle"
	report_archiver_record = "archiver.record"
)

var errNoSession = errors.New("snapshot: archiver has no open session")

// Session is what the archiver needs from an http session.
type Session interface {
	Fetcher
	Close() error
}

// SessionOpener creates a new, warmed up session.
type SessionOpener func(ctx context.Context) (Session, error)

// YahooSessionOpener opens *yahoo.Session values with the given options. A
// DumpDir is turned into a single Dump on first use, every session opened
// afterwards numbers its exchanges after the ones before it.
func YahooSessionOpener(opts yahoo.SessionOptions, tel telemetry.API) SessionOpener {
	return func(ctx context.Context) (Session, error) {
		if opts.Dump == nil && opts.DumpDir != "" {
			dump, err := restyutil.NewDump(opts.DumpDir)
			if err != nil {
				return nil, fmt.Errorf("create dump dir: %w", err)
			}
			opts.Dump = dump
		}

		session, err := yahoo.NewSession(ctx, opts, tel)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// Catalog keeps an index of the snapshots that have been written.
type Catalog interface {
	Record(ctx context.Context, s Snapshot, path string) error
}

type ArchiverOptions struct {
	Tickers     []string
	OpenSession SessionOpener
	Writer      Writer
	// Catalog is optional.
	Catalog Catalog
}

// Archiver owns the http session and runs one build + write per cycle.
// It is not safe for concurrent use.
type Archiver struct {
	tickers     []string
	openSession SessionOpener
	builder     Builder
	writer      Writer
	catalog     Catalog
	tel         telemetry.API

	session Session
	written int64
}

func NewArchiver(opts ArchiverOptions, tel telemetry.API) *Archiver {
	assert.NotNil(tel)
	assert.NotNil(opts.OpenSession)
	assert.NotEmptySlice(opts.Tickers)

	return &Archiver{
		tickers:     opts.Tickers,
		openSession: opts.OpenSession,
		builder:     NewBuilder(tel),
		writer:      opts.Writer,
		catalog:     opts.Catalog,
		tel:         telemetry.NewScopedAPI("snapshot", tel),
	}
}

// Open creates a new session, closing the previous one if there is any.
func (a *Archiver) Open(ctx context.Context) error {
	err := a.Close()
	if err != nil {
		a.tel.ReportWarning(report_archiver_open, fmt.Errorf("close previous session: %w", err))
	}

	session, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	a.session = session
	return nil
}

// Cycle builds a snapshot with the open session and writes it.
func (a *Archiver) Cycle(ctx context.Context) error {
	_, err := a.Snapshot(ctx)
	return err
}

// Snapshot is Cycle, but returns the path of the written file.
func (a *Archiver) Snapshot(ctx context.Context) (string, error) {
	if a.session == nil {
		return "", errNoSession
	}

	snapshot, err := a.builder.Build(ctx, a.session, a.tickers)
	if err != nil {
		return "", err
	}

	path, err := a.writer.Write(snapshot)
	if err != nil {
		a.tel.ReportBroken(report_archiver_cycle, err, snapshot.Name)
		return "", err
	}
	a.written++
	a.tel.ReportCount("snapshots-written", a.written)
	a.tel.ReportDebug("snapshot written", path, snapshot.Rows())

	if a.catalog != nil {
		// the file is already on disk, a catalog failure does not invalidate the cycle
		err = a.catalog.Record(ctx, snapshot, path)
		if err != nil {
			a.tel.ReportWarning(report_archiver_record, err, path)
		}
	}
	return path, nil
}

// Close discards the session, the next Cycle requires a new Open.
func (a *Archiver) Close() error {
	if a.session == nil {
		return nil
	}
	err := a.session.Close()
	a.session = nil
	return err
}
