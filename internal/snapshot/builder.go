package snapshot

import (
	"context"
	"errors"
	"fmt"
	"optchain-archive/internal/components/assert"
	"optchain-archive/internal/components/telemetry"
	"optchain-archive/internal/scrapers/yahoo"
)

const (
	report_builder_fetch = "builder.fetch"
	report_builder_parse = "builder.parse"
)

var ErrNoTickers = errors.New("snapshot: no tickers to fetch")

// Fetcher fetches the options chain page of a ticker, *yahoo.Session implements it.
type Fetcher interface {
	OptionsChain(ctx context.Context, ticker string) (yahoo.RawPage, error)
}

type Builder struct {
	tel telemetry.API
}

func NewBuilder(tel telemetry.API) Builder {
	assert.NotNil(tel)
	return Builder{tel: telemetry.NewScopedAPI("snapshot", tel)}
}

type fetchedPage struct {
	ticker string
	page   yahoo.RawPage
}

// Build fetches every ticker one after the other and parses the pages into a
// Snapshot. The first error aborts the whole build, nothing partial is returned.
func (b Builder) Build(ctx context.Context, fetcher Fetcher, tickers []string) (Snapshot, error) {
	if len(tickers) == 0 {
		return Snapshot{}, ErrNoTickers
	}

	pages := make([]fetchedPage, 0, len(tickers))
	for _, ticker := range tickers {
		page, err := fetcher.OptionsChain(ctx, ticker)
		if err != nil {
			b.tel.ReportBroken(report_builder_fetch, err, ticker)
			return Snapshot{}, fmt.Errorf("fetch %s: %w", ticker, err)
		}
		b.tel.ReportDebug("fetched page", ticker, len(page.Body))
		pages = append(pages, fetchedPage{ticker: ticker, page: page})
	}

	takenAt, err := pages[0].page.Date()
	if err != nil {
		err = &yahoo.ParseError{Ticker: pages[0].ticker, Reason: "read Date header", Err: err}
		b.tel.ReportBroken(report_builder_parse, err)
		return Snapshot{}, err
	}

	snapshot := newSnapshot(takenAt)
	for _, fetched := range pages {
		table, err := yahoo.ParsePage(fetched.ticker, fetched.page)
		if err != nil {
			b.tel.ReportBroken(report_builder_parse, err)
			return Snapshot{}, err
		}
		if table.Desynced() {
			b.tel.ReportWarning(
				report_builder_parse,
				fmt.Errorf("column lengths differ, a row had missing cells"),
				fetched.ticker,
			)
		}
		b.tel.ReportDebug("parsed table", fetched.ticker, table.Len())
		snapshot.put(fetched.ticker, table)
	}

	return snapshot, nil
}
