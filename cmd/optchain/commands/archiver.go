package commands

import (
	"optchain-archive/internal/catalog"
	"optchain-archive/internal/components/chrono"
	"optchain-archive/internal/scrapers/yahoo"
	"optchain-archive/internal/snapshot"
)

const report_commands_catalog = "commands.catalog"

// newArchiver wires the archiver from the loaded configuration. The catalog
// is optional, when it cannot be opened snapshots are still written.
func newArchiver() (*snapshot.Archiver, func()) {
	opts := snapshot.ArchiverOptions{
		Tickers: Tickers,
		OpenSession: snapshot.YahooSessionOpener(yahoo.SessionOptions{
			RequestsPerSecond: cfg.RequestsPerSecond,
			CloudflareBypass:  cfg.CloudflareBypass,
			DumpDir:           cfg.DumpDir,
		}, tel),
		Writer: snapshot.NewWriter(DataDir),
	}

	cleanup := func() {}
	db, err := cfg.Catalog.OpenDB()
	if err != nil {
		tel.ReportWarning(report_commands_catalog, err)
	} else {
		opts.Catalog = catalog.New(db, chrono.NewStandardImpl(nil))
		cleanup = func() { db.Close() }
	}

	archiver := snapshot.NewArchiver(opts, tel)
	return archiver, func() {
		archiver.Close()
		cleanup()
	}
}
