package commands

import (
	"bytes"
	"context"
	"optchain-archive/internal/catalog"
	"optchain-archive/internal/components/chrono"
	"optchain-archive/internal/scrapers/yahoo"
	"optchain-archive/internal/snapshot"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSnapshot() snapshot.Snapshot {
	takenAt := time.Date(2024, 3, 8, 14, 30, 0, 0, time.UTC)
	spy := yahoo.NewTickerTable()
	spy.Calls.LastPrice = []string{"12.50", "9.10"}
	spy.Strike = []string{"505.00", "510.00"}
	spy.Puts.OpenInterest = []string{"1,204", "988"}

	qqq := yahoo.NewTickerTable()
	qqq.Strike = []string{"440.00"}

	return snapshot.Snapshot{
		Name:    snapshot.FormatName(takenAt),
		TakenAt: takenAt,
		Tickers: []string{"SPY", "QQQ"},
		Tables: map[string]yahoo.TickerTable{
			"SPY": spy,
			"QQQ": qqq,
		},
	}
}

func execute(t testing.TB, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		*showTickers = nil
	})

	err := rootCmd.ExecuteContext(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestDefaultConfig(t *testing.T) {
	config := defaultConfig()
	require.Equal(t, "info", config.LogLevel)
	require.Equal(t, filepath.Join("downloaded_data", "catalog.db"), config.Catalog.File)
	require.False(t, config.CloudflareBypass)
	require.Zero(t, config.RequestsPerSecond)
}

func TestRenderSnapshot(t *testing.T) {
	var out bytes.Buffer
	renderSnapshot(&out, testSnapshot(), nil)

	rendered := out.String()
	require.Contains(t, rendered, "SPY")
	require.Contains(t, rendered, "QQQ")
	require.Contains(t, rendered, "505.00")
	require.Contains(t, rendered, "1,204")
	require.Less(t, strings.Index(rendered, "SPY"), strings.Index(rendered, "QQQ"))

	out.Reset()
	renderSnapshot(&out, testSnapshot(), []string{"QQQ"})
	require.NotContains(t, out.String(), "505.00")
	require.Contains(t, out.String(), "440.00")
}

func TestShowCommand(t *testing.T) {
	dir := t.TempDir()
	path, err := snapshot.NewWriter(dir).Write(testSnapshot())
	require.NoError(t, err)

	out := execute(t,
		"--config", filepath.Join(dir, "missing.json5"),
		"--log-level", "error",
		"show", path, "--ticker", "SPY",
	)
	require.Contains(t, out, "510.00")
	require.NotContains(t, out, "440.00")
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "catalog.db")

	db, err := catalog.Config{File: dbPath}.OpenDB()
	require.NoError(t, err)
	s := testSnapshot()
	err = catalog.New(db, chrono.NewFakeImpl(s.TakenAt)).
		Record(context.Background(), s, filepath.Join(dir, snapshot.FileName(s)))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	configPath := filepath.Join(dir, "optchain.json5")
	err = os.WriteFile(configPath, []byte(`{
		// points the catalog at the temporary database
		catalog: { file: "`+filepath.ToSlash(dbPath)+`" },
	}`), 0644)
	require.NoError(t, err)

	out := execute(t, "--config", configPath, "--log-level", "error", "history")
	require.Contains(t, out, s.Name)
	require.Contains(t, out, "SPY QQQ")
}
