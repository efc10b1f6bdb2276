package catalog

import (
	"context"
	"optchain-archive/internal/components/chrono"
	"optchain-archive/internal/scrapers/yahoo"
	"optchain-archive/internal/snapshot"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestCatalog(t testing.TB) Catalog {
	db, err := Config{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := chrono.NewFakeImpl(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return New(db, clock)
}

func testSnapshot(takenAt time.Time, rows int, tickers ...string) snapshot.Snapshot {
	s := snapshot.Snapshot{
		Name:    snapshot.FormatName(takenAt),
		TakenAt: takenAt,
		Tickers: tickers,
		Tables:  map[string]yahoo.TickerTable{},
	}
	for _, ticker := range tickers {
		table := yahoo.NewTickerTable()
		for i := 0; i < rows; i++ {
			table.Strike = append(table.Strike, "420")
		}
		s.Tables[ticker] = table
	}
	return s
}

func TestRecordAndList(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)

	require.NoError(t, catalog.Record(ctx, testSnapshot(first, 2, "SPY", "QQQ"), "data/1_1_2024_10_15.json"))
	require.NoError(t, catalog.Record(ctx, testSnapshot(second, 3, "SPY"), "data/1_1_2024_10_20.json"))

	entries, err := catalog.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "1_1_2024_10_20", entries[0].Name)
	require.Equal(t, second, entries[0].TakenAt)
	require.Equal(t, []string{"SPY"}, entries[0].Tickers)
	require.Equal(t, 3, entries[0].Rows)

	require.Equal(t, "1_1_2024_10_15", entries[1].Name)
	require.Equal(t, []string{"SPY", "QQQ"}, entries[1].Tickers)
	require.Equal(t, 4, entries[1].Rows)
	require.Equal(t, "data/1_1_2024_10_15.json", entries[1].Path)
	require.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), entries[1].RecordedAt)

	limited, err := catalog.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestRecordReplacesSameName(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()
	takenAt := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)

	require.NoError(t, catalog.Record(ctx, testSnapshot(takenAt, 1, "SPY"), "a.json"))
	require.NoError(t, catalog.Record(ctx, testSnapshot(takenAt, 5, "SPY"), "b.json"))

	entries, err := catalog.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b.json", entries[0].Path)
	require.Equal(t, 5, entries[0].Rows)
}

func TestOpenDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	db, err := Config{File: path}.OpenDB()
	require.NoError(t, err)
	defer db.Close()
	require.FileExists(t, path)

	// applying the schema twice is harmless
	_, err = db.Exec(Schema)
	require.NoError(t, err)
}

func TestOpenDBUnconfigured(t *testing.T) {
	_, err := Config{}.OpenDB()
	require.Error(t, err)
}
