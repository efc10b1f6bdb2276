package commands

import (
	"io"
	"optchain-archive/internal/catalog"
	"optchain-archive/internal/snapshot"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// renderSnapshot writes one straddle table per ticker, `only` restricts the
// tickers when it is not empty.
func renderSnapshot(out io.Writer, s snapshot.Snapshot, only []string) {
	for _, ticker := range s.Tickers {
		if len(only) > 0 && !slices.Contains(only, ticker) {
			continue
		}

		t := newTable(out)
		t.SetTitle("%s  %s", ticker, s.Name)
		t.AppendHeader(table.Row{"Calls", "Calls", "Calls", "Calls", "Calls", "", "Puts", "Puts", "Puts", "Puts", "Puts"}, table.RowConfig{AutoMerge: true})
		t.AppendHeader(table.Row{
			"Last Price", "Change", "% Change", "Volume", "Open Interest",
			"Strike",
			"Last Price", "Change", "% Change", "Volume", "Open Interest",
		})

		for _, row := range s.Tables[ticker].Rows() {
			t.AppendRow(table.Row{
				row.Calls.LastPrice, row.Calls.Change, row.Calls.PctChange, row.Calls.Volume, row.Calls.OpenInterest,
				row.Strike,
				row.Puts.LastPrice, row.Puts.Change, row.Puts.PctChange, row.Puts.Volume, row.Puts.OpenInterest,
			})
		}

		configs := make([]table.ColumnConfig, 11)
		for i := range configs {
			configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignRight}
		}
		configs[5].Align = text.AlignCenter
		t.SetColumnConfigs(configs)
		t.Render()
	}
}

func renderCatalog(out io.Writer, entries []catalog.Entry) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Name", "Taken at", "Tickers", "Rows", "Path"})
	for _, entry := range entries {
		t.AppendRow(table.Row{
			entry.Name,
			entry.TakenAt.Format(time.RFC1123),
			strings.Join(entry.Tickers, " "),
			entry.Rows,
			entry.Path,
		})
	}
	t.Render()
}
