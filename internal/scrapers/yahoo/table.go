package yahoo

import (
	"bytes"
	"optchain-archive/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Column binds a destination field of TickerTable to the index of the cell
// that fills it.
type Column struct {
	Name  string
	Index int
	slot  func(t *TickerTable) *[]string
}

// Columns is the positional layout of a straddle table row.
var Columns = []Column{
	{"Calls/Last Price", 0, func(t *TickerTable) *[]string { return &t.Calls.LastPrice }},
	{"Calls/Change", 1, func(t *TickerTable) *[]string { return &t.Calls.Change }},
	{"Calls/% Change", 2, func(t *TickerTable) *[]string { return &t.Calls.PctChange }},
	{"Calls/Volume", 3, func(t *TickerTable) *[]string { return &t.Calls.Volume }},
	{"Calls/Open Interest", 4, func(t *TickerTable) *[]string { return &t.Calls.OpenInterest }},
	{"Strike", 5, func(t *TickerTable) *[]string { return &t.Strike }},
	{"Puts/Last Price", 6, func(t *TickerTable) *[]string { return &t.Puts.LastPrice }},
	{"Puts/Change", 7, func(t *TickerTable) *[]string { return &t.Puts.Change }},
	{"Puts/% Change", 8, func(t *TickerTable) *[]string { return &t.Puts.PctChange }},
	{"Puts/Volume", 9, func(t *TickerTable) *[]string { return &t.Puts.Volume }},
	{"Puts/Open Interest", 10, func(t *TickerTable) *[]string { return &t.Puts.OpenInterest }},
}

// appendCells distributes `cells` over the columns by position, stopping at
// whichever of the two runs out first.
func (t *TickerTable) appendCells(cells []string) {
	for _, col := range Columns {
		if col.Index >= len(cells) {
			continue
		}
		slot := col.slot(t)
		*slot = append(*slot, cells[col.Index])
	}
}

// ParseTable converts a <table> selection into a TickerTable. The first row is
// the header and is skipped; every other row contributes the trimmed text of
// its <td> cells.
func ParseTable(table *goquery.Selection) TickerTable {
	out := NewTickerTable()
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		out.appendCells(htmlutil.TrimmedTexts(row.Find("td")))
	})
	return out
}

// ParsePage finds the first <table> in a page and parses it.
func ParsePage(ticker string, page RawPage) (TickerTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return TickerTable{}, &ParseError{Ticker: ticker, Reason: "read html", Err: err}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return TickerTable{}, &ParseError{Ticker: ticker, Reason: "no table element found"}
	}
	return ParseTable(table), nil
}
