package yahoo

import (
	"net/http"
	"time"
)

// RawPage is the response to a single GET, it is consumed right after the fetch.
type RawPage struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (p RawPage) Text() string {
	return string(p.Body)
}

// Date parses the "Date" response header.
func (p RawPage) Date() (time.Time, error) {
	value := p.Header.Get("Date")
	if value == "" {
		return time.Time{}, errMissingDate
	}
	return http.ParseTime(value)
}

// Side holds the five columns of one side (calls or puts) of a straddle table.
// The declaration order is the order the columns are serialized in.
type Side struct {
	LastPrice    []string `json:"Last Price"`
	Change       []string `json:"Change"`
	PctChange    []string `json:"% Change"`
	Volume       []string `json:"Volume"`
	OpenInterest []string `json:"Open Interest"`
}

func newSide() Side {
	return Side{
		LastPrice:    []string{},
		Change:       []string{},
		PctChange:    []string{},
		Volume:       []string{},
		OpenInterest: []string{},
	}
}

// TickerTable is the parsed straddle table of one ticker. Cells are kept
// as trimmed text, nothing is coerced into numbers.
type TickerTable struct {
	Calls  Side     `json:"Calls"`
	Strike []string `json:"Strike"`
	Puts   Side     `json:"Puts"`
}

// NewTickerTable returns a table with every column empty (but not nil).
func NewTickerTable() TickerTable {
	return TickerTable{
		Calls:  newSide(),
		Strike: []string{},
		Puts:   newSide(),
	}
}

// Len returns the length of the longest column.
func (t TickerTable) Len() int {
	longest := 0
	for _, col := range Columns {
		n := len(*col.slot(&t))
		if n > longest {
			longest = n
		}
	}
	return longest
}

// Desynced reports whether the columns have different lengths, which happens
// when a row had fewer cells than there are columns.
func (t TickerTable) Desynced() bool {
	first := len(*Columns[0].slot(&t))
	for _, col := range Columns[1:] {
		if len(*col.slot(&t)) != first {
			return true
		}
	}
	return false
}

// OptionQuote is one side of an OptionRow.
type OptionQuote struct {
	LastPrice    string
	Change       string
	PctChange    string
	Volume       string
	OpenInterest string
}

// OptionRow is a single row of a straddle table: calls on the left,
// the strike in the middle and puts on the right.
type OptionRow struct {
	Calls  OptionQuote
	Strike string
	Puts   OptionQuote
}

// Rows reassembles the table row by row. Columns shorter than the longest one
// read as "" past their end.
func (t TickerTable) Rows() []OptionRow {
	n := t.Len()
	rows := make([]OptionRow, n)
	for i := range rows {
		cell := func(col []string) string {
			if i < len(col) {
				return col[i]
			}
			return ""
		}
		rows[i] = OptionRow{
			Calls: OptionQuote{
				LastPrice:    cell(t.Calls.LastPrice),
				Change:       cell(t.Calls.Change),
				PctChange:    cell(t.Calls.PctChange),
				Volume:       cell(t.Calls.Volume),
				OpenInterest: cell(t.Calls.OpenInterest),
			},
			Strike: cell(t.Strike),
			Puts: OptionQuote{
				LastPrice:    cell(t.Puts.LastPrice),
				Change:       cell(t.Puts.Change),
				PctChange:    cell(t.Puts.PctChange),
				Volume:       cell(t.Puts.Volume),
				OpenInterest: cell(t.Puts.OpenInterest),
			},
		}
	}
	return rows
}
