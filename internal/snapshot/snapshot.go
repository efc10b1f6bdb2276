package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"optchain-archive/internal/scrapers/yahoo"
	"time"
)

// Snapshot is the result of one poll cycle over every ticker.
type Snapshot struct {
	// Name is derived from the server date of the first response, see FormatName.
	Name    string
	TakenAt time.Time
	// Tickers keeps the fetch order, it is also the key order of the json encoding.
	Tickers []string
	Tables  map[string]yahoo.TickerTable
}

func newSnapshot(takenAt time.Time) Snapshot {
	return Snapshot{
		Name:    FormatName(takenAt),
		TakenAt: takenAt,
		Tables:  map[string]yahoo.TickerTable{},
	}
}

func (s *Snapshot) put(ticker string, table yahoo.TickerTable) {
	if _, exists := s.Tables[ticker]; !exists {
		s.Tickers = append(s.Tickers, ticker)
	}
	s.Tables[ticker] = table
}

// Rows returns the total number of rows over every ticker.
func (s Snapshot) Rows() int {
	total := 0
	for _, table := range s.Tables {
		total += table.Len()
	}
	return total
}

// MarshalJSON encodes the snapshot as an object keyed by ticker, in fetch order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var out bytes.Buffer
	out.WriteByte('{')
	for i, ticker := range s.Tickers {
		if i > 0 {
			out.WriteByte(',')
		}
		key, err := marshal(ticker, "")
		if err != nil {
			return nil, err
		}
		value, err := marshal(s.Tables[ticker], "")
		if err != nil {
			return nil, err
		}
		out.Write(key)
		out.WriteByte(':')
		out.Write(value)
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// UnmarshalJSON decodes a snapshot file, keeping the key order of the document.
// Name and TakenAt are not part of the encoding and are left untouched.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot: expected a json object, got %v", token)
	}

	s.Tickers = nil
	s.Tables = map[string]yahoo.TickerTable{}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		ticker, _ := token.(string)

		table := yahoo.NewTickerTable()
		err = decoder.Decode(&table)
		if err != nil {
			return err
		}
		s.put(ticker, table)
	}

	_, err = decoder.Token()
	return err
}

// Encode renders the snapshot as json indented with 2 spaces.
func (s Snapshot) Encode() ([]byte, error) {
	return marshal(s, "  ")
}

// marshal is json.Marshal without html escaping, cells are written as they
// appeared on the page. Non-ASCII text is written as UTF-8, not as \u escapes.
func marshal(value any, indent string) ([]byte, error) {
	var out bytes.Buffer
	encoder := json.NewEncoder(&out)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	err := encoder.Encode(value)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(out.Bytes(), []byte("\n")), nil
}
