package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Dump writes every exchange made by the clients it is attached to into a
// directory, one file per response named <n>.http in the order they were
// received. A single Dump can be attached to any number of clients, they
// share the numbering.
type Dump struct {
	dir     string
	counter *uint64
}

// NewDump creates `dir` if it does not exist. Numbering continues after the
// highest <n>.http already in `dir`, existing files are never overwritten.
func NewDump(dir string) (*Dump, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	last, err := lastExchange(dir)
	if err != nil {
		return nil, err
	}
	return &Dump{dir: dir, counter: &last}, nil
}

func lastExchange(dir string) (uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var last uint64
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".http")
		if !ok || entry.IsDir() {
			continue
		}
		n, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			continue
		}
		last = max(last, n)
	}
	return last, nil
}

func (d *Dump) Dir() string {
	return d.dir
}

// Attach registers the dump on `client`. Errors writing the dump are logged
// and never fail the request.
func (d *Dump) Attach(client *resty.Client) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(d.counter, 1)
		path := filepath.Join(d.dir, fmt.Sprintf("%d.http", id))
		err := os.WriteFile(path, []byte(FormatExchange(res)), 0600)
		if err != nil {
			slog.Warn("failed to write http dump", "path", path, "err", err)
		}
		return nil
	})
}
