package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"optchain-archive/internal/components/assert"
	"optchain-archive/internal/components/chrono"
	"optchain-archive/internal/snapshot"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Config selects the database backing the catalog. A Url (libsql:// or
// https://) takes precedence over a local File.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and applies the schema.
func (config Config) OpenDB() (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch {
	case config.Url != "":
		link := config.Url
		if config.AuthToken != "" {
			parsed, err := url.Parse(link)
			if err != nil {
				return nil, err
			}
			query := parsed.Query()
			query.Set("authToken", config.AuthToken)
			parsed.RawQuery = query.Encode()
			link = parsed.String()
		}
		db, err = sql.Open("libsql", link)
		if err != nil {
			return nil, err
		}
	case config.File != "":
		if config.File != ":memory:" {
			err = os.MkdirAll(filepath.Dir(config.File), 0755)
			if err != nil {
				return nil, err
			}
		}
		db, err = sql.Open("sqlite", config.File)
		if err != nil {
			return nil, err
		}
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		if config.File != ":memory:" {
			_, err = db.Exec("PRAGMA journal_mode=WAL")
			if err != nil {
				db.Close()
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("catalog: neither a file nor a url was specified")
	}

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return db, nil
}

// Entry is one catalogued snapshot file.
type Entry struct {
	Name       string
	TakenAt    time.Time
	Path       string
	Tickers    []string
	Rows       int
	RecordedAt time.Time
}

// Catalog indexes the snapshot files that have been written.
type Catalog struct {
	db   *sql.DB
	time chrono.API
}

func New(db *sql.DB, time chrono.API) Catalog {
	assert.NotNil(db)
	assert.NotNil(time)
	return Catalog{db: db, time: time}
}

// Record inserts (or replaces, when a snapshot with the same name was written
// again) the entry of a written snapshot.
func (c Catalog) Record(ctx context.Context, s snapshot.Snapshot, path string) error {
	_, err := c.db.ExecContext(
		ctx,
		`insert or replace into snapshot(name, taken_at, path, tickers, row_count, recorded_at)
		values (?, ?, ?, ?, ?, ?)`,
		s.Name,
		s.TakenAt.Unix(),
		path,
		strings.Join(s.Tickers, ","),
		s.Rows(),
		c.time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("catalog: record %s: %w", s.Name, err)
	}
	return nil
}

// List returns the most recent entries first, at most `limit` of them
// (limit <= 0 means all).
func (c Catalog) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := c.db.QueryContext(
		ctx,
		`select name, taken_at, path, tickers, row_count, recorded_at
		from snapshot
		order by taken_at desc, name desc
		limit ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var takenAt, recordedAt int64
		var tickers string
		err := rows.Scan(&entry.Name, &takenAt, &entry.Path, &tickers, &entry.Rows, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		entry.TakenAt = time.Unix(takenAt, 0).UTC()
		entry.RecordedAt = time.Unix(recordedAt, 0).UTC()
		if tickers != "" {
			entry.Tickers = strings.Split(tickers, ",")
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
