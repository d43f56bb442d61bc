// Package history provides an optional SQLite-backed store for Response
// and MultiResponse records, so a long-running operator tool can look
// back at what was sent to a device and what came back.
package history

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/netdrv/netdrv/errs"
	"github.com/netdrv/netdrv/response"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	host TEXT NOT NULL,
	port INTEGER NOT NULL,
	input TEXT NOT NULL,
	result TEXT NOT NULL,
	failed INTEGER NOT NULL,
	start_time INTEGER NOT NULL,
	end_time INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS responses_host_idx ON responses (host, start_time);
`

// Store is an optional SQLite-backed history of Response records, using
// modernc.org/sqlite's pure-Go driver so netdrv stays cgo-free.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures the responses table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap("history: opening database", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errs.Wrap("history: creating schema", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts r into the store.
func (s *Store) Record(r *response.Response) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (host, port, input, result, failed, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Host, r.Port, r.Input, r.Result, boolToInt(r.Failed),
		r.StartTime.UnixNano(), r.EndTime.UnixNano(),
	)
	if err != nil {
		return errs.Wrap("history: recording response", err)
	}

	return nil
}

// RecordMulti inserts every response in m.
func (s *Store) RecordMulti(m *response.MultiResponse) error {
	for _, r := range m.Responses {
		if err := s.Record(r); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns up to limit responses for host, most recent first.
func (s *Store) Recent(host string, limit int) ([]*response.Response, error) {
	rows, err := s.db.Query(
		`SELECT host, port, input, result, failed, start_time, end_time
		 FROM responses WHERE host = ? ORDER BY start_time DESC LIMIT ?`,
		host, limit,
	)
	if err != nil {
		return nil, errs.Wrap("history: querying recent responses", err)
	}
	defer rows.Close()

	var out []*response.Response

	for rows.Next() {
		var (
			r                    response.Response
			failed               int
			startNanos, endNanos int64
		)

		if err := rows.Scan(&r.Host, &r.Port, &r.Input, &r.Result, &failed, &startNanos, &endNanos); err != nil {
			return nil, errs.Wrap("history: scanning response row", err)
		}

		r.Failed = failed != 0
		r.StartTime = time.Unix(0, startNanos)
		r.EndTime = time.Unix(0, endNanos)

		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap("history: iterating response rows", err)
	}

	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
