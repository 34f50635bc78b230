package feedcache

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS feeds (
    url TEXT NOT NULL,
    sha256 TEXT NOT NULL,
    retrieved_at TIMESTAMP NOT NULL,
    data BLOB NOT NULL,
    PRIMARY KEY (url, sha256)
);`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS feeds (
    url TEXT NOT NULL,
    sha256 TEXT NOT NULL,
    retrieved_at TIMESTAMPTZ NOT NULL,
    data BYTEA NOT NULL,
    PRIMARY KEY (url, sha256)
);`

// SQL backs the cache with a database. Both the sqlite3 and postgres
// drivers are supported; the statements are shared, with placeholders
// rebound for postgres.
type SQL struct {
	db     *sql.DB
	driver string
}

// NewSQL opens a cache on the given driver ("sqlite3" or "postgres")
// and DSN, creating the schema if needed.
func NewSQL(driver, dsn string) (*SQL, error) {
	if driver != "sqlite3" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported driver '%s'", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == "sqlite3" {
		// An in-memory sqlite database exists per connection.
		db.SetMaxOpenConns(1)
	}

	schema := sqliteSchema
	if driver == "postgres" {
		schema = postgresSchema
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQL{db: db, driver: driver}, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// rebind rewrites ?-placeholders to $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	out := []byte{}
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (s *SQL) ListFeeds(url string) ([]Feed, error) {
	query := `
SELECT url, sha256, retrieved_at FROM feeds
ORDER BY retrieved_at DESC`
	args := []interface{}{}
	if url != "" {
		query = `
SELECT url, sha256, retrieved_at FROM feeds
WHERE url = ?
ORDER BY retrieved_at DESC`
		args = append(args, url)
	}

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing feeds: %w", err)
	}
	defer rows.Close()

	feeds := []Feed{}
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.URL, &f.SHA256, &f.RetrievedAt); err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

func (s *SQL) WriteFeed(feed Feed, data []byte) error {
	_, err := s.db.Exec(s.rebind(`
DELETE FROM feeds WHERE url = ? AND sha256 = ?`),
		feed.URL, feed.SHA256,
	)
	if err != nil {
		return fmt.Errorf("clearing feed: %w", err)
	}

	_, err = s.db.Exec(s.rebind(`
INSERT INTO feeds (url, sha256, retrieved_at, data)
VALUES (?, ?, ?, ?)`),
		feed.URL, feed.SHA256, feed.RetrievedAt, data,
	)
	if err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}
	return nil
}

func (s *SQL) ReadFeed(url, sha256 string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(s.rebind(`
SELECT data FROM feeds WHERE url = ? AND sha256 = ?`),
		url, sha256,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNoFeed
	}
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	return data, nil
}
