package database

import (
	"time"

	"github.com/yourusername/marvin/internal/errors"
)

const (
	insertRetryCount = 5
	insertRetrySleep = 1 * time.Second
)

// URLRecord is one sighting of a URL on a channel.
type URLRecord struct {
	Seen    int64
	Channel string
	Nick    string
	URL     string
}

// URLStats aggregates prior sightings of a URL on a channel inside the
// duplicate-detection window.
type URLStats struct {
	Count     int64
	FirstSeen int64
	LastSeen  int64
}

// InsertURL appends a URL sighting. Transient failures are retried a
// bounded number of times with a fixed sleep; when all retries are
// exhausted the record is dropped and the last error returned. The caller
// logs it and moves on; a storage failure never blocks the queue for good
// or crashes the process.
func (db *DB) InsertURL(rec *URLRecord) error {
	query := `INSERT INTO urls (id, seen, channel, nick, url) VALUES (NULL, ?, ?, ?, ?)`

	var lastErr error
	for attempt := 0; attempt < insertRetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(insertRetrySleep)
		}
		_, lastErr = db.conn.Exec(query, rec.Seen, rec.Channel, rec.Nick, rec.URL)
		if lastErr == nil {
			return nil
		}
	}
	return errors.NewPersistenceError("insert url", lastErr)
}

// QueryURL returns aggregate sighting stats for (url, channel) with
// seen timestamps inside the expiry window ending now.
func (db *DB) QueryURL(url, channel string, window time.Duration) (*URLStats, error) {
	query := `
		SELECT COUNT(id), COALESCE(MIN(seen), 0), COALESCE(MAX(seen), 0)
		FROM urls
		WHERE url = ? AND channel = ? AND seen >= ?
	`
	cutoff := time.Now().Add(-window).Unix()

	stats := &URLStats{}
	err := db.conn.QueryRow(query, url, channel, cutoff).Scan(
		&stats.Count,
		&stats.FirstSeen,
		&stats.LastSeen,
	)
	if err != nil {
		return nil, errors.NewPersistenceError("query url", err)
	}
	return stats, nil
}
