// Package visitors records page views without keeping raw IP addresses.
package visitors

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// Retention is how long visits are kept before Cleanup removes them.
const Retention = 365 * 24 * time.Hour

// Visit is one tracked page view.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats summarizes the visitors table.
type Stats struct {
	Total    int64 `json:"total_visitors"`
	Unique   int64 `json:"unique_visitors"`
	Today    int64 `json:"visitors_today"`
	ThisWeek int64 `json:"visitors_this_week"`
}

// Tracker writes and reads visits.
type Tracker struct {
	db     *sql.DB
	salt   []byte
	now    func() time.Time
	logger *slog.Logger
}

// NewTracker returns a Tracker with a random per-process salt, so hashes
// are stable while the server runs and unlinkable across restarts.
func NewTracker(db *sql.DB, logger *slog.Logger) (*Tracker, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return &Tracker{db: db, salt: salt, now: time.Now, logger: logger}, nil
}

// HashIP returns a truncated salted digest of ip.
func (t *Tracker) HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(ip))
	h.Write(t.salt)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Record stores a visit. Only the hashed address is written.
func (t *Tracker) Record(ctx context.Context, ip, userAgent, path string) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, t.HashIP(ip), userAgent, path, t.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Cleanup deletes visits older than Retention and returns how many went.
func (t *Tracker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := t.now().Add(-Retention).UnixMilli()
	result, err := t.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		t.logger.Info("privacy cleanup removed old visitor records", "count", n)
	}
	return n, nil
}

// Stats counts visits overall, since local midnight and over the last
// seven days.
func (t *Tracker) Stats(ctx context.Context) (Stats, error) {
	now := t.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var s Stats
	err := t.db.QueryRowContext(ctx, `
		SELECT
		  COUNT(*),
		  COUNT(DISTINCT hashed_ip),
		  COALESCE(SUM(CASE WHEN timestamp >= ? THEN 1 ELSE 0 END), 0),
		  COALESCE(SUM(CASE WHEN timestamp >= ? THEN 1 ELSE 0 END), 0)
		FROM visitors
	`, midnight.UnixMilli(), weekAgo.UnixMilli()).Scan(&s.Total, &s.Unique, &s.Today, &s.ThisWeek)
	if err != nil {
		return Stats{}, fmt.Errorf("visitor stats: %w", err)
	}
	return s, nil
}

// Recent returns the newest visits first.
func (t *Tracker) Recent(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visitors: %w", err)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		var v Visit
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp = time.UnixMilli(ts).UTC()
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
