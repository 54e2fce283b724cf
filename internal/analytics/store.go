// Package analytics keeps privacy-conscious site metrics: visits with hashed
// IP addresses and per-verb terminal command counters. Command text itself is
// never stored.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Privacy-conscious visitor record
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"` // Hashed instead of raw IP for privacy
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type CommandStat struct {
	Verb     string    `json:"verb"`
	Runs     int64     `json:"runs"`
	Failures int64     `json:"failures"`
	LastRun  time.Time `json:"last_run"`
}

type PathStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type Stats struct {
	TotalVisitors    int64         `json:"total_visitors"`
	UniqueVisitors   int64         `json:"unique_visitors"`
	VisitorsToday    int64         `json:"visitors_today"`
	VisitorsThisWeek int64         `json:"visitors_this_week"`
	TotalCommands    int64         `json:"total_commands"`
	FailedCommands   int64         `json:"failed_commands"`
	TopCommands      []CommandStat `json:"top_commands"`
	TopPaths         []PathStat    `json:"top_paths"`
	RecentVisitors   []Visitor     `json:"recent_visitors"`
}

// Store is the sqlite-backed metrics store.
type Store struct {
	db    *sql.DB
	salt  string
	clock func() time.Time
}

// Open opens (or creates) the database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	// sqlite allows one writer; tracking runs in background goroutines.
	db.SetMaxOpenConns(1)

	salt, err := randomHex(32)
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db, salt: salt, clock: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,  -- Store hashed IP instead of raw IP
			user_agent TEXT,
			path TEXT,
			ts INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS visitors_ts ON visitors(ts)`,
		`CREATE TABLE IF NOT EXISTS command_stats (
			verb TEXT PRIMARY KEY,
			runs INTEGER NOT NULL DEFAULT 0,
			failures INTEGER NOT NULL DEFAULT 0,
			last_run INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate analytics db: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashIP hashes an IP address with the per-process salt (consistent per IP).
func (s *Store) HashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + s.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16] // Truncate for storage efficiency
}

// RecordVisit stores one page view with a hashed IP.
func (s *Store) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, ts) VALUES (?, ?, ?, ?)`,
		s.HashIP(ip), userAgent, path, s.clock().Unix())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordCommand bumps the counters for one executed verb.
func (s *Store) RecordCommand(ctx context.Context, verb string, success bool) error {
	failed := 0
	if !success {
		failed = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO command_stats (verb, runs, failures, last_run) VALUES (?, 1, ?, ?)
		ON CONFLICT(verb) DO UPDATE SET
			runs = runs + 1,
			failures = failures + excluded.failures,
			last_run = excluded.last_run
	`, verb, failed, s.clock().Unix())
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

// Cleanup removes visits older than maxAge and returns how many were dropped.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.clock().Add(-maxAge).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	return result.RowsAffected()
}

// Stats gathers the admin dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := s.clock()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()
	weekAgo := now.Add(-7 * 24 * time.Hour).Unix()

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE ts >= ?`, []any{startOfDay}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE ts >= ?`, []any{weekAgo}},
		{&stats.TotalCommands, `SELECT COALESCE(SUM(runs), 0) FROM command_stats`, nil},
		{&stats.FailedCommands, `SELECT COALESCE(SUM(failures), 0) FROM command_stats`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if stats.TopCommands, err = s.TopCommands(ctx, 10); err != nil {
		return nil, err
	}
	if stats.TopPaths, err = s.topPaths(ctx, 10); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = s.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}

// TopCommands lists verbs by run count.
func (s *Store) TopCommands(ctx context.Context, limit int) ([]CommandStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT verb, runs, failures, last_run FROM command_stats
		ORDER BY runs DESC, verb ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top commands: %w", err)
	}
	defer rows.Close()

	var out []CommandStat
	for rows.Next() {
		var c CommandStat
		var last int64
		if err := rows.Scan(&c.Verb, &c.Runs, &c.Failures, &last); err != nil {
			return nil, fmt.Errorf("top commands: %w", err)
		}
		c.LastRun = time.Unix(last, 0)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) topPaths(ctx context.Context, limit int) ([]PathStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views FROM visitors
		GROUP BY path ORDER BY views DESC, path ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}
	defer rows.Close()

	var out []PathStat
	for rows.Next() {
		var p PathStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, fmt.Errorf("top paths: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecentVisitors lists the latest visits, newest first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, ts FROM visitors
		ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visitors: %w", err)
	}
	defer rows.Close()

	var out []Visitor
	for rows.Next() {
		var v Visitor
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("recent visitors: %w", err)
		}
		v.Timestamp = time.Unix(ts, 0)
		out = append(out, v)
	}
	return out, rows.Err()
}

// RandomToken returns n random bytes hex encoded.
func RandomToken(n int) (string, error) {
	return randomHex(n)
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
