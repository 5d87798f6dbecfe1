package linkdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ytlink/internal/youtube"
)

// Link is one row of the link history.
type Link struct {
	ID         string
	VideoID    string
	Domain     string
	Scheme     sql.NullString
	SourceURL  string
	Origin     string
	Title      sql.NullString
	CreatedAt  time.Time
	LastSeenAt time.Time
	SeenCount  int64
}

// LinkInsert captures data for upserting into links.
type LinkInsert struct {
	Recognized youtube.Recognized
	SourceURL  string
	// Origin names where the link came from: "cli", "mcp", "tui" or a scanned file.
	Origin string
	Title  string
	SeenAt time.Time
}

const selectColumns = `SELECT id, video_id, domain, scheme, source_url, origin, title, created_at, last_seen_at, seen_count FROM links`

// RecordID derives the row key for a video. Every URL shape of the same video
// maps to the same key.
func RecordID(id youtube.VideoID) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://www.youtube.com/watch?v="+string(id))).String()
}

func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// OpenAndInit opens the database and creates missing tables.
func OpenAndInit(dbPath string) (*sql.DB, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

func UpsertLink(ctx context.Context, db *sql.DB, l LinkInsert) error {
	if strings.TrimSpace(string(l.Recognized.ID)) == "" || strings.TrimSpace(l.Recognized.Domain) == "" {
		return errors.New("missing video id or domain")
	}
	if strings.TrimSpace(l.Origin) == "" {
		return errors.New("missing origin")
	}
	seen := l.SeenAt
	if seen.IsZero() {
		seen = time.Now()
	}
	seen = seen.UTC()
	_, err := db.ExecContext(ctx, `INSERT INTO links
        (id, video_id, domain, scheme, source_url, origin, title, created_at, last_seen_at, seen_count)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
        ON CONFLICT(id) DO UPDATE SET
           domain=excluded.domain,
           scheme=excluded.scheme,
           source_url=excluded.source_url,
           origin=excluded.origin,
           title=COALESCE(excluded.title, links.title),
           last_seen_at=excluded.last_seen_at,
           seen_count=links.seen_count + 1
        `,
		RecordID(l.Recognized.ID), string(l.Recognized.ID), l.Recognized.Domain, nullIfEmpty(l.Recognized.Scheme),
		l.SourceURL, l.Origin, nullIfEmpty(l.Title), seen, seen,
	)
	return err
}

func GetByVideoID(ctx context.Context, db *sql.DB, id youtube.VideoID) (*Link, error) {
	row := db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, RecordID(id))
	return scanOne(row)
}

// SaveLink upserts l and returns the stored row, including its updated
// seen count.
func SaveLink(ctx context.Context, db *sql.DB, l LinkInsert) (*Link, error) {
	if err := UpsertLink(ctx, db, l); err != nil {
		return nil, err
	}
	saved, err := GetByVideoID(ctx, db, l.Recognized.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("link %s missing after upsert", l.Recognized.ID)
	}
	return saved, nil
}

// GetSince lists links seen after since, newest first. An empty origin
// matches every origin and a non-positive limit means no limit.
func GetSince(ctx context.Context, db *sql.DB, since time.Time, origin string, limit int) ([]Link, error) {
	// last_seen_at is stored as a Go time string; compare on the first 19
	// chars (YYYY-MM-DD HH:MM:SS), which SQLite's datetime() can parse.
	q := selectColumns + ` WHERE datetime(substr(last_seen_at,1,19)) >= datetime(?)`
	args := []any{since.UTC().Format("2006-01-02 15:04:05")}
	if origin != "" {
		q += " AND origin = ?"
		args = append(args, origin)
	}
	q += " ORDER BY datetime(substr(last_seen_at,1,19)) DESC, video_id"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.VideoID, &l.Domain, &l.Scheme, &l.SourceURL, &l.Origin, &l.Title, &l.CreatedAt, &l.LastSeenAt, &l.SeenCount); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanOne(row *sql.Row) (*Link, error) {
	var l Link
	if err := row.Scan(&l.ID, &l.VideoID, &l.Domain, &l.Scheme, &l.SourceURL, &l.Origin, &l.Title, &l.CreatedAt, &l.LastSeenAt, &l.SeenCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
