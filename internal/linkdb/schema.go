package linkdb

import "database/sql"

// InitSchema ensures the DB has the tables needed for link history.
func InitSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS links (
            id TEXT PRIMARY KEY,
            video_id TEXT NOT NULL,
            domain TEXT NOT NULL,
            scheme TEXT,
            source_url TEXT NOT NULL,
            origin TEXT NOT NULL,
            title TEXT,
            created_at TIMESTAMP NOT NULL,
            last_seen_at TIMESTAMP NOT NULL,
            seen_count INTEGER DEFAULT 1
        )`,
		`CREATE INDEX IF NOT EXISTS idx_links_last_seen_at ON links(last_seen_at)`,
		`CREATE INDEX IF NOT EXISTS idx_links_video_id ON links(video_id)`,
		`CREATE INDEX IF NOT EXISTS idx_links_source_url ON links(source_url)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
