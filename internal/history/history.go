package history

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ytlink/internal/linkdb"
)

// Run prints links seen in the last hours, newest first.
func Run(ctx context.Context, w io.Writer, dbPath string, hours int, origin string) error {
	if hours <= 0 {
		hours = 24
	}

	if !fileExists(dbPath) {
		fmt.Fprintf(w, "ytlink database not found at %s\n", dbPath)
		fmt.Fprintln(w, "Hint: Run 'ytlink id --save <url>' or 'ytlink scan --save <file>' to populate it, or set database.path in ~/.config/ytlink/config.yaml.")
		return nil
	}

	db, err := linkdb.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed opening the ytlink database: %w", err)
	}
	defer db.Close()

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	rows, err := linkdb.GetSince(ctx, db, since, origin, 0)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such table") {
			fmt.Fprintln(w, "ytlink database is present but not initialized (missing tables)")
			fmt.Fprintln(w, "Hint: Save one link to initialize the schema.")
			return nil
		}
		return fmt.Errorf("query failed while reading from the ytlink database: %w", err)
	}

	if len(rows) == 0 {
		fmt.Fprintf(w, "No links found in the last %d hours.\n", hours)
		return nil
	}

	fmt.Fprintf(w, "Found %d links from the last %d hours:\n\n", len(rows), hours)

	for _, r := range rows {
		title := "No title"
		if r.Title.Valid && strings.TrimSpace(r.Title.String) != "" {
			title = r.Title.String
		}

		fmt.Fprintf(w, "Video: %s\n", r.VideoID)
		fmt.Fprintf(w, "Title: %s\n", title)
		fmt.Fprintf(w, "URL: %s\n", r.SourceURL)
		fmt.Fprintf(w, "Origin: %s\n", r.Origin)
		fmt.Fprintf(w, "Seen: %d times, last %s\n", r.SeenCount, r.LastSeenAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintln(w, strings.Repeat("-", 80))
	}

	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err == nil {
		return true
	}
	return false
}
