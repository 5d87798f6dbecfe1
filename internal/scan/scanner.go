package scan

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"ytlink/internal/linkdb"
)

// Format selects the parser used for a scanned file.
type Format string

const (
	FormatAuto Format = "auto"
	FormatFeed Format = "feed"
	FormatHTML Format = "html"
)

// Scanner reads local documents and records the video links they contain.
type Scanner struct {
	Logger *log.Logger
	now    func() time.Time
}

func NewScanner(logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Scanner{Logger: logger, now: time.Now}
}

// DetectFormat guesses the document type from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	default:
		return FormatFeed
	}
}

// File scans the document at path.
func (s *Scanner) File(path string, format Format) ([]Found, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}
	var found []Found
	switch format {
	case FormatHTML:
		found, err = FromHTML(f)
	case FormatFeed:
		found, err = FromFeed(f)
	default:
		return nil, fmt.Errorf("unknown scan format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Logger.Debug("scanned document", "path", path, "format", format, "links", len(found))
	return found, nil
}

// Record stores found links under origin and returns how many were saved.
// A failing row is logged and skipped.
func (s *Scanner) Record(ctx context.Context, db *sql.DB, origin string, found []Found) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("nil db")
	}
	if err := linkdb.InitSchema(db); err != nil {
		return 0, err
	}
	saved := 0
	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		rec := linkdb.LinkInsert{
			Recognized: f.Recognized,
			SourceURL:  f.URL,
			Origin:     origin,
			Title:      f.Title,
			SeenAt:     s.now(),
		}
		if err := linkdb.UpsertLink(ctx, db, rec); err != nil {
			s.Logger.Warn("upsert failed", "video_id", f.Recognized.ID, "url", f.URL, "err", err)
			continue
		}
		s.Logger.Debug("upsert ok", "video_id", f.Recognized.ID, "url", f.URL)
		saved++
	}
	s.Logger.Info("scan recorded", "origin", origin, "found", len(found), "saved", saved)
	return saved, nil
}
