package scan

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"ytlink/internal/linkdb"
	"ytlink/internal/youtube"
)

const feedXML = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>
<rss version="2.0">
	<channel>
		<title>Awesome blog</title>
		<link>https://example.com/</link>
		<description>Recent content on the awesome blog</description>
		<item>
			<title>Part 1</title>
			<link>https://www.youtube.com/watch?v=aaaaaaaaaaa&amp;feature=youtu.be</link>
			<pubDate>Mon, 25 Aug 2025 07:42:16 +0100</pubDate>
		</item>
		<item>
			<title>Part 2</title>
			<link>https://example.com/articles/2</link>
			<description><![CDATA[<p>Watch below</p><iframe src="https://www.youtube-nocookie.com/embed/bbbbbbbbbbb"></iframe><a href="https://example.com">home</a>]]></description>
		</item>
		<item>
			<title>Part 3</title>
			<link>https://youtu.be/aaaaaaaaaaa</link>
		</item>
		<item>
			<title>Part 4</title>
			<link>https://example.com/articles/4</link>
			<enclosure url="https://youtube.com/v/ccccccccccc" length="0" type="video/mp4"/>
		</item>
	</channel>
</rss>`

const pageHTML = `<html>
	<head>
		<title>Page</title>
		<link rel="canonical" href="https://example.com/page">
	</head>
	<body>
		<a href="https://youtu.be/ddddddddddd?t=6">Watch this</a>
		<a href="https://example.com/other">nope</a>
		<a href="https://www.youtube.com/watch?v=ddddddddddd">duplicate</a>
		<iframe src="//www.youtube.com/embed/eeeeeeeeeee?rel=0" title="Player"></iframe>
	</body>
</html>`

func TestFromFeed(t *testing.T) {
	got, err := FromFeed(strings.NewReader(feedXML))
	if err != nil {
		t.Fatalf("FromFeed: %v", err)
	}
	want := []Found{
		{
			URL:        "https://www.youtube.com/watch?v=aaaaaaaaaaa&feature=youtu.be",
			Title:      "Part 1",
			Recognized: youtube.Recognized{Scheme: "https", Domain: youtube.CanonicalDomain, ID: "aaaaaaaaaaa"},
		},
		{
			URL:        "https://www.youtube-nocookie.com/embed/bbbbbbbbbbb",
			Title:      "Part 2",
			Recognized: youtube.Recognized{Scheme: "https", Domain: youtube.CanonicalDomain, ID: "bbbbbbbbbbb"},
		},
		{
			URL:        "https://youtube.com/v/ccccccccccc",
			Title:      "Part 4",
			Recognized: youtube.Recognized{Scheme: "https", Domain: youtube.CanonicalDomain, ID: "ccccccccccc"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromFeed() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFeed_Invalid(t *testing.T) {
	if _, err := FromFeed(strings.NewReader("this is not a feed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFromHTML(t *testing.T) {
	got, err := FromHTML(strings.NewReader(pageHTML))
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	want := []Found{
		{
			URL:        "https://youtu.be/ddddddddddd?t=6",
			Title:      "Watch this",
			Recognized: youtube.Recognized{Scheme: "https", Domain: youtube.ShortDomain, ID: "ddddddddddd"},
		},
		{
			URL:        "//www.youtube.com/embed/eeeeeeeeeee?rel=0",
			Title:      "Player",
			Recognized: youtube.Recognized{Scheme: "//", Domain: youtube.CanonicalDomain, ID: "eeeeeeeeeee"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromHTML() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"page.html", FormatHTML},
		{"PAGE.HTM", FormatHTML},
		{"feed.xml", FormatFeed},
		{"feed.json", FormatFeed},
		{"noext", FormatFeed},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestScannerFileAndRecord(t *testing.T) {
	dir := t.TempDir()
	feedPath := filepath.Join(dir, "feed.xml")
	pagePath := filepath.Join(dir, "page.html")
	if err := os.WriteFile(feedPath, []byte(feedXML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pagePath, []byte(pageHTML), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(log.New(io.Discard))
	s.now = func() time.Time { return time.Date(2025, time.August, 25, 8, 0, 0, 0, time.UTC) }

	feedFound, err := s.File(feedPath, FormatAuto)
	if err != nil {
		t.Fatalf("File(feed): %v", err)
	}
	pageFound, err := s.File(pagePath, FormatAuto)
	if err != nil {
		t.Fatalf("File(page): %v", err)
	}
	if _, err := s.File(pagePath, Format("pdf")); err == nil {
		t.Error("expected error for unknown format")
	}

	db, err := linkdb.Open(filepath.Join(dir, "links.sqlite"))
	if err != nil {
		t.Fatalf("Could not open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	n, err := s.Record(ctx, db, "feed.xml", feedFound)
	if err != nil || n != 3 {
		t.Fatalf("Record(feed) = %d, %v", n, err)
	}
	n, err = s.Record(ctx, db, "page.html", pageFound)
	if err != nil || n != 2 {
		t.Fatalf("Record(page) = %d, %v", n, err)
	}

	rows, err := linkdb.GetSince(ctx, db, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), "", 0)
	if err != nil {
		t.Fatalf("GetSince: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("Expected 5 links saved, found %d", len(rows))
	}
	fromPage, err := linkdb.GetSince(ctx, db, time.Time{}, "page.html", 0)
	if err != nil || len(fromPage) != 2 {
		t.Fatalf("GetSince(page.html) = %d rows, %v", len(fromPage), err)
	}
}
