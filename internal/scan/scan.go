package scan

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"ytlink/internal/youtube"
)

// Found is a recognized video link located inside a document.
type Found struct {
	URL        string
	Title      string
	Recognized youtube.Recognized
}

// linkSelectors lists the element/attribute pairs that can carry a video link.
var linkSelectors = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"iframe[src]", "src"},
	{"embed[src]", "src"},
	{"link[href]", "href"},
	{"meta[property='og:video:url']", "content"},
	{"meta[property='og:url']", "content"},
}

type collector struct {
	seen  map[youtube.VideoID]struct{}
	found []Found
}

func newCollector() *collector {
	return &collector{seen: map[youtube.VideoID]struct{}{}}
}

func (c *collector) add(raw, title string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	r, ok := youtube.Recognize(raw)
	if !ok {
		return
	}
	if _, dup := c.seen[r.ID]; dup {
		return
	}
	c.seen[r.ID] = struct{}{}
	c.found = append(c.found, Found{URL: raw, Title: strings.TrimSpace(title), Recognized: r})
}

func (c *collector) addDocument(doc *goquery.Document, fallbackTitle string) {
	for _, ls := range linkSelectors {
		doc.Find(ls.selector).Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(ls.attr)
			title := firstNonEmpty(s.AttrOr("title", ""), s.Text(), fallbackTitle)
			c.add(v, title)
		})
	}
}

// FromHTML returns the video links referenced by an HTML document, in
// selector order and deduplicated by video ID.
func FromHTML(r io.Reader) ([]Found, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	c := newCollector()
	c.addDocument(doc, strings.TrimSpace(doc.Find("title").First().Text()))
	return c.found, nil
}

// FromFeed returns the video links of an RSS, Atom or JSON feed. Item links
// and enclosures come first, then links embedded in the item body.
func FromFeed(r io.Reader) ([]Found, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	c := newCollector()
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		c.add(it.Link, it.Title)
		for _, l := range it.Links {
			c.add(l, it.Title)
		}
		for _, enc := range it.Enclosures {
			if enc != nil {
				c.add(enc.URL, it.Title)
			}
		}
		body := firstNonEmpty(it.Content, it.Description)
		if body == "" {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			continue
		}
		c.addDocument(doc, it.Title)
	}
	return c.found, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
	}
	return ""
}
