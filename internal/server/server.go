package server

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"ytlink/internal/config"
	"ytlink/internal/linkdb"
	"ytlink/internal/version"
	"ytlink/internal/youtube"
)

type ExtractParams struct {
	URL  string `json:"url"`
	Save bool   `json:"save,omitempty"`
}

type BuildLinksParams struct {
	URL                string `json:"url"`
	Secure             *bool  `json:"secure,omitempty"`
	DisableSuggestions *bool  `json:"disable_suggestions,omitempty"`
}

type ThumbnailParams struct {
	URL     string `json:"url"`
	Variant string `json:"variant,omitempty"`
}

type EmbedHTMLParams struct {
	URL                string `json:"url"`
	Width              *int   `json:"width,omitempty"`
	Height             *int   `json:"height,omitempty"`
	Secure             *bool  `json:"secure,omitempty"`
	DisableSuggestions *bool  `json:"disable_suggestions,omitempty"`
}

type ListHistoryParams struct {
	Hours  int     `json:"hours"`
	Origin *string `json:"origin,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
}

// Handlers implements the MCP tools on top of a loaded config.
type Handlers struct {
	Config config.AppConfig
	Logger *log.Logger
}

func Run(ctx context.Context, cfg config.AppConfig, logger *log.Logger) error {
	h := &Handlers{Config: cfg, Logger: logger}
	server := mcp.NewServer(&mcp.Implementation{Name: "ytlink", Version: "v" + version.Version}, nil)

	mcp.AddTool(server, &mcp.Tool{Name: "extract_video_id", Description: "Extract the video ID from a YouTube link"}, h.handleExtract)
	mcp.AddTool(server, &mcp.Tool{Name: "build_links", Description: "Build watch, short, embed and thumbnail links for a YouTube link"}, h.handleBuildLinks)
	mcp.AddTool(server, &mcp.Tool{Name: "thumbnail_url", Description: "Build a thumbnail image URL (default, medium, high, maximum)"}, h.handleThumbnail)
	mcp.AddTool(server, &mcp.Tool{Name: "embed_html", Description: "Render an iframe snippet embedding the video"}, h.handleEmbedHTML)
	mcp.AddTool(server, &mcp.Tool{Name: "list_history", Description: "List recognized links saved in the ytlink DB"}, h.handleListHistory)

	logger.Info("mcp server starting", "transport", "stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func notRecognized(url string) map[string]any {
	m := map[string]any{
		"ok":      false,
		"message": "Not a recognized YouTube link",
		"url":     url,
	}
	if youtube.HasInvalidCharacters(strings.TrimSpace(url)) {
		m["invalid_characters"] = true
		m["hint"] = "The input contains characters that cannot appear in a URL (spaces, quotes, markup)."
	} else {
		m["hint"] = "Supported forms: watch?v=, embed/, v/, e/, shorts/, oembed, attribution_link, apiplayer and youtu.be links."
	}
	return m
}

func (h *Handlers) handleExtract(ctx context.Context, req *mcp.CallToolRequest, p ExtractParams) (*mcp.CallToolResult, any, error) {
	r, ok := youtube.Recognize(p.URL)
	if !ok {
		return nil, notRecognized(p.URL), nil
	}
	resp := map[string]any{
		"ok":     true,
		"id":     r.ID,
		"domain": r.Domain,
		"scheme": r.Scheme,
	}
	if p.Save {
		l, err := h.save(ctx, r, p.URL)
		if err != nil {
			h.Logger.Warn("save failed", "url", p.URL, "err", err)
			resp["saved"] = false
			resp["error"] = err.Error()
		} else {
			resp["saved"] = true
			resp["seen_count"] = l.SeenCount
		}
	}
	return nil, resp, nil
}

func (h *Handlers) options(secure, disableSuggestions *bool) youtube.Options {
	opts := h.Config.BuildOptions()
	if secure != nil {
		opts.Secure = *secure
	}
	if disableSuggestions != nil {
		opts.DisableSuggestions = *disableSuggestions
	}
	return opts
}

func (h *Handlers) handleBuildLinks(ctx context.Context, req *mcp.CallToolRequest, p BuildLinksParams) (*mcp.CallToolResult, any, error) {
	ls, ok := youtube.Links(p.URL, h.options(p.Secure, p.DisableSuggestions))
	if !ok {
		return nil, notRecognized(p.URL), nil
	}
	return nil, map[string]any{"ok": true, "links": ls}, nil
}

func (h *Handlers) handleThumbnail(ctx context.Context, req *mcp.CallToolRequest, p ThumbnailParams) (*mcp.CallToolResult, any, error) {
	variant := h.Config.ThumbnailVariant()
	if strings.TrimSpace(p.Variant) != "" {
		v, ok := youtube.ParseVariant(p.Variant)
		if !ok {
			return nil, map[string]any{
				"ok":      false,
				"message": fmt.Sprintf("Unknown thumbnail variant %q", p.Variant),
				"hint":    "Use one of: default, medium, high, maximum.",
			}, nil
		}
		variant = v
	}
	if _, ok := youtube.ExtractVideoID(p.URL); !ok {
		return nil, notRecognized(p.URL), nil
	}
	u, _ := youtube.ThumbnailURL(p.URL, variant)
	return nil, map[string]any{"ok": true, "variant": variant, "url": u}, nil
}

func (h *Handlers) handleEmbedHTML(ctx context.Context, req *mcp.CallToolRequest, p EmbedHTMLParams) (*mcp.CallToolResult, any, error) {
	if _, ok := youtube.ExtractVideoID(p.URL); !ok {
		return nil, notRecognized(p.URL), nil
	}
	width, height := h.Config.Embed.Width, h.Config.Embed.Height
	if p.Width != nil {
		width = *p.Width
	}
	if p.Height != nil {
		height = *p.Height
	}
	opts := h.options(p.Secure, p.DisableSuggestions)
	return nil, map[string]any{
		"ok":        true,
		"html":      youtube.EmbedHTML(p.URL, width, height, opts),
		"embed_url": youtube.EmbedURL(p.URL, opts),
	}, nil
}

// Returns links saved in the history, newest first.
func (h *Handlers) handleListHistory(ctx context.Context, req *mcp.CallToolRequest, p ListHistoryParams) (*mcp.CallToolResult, any, error) {
	if p.Hours <= 0 {
		p.Hours = 24
	}
	lim := 50
	if p.Limit != nil && *p.Limit > 0 {
		lim = *p.Limit
	}
	origin := ""
	if p.Origin != nil {
		origin = strings.TrimSpace(*p.Origin)
	}

	dbPath := h.Config.Database.Path
	if !fileExists(dbPath) {
		return nil, map[string]any{
			"ok":      false,
			"message": fmt.Sprintf("ytlink database not found at %s", dbPath),
			"hint":    "Run 'ytlink id --save <url>' or 'ytlink scan --save <file>' to populate it, or set database.path in ~/.config/ytlink/config.yaml.",
			"db_path": dbPath,
		}, nil
	}
	db, err := linkdb.Open(dbPath)
	if err != nil {
		return nil, map[string]any{
			"ok":      false,
			"message": "Failed opening the ytlink database",
			"error":   err.Error(),
			"db_path": dbPath,
		}, nil
	}
	defer db.Close()

	rows, err := linkdb.GetSince(ctx, db, time.Now().Add(-time.Duration(p.Hours)*time.Hour), origin, lim)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such table") {
			return nil, map[string]any{
				"ok":      false,
				"message": "ytlink database is present but not initialized (missing tables)",
				"hint":    "Save one link to initialize the schema.",
				"db_path": dbPath,
			}, nil
		}
		return nil, map[string]any{
			"ok":      false,
			"message": "Query failed while reading from the ytlink database",
			"error":   err.Error(),
			"db_path": dbPath,
		}, nil
	}
	items := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		items = append(items, serialize(r))
	}
	return nil, map[string]any{"ok": true, "count": len(items), "items": items}, nil
}

func (h *Handlers) save(ctx context.Context, r youtube.Recognized, url string) (*linkdb.Link, error) {
	db, err := linkdb.OpenAndInit(h.Config.Database.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return linkdb.SaveLink(ctx, db, linkdb.LinkInsert{Recognized: r, SourceURL: strings.TrimSpace(url), Origin: "mcp"})
}

func serialize(l linkdb.Link) map[string]any {
	m := map[string]any{
		"video_id":     l.VideoID,
		"domain":       l.Domain,
		"source_url":   l.SourceURL,
		"origin":       l.Origin,
		"created_at":   l.CreatedAt,
		"last_seen_at": l.LastSeenAt,
		"seen_count":   l.SeenCount,
	}
	if l.Title.Valid {
		m["title"] = l.Title.String
	}
	if l.Scheme.Valid {
		m["scheme"] = l.Scheme.String
	}
	return m
}

// Check if a file exists, validating the p search path
func fileExists(p string) bool {
	if p == "" {
		return false
	}
	if _, err := os.Stat(p); err == nil {
		return true
	}
	return false
}
