package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"ytlink/internal/config"
	"ytlink/internal/history"
	"ytlink/internal/linkdb"
	"ytlink/internal/scan"
	"ytlink/internal/server"
	"ytlink/internal/tui"
	"ytlink/internal/version"
	"ytlink/internal/youtube"
)

// ErrNotRecognized is returned when the argument is not a YouTube video link.
var ErrNotRecognized = errors.New("not a recognized YouTube video link")

type app struct {
	out    io.Writer
	cfg    config.AppConfig
	logger *log.Logger
	closer io.Closer
}

func newApp(out io.Writer) *cli.Command {
	a := &app{out: out}

	urlArg := func() []cli.Argument {
		return []cli.Argument{
			&cli.StringArg{
				Name:      "url",
				UsageText: "url",
			},
		}
	}
	linkFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.BoolFlag{Name: "secure", Usage: "Use https (default from config: true)"},
			&cli.BoolFlag{Name: "no-suggestions", Usage: "Disable related video suggestions in embeds"},
		}
	}

	return &cli.Command{
		Name:    "ytlink",
		Usage:   "Recognize YouTube video links and build canonical URLs",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to config file (default ~/.config/ytlink/config.yaml)"},
			&cli.StringFlag{Name: "log-file", Usage: "Append logs to this file instead of stderr"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Before: a.before,
		After: func(ctx context.Context, c *cli.Command) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "id",
				Usage:     "Print the video ID of a link",
				Arguments: urlArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "check", Usage: "Only report whether the input has characters that cannot appear in a URL"},
					&cli.BoolFlag{Name: "save", Usage: "Save the link to history"},
				},
				Action: a.id,
			},
			{
				Name:      "watch",
				Usage:     "Print the watch URL for a link",
				Arguments: urlArg(),
				Flags:     linkFlags(),
				Action: a.link(func(s string, opts youtube.Options) string {
					return youtube.WatchURL(s, opts)
				}),
			},
			{
				Name:      "short",
				Usage:     "Print the youtu.be URL for a link",
				Arguments: urlArg(),
				Flags:     linkFlags(),
				Action: a.link(func(s string, opts youtube.Options) string {
					return youtube.ShortURL(s, opts)
				}),
			},
			{
				Name:      "embed",
				Usage:     "Print the embed URL for a link",
				Arguments: urlArg(),
				Flags:     linkFlags(),
				Action: a.link(func(s string, opts youtube.Options) string {
					return youtube.EmbedURL(s, opts)
				}),
			},
			{
				Name:      "iframe",
				Usage:     "Print an iframe snippet for a link",
				Arguments: urlArg(),
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "Frame width (default from config: 420)"},
					&cli.IntFlag{Name: "height", Usage: "Frame height (default from config: 315)"},
				}, linkFlags()...),
				Action: a.iframe,
			},
			{
				Name:      "thumb",
				Usage:     "Print the thumbnail URL for a link",
				Arguments: urlArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "variant", Usage: "Thumbnail size (default, medium, high, maximum)"},
				},
				Action: a.thumb,
			},
			{
				Name:  "scan",
				Usage: "List video links found in a local feed or HTML file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "file",
						UsageText: "file",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Usage: "Document format (auto, feed, html)", Value: string(scan.FormatAuto)},
					&cli.BoolFlag{Name: "html", Usage: "Shorthand for --format html"},
					&cli.BoolFlag{Name: "save", Usage: "Save found links to history"},
				},
				Action: a.scan,
			},
			{
				Name:  "history",
				Usage: "List saved links",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "hours", Usage: "Time window in hours (default: 24)", Value: 24},
					&cli.StringFlag{Name: "origin", Usage: "Only show links saved from this origin"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return history.Run(ctx, a.out, a.cfg.Database.Path, c.Int("hours"), c.String("origin"))
				},
			},
			{
				Name:  "server",
				Usage: "Run MCP server on stdio",
				Action: func(ctx context.Context, c *cli.Command) error {
					return server.Run(ctx, a.cfg, a.logger)
				},
			},
			{
				Name:  "tui",
				Usage: "Interactive link recognizer",
				Action: func(ctx context.Context, c *cli.Command) error {
					return tui.Run(ctx, a.cfg)
				},
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Commands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write a configuration file with default values",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
						},
						Action: a.configInit,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Fprintln(a.out, version.GetVersion())
					return nil
				},
			},
		},
	}
}

func (a *app) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	var err error
	if p := strings.TrimSpace(c.String("config")); p != "" {
		a.cfg, err = config.LoadFrom(config.ExpandPath(p))
	} else {
		a.cfg, err = config.LoadAppConfig()
	}
	if err != nil {
		return ctx, err
	}

	logFile := c.String("log-file")
	if strings.TrimSpace(logFile) == "" {
		logFile = a.cfg.LogFile
	}
	a.logger, a.closer, err = newLogger(logFile, c.Bool("debug"))
	return ctx, err
}

func newLogger(path string, debug bool) (*log.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer
	if p := strings.TrimSpace(path); p != "" {
		p = config.ExpandPath(p)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "ytlink",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closer, nil
}

// options applies --secure and --no-suggestions over the configured values.
func (a *app) options(c *cli.Command) youtube.Options {
	opts := a.cfg.BuildOptions()
	if c.IsSet("secure") {
		opts.Secure = c.Bool("secure")
	}
	if c.IsSet("no-suggestions") {
		opts.DisableSuggestions = c.Bool("no-suggestions")
	}
	return opts
}

func (a *app) id(ctx context.Context, c *cli.Command) error {
	s := c.StringArg("url")
	if c.Bool("check") {
		if youtube.HasInvalidCharacters(s) {
			fmt.Fprintln(a.out, "invalid")
			return errors.New("input contains characters that cannot appear in a URL")
		}
		fmt.Fprintln(a.out, "ok")
		return nil
	}

	r, ok := youtube.Recognize(s)
	if !ok {
		return a.notRecognized(s)
	}
	fmt.Fprintln(a.out, r.ID)

	if c.Bool("save") {
		return a.save(ctx, r, s)
	}
	return nil
}

func (a *app) notRecognized(s string) error {
	a.logger.Debug("not recognized", "input", s, "invalid_characters", youtube.HasInvalidCharacters(s))
	return fmt.Errorf("%q: %w", s, ErrNotRecognized)
}

func (a *app) save(ctx context.Context, r youtube.Recognized, url string) error {
	db, err := linkdb.OpenAndInit(a.cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	l, err := linkdb.SaveLink(ctx, db, linkdb.LinkInsert{Recognized: r, SourceURL: strings.TrimSpace(url), Origin: "cli"})
	if err != nil {
		return fmt.Errorf("save link: %w", err)
	}
	a.logger.Info("saved link", "video_id", r.ID, "seen_count", l.SeenCount, "db", a.cfg.Database.Path)
	return nil
}

func (a *app) link(build func(string, youtube.Options) string) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		s := c.StringArg("url")
		if _, ok := youtube.ExtractVideoID(s); !ok {
			return a.notRecognized(s)
		}
		fmt.Fprintln(a.out, build(s, a.options(c)))
		return nil
	}
}

func (a *app) iframe(ctx context.Context, c *cli.Command) error {
	s := c.StringArg("url")
	if _, ok := youtube.ExtractVideoID(s); !ok {
		return a.notRecognized(s)
	}
	width, height := a.cfg.Embed.Width, a.cfg.Embed.Height
	if c.IsSet("width") {
		width = c.Int("width")
	}
	if c.IsSet("height") {
		height = c.Int("height")
	}
	fmt.Fprintln(a.out, youtube.EmbedHTML(s, width, height, a.options(c)))
	return nil
}

func (a *app) thumb(ctx context.Context, c *cli.Command) error {
	s := c.StringArg("url")
	if _, ok := youtube.ExtractVideoID(s); !ok {
		return a.notRecognized(s)
	}
	v := a.cfg.ThumbnailVariant()
	if c.IsSet("variant") {
		parsed, ok := youtube.ParseVariant(c.String("variant"))
		if !ok {
			return fmt.Errorf("unknown thumbnail variant %q (expected one of %v)", c.String("variant"), youtube.Variants())
		}
		v = parsed
	}
	out, _ := youtube.ThumbnailURL(s, v)
	fmt.Fprintln(a.out, out)
	return nil
}

func (a *app) scan(ctx context.Context, c *cli.Command) error {
	path := strings.TrimSpace(c.StringArg("file"))
	if path == "" {
		return fmt.Errorf("scan: a file path is required")
	}
	format := scan.Format(c.String("format"))
	if c.Bool("html") {
		format = scan.FormatHTML
	}

	sc := scan.NewScanner(a.logger)
	found, err := sc.File(config.ExpandPath(path), format)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintf(a.out, "No video links found in %s\n", path)
		return nil
	}
	for _, f := range found {
		if f.Title != "" {
			fmt.Fprintf(a.out, "%s\t%s\t%s\n", f.Recognized.ID, f.URL, f.Title)
		} else {
			fmt.Fprintf(a.out, "%s\t%s\n", f.Recognized.ID, f.URL)
		}
	}

	if !c.Bool("save") {
		return nil
	}
	db, err := linkdb.OpenAndInit(a.cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	n, err := sc.Record(ctx, db, filepath.Base(path), found)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d links\n", n)
	return nil
}

func (a *app) configInit(ctx context.Context, c *cli.Command) error {
	cfg := config.Default()
	var (
		path string
		err  error
	)
	if p := strings.TrimSpace(c.String("config")); p != "" {
		path = config.ExpandPath(p)
		err = config.WriteConfigTo(path, cfg, c.Bool("force"))
	} else {
		path, err = config.WriteConfig(cfg, c.Bool("force"))
	}
	if errors.Is(err, config.ErrConfigExists) {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote configuration to %s\n", path)
	return nil
}
