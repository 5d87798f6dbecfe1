package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"ytlink/internal/youtube"
)

type LinksConfig struct {
	Secure             bool `yaml:"secure"`
	DisableSuggestions bool `yaml:"disable_suggestions"`
}

type EmbedConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ThumbnailConfig struct {
	Variant string `yaml:"variant"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AppConfig mirrors ~/.config/ytlink/config.yaml.
type AppConfig struct {
	Links     LinksConfig     `yaml:"links"`
	Embed     EmbedConfig     `yaml:"embed"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Database  DatabaseConfig  `yaml:"database"`
	LogFile   string          `yaml:"log_file,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Links: LinksConfig{Secure: true},
		Embed: EmbedConfig{
			Width:  youtube.DefaultEmbedWidth,
			Height: youtube.DefaultEmbedHeight,
		},
		Thumbnail: ThumbnailConfig{Variant: string(youtube.VariantDefault)},
		Database:  DatabaseConfig{Path: FallbackDBPath()},
	}
}

// BuildOptions converts the link settings into builder options.
func (c AppConfig) BuildOptions() youtube.Options {
	return youtube.Options{
		Secure:             c.Links.Secure,
		DisableSuggestions: c.Links.DisableSuggestions,
	}
}

// ThumbnailVariant returns the configured variant, or default when the file
// holds an unknown name.
func (c AppConfig) ThumbnailVariant() youtube.Variant {
	if v, ok := youtube.ParseVariant(c.Thumbnail.Variant); ok {
		return v
	}
	return youtube.VariantDefault
}

// Path returns the location of the user config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ytlink", "config.yaml"), nil
}

// LoadAppConfig reads the user config. A missing file yields the defaults; a
// file that exists but does not parse is an error.
func LoadAppConfig() (AppConfig, error) {
	cfgPath, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(cfgPath)
}

// LoadFrom reads the config at path, layering it over Default.
func LoadFrom(path string) (AppConfig, error) {
	ac := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ac, nil
		}
		return ac, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &ac); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if ac.Embed.Width <= 0 {
		ac.Embed.Width = youtube.DefaultEmbedWidth
	}
	if ac.Embed.Height <= 0 {
		ac.Embed.Height = youtube.DefaultEmbedHeight
	}
	if strings.TrimSpace(ac.Database.Path) == "" {
		ac.Database.Path = FallbackDBPath()
	}
	ac.Database.Path = ExpandPath(ac.Database.Path)
	ac.LogFile = ExpandPath(strings.TrimSpace(ac.LogFile))
	return ac, nil
}

func FallbackDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ytlink.db"
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "ytlink", "ytlink.db")
	}
	return filepath.Join(home, ".local", "share", "ytlink", "ytlink.db")
}

// ExpandPath expands leading ~ and environment variables in a filesystem path.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}
