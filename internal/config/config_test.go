package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ytlink/internal/youtube"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	got, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom(t *testing.T) {
	t.Setenv("YTLINK_TEST_DIR", "/data")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
links:
  secure: false
  disable_suggestions: true
embed:
  width: 640
thumbnail:
  variant: maximum
database:
  path: "$YTLINK_TEST_DIR/links.db"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := AppConfig{
		Links:     LinksConfig{Secure: false, DisableSuggestions: true},
		Embed:     EmbedConfig{Width: 640, Height: youtube.DefaultEmbedHeight},
		Thumbnail: ThumbnailConfig{Variant: "maximum"},
		Database:  DatabaseConfig{Path: "/data/links.db"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got.ThumbnailVariant() != youtube.VariantMaximum {
		t.Errorf("ThumbnailVariant() = %q", got.ThumbnailVariant())
	}
	if opts := got.BuildOptions(); opts.Secure || !opts.DisableSuggestions {
		t.Errorf("BuildOptions() = %+v", opts)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("links: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestThumbnailVariant_UnknownFallsBack(t *testing.T) {
	ac := Default()
	ac.Thumbnail.Variant = "giant"
	if got := ac.ThumbnailVariant(); got != youtube.VariantDefault {
		t.Errorf("ThumbnailVariant() = %q, want default", got)
	}
}

func TestWriteConfigTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	ac := Default()
	ac.Links.DisableSuggestions = true
	ac.Database.Path = "/tmp/ytlink.db"

	if err := WriteConfigTo(path, ac, false); err != nil {
		t.Fatalf("WriteConfigTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if diff := cmp.Diff(ac, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	err = WriteConfigTo(path, ac, false)
	if !errors.Is(err, ErrConfigExists) {
		t.Fatalf("expected ErrConfigExists, got %v", err)
	}
	if err := WriteConfigTo(path, ac, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"~", home},
		{"~/x/y.db", filepath.Join(home, "x", "y.db")},
		{"/abs/path", "/abs/path"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
