package youtube

import (
	"fmt"
	"strings"
)

const (
	DefaultEmbedWidth  = 420
	DefaultEmbedHeight = 315
)

// Options control how derived links are rendered.
type Options struct {
	// Secure selects https instead of http.
	Secure bool
	// DisableSuggestions appends rel=0 to embed links.
	DisableSuggestions bool
}

func (o Options) scheme() string {
	if o.Secure {
		return "https"
	}
	return "http"
}

// Variant names a thumbnail size.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantMedium  Variant = "medium"
	VariantHigh    Variant = "high"
	VariantMaximum Variant = "maximum"
)

var thumbnailFiles = map[Variant]string{
	VariantDefault: "default",
	VariantMedium:  "mqdefault",
	VariantHigh:    "hqdefault",
	VariantMaximum: "sddefault",
}

// Variants lists the thumbnail variants from smallest to largest.
func Variants() []Variant {
	return []Variant{VariantDefault, VariantMedium, VariantHigh, VariantMaximum}
}

// ParseVariant maps a user supplied name to a Variant. Empty means default.
func ParseVariant(s string) (Variant, bool) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return VariantDefault, true
	}
	if _, ok := thumbnailFiles[v]; !ok {
		return "", false
	}
	return v, true
}

// WatchURL builds the regular watch link. Like the other builders it never
// fails: an unrecognized input leaves the ID empty.
func WatchURL(s string, opts Options) string {
	id, _ := ExtractVideoID(s)
	return fmt.Sprintf("%s://www.youtube.com/watch?v=%s", opts.scheme(), id)
}

func ShortURL(s string, opts Options) string {
	id, _ := ExtractVideoID(s)
	return fmt.Sprintf("%s://youtu.be/%s", opts.scheme(), id)
}

func EmbedURL(s string, opts Options) string {
	id, _ := ExtractVideoID(s)
	u := fmt.Sprintf("%s://www.youtube.com/embed/%s", opts.scheme(), id)
	if opts.DisableSuggestions {
		u += "?rel=0"
	}
	return u
}

// EmbedHTML renders an iframe snippet with the given dimensions, as is.
// Callers without a size pass DefaultEmbedWidth and DefaultEmbedHeight.
func EmbedHTML(s string, width, height int, opts Options) string {
	return fmt.Sprintf(`<iframe width="%d" height="%d" src="%s" frameborder="0" allowfullscreen></iframe>`,
		width, height, EmbedURL(s, opts))
}

// ThumbnailURL returns the still image for the given variant, or false when
// the variant is unknown.
func ThumbnailURL(s string, v Variant) (string, bool) {
	file, ok := thumbnailFiles[v]
	if !ok {
		return "", false
	}
	id, _ := ExtractVideoID(s)
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/%s.jpg", id, file), true
}

// LinkSet bundles every link derived from one input.
type LinkSet struct {
	ID         VideoID           `json:"id"`
	Domain     string            `json:"domain"`
	Watch      string            `json:"watch_url"`
	Short      string            `json:"short_url"`
	Embed      string            `json:"embed_url"`
	Thumbnails map[string]string `json:"thumbnails"`
}

// Links recognizes s once and renders all derived links. The bool is false
// when s was not recognized; the returned set is then zero.
func Links(s string, opts Options) (LinkSet, bool) {
	r, ok := Recognize(s)
	if !ok {
		return LinkSet{}, false
	}
	canon := "youtube.com/watch?v=" + string(r.ID)
	ls := LinkSet{
		ID:         r.ID,
		Domain:     r.Domain,
		Watch:      WatchURL(canon, opts),
		Short:      ShortURL(canon, opts),
		Embed:      EmbedURL(canon, opts),
		Thumbnails: make(map[string]string, len(thumbnailFiles)),
	}
	for _, v := range Variants() {
		u, _ := ThumbnailURL(canon, v)
		ls.Thumbnails[string(v)] = u
	}
	return ls, true
}
