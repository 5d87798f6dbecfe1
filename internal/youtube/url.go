package youtube

import (
	"regexp"
	"strings"
)

// VideoID is an opaque token over the URL-safe base64 alphabet.
type VideoID string

const (
	// ShortDomain is the key of the short-link domain group.
	ShortDomain = "youtu.be"
	// CanonicalDomain is the key of the main site domain group.
	CanonicalDomain = "youtube.com"
)

// DomainGroup is a set of hostnames treated as the same site.
type DomainGroup struct {
	Key   string
	Hosts []string
}

// Recognized describes a link that ExtractVideoID accepted.
type Recognized struct {
	// Scheme is "http", "https", "//" for protocol-relative links, or "" when absent.
	Scheme string
	// Domain is the key of the matched domain group.
	Domain string
	ID     VideoID
}

const (
	idExpr     = `(?P<id>[0-9a-zA-Z_-]+)`
	paramsExpr = `(?:[^;&]*[&;])*`
)

var (
	// Anything outside the RFC 3986 reserved/unreserved sets plus '%'.
	invalidCharsRE = regexp.MustCompile(`[^a-zA-Z0-9:/?=&$\-_.+!*'(),~#\[\]@;%]`)
	schemeRE       = regexp.MustCompile(`(?i)^(https?:)?//`)
)

// Order matters: the short-link group is tried first and never falls through.
var domainGroups = []DomainGroup{
	{Key: ShortDomain, Hosts: []string{"youtu.be"}},
	{Key: CanonicalDomain, Hosts: []string{
		"www.youtube.com",
		"youtube.com",
		"m.youtube.com",
		"www.youtube-nocookie.com",
	}},
}

type domainMatcher struct {
	group  DomainGroup
	prefix *regexp.Regexp
	paths  []*regexp.Regexp
}

var matchers = []domainMatcher{
	newDomainMatcher(domainGroups[0],
		`^`+idExpr,
	),
	// Each path shape starts with a distinct keyword, so at most one can match.
	newDomainMatcher(domainGroups[1],
		`^(?:watch|ytscreeningroom)\?`+paramsExpr+`v=`+idExpr,
		`^(?:v|e|embed|shorts)/`+idExpr,
		`^oembed\?`+paramsExpr+`url=[^&;]+watch(?:%3f|\?)v(?:=|%3d)`+idExpr,
		`^attribution_link\?`+paramsExpr+`u=(?:/|%2f)watch(?:%3f|\?)v(?:=|%3d)`+idExpr,
		`^apiplayer\?`+paramsExpr+`video_id=`+idExpr,
	),
}

func newDomainMatcher(g DomainGroup, paths ...string) domainMatcher {
	quoted := make([]string, 0, len(g.Hosts))
	for _, h := range g.Hosts {
		quoted = append(quoted, regexp.QuoteMeta(h))
	}
	m := domainMatcher{
		group:  g,
		prefix: regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)/`),
	}
	for _, p := range paths {
		m.paths = append(m.paths, regexp.MustCompile(`(?i)`+p))
	}
	return m
}

// match strips the domain prefix and returns the first path pattern capture.
// The bool reports whether the domain prefix itself matched.
func (m domainMatcher) match(s string) (VideoID, bool, bool) {
	loc := m.prefix.FindStringIndex(s)
	if loc == nil {
		return "", false, false
	}
	rest := s[loc[1]:]
	for _, re := range m.paths {
		sub := re.FindStringSubmatch(rest)
		if sub == nil {
			continue
		}
		return VideoID(sub[re.SubexpIndex("id")]), true, true
	}
	return "", true, false
}

// DomainAliases returns a copy of the recognized domain groups in match order.
func DomainAliases() []DomainGroup {
	out := make([]DomainGroup, 0, len(domainGroups))
	for _, g := range domainGroups {
		out = append(out, DomainGroup{Key: g.Key, Hosts: append([]string(nil), g.Hosts...)})
	}
	return out
}

// HasInvalidCharacters reports whether s holds any character that cannot
// appear in a URI, such as whitespace or markup.
func HasInvalidCharacters(s string) bool {
	return invalidCharsRE.MatchString(s)
}

// ExtractVideoID returns the video ID carried by a watch, embed, shorts,
// oEmbed, attribution, legacy player or short link.
func ExtractVideoID(s string) (VideoID, bool) {
	r, ok := Recognize(s)
	return r.ID, ok
}

// Recognize is ExtractVideoID that also reports the scheme and domain group.
func Recognize(s string) (Recognized, bool) {
	s = strings.TrimSpace(s)
	if HasInvalidCharacters(s) {
		return Recognized{}, false
	}

	var r Recognized
	if sub := schemeRE.FindStringSubmatch(s); sub != nil {
		r.Scheme = "//"
		if sub[1] != "" {
			r.Scheme = strings.ToLower(strings.TrimSuffix(sub[1], ":"))
		}
		s = s[len(sub[0]):]
	}

	for _, m := range matchers {
		id, domainOK, ok := m.match(s)
		if !domainOK {
			continue
		}
		if !ok {
			return Recognized{}, false
		}
		r.Domain = m.group.Key
		r.ID = id
		return r, true
	}
	return Recognized{}, false
}
