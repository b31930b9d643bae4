package sources

import (
	"net/url"
	"sort"
	"strings"
)

// Origin identifies which retrieval branch produced a source.
type Origin string

const (
	OriginKnowledgeBase Origin = "knowledge_base"
	OriginWeb           Origin = "web"
)

// Source is a single citation attached to a search result.
type Source struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"content_snippet"`
	Origin  Origin  `json:"origin"`
	Score   float64 `json:"score"`
}

// Key returns the identity of the source (its normalized URL).
func (s Source) Key() string {
	return NormalizeURL(s.URL)
}

// Host returns the lower-cased host of the source URL without "www.".
func (s Source) Host() string {
	return hostOf(s.URL)
}

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// NormalizeURL reduces a URL to the form used for deduplication: scheme,
// fragment, "www.", default ports, trailing slashes and utm_* parameters are
// dropped and the remaining query is sorted. Unparseable input is returned
// trimmed and lower-cased.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host = host + ":" + port
	}

	path := strings.TrimRight(u.EscapedPath(), "/")

	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(host)
	b.WriteString(path)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		vals := q[k]
		sort.Strings(vals)
		for j, v := range vals {
			if j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

func hostOf(raw string) string {
	key := NormalizeURL(raw)
	if i := strings.IndexAny(key, "/?"); i >= 0 {
		key = key[:i]
	}
	if i := strings.IndexByte(key, ':'); i >= 0 {
		key = key[:i]
	}
	return key
}
