package sources

import (
	"regexp"
	"strings"
)

const (
	extractedScore   = 0.5
	maxTitleLength   = 100
	maxSnippetLength = 300
)

var (
	urlPattern     = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `\])}]+`)
	markdownLink   = regexp.MustCompile(`\[([^\]]*)\]\(\s*$`)
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
)

// ExtractFromText pulls URLs out of free text. Each URL becomes a source whose
// title and snippet come from the nearest preceding paragraph. Repeated URLs
// are reported once.
func ExtractFromText(text string, origin Origin) []Source {
	var out []Source
	seen := make(map[string]struct{})

	paragraphs := paragraphSplit.Split(text, -1)
	var previous string
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		locs := urlPattern.FindAllStringIndex(para, -1)
		for _, loc := range locs {
			raw := strings.TrimRight(para[loc[0]:loc[1]], ".,;:!?")
			key := NormalizeURL(raw)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			snippet := strings.TrimSpace(urlPattern.ReplaceAllString(para[:loc[0]], ""))
			title := linkLabel(para[:loc[0]])
			if len([]rune(snippet)) < 20 && previous != "" {
				snippet = previous
			}
			if title == "" && len([]rune(snippet)) >= 20 {
				title = firstLine(snippet)
			}
			if title == "" {
				title = hostOf(raw)
			}
			out = append(out, Source{
				Title:   truncateRunes(title, maxTitleLength),
				URL:     raw,
				Snippet: truncateRunes(snippet, maxSnippetLength),
				Origin:  origin,
				Score:   extractedScore,
			})
		}
		if stripped := strings.TrimSpace(urlPattern.ReplaceAllString(para, "")); len([]rune(stripped)) >= 20 {
			previous = stripped
		}
	}
	return out
}

func linkLabel(prefix string) string {
	m := markdownLink.FindStringSubmatch(prefix)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.TrimLeft(s, "#*-•0123456789. "))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
