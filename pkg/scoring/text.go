package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"info-seeker-be/pkg/sources"
)

var (
	wordPattern       = regexp.MustCompile(`[\p{L}\p{N}]+`)
	confidencePattern = regexp.MustCompile(`(?i)confidence(?:\s+score)?(?:\s+(?:is|of|level))?\s*[:=]?\s*(\d{1,3}(?:\.\d+)?|\.\d+)\s*(%)?`)
	citationPattern   = regexp.MustCompile(`(?i)(https?://|www\.|\[\d+\]|\[[^\]\n]{1,80}\]\(|according to|based on|source:|reference:)`)
	structurePattern  = regexp.MustCompile(`(?m)^\s*(#{1,6}\s|[-*•]\s|\d+[.)]\s)|\*\*[^*\n]+\*\*`)
)

// words returns the lower-cased word tokens of text.
func words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// countPresent counts the indicators that occur in text. Single words match
// whole tokens; multi-word indicators match as phrases.
func countPresent(text string, indicators []string) int {
	if text == "" || len(indicators) == 0 {
		return 0
	}
	tokens := words(text)
	set := make(map[string]struct{}, len(tokens))
	for _, w := range tokens {
		set[w] = struct{}{}
	}
	joined := " " + strings.Join(tokens, " ") + " "

	n := 0
	for _, ind := range indicators {
		ind = strings.ToLower(strings.TrimSpace(ind))
		if ind == "" {
			continue
		}
		if strings.ContainsRune(ind, ' ') {
			if strings.Contains(joined, " "+ind+" ") {
				n++
			}
			continue
		}
		if _, ok := set[ind]; ok {
			n++
		}
	}
	return n
}

// extractConfidence looks for an explicit confidence value in the report.
// Percentages and values above 1 are divided by 100.
func extractConfidence(report string) (float64, bool) {
	m := confidencePattern.FindStringSubmatch(report)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "%" || v > 1 {
		v /= 100
	}
	return clamp(v, 0, 1), true
}

// authorityRatio is the fraction of sources hosted on an authority domain.
func authorityRatio(list []sources.Source, domains []string) float64 {
	if len(list) == 0 {
		return 0
	}
	hits := 0
	for _, src := range list {
		if isAuthority(src.Host(), domains) {
			hits++
		}
	}
	return float64(hits) / float64(len(list))
}

func isAuthority(host string, domains []string) bool {
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "."))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func distinctHosts(list []sources.Source) int {
	hosts := make(map[string]struct{})
	for _, src := range list {
		if h := src.Host(); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return len(hosts)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
