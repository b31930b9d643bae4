package sources

import (
	"sort"
	"strings"
)

// Policy bounds the aggregated source list.
type Policy struct {
	// MaxTotal caps the result length; zero or less means no cap.
	MaxTotal int
	// MaxFromKB caps knowledge-base sources; negative means no cap.
	MaxFromKB int
	// MinFromWeb is the number of web sources kept when available.
	MinFromWeb int
	// MinContentLength drops sources whose snippet is shorter.
	MinContentLength int
}

// DefaultPolicy returns the balancing used by the search pipeline.
func DefaultPolicy() Policy {
	return Policy{
		MaxTotal:         10,
		MaxFromKB:        5,
		MinFromWeb:       2,
		MinContentLength: 20,
	}
}

// Aggregate merges source lists into one deduplicated, score-ordered and
// origin-balanced list. Within the result every normalized URL is unique.
func Aggregate(lists [][]Source, policy Policy) []Source {
	best := make(map[string]int)
	var merged []Source

	for _, list := range lists {
		for _, src := range list {
			if !usable(src, policy.MinContentLength) {
				continue
			}
			src.Score = clampUnit(src.Score)
			key := src.Key()
			if i, seen := best[key]; seen {
				if src.Score > merged[i].Score {
					merged[i] = src
				}
				continue
			}
			best[key] = len(merged)
			merged = append(merged, src)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	selected := make([]Source, 0, len(merged))
	kbCount := 0
	for _, src := range merged {
		if src.Origin == OriginKnowledgeBase && policy.MaxFromKB >= 0 {
			if kbCount >= policy.MaxFromKB {
				continue
			}
			kbCount++
		}
		selected = append(selected, src)
	}

	if policy.MaxTotal <= 0 || len(selected) <= policy.MaxTotal {
		return selected
	}
	return truncateKeepingWeb(selected, policy.MaxTotal, policy.MinFromWeb)
}

// truncateKeepingWeb cuts a score-ordered list to max entries, swapping the
// lowest non-web entries in the window for the best web entries beyond it
// until minWeb web sources are present or none remain.
func truncateKeepingWeb(ordered []Source, max, minWeb int) []Source {
	window := append([]Source(nil), ordered[:max]...)
	rest := ordered[max:]

	webInWindow := 0
	for _, src := range window {
		if src.Origin == OriginWeb {
			webInWindow++
		}
	}

	restIdx := 0
	for webInWindow < minWeb {
		for restIdx < len(rest) && rest[restIdx].Origin != OriginWeb {
			restIdx++
		}
		if restIdx >= len(rest) {
			break
		}
		victim := -1
		for i := len(window) - 1; i >= 0; i-- {
			if window[i].Origin != OriginWeb {
				victim = i
				break
			}
		}
		if victim < 0 {
			break
		}
		window[victim] = rest[restIdx]
		restIdx++
		webInWindow++
	}

	sort.SliceStable(window, func(i, j int) bool {
		return window[i].Score > window[j].Score
	})
	return window
}

func usable(src Source, minContent int) bool {
	if strings.TrimSpace(src.URL) == "" || src.Key() == "" {
		return false
	}
	return len([]rune(strings.TrimSpace(src.Snippet))) >= minContent
}

func clampUnit(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CountByOrigin tallies sources per origin.
func CountByOrigin(list []Source) map[Origin]int {
	counts := make(map[Origin]int)
	for _, src := range list {
		counts[src.Origin]++
	}
	return counts
}
