package scoring

import (
	"regexp"
	"strings"
)

const (
	maxClaims      = 5
	minClaimLength = 20
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+\s+|\n+`)
	claimPattern  = regexp.MustCompile(`(?i)\d+(\.\d+)?%|\$\d|\b\d{4}\b|according to|studies show|research indicates|data shows|statistics reveal|reports suggest|experts say|scientists found|analysis shows`)
)

// KeyClaims picks up to five factual-looking sentences worth fact checking.
func KeyClaims(text string) []string {
	var claims []string
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) < minClaimLength {
			continue
		}
		if !claimPattern.MatchString(s) {
			continue
		}
		claims = append(claims, s)
		if len(claims) == maxClaims {
			break
		}
	}
	return claims
}
