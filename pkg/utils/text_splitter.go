package utils

import (
	"strings"
	"unicode"
)

// SplitText splits text into chunks of at most chunkSize runes, each sharing
// overlap runes with the previous one. A cut is moved back to the nearest
// whitespace when one lies in the last quarter of the chunk.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	total := len(runes)
	for start := 0; start < total; {
		end := start + chunkSize
		if end >= total {
			end = total
		} else if cut := lastSpace(runes[start:end], chunkSize*3/4); cut > 0 {
			end = start + cut
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == total {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// lastSpace returns the index of the last whitespace rune at or after min, or -1.
func lastSpace(runes []rune, min int) int {
	for i := len(runes) - 1; i >= min; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
