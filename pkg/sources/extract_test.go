package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromTextPairsPrecedingParagraph(t *testing.T) {
	text := "Tokyo Ramen Guide\nThe best ramen shops in Shinjuku ranked by locals.\n\n" +
		"Source: https://example.com/ramen.\n\n" +
		"Osaka has a strong street food culture centred on Dotonbori. See https://www.osaka.example/food for details."

	got := ExtractFromText(text, OriginWeb)

	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/ramen", got[0].URL)
	assert.Equal(t, "Tokyo Ramen Guide", got[0].Title)
	assert.Contains(t, got[0].Snippet, "best ramen shops")
	assert.Equal(t, OriginWeb, got[0].Origin)
	assert.Equal(t, 0.5, got[0].Score)

	assert.Equal(t, "https://www.osaka.example/food", got[1].URL)
	assert.Contains(t, got[1].Snippet, "Dotonbori")
}

func TestExtractFromTextUsesMarkdownLabel(t *testing.T) {
	text := "Background on the topic is covered in the following article.\n\n[Official docs](https://docs.example.org/guide)"

	got := ExtractFromText(text, OriginKnowledgeBase)

	require.Len(t, got, 1)
	assert.Equal(t, "Official docs", got[0].Title)
	assert.Equal(t, "https://docs.example.org/guide", got[0].URL)
	assert.Equal(t, OriginKnowledgeBase, got[0].Origin)
}

func TestExtractFromTextDeduplicates(t *testing.T) {
	text := "See https://example.com/a and again http://www.example.com/a/ here."

	got := ExtractFromText(text, OriginWeb)

	require.Len(t, got, 1)
	assert.Equal(t, "example.com", got[0].Title)
}

func TestExtractFromTextNoURLs(t *testing.T) {
	assert.Empty(t, ExtractFromText("", OriginWeb))
	assert.Empty(t, ExtractFromText("no links in this paragraph at all", OriginWeb))
}
