package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectShortInputDefaultsToEnglish(t *testing.T) {
	for _, in := range []string{"", "  ", "ok", "https://example.com/a-very-long-path"} {
		got := Detect(in)
		assert.Equal(t, "en", got.Code, in)
		assert.Equal(t, 0.5, got.Confidence, in)
	}
}

func TestDetectJapanese(t *testing.T) {
	got := Detect("東京で一番おいしいラーメン屋はどこですか")

	assert.Equal(t, "ja", got.Code)
	assert.Equal(t, "Japanese", got.Name)
}

func TestDetectEnglishSentence(t *testing.T) {
	got := Detect("The quick brown fox jumps over the lazy dog while the farmer watches from the old wooden barn near the river.")

	assert.Equal(t, "en", got.Code)
}

func TestInstruction(t *testing.T) {
	assert.Equal(t, "日本語で回答してください。", Instruction("ja"))
	assert.Equal(t, "Respond in Finnish.", Instruction("fi"))
	assert.Equal(t, "Respond in English.", Instruction(""))
}
