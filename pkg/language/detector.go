package language

import (
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	DefaultCode       = "en"
	defaultConfidence = 0.5
	minDetectable     = 3
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

var instructions = map[string]string{
	"en": "Respond in English.",
	"es": "Responde en español.",
	"fr": "Répondez en français.",
	"de": "Antworten Sie auf Deutsch.",
	"it": "Rispondi in italiano.",
	"pt": "Responda em português.",
	"nl": "Antwoord in het Nederlands.",
	"ru": "Отвечайте на русском языке.",
	"ja": "日本語で回答してください。",
	"ko": "한국어로 답변해 주세요.",
	"zh": "请用中文回答。",
	"ar": "أجب باللغة العربية.",
	"hi": "हिंदी में उत्तर दें।",
	"th": "ตอบเป็นภาษาไทย",
	"vi": "Trả lời bằng tiếng Việt.",
	"id": "Jawab dalam bahasa Indonesia.",
	"tr": "Türkçe cevap verin.",
	"pl": "Odpowiedz po polsku.",
	"sv": "Svara på svenska.",
	"uk": "Відповідайте українською мовою.",
}

type Detection struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Detect guesses the language of a query. Very short or undetectable input
// defaults to English.
func Detect(text string) Detection {
	cleaned := clean(text)
	if len([]rune(cleaned)) < minDetectable {
		return fallback()
	}

	info := whatlanggo.Detect(cleaned)
	code := info.Lang.Iso6391()
	if code == "" {
		return fallback()
	}
	return Detection{Code: code, Name: Name(code), Confidence: info.Confidence}
}

// Instruction is the sentence appended to prompts so the model answers in
// the user's language.
func Instruction(code string) string {
	if s, ok := instructions[code]; ok {
		return s
	}
	if name := Name(code); name != "" && code != "" {
		return "Respond in " + name + "."
	}
	return instructions[DefaultCode]
}

// Name returns the English name of an ISO 639-1 code.
func Name(code string) string {
	tag, err := textlang.Parse(code)
	if err != nil {
		return "English"
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return "English"
	}
	return name
}

func clean(text string) string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

func fallback() Detection {
	return Detection{Code: DefaultCode, Name: "English", Confidence: defaultConfidence}
}
