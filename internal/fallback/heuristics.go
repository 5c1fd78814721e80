package fallback

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMaxSentences = 3
	minSummaryChars     = 25
)

var (
	itemKeywords   = []string{"lista", "tarefas", ":"}
	itemSeparators = []string{",", ";", " e "}
)

// Summarize keeps the first maxSentences sentences of text. Texts too short
// to be worth summarizing get ShortTextMessage instead.
func Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	cleaned := strings.Join(strings.FieldsFunc(text, isSpace), " ")
	sentences := splitSentences(cleaned)
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}
	summary := strings.TrimSpace(strings.Join(sentences, " "))
	if utf8.RuneCountInString(summary) < minSummaryChars {
		return ShortTextMessage
	}
	return summaryPrefix + summary
}

// isSpace matches every Unicode space, including NBSP and the ASCII
// information separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// splitSentences cuts cleaned text at every space that follows a sentence
// terminator. Whitespace has already been collapsed to single spaces.
func splitSentences(cleaned string) []string {
	var sentences []string
	start := 0
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i] != ' ' {
			continue
		}
		switch cleaned[i-1] {
		case '.', '!', '?':
			sentences = append(sentences, cleaned[start:i])
			start = i + 1
		}
	}
	return append(sentences, cleaned[start:])
}

// ExtractItems pulls list items out of free text such as
// "crie uma lista: estudar IA, publicar no github".
func ExtractItems(text string) []string {
	payload := text
	for _, keyword := range itemKeywords {
		if rest, ok := cutAfterFold(payload, keyword); ok {
			payload = rest
		}
	}

	for _, sep := range itemSeparators {
		if !strings.Contains(payload, sep) {
			continue
		}
		var items []string
		for _, fragment := range strings.Split(payload, sep) {
			item := strings.Trim(fragment, " .")
			if utf8.RuneCountInString(item) > 2 {
				items = append(items, item)
			}
		}
		return items
	}

	if utf8.RuneCountInString(strings.TrimSpace(payload)) > 3 {
		return []string{strings.Trim(payload, " .")}
	}
	return nil
}

// cutAfterFold returns the part of s after the first case-insensitive
// occurrence of keyword.
func cutAfterFold(s, keyword string) (string, bool) {
	runes := []rune(s)
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}
	needle := []rune(strings.ToLower(keyword))
	for i := 0; i+len(needle) <= len(lowered); i++ {
		if string(lowered[i:i+len(needle)]) == string(needle) {
			return string(runes[i+len(needle):]), true
		}
	}
	return "", false
}
