// Package intent classifies short user replies to the assistant's
// "did these results help?" prompt.
package intent

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"

	"github.com/scoutline/scout-client/internal/domain/chat"
)

// Intent is the coarse meaning of a reply.
type Intent string

const (
	Negative    Intent = "NEGATIVE"
	Affirmative Intent = "AFFIRMATIVE"
	Unknown     Intent = "UNKNOWN"
)

// Classifier maps a reply in a given language to an Intent.
type Classifier interface {
	Classify(language, text string) Intent
}

// Keywords lists the cue words for one language. Entries with spaces match as phrases.
type Keywords struct {
	Negative    []string
	Affirmative []string
}

// KeywordClassifier matches replies against the active language's cue words only.
type KeywordClassifier struct {
	tables   map[string]compiled
	fallback string
}

type compiled struct {
	negative    []string
	affirmative []string
}

// NewKeywordClassifier builds a classifier from per-language tables. Unknown
// languages are classified with the fallback language's table.
func NewKeywordClassifier(tables map[string]Keywords, fallback string) *KeywordClassifier {
	c := &KeywordClassifier{tables: make(map[string]compiled, len(tables)), fallback: fallback}
	for lang, kw := range tables {
		c.tables[strings.ToLower(lang)] = compiled{
			negative:    normalizeAll(kw.Negative),
			affirmative: normalizeAll(kw.Affirmative),
		}
	}
	return c
}

// NewDefaultClassifier returns a classifier for the bundled languages.
func NewDefaultClassifier() *KeywordClassifier {
	return NewKeywordClassifier(DefaultKeywords(), "en")
}

// Classify returns Negative when any negative cue appears, else Affirmative
// when an affirmative cue appears, else Unknown.
func (c *KeywordClassifier) Classify(language, text string) Intent {
	table, ok := c.tables[strings.ToLower(language)]
	if !ok {
		table, ok = c.tables[c.fallback]
		if !ok {
			return Unknown
		}
	}
	tokens := tokenize(normalize(text))
	if len(tokens) == 0 {
		return Unknown
	}
	joined := " " + strings.Join(tokens, " ") + " "
	if matchesAny(joined, table.negative) {
		return Negative
	}
	if matchesAny(joined, table.affirmative) {
		return Affirmative
	}
	return Unknown
}

// SatisfactionHint decides the satisfaction flag for the next search request.
// It is false only when the previous bot message asked a satisfaction question
// and the reply reads as negative; otherwise it is nil.
func SatisfactionHint(prev *chat.Message, language, text string, c Classifier) *bool {
	if c == nil || !prev.IsBotSatisfactionQuestion() {
		return nil
	}
	if c.Classify(language, text) != Negative {
		return nil
	}
	hint := false
	return &hint
}

func matchesAny(joined string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(joined, " "+cue+" ") {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
}

func normalizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if n := strings.Join(tokenize(normalize(item)), " "); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
