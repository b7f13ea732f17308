package intent

import (
	"testing"

	"github.com/scoutline/scout-client/internal/domain/chat"
)

func TestClassifyPerLanguage(t *testing.T) {
	c := NewDefaultClassifier()

	cases := []struct {
		lang string
		text string
		want Intent
	}{
		{"en", "No, show me others", Negative},
		{"en", "NO", Negative},
		{"en", "I'd like something else", Negative},
		{"en", "Yes, perfect", Affirmative},
		{"en", "Tell me about wingers", Unknown},
		{"en", "I know the club", Unknown},
		{"pt", "Não, quero outros", Negative},
		{"pt", "nao", Negative},
		{"pt", "Sim, obrigado", Affirmative},
		{"es", "No, otros por favor", Negative},
		{"es", "Sí, gracias", Affirmative},
		{"bg", "Не, други", Negative},
		{"bg", "Да, благодаря", Affirmative},
		{"bg", "Покажи нападатели", Unknown},
	}

	for _, tc := range cases {
		t.Run(tc.lang+"/"+tc.text, func(t *testing.T) {
			if got := c.Classify(tc.lang, tc.text); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClassifyDoesNotCrossMatchLanguages(t *testing.T) {
	c := NewDefaultClassifier()
	if got := c.Classify("en", "não"); got != Unknown {
		t.Fatalf("expected Portuguese cue to be ignored in English, got %s", got)
	}
	if got := c.Classify("pt", "no"); got != Unknown {
		t.Fatalf("expected English cue to be ignored in Portuguese, got %s", got)
	}
}

func TestClassifyUnknownLanguageFallsBack(t *testing.T) {
	c := NewDefaultClassifier()
	if got := c.Classify("de", "no thanks"); got != Negative {
		t.Fatalf("expected fallback to English table, got %s", got)
	}
	empty := NewKeywordClassifier(nil, "en")
	if got := empty.Classify("de", "no"); got != Unknown {
		t.Fatalf("expected Unknown without tables, got %s", got)
	}
}

func TestClassifyBlankText(t *testing.T) {
	if got := NewDefaultClassifier().Classify("en", "   "); got != Unknown {
		t.Fatalf("expected Unknown for blank text, got %s", got)
	}
}

func TestSatisfactionHint(t *testing.T) {
	c := NewDefaultClassifier()
	question := &chat.Message{Sender: chat.SenderBot, IsSatisfactionQuestion: true}
	plain := &chat.Message{Sender: chat.SenderBot}

	if hint := SatisfactionHint(nil, "en", "no", c); hint != nil {
		t.Fatalf("expected nil hint without previous message, got %v", *hint)
	}
	if hint := SatisfactionHint(plain, "en", "no", c); hint != nil {
		t.Fatalf("expected nil hint when previous bot message asked nothing, got %v", *hint)
	}
	if hint := SatisfactionHint(question, "en", "yes please", c); hint != nil {
		t.Fatalf("expected nil hint for affirmative reply, got %v", *hint)
	}
	hint := SatisfactionHint(question, "en", "No", c)
	if hint == nil || *hint {
		t.Fatalf("expected false hint for negative reply, got %v", hint)
	}
	if hint := SatisfactionHint(question, "en", "no", nil); hint != nil {
		t.Fatal("expected nil hint without classifier")
	}
}
