package i18n

import "testing"

func TestDefaultsHasFourLanguages(t *testing.T) {
	langs := Defaults()
	if len(langs) != 4 {
		t.Fatalf("expected 4 default languages, got %d", len(langs))
	}
	want := []string{"en", "pt", "es", "bg"}
	for i, code := range want {
		if langs[i].Code != code {
			t.Fatalf("expected %s at %d, got %s", code, i, langs[i].Code)
		}
	}
	langs[0].Code = "xx"
	if Defaults()[0].Code != "en" {
		t.Fatal("expected Defaults to return a copy")
	}
}

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"":                        "en",
		"pt":                      "pt",
		"BG":                      "bg",
		"pt-BR":                   "pt",
		"es-419":                  "es",
		"bg-BG,bg;q=0.9,en;q=0.8": "bg",
		"ja":                      "en",
		"not a tag!!":             "en",
	}
	for in, want := range cases {
		if got := Match(in); got != want {
			t.Fatalf("Match(%q) expected %s, got %s", in, want, got)
		}
	}
}

func TestResolveRejectsUnmatchedTags(t *testing.T) {
	for _, in := range []string{"", "ja", "xx", "not a tag!!"} {
		if code, ok := Resolve(in); ok {
			t.Fatalf("Resolve(%q) expected no match, got %s", in, code)
		}
	}
	if code, ok := Resolve("pt-PT"); !ok || code != "pt" {
		t.Fatalf("Resolve(pt-PT) expected pt, got %q %v", code, ok)
	}
}

func TestText(t *testing.T) {
	if got := Text(MsgSearchFailed, "pt"); got == Text(MsgSearchFailed, "en") {
		t.Fatalf("expected localized text, got %q", got)
	}
	if got := Text(MsgSearchFailed, "de"); got != Text(MsgSearchFailed, "en") {
		t.Fatalf("expected English fallback, got %q", got)
	}
	if got := Text(MessageKey("missing"), "en"); got != "missing" {
		t.Fatalf("expected key echo for unknown message, got %q", got)
	}
}
