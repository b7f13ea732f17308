package intent

// DefaultKeywords returns the cue words for English, Portuguese, Spanish and Bulgarian.
func DefaultKeywords() map[string]Keywords {
	return map[string]Keywords{
		"en": {
			Negative:    []string{"no", "nope", "not really", "other", "others", "another", "different", "more", "refine", "something else"},
			Affirmative: []string{"yes", "yeah", "yep", "perfect", "great", "thanks", "thank you", "good"},
		},
		"pt": {
			Negative:    []string{"não", "outro", "outros", "outra", "outras", "diferente", "diferentes", "mais", "refinar"},
			Affirmative: []string{"sim", "perfeito", "ótimo", "obrigado", "obrigada", "bom"},
		},
		"es": {
			Negative:    []string{"no", "otro", "otros", "otra", "otras", "diferente", "diferentes", "más", "refinar"},
			Affirmative: []string{"sí", "perfecto", "genial", "gracias", "bueno"},
		},
		"bg": {
			Negative:    []string{"не", "друг", "други", "различни", "още", "прецизирай"},
			Affirmative: []string{"да", "перфектно", "благодаря", "добре"},
		},
	}
}
