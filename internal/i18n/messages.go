package i18n

// MessageKey names an assistant-authored text.
type MessageKey string

const (
	MsgSearchFailed MessageKey = "search_failed"
	MsgNoResults    MessageKey = "no_results"
)

var catalog = map[MessageKey]map[string]string{
	MsgSearchFailed: {
		"en": "Sorry, I couldn't complete that search right now. Please try again in a moment.",
		"pt": "Desculpe, não consegui concluir essa pesquisa agora. Tente novamente em instantes.",
		"es": "Lo siento, no pude completar esa búsqueda ahora. Inténtalo de nuevo en un momento.",
		"bg": "Съжаляваме, не успях да завърша търсенето. Моля, опитайте отново след малко.",
	},
	MsgNoResults: {
		"en": "I couldn't find players matching that request.",
		"pt": "Não encontrei jogadores para esse pedido.",
		"es": "No encontré jugadores para esa solicitud.",
		"bg": "Не намерих играчи по това запитване.",
	},
}

// Text returns the message for lang, falling back to English.
func Text(key MessageKey, lang string) string {
	texts, ok := catalog[key]
	if !ok {
		return string(key)
	}
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[DefaultLanguage]
}
