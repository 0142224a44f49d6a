package journal

import "strings"

const DefaultLanguage = "en"

var supportedLanguages = map[string]bool{
	"en": true,
	"hi": true,
	"kn": true,
	"ta": true,
	"te": true,
	"ml": true,
}

// ResolveLanguage picks the reflection language. Text containing Devanagari
// is answered in Hindi whatever was requested.
func ResolveLanguage(requested, text string) string {
	if containsDevanagari(text) {
		return "hi"
	}
	lang := strings.ToLower(strings.TrimSpace(requested))
	if supportedLanguages[lang] {
		return lang
	}
	return DefaultLanguage
}

func containsDevanagari(text string) bool {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}
