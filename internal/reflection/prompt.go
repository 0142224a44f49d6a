package reflection

import (
	"fmt"
	"strings"
)

const systemInstructions = "You are an empathetic mental wellness assistant for young people."

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"kn": "Kannada",
	"ta": "Tamil",
	"te": "Telugu",
	"ml": "Malayalam",
}

// LanguageName returns the English name of a supported language code, or
// English for anything unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return languageNames["en"]
}

func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(systemInstructions + "\n")
	b.WriteString("Analyze the user's journal entry and return a concise reflection (<= 100 words) and a moodScore between -1 and 1.\n")
	b.WriteString("- moodScore: -1 = very negative, 0 = neutral/mixed, 1 = very positive\n")
	b.WriteString("- reflection: supportive, kind, specific to their text (no medical advice)\n")
	if lang := LanguageName(req.Language); lang != "English" {
		fmt.Fprintf(&b, "- write the reflection in %s\n", lang)
	}
	b.WriteString(`Return ONLY a JSON object with keys "reflection" (string) and "moodScore" (number in [-1,1]).` + "\n\n")
	fmt.Fprintf(&b, "Journal Entry:\n\"\"\"%s\"\"\"", req.Text)
	return b.String()
}
