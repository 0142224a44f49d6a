package heuristic

import "strings"

const (
	VeryPositiveCutoff = 0.45
	MildPositiveCutoff = 0.15
	MildNegativeCutoff = -0.15
	VeryNegativeCutoff = -0.45
)

type Band int

const (
	BandVeryNegative Band = iota
	BandMildlyNegative
	BandNeutral
	BandMildlyPositive
	BandVeryPositive
)

// BandFor maps a mood score to its band. Each cutoff belongs to the band
// below it: 0.45 is mildly positive, -0.45 is very negative.
func BandFor(score float64) Band {
	switch {
	case score > VeryPositiveCutoff:
		return BandVeryPositive
	case score > MildPositiveCutoff:
		return BandMildlyPositive
	case score > MildNegativeCutoff:
		return BandNeutral
	case score > VeryNegativeCutoff:
		return BandMildlyNegative
	default:
		return BandVeryNegative
	}
}

func (b Band) String() string {
	switch b {
	case BandVeryPositive:
		return "very_positive"
	case BandMildlyPositive:
		return "mildly_positive"
	case BandNeutral:
		return "neutral"
	case BandMildlyNegative:
		return "mildly_negative"
	case BandVeryNegative:
		return "very_negative"
	default:
		return "unknown"
	}
}

type template struct {
	opening string
	closing string
}

var templates = map[Band]template{
	BandVeryPositive: {
		opening: "It's uplifting to sense the positive energy in what you shared. Celebrate these wins and the strength you're building.",
		closing: "Keep noticing what supports your well-being and carry that forward.",
	},
	BandMildlyPositive: {
		opening: "There's a gentle optimism in your words. Even small steps can nurture momentum.",
		closing: "Consider one simple action that would help you feel grounded today.",
	},
	BandNeutral: {
		opening: "Your entry reflects a balanced mix of feelings. It's okay to hold complexity—both ease and challenge can coexist.",
		closing: "Try a brief check-in: what do you need most right now—rest, support, or expression?",
	},
	BandMildlyNegative: {
		opening: "It sounds like things are weighing on you. Your feelings are valid, and writing them out is a powerful step.",
		closing: "Consider a compassionate pause: slow breaths, a short walk, or reaching out to someone you trust.",
	},
	BandVeryNegative: {
		opening: "I'm hearing real heaviness in what you shared. You're not alone, and it's brave to express this.",
		closing: "If the weight feels overwhelming, please consider talking to someone you trust or a professional—support can make a difference.",
	},
}

// Opening returns the first sentence group of the band's reflection.
func (b Band) Opening() string {
	return templates[b].opening
}

// Closing returns the band's closing suggestion.
func (b Band) Closing() string {
	return templates[b].closing
}

// MentionClause lists the keywords back to the writer. It is empty when there
// are no keywords.
func MentionClause(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}

	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = `"` + k + `"`
	}
	return "You mentioned " + strings.Join(quoted, ", ") + " — thanks for opening up about that."
}

func composeReflection(band Band, keywords []string) string {
	parts := []string{band.Opening()}
	if mention := MentionClause(keywords); mention != "" {
		parts = append(parts, mention)
	}
	parts = append(parts, band.Closing())
	return strings.Join(parts, " ")
}
