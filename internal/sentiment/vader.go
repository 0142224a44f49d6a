package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

// CrisisIntensityCutoff is the VADER compound score at or below which an
// entry is flagged for crisis resources regardless of its mood score.
const CrisisIntensityCutoff = -0.75

var analyzer = govader.NewSentimentIntensityAnalyzer()

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders journal markdown and strips it back down to
// plain words so formatting characters don't skew the VADER lexicon.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	plain := html.UnescapeString(tagPattern.ReplaceAllString(string(output), " "))
	return strings.Join(strings.Fields(plain), " ")
}

// VaderScorer reports the VADER compound polarity of journal text.
type VaderScorer struct{}

func NewVaderScorer() VaderScorer {
	return VaderScorer{}
}

// Intensity returns the compound score in [-1, 1].
func (VaderScorer) Intensity(text string) float64 {
	plain := ConvertMarkdownToText(text)
	if plain == "" {
		return 0
	}
	return analyzer.PolarityScores(plain).Compound
}

// IsCrisis reports whether the intensity alone warrants crisis resources.
func IsCrisis(intensity float64) bool {
	return intensity <= CrisisIntensityCutoff
}
