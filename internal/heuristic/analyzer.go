// Package heuristic scores journal text with a keyword lexicon and composes a
// short supportive reflection. It is the fallback used whenever the hosted
// reflection provider is unavailable, so it never fails and does no I/O.
package heuristic

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Smoothing is added to the hit total so sparse evidence stays damped and
	// an entry with no hits scores 0.
	Smoothing = 1.0

	MaxKeywords      = 3
	MinKeywordLength = 4
)

// Result is the analyzer output for a single journal entry.
type Result struct {
	Reflection string  `json:"reflection"`
	MoodScore  float64 `json:"moodScore"`
}

type Analyzer struct {
	lex Lexicons
}

func NewAnalyzer(lex Lexicons) *Analyzer {
	return &Analyzer{lex: lex}
}

var defaultAnalyzer = NewAnalyzer(DefaultLexicons())

// Analyze runs the default analyzer.
func Analyze(text string) Result {
	return defaultAnalyzer.Analyze(text)
}

func (a *Analyzer) Analyze(text string) Result {
	tokens := Tokenize(text)

	score := a.score(tokens)
	keywords := a.keywords(tokens)

	return Result{
		Reflection: composeReflection(BandFor(score), keywords),
		MoodScore:  score,
	}
}

// Score returns only the mood score for text.
func (a *Analyzer) Score(text string) float64 {
	return a.score(Tokenize(text))
}

// Keywords returns up to MaxKeywords salient words from text, most frequent first.
func (a *Analyzer) Keywords(text string) []string {
	return a.keywords(Tokenize(text))
}

// Tokenize splits text into words. Letters and numbers of any script are kept
// along with the apostrophe; everything else separates, combining marks included.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, isSeparator)
}

func isSeparator(r rune) bool {
	if r == '\'' {
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

func (a *Analyzer) score(tokens []string) float64 {
	var pos, neg int
	for _, t := range tokens {
		w := strings.ToLower(t)
		if a.lex.Positive.Contains(w) {
			pos++
		}
		if a.lex.Negative.Contains(w) {
			neg++
		}
	}

	return normalizeScore(float64(pos-neg) / (float64(pos+neg) + Smoothing))
}

func normalizeScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return max(-1, min(1, score))
}

type keywordCount struct {
	word  string
	count int
}

func (a *Analyzer) keywords(tokens []string) []string {
	index := make(map[string]int)
	var counts []keywordCount

	for _, t := range tokens {
		w := strings.ToLower(t)
		if a.lex.Stopwords.Contains(w) {
			continue
		}
		if utf8.RuneCountInString(w) < MinKeywordLength {
			continue
		}
		if i, ok := index[w]; ok {
			counts[i].count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, keywordCount{word: w, count: 1})
	}

	// stable: equal counts keep first-occurrence order
	slices.SortStableFunc(counts, func(x, y keywordCount) int {
		return y.count - x.count
	})

	if len(counts) > MaxKeywords {
		counts = counts[:MaxKeywords]
	}

	keywords := make([]string, 0, len(counts))
	for _, c := range counts {
		keywords = append(keywords, c.word)
	}
	return keywords
}
