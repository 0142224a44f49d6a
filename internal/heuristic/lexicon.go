package heuristic

import (
	"errors"
	"fmt"
	"strings"
)

var ErrOverlappingLexicons = errors.New("[Heuristic] positive and negative lexicons overlap")

// WordSet is an immutable set of lowercase words.
type WordSet map[string]struct{}

func newWordSet(words []string) WordSet {
	set := make(WordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func (s WordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func (s WordSet) Len() int {
	return len(s)
}

// Lexicons bundles the word lists the analyzer reads. Nothing mutates a
// Lexicons value after construction, so one value may back any number of
// concurrent analyzers.
type Lexicons struct {
	Positive  WordSet
	Negative  WordSet
	Stopwords WordSet
}

// NewLexicons builds lexicons from plain word lists. A word listed as both
// positive and negative is rejected.
func NewLexicons(positive, negative, stopwords []string) (Lexicons, error) {
	lex := Lexicons{
		Positive:  newWordSet(positive),
		Negative:  newWordSet(negative),
		Stopwords: newWordSet(stopwords),
	}

	for w := range lex.Positive {
		if lex.Negative.Contains(w) {
			return Lexicons{}, fmt.Errorf("%w: %q", ErrOverlappingLexicons, w)
		}
	}

	return lex, nil
}

var positiveWords = []string{
	"happy", "joy", "good", "great", "amazing", "wonderful", "excited", "love", "grateful", "blessed",
	"calm", "proud", "relaxed", "hopeful", "peaceful", "confident", "energized", "progress", "success", "fun",
}

var negativeWords = []string{
	"sad", "angry", "frustrated", "depressed", "anxious", "worried", "hate", "terrible", "awful", "stressed",
	"overwhelmed", "lonely", "tired", "guilty", "scared", "fear", "pain", "failure", "regret", "hurt",
}

var stopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself", "it", "its", "itself", "they", "them", "their",
	"theirs", "themselves", "what", "which", "who", "whom", "this", "that", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do", "does", "did", "doing", "a", "an",
	"the", "and", "but", "if", "or", "because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above", "below", "to", "from", "up",
	"down", "in", "out", "on", "off", "over", "under", "again", "further", "then", "once", "here", "there", "when",
	"where", "why", "how", "all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "can", "will", "just", "don", "should", "now",
}

var defaultLexicons = mustLexicons(positiveWords, negativeWords, stopwords)

func mustLexicons(positive, negative, stop []string) Lexicons {
	lex, err := NewLexicons(positive, negative, stop)
	if err != nil {
		panic(err)
	}
	return lex
}

// DefaultLexicons returns the built-in English word lists.
func DefaultLexicons() Lexicons {
	return defaultLexicons
}
