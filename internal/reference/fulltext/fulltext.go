// Package fulltext turns free text into stemmed index terms.
//
// Indexing and querying share one pipeline: stopword removal, tokenization,
// and porter-style stemming, so a query term always lands on the same root as
// the indexed document text.
package fulltext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
)

// tokenPattern mirrors the scraper's term shape: letters with optional
// apostrophes/hyphens, 2 to 31 characters.
var tokenPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z'-]{1,30}$`)

// Tokens returns the stemmed index terms for text, in occurrence order.
// Malformed or empty input yields a nil slice, not an error.
func Tokens(text string) ([]string, error) {
	cleaned := stopwords.CleanString(strings.ToLower(text), "en", false)
	if strings.TrimSpace(cleaned) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(cleaned,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
		prose.WithTagging(false))
	if err != nil {
		return nil, fmt.Errorf("tokenize text: %w", err)
	}

	tokens := doc.Tokens()
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		word := strings.ToLower(token.Text)
		if !tokenPattern.MatchString(word) {
			continue
		}
		stemmed, err := snowball.Stem(word, "english", false)
		if err != nil || stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms, nil
}

// TermFrequencies counts occurrences per stemmed term.
func TermFrequencies(terms []string) map[string]int {
	if len(terms) == 0 {
		return nil
	}
	frequencies := make(map[string]int, len(terms))
	for _, term := range terms {
		frequencies[term]++
	}
	return frequencies
}
