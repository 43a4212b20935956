package query

import (
	"strings"

	"github.com/conneroisu/ope/internal/reviews"
)

// SearchResult is the response of a search.
type SearchResult struct {
	Query        string           `json:"query"`
	Results      []reviews.Review `json:"results"`
	TotalResults int              `json:"total_results"`
}

// Tokens lower-cases q and splits it on whitespace.
func Tokens(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

// Search returns, in source order, every review whose artist, title and
// review text together contain all tokens of q as substrings. A query with no
// tokens is ErrEmptyQuery.
func Search(all []reviews.Review, q string) (SearchResult, error) {
	tokens := Tokens(q)
	if len(tokens) == 0 {
		return SearchResult{}, ErrEmptyQuery
	}

	results := []reviews.Review{}
	for _, r := range all {
		if matches(searchText(r), tokens) {
			results = append(results, r)
		}
	}

	return SearchResult{
		Query:        strings.ToLower(strings.TrimSpace(q)),
		Results:      results,
		TotalResults: len(results),
	}, nil
}

func searchText(r reviews.Review) string {
	return strings.ToLower(r.SongArtist + " " + r.SongTitle + " " + r.ReviewText)
}

func matches(text string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}
