package query

import (
	"encoding/json"
	"math"

	"github.com/conneroisu/ope/internal/reviews"
)

// ArtistCount is an artist paired with how many reviews they have. It encodes
// as a two-element JSON array: ["Artist", 3].
type ArtistCount struct {
	Artist string
	Count  int
}

// MarshalJSON implements json.Marshaler.
func (a ArtistCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Artist, a.Count})
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *ArtistCount) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &a.Artist); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &a.Count)
}

// Summary is the analytics report over a review sequence.
type Summary struct {
	TotalReviews       int            `json:"total_reviews"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	ArtistCounts       map[string]int `json:"artist_counts"`
	GenreCounts        map[string]int `json:"genre_counts"`
	MostReviewedArtist ArtistCount    `json:"most_reviewed_artist"`
	AverageRating      float64        `json:"average_rating"`
}

// Analyze aggregates all. Rating keys are the scores formatted as JSON
// numbers ("4", "0.5"). Reviews without a genre are not counted in
// GenreCounts. On a tie for most reviewed artist the artist seen first in
// source order wins. An empty sequence is ErrNoRecords.
func Analyze(all []reviews.Review) (Summary, error) {
	if len(all) == 0 {
		return Summary{}, ErrNoRecords
	}

	s := Summary{
		TotalReviews:       len(all),
		RatingDistribution: make(map[string]int),
		ArtistCounts:       make(map[string]int),
		GenreCounts:        make(map[string]int),
	}

	var order []string
	var sum float64
	for _, r := range all {
		s.RatingDistribution[r.ReviewScore.String()]++

		if _, seen := s.ArtistCounts[r.SongArtist]; !seen {
			order = append(order, r.SongArtist)
		}
		s.ArtistCounts[r.SongArtist]++

		if r.SongGenre != "" {
			s.GenreCounts[r.SongGenre]++
		}
		sum += float64(r.ReviewScore)
	}

	for _, artist := range order {
		if n := s.ArtistCounts[artist]; n > s.MostReviewedArtist.Count {
			s.MostReviewedArtist = ArtistCount{Artist: artist, Count: n}
		}
	}

	s.AverageRating = math.Round(sum/float64(len(all))*100) / 100
	return s, nil
}
