package query

import (
	"github.com/conneroisu/ope/internal/reviews"
)

// Find returns the review whose ReviewID equals id exactly.
func Find(all []reviews.Review, id string) (reviews.Review, error) {
	if id == "" {
		return reviews.Review{}, ErrMissingID
	}
	for _, r := range all {
		if r.ReviewID == id {
			return r, nil
		}
	}
	return reviews.Review{}, ErrNotFound.WithContext("review_id", id)
}
