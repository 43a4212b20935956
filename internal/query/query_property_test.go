//go:build property

package query

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/ope/internal/reviews"
)

func reviewsOfLen(n int) []reviews.Review {
	out := make([]reviews.Review, n)
	for i := range out {
		out[i] = reviews.Review{ReviewID: strconv.Itoa(i)}
	}
	return out
}

func reviewGen() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("morgan wallen", "wednesday", "horses 4k", "joyce manor"),
		gen.AlphaString(),
		gen.AlphaString(),
	).Map(func(v []interface{}) reviews.Review {
		return reviews.Review{
			SongArtist: v[0].(string),
			SongTitle:  v[1].(string),
			ReviewText: v[2].(string),
		}
	})
}

func TestPaginationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2025)
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("a page never exceeds per_page", prop.ForAll(
		func(total, page, perPage int) bool {
			return len(Paginate(reviewsOfLen(total), page, perPage).Reviews) <= perPage
		},
		gen.IntRange(0, 200),
		gen.IntRange(1, 50),
		gen.IntRange(1, 50),
	))

	properties.Property("concatenating every page reconstructs the sequence", prop.ForAll(
		func(total, perPage int) bool {
			all := reviewsOfLen(total)
			first := Paginate(all, 1, perPage)

			var joined []reviews.Review
			for p := 1; p <= first.Pagination.Pages; p++ {
				joined = append(joined, Paginate(all, p, perPage).Reviews...)
			}
			if len(joined) != total {
				return false
			}
			for i, r := range joined {
				if r.ReviewID != strconv.Itoa(i) {
					return false
				}
			}
			return len(Paginate(all, first.Pagination.Pages+1, perPage).Reviews) == 0
		},
		gen.IntRange(0, 200),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestSearchProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(99)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("one token matches a superset of two tokens sharing it", prop.ForAll(
		func(all []reviews.Review, a, b string) bool {
			if strings.TrimSpace(a) == "" {
				return true
			}
			one, err := Search(all, a)
			if err != nil {
				return false
			}
			two, err := Search(all, a+" "+b)
			if err != nil {
				return false
			}
			for _, m := range two.Results {
				found := false
				for _, r := range one.Results {
					if r == m {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return two.TotalResults <= one.TotalResults
		},
		gen.SliceOf(reviewGen()),
		gen.OneConstOf("morgan", "wall", "day", "4k", "e"),
		gen.OneConstOf("wallen", "horses", "x", "manor"),
	))

	properties.Property("every result contains every token", prop.ForAll(
		func(all []reviews.Review, q string) bool {
			res, err := Search(all, q)
			if err != nil {
				return len(Tokens(q)) == 0
			}
			for _, r := range res.Results {
				text := strings.ToLower(r.SongArtist + " " + r.SongTitle + " " + r.ReviewText)
				for _, tok := range Tokens(q) {
					if !strings.Contains(text, tok) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(reviewGen()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestAnalyticsProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("artist counts sum to the total", prop.ForAll(
		func(all []reviews.Review) bool {
			s, err := Analyze(all)
			if len(all) == 0 {
				return err == ErrNoRecords
			}
			sum := 0
			for _, n := range s.ArtistCounts {
				sum += n
			}
			return err == nil && sum == s.TotalReviews && s.MostReviewedArtist.Count >= 1
		},
		gen.SliceOf(reviewGen()),
	))

	properties.TestingRun(t)
}
