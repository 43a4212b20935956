package query

import (
	"github.com/conneroisu/ope/internal/reviews"
)

// Defaults applied when a caller passes a non-positive page or page size.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// Pagination is the metadata reported alongside a page of reviews.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// Page is one slice of the review sequence.
type Page struct {
	Reviews    []reviews.Review `json:"reviews"`
	Pagination Pagination       `json:"pagination"`
}

// Paginate returns the reviews in [(page-1)*perPage, page*perPage) clipped to
// the sequence. A page past the end yields an empty slice. page < 1 falls back
// to DefaultPage and perPage < 1 to DefaultPerPage.
func Paginate(all []reviews.Review, page, perPage int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total := len(all)
	start := total
	if page-1 <= total/perPage {
		start = min((page-1)*perPage, total)
	}
	end := total
	if perPage < total-start {
		end = start + perPage
	}

	out := make([]reviews.Review, end-start)
	copy(out, all[start:end])

	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}

	return Page{
		Reviews: out,
		Pagination: Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   total,
			Pages:   pages,
		},
	}
}
