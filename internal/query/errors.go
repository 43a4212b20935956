package query

import (
	"github.com/conneroisu/ope/internal/errors"
)

// Sentinel errors returned by the query operations. Compare with errors.Is.
var (
	ErrEmptyQuery = errors.NewValidationError("EMPTY_QUERY", "Search query required")
	ErrNoRecords  = errors.NewEmptyError("NO_RECORDS", "No reviews found")
	ErrNotFound   = errors.NewNotFoundError("REVIEW_NOT_FOUND", "Review not found")
	ErrMissingID  = errors.NewValidationError("MISSING_ID", "Review ID required")
)
