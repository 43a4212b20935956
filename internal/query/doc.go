// Package query implements the read-only operations of the review API over an
// in-memory review sequence: pagination, conjunctive search, analytics and CSV
// export. Every operation is a single pass that preserves source order and
// never mutates its input.
package query
