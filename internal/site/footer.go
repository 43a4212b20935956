package site

import "time"

// DateLayout formats the last-updated date, e.g. "August 19, 2025".
const DateLayout = "January 2, 2006"

// FormatDate renders t in loc using DateLayout. A nil loc means UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
