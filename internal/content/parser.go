package content

import (
	"strings"
)

// SectionMarker starts every entry section. Text before the first marker is
// preamble and is discarded.
const SectionMarker = "## "

// Recognised field prefixes. Matching is case-sensitive and anchored at the
// start of the trimmed line.
const (
	FieldDate        = "**Date:**"
	FieldFeatured    = "**Featured:**"
	FieldRating      = "**Rating:**"
	FieldDescription = "**Description:**"
	FieldListen      = "**Listen:**"
	FieldURL         = "**URL:**"
)

// Parse splits doc into sections and returns the entries that have both a
// title and a date, in document order. Unknown lines are ignored; a repeated
// field overwrites the earlier value.
func Parse(doc string) []Entry {
	sections := ParseSections(doc)
	entries := sections[:0]
	for _, entry := range sections {
		if entry.Date != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ParseSections is Parse without the date requirement: every section with a
// title is returned, in document order.
func ParseSections(doc string) []Entry {
	sections := strings.Split(doc, SectionMarker)
	if len(sections) < 2 {
		return []Entry{}
	}

	entries := make([]Entry, 0, len(sections)-1)
	for _, section := range sections[1:] {
		entry := parseSection(section)
		if entry.Title != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseSection(section string) Entry {
	lines := strings.Split(strings.TrimSpace(section), "\n")

	entry := Entry{Title: strings.TrimSpace(lines[0])}

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, FieldDate):
			entry.Date = fieldValue(line, FieldDate)
		case strings.HasPrefix(line, FieldFeatured):
			entry.Featured = strings.Contains(fieldValue(line, FieldFeatured), FeaturedGlyph)
		case strings.HasPrefix(line, FieldRating):
			entry.Rating = fieldValue(line, FieldRating)
		case strings.HasPrefix(line, FieldDescription):
			entry.Description = fieldValue(line, FieldDescription)
		case strings.HasPrefix(line, FieldListen):
			entry.MediaLink = fieldValue(line, FieldListen)
		case strings.HasPrefix(line, FieldURL):
			entry.URL = fieldValue(line, FieldURL)
		}
	}

	return entry
}

func fieldValue(line, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}

// Format renders entries back into the Markdown section format understood by
// Parse. Empty optional fields are omitted. heading, when non-empty, is written
// as a top-level "# " preamble line.
func Format(heading string, entries []Entry) string {
	var b strings.Builder

	if heading != "" {
		b.WriteString("# ")
		b.WriteString(heading)
		b.WriteString("\n\n")
	}

	for _, e := range entries {
		b.WriteString(SectionMarker)
		b.WriteString(e.Title)
		b.WriteString("\n")
		writeField(&b, FieldDate, e.Date)
		if e.Featured {
			writeField(&b, FieldFeatured, FeaturedGlyph)
		}
		writeField(&b, FieldRating, e.Rating)
		writeField(&b, FieldDescription, e.Description)
		writeField(&b, FieldListen, e.MediaLink)
		writeField(&b, FieldURL, e.URL)
		b.WriteString("\n")
	}

	return b.String()
}

func writeField(b *strings.Builder, prefix, value string) {
	if value == "" {
		return
	}
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}
