package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SearchFields lists the item attributes folded into its searchable text.
type SearchFields struct {
	Title       string
	Description string
	CitySlug    string
	Tags        []string
}

// Normalize canonicalises free text for matching: NFC composition, Russian lower-casing, ё folded to е,
// whitespace runs collapsed to a single space and the result trimmed.
func Normalize(input string) string {
	if input == "" {
		return ""
	}
	// cases.Caser keeps state between calls, so each call gets its own.
	lowered := cases.Lower(language.Russian).String(norm.NFC.String(input))
	folded := strings.ReplaceAll(lowered, "ё", "е")
	return strings.Join(strings.Fields(folded), " ")
}

// BuildSearchText concatenates title, description, city slug and tags (each only when present)
// and normalises the result.
func BuildSearchText(fields SearchFields) string {
	parts := make([]string, 0, 4)
	for _, value := range []string{fields.Title, fields.Description, fields.CitySlug} {
		if strings.TrimSpace(value) != "" {
			parts = append(parts, value)
		}
	}
	if tags := joinTags(fields.Tags); tags != "" {
		parts = append(parts, tags)
	}
	return Normalize(strings.Join(parts, " "))
}

// SearchTerms splits a raw query into normalised terms, dropping duplicates.
func SearchTerms(query string) []string {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}
	fields := strings.Split(normalized, " ")
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		terms = append(terms, field)
	}
	return terms
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		cleaned = append(cleaned, tag)
	}
	return strings.Join(cleaned, " ")
}
