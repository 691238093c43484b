// Package queryparams reads typed values out of raw query strings without ever failing.
// Absent, blank or malformed parameters come back as "not present".
package queryparams

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Listing parameter names.
const (
	Search      = "q"
	Age         = "age"
	City        = "city"
	Category    = "category"
	QuickFilter = "quick"
	PriceMax    = "priceMax"
	Sort        = "sort"
	PageSize    = "pageSize"
	PageToken   = "pageToken"
	Page        = "page"
)

// pagingKeys are dropped whenever the ordering or a single-valued filter changes.
var pagingKeys = []string{Page, PageToken}

// Scalar returns the first raw value for key, trimmed. Repeated parameters only consult the
// first occurrence, so a blank first value reports absent even when later ones are set.
func Scalar(values url.Values, key string) (string, bool) {
	if values == nil {
		return "", false
	}
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return "", false
	}
	trimmed := strings.TrimSpace(raw[0])
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// CSVList splits the scalar for key on commas, trimming parts and dropping blanks.
// Input order is preserved and the result is never nil.
func CSVList(values url.Values, key string) []string {
	scalar, ok := Scalar(values, key)
	if !ok {
		return []string{}
	}
	parts := strings.Split(scalar, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

// Int parses the scalar for key as a base-10 integer.
func Int(values url.Values, key string) (int, bool) {
	scalar, ok := Scalar(values, key)
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(scalar)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Float parses the scalar for key as a finite, non-negative number. A decimal comma is accepted.
func Float(values url.Values, key string) (float64, bool) {
	scalar, ok := Scalar(values, key)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.Replace(scalar, ",", ".", 1), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, false
	}
	return value, true
}

// With returns a copy of values with key replaced by value (removed when blank) and
// paging parameters dropped.
func With(values url.Values, key, value string) url.Values {
	next := clone(values)
	for _, paging := range pagingKeys {
		next.Del(paging)
	}
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		next.Set(key, trimmed)
	} else {
		next.Del(key)
	}
	return next
}

// WithSort returns a copy of values selecting the given sort. Paging is reset.
func WithSort(values url.Values, sort string) url.Values {
	return With(values, Sort, sort)
}

// WithQuickFilter returns a copy of values with the quick filter replaced. Paging is reset.
func WithQuickFilter(values url.Values, quick string) url.Values {
	return With(values, QuickFilter, quick)
}

// Encode renders values as a query string, prefixed with "?" when non-empty.
func Encode(values url.Values) string {
	encoded := values.Encode()
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}

func clone(values url.Values) url.Values {
	next := make(url.Values, len(values))
	for key, list := range values {
		copied := make([]string, len(list))
		copy(copied, list)
		next[key] = copied
	}
	return next
}
