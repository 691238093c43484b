package services

import (
	"strings"

	domain "github.com/kidsafisha/api/internal/domain"
)

// ReduceAgeBands folds the selected bands into one inclusive range.
// Unknown bands are ignored; an open-ended band leaves the upper bound open.
func ReduceAgeBands(selected []domain.AgeBand) domain.AgeRange {
	var (
		result   domain.AgeRange
		openEnd  bool
		matched  bool
		minBound int
		maxBound int
	)

	for _, band := range selected {
		bounds, ok := band.Bounds()
		if !ok {
			continue
		}
		if !matched || bounds.Min < minBound {
			minBound = bounds.Min
		}
		if bounds.Max == nil {
			openEnd = true
		} else if !matched || *bounds.Max > maxBound {
			maxBound = *bounds.Max
		}
		matched = true
	}

	if !matched {
		return result
	}

	from := minBound
	result.From = &from
	if !openEnd {
		to := maxBound
		result.To = &to
	}
	return result
}

// "10+" reaches the server as "10 " when the plus sign is not percent-encoded.
var ageBandAliases = map[string]domain.AgeBand{
	"10": domain.AgeBandTeen,
}

// ParseAgeBands converts raw request keys into known bands, dropping unknown and duplicate keys.
func ParseAgeBands(raw []string) []domain.AgeBand {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[domain.AgeBand]struct{}, len(raw))
	bands := make([]domain.AgeBand, 0, len(raw))
	for _, key := range raw {
		band := domain.AgeBand(strings.TrimSpace(key))
		if alias, ok := ageBandAliases[string(band)]; ok {
			band = alias
		}
		if _, ok := band.Bounds(); !ok {
			continue
		}
		if _, dup := seen[band]; dup {
			continue
		}
		seen[band] = struct{}{}
		bands = append(bands, band)
	}
	return bands
}
