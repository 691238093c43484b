package services

import (
	"net/url"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/platform/queryparams"
)

// ParseFilterParams builds the typed view of a listing request. Malformed or unknown values are
// treated as absent, so the call never fails.
func ParseFilterParams(values url.Values) domain.FilterParams {
	var params domain.FilterParams

	if search, ok := queryparams.Scalar(values, queryparams.Search); ok {
		params.Search = search
	}
	if ages := ReduceAgeBands(ParseAgeBands(queryparams.CSVList(values, queryparams.Age))); !ages.IsUnrestricted() {
		params.AgeRange = &ages
	}
	if city, ok := queryparams.Scalar(values, queryparams.City); ok {
		params.CityID = city
	}
	if categories := queryparams.CSVList(values, queryparams.Category); len(categories) > 0 {
		params.CategoryIDs = categories
	}
	if quick, ok := queryparams.Scalar(values, queryparams.QuickFilter); ok {
		params.QuickFilter = quick
	}
	if priceMax, ok := queryparams.Float(values, queryparams.PriceMax); ok {
		params.PriceMax = &priceMax
	}
	sortRaw, _ := queryparams.Scalar(values, queryparams.Sort)
	params.Sort = ResolveSortKey(sortRaw)

	return params
}
