package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize defines the fallback number of items returned when the client omits pageSize.
	DefaultPageSize = 24
	// DefaultMaxPageSize caps the supported pageSize to prevent unbounded queries.
	DefaultMaxPageSize = 100

	maxOffset = 10_000
)

// Cursor is the page token payload. A cursor is only valid for the ordering it was minted for.
type Cursor struct {
	Sort   string `json:"s"`
	Offset int    `json:"o"`
}

// Params bundles the page window extracted from a request.
type Params struct {
	PageSize  int
	PageToken string
	Cursor    Cursor
	// Reset is set when a supplied token was discarded and the first page is served instead.
	Reset bool
}

// Offset returns the row offset the page starts at.
func (p Params) Offset() int {
	return p.Cursor.Offset
}

// Options control how Parse behaves for a given handler layer.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

var (
	ErrInvalidPageSize  = errors.New("pagination: invalid pageSize")
	ErrInvalidPageToken = errors.New("pagination: invalid pageToken")
)

// FromRequest parses the supported query parameters from the supplied request.
func FromRequest(r *http.Request, sort string, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), sort, opts)
}

// Parse reads pageSize and pageToken. The resolved sort must be known before calling:
// a token minted for a different sort, or one that cannot be decoded, is discarded and
// the first page is returned with Reset set. Only a malformed pageSize is an error.
func Parse(values url.Values, sort string, opts Options) (Params, error) {
	if values == nil {
		values = url.Values{}
	}

	pageSize, err := parsePageSize(values.Get("pageSize"), opts)
	if err != nil {
		return Params{}, err
	}

	params := Params{
		PageSize: pageSize,
		Cursor:   Cursor{Sort: sort},
	}

	rawToken := strings.TrimSpace(values.Get("pageToken"))
	if rawToken == "" {
		return params, nil
	}

	cursor, err := DecodeToken(rawToken)
	if err != nil || cursor.Sort != sort {
		params.Reset = true
		return params, nil
	}

	params.PageToken = rawToken
	params.Cursor = cursor
	return params, nil
}

// Next returns the token for the page following p when more results exist. Listings are
// clamped at maxOffset: when the following page would start past it, Next returns an empty
// token and truncated is true.
func (p Params) Next(hasMore bool) (token string, truncated bool) {
	if !hasMore {
		return "", false
	}
	next := p.Cursor.Offset + p.PageSize
	if next > maxOffset {
		return "", true
	}
	token, err := EncodeToken(Cursor{Sort: p.Cursor.Sort, Offset: next})
	if err != nil {
		return "", true
	}
	return token, false
}

// MaxOffset reports the deepest offset a page token may address.
func MaxOffset() int {
	return maxOffset
}

func parsePageSize(raw string, opts Options) (int, error) {
	maxPageSize := opts.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}

	defaultPageSize := opts.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}

	if strings.TrimSpace(raw) == "" {
		return defaultPageSize, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: must be an integer", ErrInvalidPageSize)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidPageSize)
	}
	if value > maxPageSize {
		value = maxPageSize
	}
	return value, nil
}
