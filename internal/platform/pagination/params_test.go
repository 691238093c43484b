package pagination

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(url.Values{}, "new", Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size %d got %d", DefaultPageSize, params.PageSize)
	}
	if params.PageToken != "" {
		t.Fatalf("expected empty page token got %q", params.PageToken)
	}
	if params.Offset() != 0 || params.Cursor.Sort != "new" {
		t.Fatalf("expected first page cursor for sort new, got %#v", params.Cursor)
	}
	if params.Reset {
		t.Fatalf("expected no reset without a token")
	}
}

func TestParsePageSize(t *testing.T) {
	opts := Options{DefaultPageSize: 25, MaxPageSize: 40}
	values := url.Values{}
	values.Set("pageSize", "30")

	params, err := Parse(values, "new", opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != 30 {
		t.Fatalf("expected page size 30 got %d", params.PageSize)
	}

	values.Set("pageSize", "400")
	params, err = Parse(values, "new", opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != opts.MaxPageSize {
		t.Fatalf("expected page size clamped to %d got %d", opts.MaxPageSize, params.PageSize)
	}
}

func TestParseInvalidPageSize(t *testing.T) {
	values := url.Values{}
	values.Set("pageSize", "abc")

	if _, err := Parse(values, "new", Options{}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize got %v", err)
	}

	values.Set("pageSize", "0")
	if _, err := Parse(values, "new", Options{}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize for zero got %v", err)
	}
}

func TestParsePageTokenForSameSort(t *testing.T) {
	token, err := EncodeToken(Cursor{Sort: "price_asc", Offset: 48})
	if err != nil {
		t.Fatalf("EncodeToken returned error: %v", err)
	}

	values := url.Values{}
	values.Set("pageToken", token)
	params, err := Parse(values, "price_asc", Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.Offset() != 48 {
		t.Fatalf("expected offset 48 got %d", params.Offset())
	}
	if params.PageToken != token || params.Reset {
		t.Fatalf("expected token to be honoured, got %#v", params)
	}
}

func TestParseDropsTokenForOtherSort(t *testing.T) {
	token, err := EncodeToken(Cursor{Sort: "new", Offset: 24})
	if err != nil {
		t.Fatalf("EncodeToken returned error: %v", err)
	}

	values := url.Values{}
	values.Set("pageToken", token)
	params, err := Parse(values, "date_asc", Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.Offset() != 0 {
		t.Fatalf("expected first page after sort change, got offset %d", params.Offset())
	}
	if !params.Reset || params.PageToken != "" {
		t.Fatalf("expected stale token to be discarded, got %#v", params)
	}
	if params.Cursor.Sort != "date_asc" {
		t.Fatalf("expected cursor bound to new sort, got %q", params.Cursor.Sort)
	}
}

func TestParseDropsUndecodableToken(t *testing.T) {
	values := url.Values{}
	values.Set("pageToken", "%%%")
	params, err := Parse(values, "new", Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !params.Reset || params.Offset() != 0 {
		t.Fatalf("expected reset to first page, got %#v", params)
	}
}

func TestParamsNext(t *testing.T) {
	params := Params{PageSize: 10, Cursor: Cursor{Sort: "new", Offset: 20}}
	if token, truncated := params.Next(false); token != "" || truncated {
		t.Fatalf("expected no token on last page, got %q truncated=%v", token, truncated)
	}
	token, truncated := params.Next(true)
	if truncated {
		t.Fatalf("unexpected truncation at offset 20")
	}
	cursor, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken returned error: %v", err)
	}
	if cursor.Offset != 30 || cursor.Sort != "new" {
		t.Fatalf("unexpected next cursor %#v", cursor)
	}
}

func TestParamsNextClampsAtMaxOffset(t *testing.T) {
	atLimit := Params{PageSize: 10, Cursor: Cursor{Sort: "new", Offset: MaxOffset() - 10}}
	token, truncated := atLimit.Next(true)
	if truncated || token == "" {
		t.Fatalf("expected a token for the last addressable page, got %q truncated=%v", token, truncated)
	}
	cursor, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken returned error: %v", err)
	}
	if cursor.Offset != MaxOffset() {
		t.Fatalf("expected offset %d, got %d", MaxOffset(), cursor.Offset)
	}

	past := Params{PageSize: 24, Cursor: Cursor{Sort: "new", Offset: MaxOffset() - 10}}
	token, truncated = past.Next(true)
	if token != "" || !truncated {
		t.Fatalf("expected truncation past max offset, got %q truncated=%v", token, truncated)
	}

	if _, truncated := past.Next(false); truncated {
		t.Fatalf("last page must not report truncation")
	}
}

func TestEncodeTokenFirstPage(t *testing.T) {
	token, err := EncodeToken(Cursor{Sort: "new"})
	if err != nil {
		t.Fatalf("EncodeToken returned error: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token for first page got %q", token)
	}
}

func TestDecodeTokenRejectsOutOfRangeOffset(t *testing.T) {
	if _, err := DecodeToken("eyJzIjoibmV3IiwibyI6LTV9"); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken got %v", err)
	}
}

func TestFromRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "/events?pageSize=5", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	params, err := FromRequest(req, "new", Options{})
	if err != nil {
		t.Fatalf("FromRequest returned error: %v", err)
	}
	if params.PageSize != 5 {
		t.Fatalf("expected page size 5 got %d", params.PageSize)
	}
	if _, err := FromRequest(nil, "new", Options{}); err == nil {
		t.Fatalf("expected error for nil request")
	}
}
