package services

import (
	"testing"

	domain "github.com/kidsafisha/api/internal/domain"
)

func TestReduceAgeBands(t *testing.T) {
	cases := []struct {
		name     string
		selected []domain.AgeBand
		wantFrom *int
		wantTo   *int
	}{
		{name: "empty", selected: nil},
		{name: "unknown only", selected: []domain.AgeBand{"12-18", ""}},
		{name: "single band", selected: []domain.AgeBand{domain.AgeBandPreschool}, wantFrom: intRef(4), wantTo: intRef(6)},
		{name: "adjacent bands", selected: []domain.AgeBand{"0-3", "4-6"}, wantFrom: intRef(0), wantTo: intRef(6)},
		{name: "order independent", selected: []domain.AgeBand{"7-10", "0-3"}, wantFrom: intRef(0), wantTo: intRef(10)},
		{name: "duplicates", selected: []domain.AgeBand{"4-6", "4-6", "4-6"}, wantFrom: intRef(4), wantTo: intRef(6)},
		{name: "open band alone", selected: []domain.AgeBand{"10+"}, wantFrom: intRef(10)},
		{name: "open band widens", selected: []domain.AgeBand{"0-3", "10+", "4-6"}, wantFrom: intRef(0)},
		{name: "open band first", selected: []domain.AgeBand{"10+", "7-10"}, wantFrom: intRef(7)},
		{name: "unknown mixed in", selected: []domain.AgeBand{"bogus", "7-10"}, wantFrom: intRef(7), wantTo: intRef(10)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ReduceAgeBands(tc.selected)
			if !equalIntPtr(got.From, tc.wantFrom) {
				t.Fatalf("expected from %s, got %s", formatIntPtr(tc.wantFrom), formatIntPtr(got.From))
			}
			if !equalIntPtr(got.To, tc.wantTo) {
				t.Fatalf("expected to %s, got %s", formatIntPtr(tc.wantTo), formatIntPtr(got.To))
			}
		})
	}
}

func TestReduceAgeBandsEmptyIsUnrestricted(t *testing.T) {
	if !ReduceAgeBands(nil).IsUnrestricted() {
		t.Fatalf("expected unrestricted range for empty selection")
	}
	if !ReduceAgeBands([]domain.AgeBand{}).IsUnrestricted() {
		t.Fatalf("expected unrestricted range for empty slice")
	}
}

func TestReduceAgeBandsDoesNotShareBounds(t *testing.T) {
	first := ReduceAgeBands([]domain.AgeBand{domain.AgeBandToddler})
	*first.To = 99
	second := ReduceAgeBands([]domain.AgeBand{domain.AgeBandToddler})
	if second.To == nil || *second.To != 3 {
		t.Fatalf("expected vocabulary bounds to be unaffected, got %s", formatIntPtr(second.To))
	}
}

func TestParseAgeBands(t *testing.T) {
	got := ParseAgeBands([]string{"4-6", "nope", "0-3", "4-6", "10+"})
	want := []domain.AgeBand{"4-6", "0-3", "10+"}
	if len(got) != len(want) {
		t.Fatalf("expected %d bands, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected band %d to be %q, got %q", i, want[i], got[i])
		}
	}
	if ParseAgeBands(nil) != nil {
		t.Fatalf("expected nil for no input")
	}
}

func TestParseAgeBandsAcceptsUnencodedPlus(t *testing.T) {
	got := ParseAgeBands([]string{"10 ", "10+"})
	if len(got) != 1 || got[0] != domain.AgeBandTeen {
		t.Fatalf("expected a single teen band, got %v", got)
	}
}
