package services

import (
	"math"
	"testing"

	domain "github.com/kidsafisha/api/internal/domain"
)

func TestMinPrice(t *testing.T) {
	cases := []struct {
		name   string
		prices []*float64
		want   *float64
	}{
		{name: "empty", prices: nil},
		{name: "all missing", prices: []*float64{nil, nil}},
		{name: "invalid numbers", prices: []*float64{floatRef(math.NaN()), floatRef(math.Inf(1)), floatRef(math.Inf(-1))}},
		{name: "mixed", prices: []*float64{nil, floatRef(500), floatRef(math.NaN()), floatRef(100)}, want: floatRef(100)},
		{name: "zero is a price", prices: []*float64{floatRef(300), floatRef(0)}, want: floatRef(0)},
		{name: "single", prices: []*float64{floatRef(1250.5)}, want: floatRef(1250.5)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tickets := make([]domain.TicketType, 0, len(tc.prices))
			for _, price := range tc.prices {
				tickets = append(tickets, domain.TicketType{Price: price})
			}
			got := MinPrice(tickets)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected nil price, got %v", *got)
			case tc.want != nil && got == nil:
				t.Fatalf("expected %v, got nil", *tc.want)
			case tc.want != nil && *got != *tc.want:
				t.Fatalf("expected %v, got %v", *tc.want, *got)
			}
		})
	}
}
