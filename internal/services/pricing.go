package services

import (
	"math"

	domain "github.com/kidsafisha/api/internal/domain"
)

// MinPrice returns the lowest finite ticket price, or nil when no ticket carries one.
// A nil result means "no price" and is distinct from a free ticket.
func MinPrice(tickets []domain.TicketType) *float64 {
	var (
		lowest float64
		found  bool
	)
	for _, ticket := range tickets {
		if ticket.Price == nil {
			continue
		}
		price := *ticket.Price
		if math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		if !found || price < lowest {
			lowest = price
			found = true
		}
	}
	if !found {
		return nil
	}
	return &lowest
}
