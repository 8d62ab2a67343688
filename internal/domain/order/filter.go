package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FilterByStatus returns the orders whose normalized status matches the
// requested one. The StatusAll sentinel (or a blank status) returns the
// input unchanged. Source order is preserved.
func FilterByStatus(orders []Order, status string) []Order {
	if status == "" || strings.EqualFold(status, StatusAll) {
		return orders
	}
	want := NormalizeStatus(status)
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if NormalizeStatus(o.Status) == want {
			out = append(out, o)
		}
	}
	return out
}

// Search returns the orders whose id, user id, or status contains q,
// case-insensitively. A blank query returns the input unchanged.
func Search(orders []Order, q string) []Order {
	if strings.TrimSpace(q) == "" {
		return orders
	}
	needle := strings.ToLower(q)
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.ID.String()), needle) ||
			strings.Contains(strings.ToLower(o.UserID), needle) ||
			strings.Contains(strings.ToLower(o.Status), needle) {
			out = append(out, o)
		}
	}
	return out
}

// Revenue sums the totals of terminal-success orders. Delivered is the
// canonical terminal status; legacy Completed records count through
// normalization.
func Revenue(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if NormalizeStatus(o.Status) == StatusDelivered {
			total = total.Add(o.Total)
		}
	}
	return total
}

// CountByStatus tallies orders per normalized status.
func CountByStatus(orders []Order) map[string]int {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[NormalizeStatus(o.Status)]++
	}
	return counts
}
