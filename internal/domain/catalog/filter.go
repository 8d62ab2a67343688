package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SortMode orders a filtered product list. Sorting is applied strictly after
// filtering and is stable: products that compare equal keep their source
// order.
type SortMode string

const (
	SortNone      SortMode = ""
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortNewest    SortMode = "newest"
)

// FilterParams is the full set of independently optional catalog filters.
// Zero values mean "not set"; active predicates are ANDed. Filters are
// always evaluated against the complete source list, never against a
// previously filtered one, so relaxing a filter restores products.
type FilterParams struct {
	Category string
	Size     string
	Color    string
	Brand    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Query    string
	Sort     SortMode
}

// Filter returns the products matching every active predicate in params,
// preserving source order. Query and Sort are ignored here; see Derive.
func Filter(products []Product, params FilterParams) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if params.Category != "" && !strings.EqualFold(p.Category, params.Category) {
			continue
		}
		if params.Size != "" && !containsFold(p.Sizes, params.Size) {
			continue
		}
		if params.Color != "" && !containsFold(p.Colors, params.Color) {
			continue
		}
		if params.Brand != "" && !strings.EqualFold(p.Brand, params.Brand) {
			continue
		}
		if params.MinPrice != nil && p.Price.LessThan(*params.MinPrice) {
			continue
		}
		if params.MaxPrice != nil && p.Price.GreaterThan(*params.MaxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Search returns the products whose name or description contains q,
// case-insensitively. A blank query returns the input unchanged.
func Search(products []Product, q string) []Product {
	if strings.TrimSpace(q) == "" {
		return products
	}
	needle := strings.ToLower(q)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders products by mode. The input slice is not mutated.
func Sort(products []Product, mode SortMode) []Product {
	if mode == SortNone {
		return products
	}
	out := make([]Product, len(products))
	copy(out, products)
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

// Derive is the complete catalog view stage: filter, then search, then
// sort, all from the full source list. It is pure and total.
func Derive(products []Product, params FilterParams) []Product {
	return Sort(Search(Filter(products, params), params.Query), params.Sort)
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
