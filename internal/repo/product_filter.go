package repo

import (
	"strings"

	"github.com/rogerio-castellano/eshop/internal/models"
)

type ProductFilter struct {
	Name   string
	MinQty *int
	MaxQty *int
	Offset *int
	Limit  *int
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(pf.Name)) {
		return false
	}
	if pf.MinQty != nil && p.Quantity < *pf.MinQty {
		return false
	}
	if pf.MaxQty != nil && p.Quantity > *pf.MaxQty {
		return false
	}
	return true
}

// paginate applies offset and limit to an already filtered slice.
func paginate(filtered []models.Product, pf ProductFilter) []models.Product {
	if pf.Offset != nil && *pf.Offset > len(filtered) {
		return []models.Product{}
	}

	start := 0
	if pf.Offset != nil {
		start = clamp(*pf.Offset, 0, len(filtered))
	}

	end := len(filtered)
	if pf.Limit != nil && *pf.Limit > 0 {
		end = clamp(start+*pf.Limit, start, len(filtered))
	}

	return filtered[start:end]
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
