package catalog

import (
	"sort"

	"optika/internal/models"
)

// SortProducts orders products in memory the way SortSpec orders them in
// mongo.
func SortProducts(products []models.Product, key SortKey) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch key {
		case SortPriceLowHigh:
			return a.Price < b.Price
		case SortPriceHighLow:
			return a.Price > b.Price
		case SortRating:
			return a.Rating > b.Rating
		case SortNewest:
			return a.CreatedAt.After(b.CreatedAt)
		default:
			if a.Featured != b.Featured {
				return a.Featured
			}
			return a.ID.Hex() < b.ID.Hex()
		}
	})
}
