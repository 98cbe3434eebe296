package handlers

import "fmt"

// resolveSalePrice validates a requested sale price against price. Zero or
// negative clears the sale.
func resolveSalePrice(price float64, salePrice *float64) (*float64, error) {
	if salePrice == nil || *salePrice <= 0 {
		return nil, nil
	}
	if *salePrice >= price {
		return nil, fmt.Errorf("salePrice must be less than price")
	}
	value := *salePrice
	return &value, nil
}
