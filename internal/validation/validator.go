package validation

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// checkout totals must be internally consistent: the item lines must sum
	// to items_price, and the component prices must sum to total_price.
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderRequest{})

	return v
}

// createOrderStructValidation cross-checks the pricing block against the
// submitted lines. Comparison in whole cents to dodge float rounding.
func createOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.Price
	}

	if cents(sum) != cents(req.Pricing.ItemsPrice) {
		sl.ReportError(req.Pricing.ItemsPrice, "pricing.items_price", "ItemsPrice", "items_price_match_items",
			fmt.Sprintf("lines sum %.2f != items_price %.2f", sum, req.Pricing.ItemsPrice))
	}

	components := req.Pricing.ItemsPrice + req.Pricing.TaxPrice + req.Pricing.ShippingPrice
	if cents(components) != cents(req.Pricing.TotalPrice) {
		sl.ReportError(req.Pricing.TotalPrice, "pricing.total_price", "TotalPrice", "total_price_match_components",
			fmt.Sprintf("components sum %.2f != total_price %.2f", components, req.Pricing.TotalPrice))
	}
}

func cents(v float64) int {
	return int(math.Round(v * 100))
}
