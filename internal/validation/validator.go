package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with the struct-level rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// prices live in decimal.Decimal, which has no validate tags of its own
	v.RegisterStructValidation(productStructValidation, ProductRequest{})

	return v
}

func productStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(ProductRequest)

	if req.Price.IsNegative() {
		sl.ReportError(req.Price, "price", "Price", "price_non_negative", "")
	}
	if req.OriginalPrice != nil && req.OriginalPrice.LessThan(req.Price) {
		sl.ReportError(req.OriginalPrice, "originalPrice", "OriginalPrice", "original_price_gte_price", "")
	}
}
