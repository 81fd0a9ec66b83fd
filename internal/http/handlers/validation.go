package handlers

import (
	"strconv"
	"strings"
)

type ProductValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func validateProduct(p ProductRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "Name", Description: "Name is required"})
	}
	if p.Quantity < 0 {
		errs = append(errs, ProductValidationError{Field: "Quantity", Description: "Quantity cannot be negative"})
	}
	return errs
}

// parseProductForm reads the creation and edit form fields. Quantity text
// that is not a whole number is reported instead of validated.
func parseProductForm(name, quantity string) (ProductRequest, []ProductValidationError) {
	req := ProductRequest{Name: strings.TrimSpace(name)}

	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		errs := validateProduct(req)
		return req, append(errs, ProductValidationError{Field: "Quantity", Description: "Quantity is required"})
	}
	q, err := strconv.Atoi(quantity)
	if err != nil {
		errs := validateProduct(req)
		return req, append(errs, ProductValidationError{Field: "Quantity", Description: "Quantity must be a whole number"})
	}
	req.Quantity = q
	return req, validateProduct(req)
}
