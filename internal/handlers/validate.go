package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/models"
)

// Validation limits for category and product fields.
const (
	maxCategoryNameLen = 100
	maxCategoryDescLen = 500
	maxProductNameLen  = 200
	maxProductDescLen  = 2_000
	maxRating          = 5
	maxDiscount        = 100
)

// validateCategory checks category inputs and returns the first error found.
func validateCategory(name, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(description) > maxCategoryDescLen {
		return "Description is too long (max 500 characters)."
	}
	return ""
}

// validateProduct checks a product about to be stored and returns the
// first error found.
func validateProduct(p *models.Product) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "Product name is required."
	}
	if utf8.RuneCountInString(name) > maxProductNameLen {
		return "Product name is too long (max 200 characters)."
	}
	if strings.TrimSpace(p.Description) == "" {
		return "Product description is required."
	}
	if utf8.RuneCountInString(p.Description) > maxProductDescLen {
		return "Product description is too long (max 2,000 characters)."
	}
	if p.Price < 0 {
		return "Price must be zero or greater."
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < 0 {
		return "Original price must be zero or greater."
	}
	if p.StockCount < 0 {
		return "Stock count must be zero or greater."
	}
	if p.Rating < 0 || p.Rating > maxRating {
		return "Rating must be between 0 and 5."
	}
	if p.Reviews < 0 {
		return "Reviews must be zero or greater."
	}
	if p.Discount != nil && (*p.Discount < 0 || *p.Discount > maxDiscount) {
		return "Discount must be between 0 and 100."
	}
	return validateSpecifications(p.Specifications)
}

// validateSpecifications accepts only string or numeric values.
func validateSpecifications(specs map[string]any) string {
	for k, v := range specs {
		switch v.(type) {
		case string, float64:
		default:
			return fmt.Sprintf("Specification %q must be a string or a number.", k)
		}
	}
	return ""
}
