// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "errors"

var (
	// ErrSelfParent is returned when a category is assigned itself as parent.
	ErrSelfParent = errors.New("category cannot be its own parent")

	// ErrParentNotFound is returned when the proposed parent does not exist.
	ErrParentNotFound = errors.New("parent category not found")

	// ErrDepthLimitExceeded is returned when an assignment would place a
	// category (or one of its descendants) deeper than MaxLevel.
	ErrDepthLimitExceeded = errors.New("category depth limit exceeded")

	// ErrCircularReference is returned when an assignment would make a
	// category its own ancestor, or when the existing chain already loops.
	ErrCircularReference = errors.New("circular category reference")

	// ErrNotFound is returned when a category id does not resolve.
	ErrNotFound = errors.New("category not found")

	// ErrDuplicateName is returned when another category already uses the name.
	ErrDuplicateName = errors.New("category name already exists")

	// ErrHasSubcategories is returned when deleting a category that still has children.
	ErrHasSubcategories = errors.New("category has subcategories")

	// ErrHasProducts is returned when an empty-only delete finds products.
	ErrHasProducts = errors.New("category has products")
)

// IsValidation reports whether err is a caller mistake that should be
// surfaced as a bad request rather than an internal failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrSelfParent) ||
		errors.Is(err, ErrParentNotFound) ||
		errors.Is(err, ErrDepthLimitExceeded) ||
		errors.Is(err, ErrCircularReference) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrHasSubcategories) ||
		errors.Is(err, ErrHasProducts)
}
