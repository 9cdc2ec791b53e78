// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the product category tree. Level, IsParent and
// ProductCount are derived and maintained by the catalog package.
type Category struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon"`
	Color        string     `json:"color"`
	ProductCount int        `json:"productCount"`
	ParentID     *uuid.UUID `json:"parentCategoryId"`
	IsParent     bool       `json:"isParent"`
	Level        int        `json:"level"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Virtual fields populated by catalog and store methods.
	Subcategories []Category `json:"subcategories,omitempty"`
	ParentName    string     `json:"parentName,omitempty"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryFilter narrows a category listing. Zero values mean "no filter".
type CategoryFilter struct {
	Search    string     // case-insensitive substring of the name
	Name      string     // exact name match
	ParentID  *uuid.UUID // direct children of this category
	RootsOnly bool       // only categories without a parent
	Level     *int
	IsParent  *bool
}
