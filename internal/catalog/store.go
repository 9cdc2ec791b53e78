// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// Store is the persistence collaborator the hierarchy manager reads and
// writes categories through.
type Store interface {
	// FindByID returns the category, or nil if it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)

	// FindAll returns the categories matching filter in stable order.
	FindAll(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)

	// Save inserts or updates the category.
	Save(ctx context.Context, c *models.Category) error

	// Delete removes the category.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByCategoryID returns the number of products referencing id.
	CountByCategoryID(ctx context.Context, id uuid.UUID) (int, error)
}

// Transactor is implemented by stores that can run a unit of work
// atomically. Hierarchy writes use it so validation and the final write
// see the same snapshot of the tree.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// ProductCounter returns the number of products directly assigned to a category.
type ProductCounter func(ctx context.Context, categoryID uuid.UUID) (int, error)
