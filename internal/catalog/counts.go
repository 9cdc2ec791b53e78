// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// RecomputeProductCounts sets each category's ProductCount from counter and
// saves it. Counts are not rolled up into ancestors. The pass is not atomic:
// on error the categories updated so far are returned alongside it and the
// rest are left stale.
func (m *Manager) RecomputeProductCounts(ctx context.Context, categories []models.Category, counter ProductCounter) ([]models.Category, error) {
	updated := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		n, err := counter(ctx, c.ID)
		if err != nil {
			return updated, fmt.Errorf("count products for category %s: %w", c.ID, err)
		}
		c.ProductCount = n
		if err := m.store.Save(ctx, &c); err != nil {
			return updated, fmt.Errorf("save product count for category %s: %w", c.ID, err)
		}
		updated = append(updated, c)
	}
	return updated, nil
}

// RecountAll reconciles the product count of every stored category.
func (m *Manager) RecountAll(ctx context.Context) ([]models.Category, error) {
	all, err := m.store.FindAll(ctx, models.CategoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	updated, err := m.RecomputeProductCounts(ctx, all, m.store.CountByCategoryID)
	if err != nil {
		return updated, err
	}
	m.logger.Info("category product counts recomputed", "categories", len(updated))
	return updated, nil
}

// RefreshProductCount reconciles the product count of a single category,
// typically right after a product referencing it was written or removed.
func (m *Manager) RefreshProductCount(ctx context.Context, id uuid.UUID) error {
	c, err := m.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	n, err := m.store.CountByCategoryID(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if c.ProductCount == n {
		return nil
	}
	c.ProductCount = n
	if err := m.store.Save(ctx, c); err != nil {
		return fmt.Errorf("save product count: %w", err)
	}
	m.logger.Debug("category product count refreshed", "id", id, "count", n)
	return nil
}
