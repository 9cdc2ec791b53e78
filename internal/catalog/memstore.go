// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// MemoryStore is an in-memory Store for tests. Categories are returned in
// insertion order.
type MemoryStore struct {
	mu       sync.Mutex
	order    []uuid.UUID
	byID     map[uuid.UUID]models.Category
	products map[uuid.UUID]int
}

// NewMemoryStore returns a MemoryStore seeded with categories as-is.
func NewMemoryStore(categories ...models.Category) *MemoryStore {
	s := &MemoryStore{
		byID:     make(map[uuid.UUID]models.Category),
		products: make(map[uuid.UUID]int),
	}
	for _, c := range categories {
		s.put(c)
	}
	return s
}

// put stores c without its virtual fields, as a database row would.
func (s *MemoryStore) put(c models.Category) {
	c.Subcategories = nil
	c.ParentName = ""
	if _, ok := s.byID[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.byID[c.ID] = c
}

// SetProductCount sets the number of products CountByCategoryID reports for id.
func (s *MemoryStore) SetProductCount(id uuid.UUID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = n
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// FindAll implements Store.
func (s *MemoryStore) FindAll(_ context.Context, f models.CategoryFilter) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Category
	for _, id := range s.order {
		c := s.byID[id]
		if f.Name != "" && c.Name != f.Name {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.RootsOnly && c.ParentID != nil {
			continue
		}
		if f.ParentID != nil && (c.ParentID == nil || *c.ParentID != *f.ParentID) {
			continue
		}
		if f.Level != nil && c.Level != *f.Level {
			continue
		}
		if f.IsParent != nil && c.IsParent != *f.IsParent {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(*c)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// CountByCategoryID implements Store.
func (s *MemoryStore) CountByCategoryID(_ context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id], nil
}
