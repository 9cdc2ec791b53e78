// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog maintains the product category tree: parent assignment
// with depth and cycle checks, derived level/isParent/productCount fields,
// and tree-shaped views (hierarchy, subcategories, root-to-node path).
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// MaxLevel is the deepest level a category may occupy. Roots are level 0.
const MaxLevel = 3

// Manager validates and applies changes to the category tree.
type Manager struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// NewManager returns a Manager backed by store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// atomically runs fn against a Manager bound to a transactional store when
// the underlying store supports it, and against m otherwise.
func (m *Manager) atomically(ctx context.Context, fn func(*Manager) error) error {
	tx, ok := m.store.(Transactor)
	if !ok {
		return fn(m)
	}
	return tx.InTx(ctx, func(s Store) error {
		return fn(&Manager{store: s, logger: m.logger})
	})
}

// ValidateParentAssignment checks that categoryID may be placed under
// parentID and returns the level the category would occupy.
func (m *Manager) ValidateParentAssignment(ctx context.Context, categoryID uuid.UUID, parentID *uuid.UUID) (int, error) {
	_, level, err := m.validate(ctx, categoryID, parentID)
	return level, err
}

// validate is ValidateParentAssignment that also hands back the parent it loaded.
func (m *Manager) validate(ctx context.Context, categoryID uuid.UUID, parentID *uuid.UUID) (*models.Category, int, error) {
	if parentID == nil {
		return nil, 0, nil
	}
	if *parentID == categoryID {
		return nil, 0, ErrSelfParent
	}

	parent, err := m.store.FindByID(ctx, *parentID)
	if err != nil {
		return nil, 0, fmt.Errorf("find parent category: %w", err)
	}
	if parent == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrParentNotFound, *parentID)
	}
	if parent.Level >= MaxLevel {
		return nil, 0, fmt.Errorf("%w: parent %q is at level %d", ErrDepthLimitExceeded, parent.Name, parent.Level)
	}

	visited := make(map[uuid.UUID]struct{}, MaxLevel+1)
	for cur := parent; ; {
		if cur.ID == categoryID {
			return nil, 0, fmt.Errorf("%w: %s is an ancestor of the proposed parent", ErrCircularReference, categoryID)
		}
		if _, seen := visited[cur.ID]; seen {
			return nil, 0, fmt.Errorf("%w: existing loop at %s", ErrCircularReference, cur.ID)
		}
		visited[cur.ID] = struct{}{}

		if cur.ParentID == nil {
			break
		}
		next, err := m.store.FindByID(ctx, *cur.ParentID)
		if err != nil {
			return nil, 0, fmt.Errorf("walk ancestors: %w", err)
		}
		if next == nil {
			break
		}
		cur = next
	}

	return parent, parent.Level + 1, nil
}

// ApplyAssignment places c under parentID, recomputing c.Level and
// c.IsParent. When the parent is not yet flagged as a parent it is marked
// and persisted. c itself is not saved.
func (m *Manager) ApplyAssignment(ctx context.Context, c *models.Category, parentID *uuid.UUID) error {
	parent, level, err := m.validate(ctx, c.ID, parentID)
	if err != nil {
		return err
	}

	c.Level = level
	c.ParentID = copyID(parentID)

	// A freshly placed node is a leaf; an existing node keeps whatever
	// children currently reference it.
	c.IsParent, err = m.hasChildren(ctx, c.ID)
	if err != nil {
		return err
	}

	if parent != nil && !parent.IsParent {
		parent.IsParent = true
		if err := m.store.Save(ctx, parent); err != nil {
			return fmt.Errorf("mark parent category: %w", err)
		}
		m.logger.Debug("category marked as parent", "id", parent.ID, "name", parent.Name)
	}
	return nil
}

// Create validates and stores a new category. A nil ID is replaced with a
// fresh UUID; c.ParentID is the requested parent.
func (m *Manager) Create(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return m.atomically(ctx, func(m *Manager) error {
		if err := m.ensureUniqueName(ctx, c.ID, c.Name); err != nil {
			return err
		}
		if err := m.ApplyAssignment(ctx, c, c.ParentID); err != nil {
			return err
		}
		c.ProductCount = 0
		if err := m.store.Save(ctx, c); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		m.logger.Info("category created", "id", c.ID, "name", c.Name, "level", c.Level)
		return nil
	})
}

// Update stores changes to an existing category. When parentID differs
// from the stored parent the category is re-assigned, its descendants'
// levels are shifted, and the former parent's isParent flag is refreshed.
func (m *Manager) Update(ctx context.Context, c *models.Category, parentID *uuid.UUID) error {
	return m.atomically(ctx, func(m *Manager) error {
		current, err := m.store.FindByID(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("find category: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
		}
		if c.Name != current.Name {
			if err := m.ensureUniqueName(ctx, c.ID, c.Name); err != nil {
				return err
			}
		}

		c.ProductCount = current.ProductCount
		c.CreatedAt = current.CreatedAt

		if sameID(current.ParentID, parentID) {
			c.ParentID = copyID(current.ParentID)
			c.Level = current.Level
			c.IsParent = current.IsParent
			if err := m.store.Save(ctx, c); err != nil {
				return fmt.Errorf("update category: %w", err)
			}
			return nil
		}

		return m.move(ctx, c, current, parentID)
	})
}

// move re-parents c (whose stored state is current) under parentID.
func (m *Manager) move(ctx context.Context, c, current *models.Category, parentID *uuid.UUID) error {
	_, level, err := m.validate(ctx, c.ID, parentID)
	if err != nil {
		return err
	}

	subtree, err := m.descendants(ctx, c.ID)
	if err != nil {
		return err
	}
	delta := level - current.Level
	for _, d := range subtree {
		if d.Level+delta > MaxLevel {
			return fmt.Errorf("%w: descendant %q would reach level %d", ErrDepthLimitExceeded, d.Name, d.Level+delta)
		}
	}

	if err := m.ApplyAssignment(ctx, c, parentID); err != nil {
		return err
	}
	if err := m.store.Save(ctx, c); err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if delta != 0 {
		for i := range subtree {
			subtree[i].Level += delta
			if err := m.store.Save(ctx, &subtree[i]); err != nil {
				return fmt.Errorf("shift descendant level: %w", err)
			}
		}
	}

	if current.ParentID != nil {
		if err := m.refreshIsParent(ctx, *current.ParentID); err != nil {
			return err
		}
	}

	m.logger.Info("category moved",
		"id", c.ID,
		"from", current.ParentID,
		"to", parentID,
		"level", c.Level,
		"descendants", len(subtree),
	)
	return nil
}

// Delete removes a category that has no subcategories. With requireEmpty
// the category must also have no products.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID, requireEmpty bool) error {
	return m.atomically(ctx, func(m *Manager) error {
		current, err := m.store.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find category: %w", err)
		}
		if current == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		children, err := m.store.FindAll(ctx, models.CategoryFilter{ParentID: &id})
		if err != nil {
			return fmt.Errorf("list subcategories: %w", err)
		}
		if len(children) > 0 {
			return fmt.Errorf("%w: %d remaining", ErrHasSubcategories, len(children))
		}

		if requireEmpty {
			n, err := m.store.CountByCategoryID(ctx, id)
			if err != nil {
				return fmt.Errorf("count products: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("%w: %d remaining", ErrHasProducts, n)
			}
		}

		if err := m.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}

		if current.ParentID != nil {
			if err := m.refreshIsParent(ctx, *current.ParentID); err != nil {
				return err
			}
		}

		m.logger.Info("category deleted", "id", id, "name", current.Name)
		return nil
	})
}

// ComputePath returns the chain of categories from the root down to id.
func (m *Manager) ComputePath(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	start, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if start == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	// Built leaf-first, reversed at the end.
	path := []models.Category{*start}
	visited := map[uuid.UUID]struct{}{start.ID: {}}
	for cur := start; cur.ParentID != nil; {
		if _, seen := visited[*cur.ParentID]; seen {
			m.logger.Warn("category path loops, truncating", "id", id, "at", *cur.ParentID)
			break
		}
		next, err := m.store.FindByID(ctx, *cur.ParentID)
		if err != nil {
			return nil, fmt.Errorf("walk ancestors: %w", err)
		}
		if next == nil {
			break
		}
		visited[next.ID] = struct{}{}
		path = append(path, *next)
		cur = next
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Subcategories returns the direct children of id.
func (m *Manager) Subcategories(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	parent, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	children, err := m.store.FindAll(ctx, models.CategoryFilter{ParentID: &id})
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return children, nil
}

// Get returns the category with its ParentName filled in.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.ParentName = ""
	if c.ParentID != nil {
		parent, err := m.store.FindByID(ctx, *c.ParentID)
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		if parent != nil {
			c.ParentName = parent.Name
		}
	}
	return c, nil
}

// List returns the categories matching filter as a flat list with parent
// names attached. Parents outside the filtered set are looked up.
func (m *Manager) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	flat, err := m.store.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	AttachParentNames(flat)

	names := make(map[uuid.UUID]string)
	for i := range flat {
		pid := flat[i].ParentID
		if pid == nil || flat[i].ParentName != "" {
			continue
		}
		name, ok := names[*pid]
		if !ok {
			parent, err := m.store.FindByID(ctx, *pid)
			if err != nil {
				return nil, fmt.Errorf("find parent category: %w", err)
			}
			if parent != nil {
				name = parent.Name
			}
			names[*pid] = name
		}
		flat[i].ParentName = name
	}
	return flat, nil
}

// Hierarchy fetches the categories matching filter and nests them.
func (m *Manager) Hierarchy(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	flat, err := m.store.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return BuildHierarchy(flat), nil
}

// ensureUniqueName fails with ErrDuplicateName if a category other than id
// already uses name.
func (m *Manager) ensureUniqueName(ctx context.Context, id uuid.UUID, name string) error {
	existing, err := m.store.FindAll(ctx, models.CategoryFilter{Name: name})
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	for _, e := range existing {
		if e.ID != id {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	return nil
}

func (m *Manager) hasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	children, err := m.store.FindAll(ctx, models.CategoryFilter{ParentID: &id})
	if err != nil {
		return false, fmt.Errorf("list subcategories: %w", err)
	}
	return len(children) > 0, nil
}

// refreshIsParent recomputes and persists the isParent flag of id.
func (m *Manager) refreshIsParent(ctx context.Context, id uuid.UUID) error {
	c, err := m.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil
	}
	has, err := m.hasChildren(ctx, id)
	if err != nil {
		return err
	}
	if c.IsParent == has {
		return nil
	}
	c.IsParent = has
	if err := m.store.Save(ctx, c); err != nil {
		return fmt.Errorf("refresh parent flag: %w", err)
	}
	return nil
}

// descendants returns every category below id, breadth-first.
func (m *Manager) descendants(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	seen := map[uuid.UUID]struct{}{id: {}}
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		children, err := m.store.FindAll(ctx, models.CategoryFilter{ParentID: &next})
		if err != nil {
			return nil, fmt.Errorf("list subcategories: %w", err)
		}
		for _, ch := range children {
			if _, ok := seen[ch.ID]; ok {
				continue
			}
			seen[ch.ID] = struct{}{}
			out = append(out, ch)
			queue = append(queue, ch.ID)
		}
	}
	return out, nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
