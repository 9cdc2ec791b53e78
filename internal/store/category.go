// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

// hierarchyLockKey is the advisory lock taken by every hierarchy write so
// concurrent moves cannot interleave their validation and save.
const hierarchyLockKey int64 = 0x63617467 // "catg"

// CategoryStore manages categories in the database. It implements
// catalog.Store and catalog.Transactor.
type CategoryStore struct {
	db *sql.DB
	q  querier
	tx bool
}

var (
	_ catalog.Store      = (*CategoryStore)(nil)
	_ catalog.Transactor = (*CategoryStore)(nil)
)

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db, q: db}
}

const categoryColumns = `id, name, description, icon, color, product_count,
	parent_id, is_parent, level, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner rowScanner) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color, &c.ProductCount,
		&c.ParentID, &c.IsParent, &c.Level, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindAll returns the categories matching f, roots first, then by level
// and name.
func (s *CategoryStore) FindAll(ctx context.Context, f models.CategoryFilter) ([]models.Category, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Name != "" {
		where = append(where, "name = "+arg(f.Name))
	}
	if f.Search != "" {
		where = append(where, "name ILIKE "+arg("%"+escapeLike(f.Search)+"%"))
	}
	if f.RootsOnly {
		where = append(where, "parent_id IS NULL")
	}
	if f.ParentID != nil {
		where = append(where, "parent_id = "+arg(*f.ParentID))
	}
	if f.Level != nil {
		where = append(where, "level = "+arg(*f.Level))
	}
	if f.IsParent != nil {
		where = append(where, "is_parent = "+arg(*f.IsParent))
	}

	query := `SELECT ` + categoryColumns + ` FROM categories`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY level, name"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Save inserts c or updates the existing row with the same ID. Timestamps
// are written back to c.
func (s *CategoryStore) Save(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, description, icon, color, product_count,
		                        parent_id, is_parent, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			color = EXCLUDED.color,
			product_count = EXCLUDED.product_count,
			parent_id = EXCLUDED.parent_id,
			is_parent = EXCLUDED.is_parent,
			level = EXCLUDED.level,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Description, c.Icon, c.Color, c.ProductCount,
		c.ParentID, c.IsParent, c.Level,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Children block the delete
// (ON DELETE RESTRICT), so callers must check for them first.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// CountByCategoryID returns the number of products filed directly under id.
func (s *CategoryStore) CountByCategoryID(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return n, nil
}

// InTx runs fn against a store bound to a single transaction holding the
// hierarchy advisory lock. The transaction commits if fn returns nil.
// Calls made on a store that is already transactional reuse it.
func (s *CategoryStore) InTx(ctx context.Context, fn func(catalog.Store) error) error {
	if s.tx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, hierarchyLockKey); err != nil {
		return fmt.Errorf("lock category hierarchy: %w", err)
	}

	if err := fn(&CategoryStore{db: s.db, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
