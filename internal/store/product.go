// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"storefront/internal/models"
)

// Page bounds a listing query.
type Page struct {
	Offset int
	Limit  int
}

// productSortColumns maps the accepted sort fields to their columns.
var productSortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"name":       "name",
	"price":      "price",
	"rating":     "rating",
	"reviews":    "reviews",
	"stockCount": "stock_count",
}

// ValidProductSort reports whether field can be used to order products.
func ValidProductSort(field string) bool {
	_, ok := productSortColumns[field]
	return ok
}

// ProductStore handles all product-related database operations.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new ProductStore with the given database connection.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, management_id, name, description, price, original_price,
	category, category_id, image, gallery, in_stock, stock_count, rating, reviews,
	featured, tags, specifications, discount, created_at, updated_at`

// scanProduct scans a row into a Product. Array columns go through m, which
// is not safe for concurrent use, so each query brings its own.
func scanProduct(m *pgtype.Map, scanner rowScanner) (*models.Product, error) {
	var (
		p     models.Product
		specs []byte
	)
	err := scanner.Scan(
		&p.ID, &p.ManagementID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice,
		&p.Category, &p.CategoryID, &p.Image,
		m.SQLScanner(&p.Gallery),
		&p.InStock, &p.StockCount, &p.Rating, &p.Reviews, &p.Featured,
		m.SQLScanner(&p.Tags),
		&specs, &p.Discount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("decode specifications: %w", err)
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Specifications == nil {
		p.Specifications = map[string]any{}
	}
	return &p, nil
}

// productWhere builds the WHERE clause for f. Placeholders start at $1.
func productWhere(f models.ProductFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Category != "" {
		where = append(where, "category = "+arg(f.Category))
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = "+arg(*f.CategoryID))
	}
	if f.MinPrice != nil {
		where = append(where, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= "+arg(*f.MaxPrice))
	}
	if f.InStock != nil {
		where = append(where, "in_stock = "+arg(*f.InStock))
	}
	if f.Featured {
		where = append(where, "featured")
	}
	if len(f.Tags) > 0 {
		where = append(where, "tags && "+arg(f.Tags))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func orderBy(sort models.ProductSort) string {
	col, ok := productSortColumns[sort.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id"
}

func (s *ProductStore) query(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pgtype.NewMap()
	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(m, rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// List returns one page of products matching f in the given order.
func (s *ProductStore) List(ctx context.Context, f models.ProductFilter, sort models.ProductSort, page Page) ([]models.Product, error) {
	where, args := productWhere(f)
	query := `SELECT ` + productColumns + ` FROM products` + where + orderBy(sort)
	if page.Limit > 0 {
		args = append(args, page.Limit, page.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	items, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// Count returns the number of products matching f.
func (s *ProductStore) Count(ctx context.Context, f models.ProductFilter) (int, error) {
	where, args := productWhere(f)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Candidates returns every product matching f, newest first. Text matching
// and ranking happen in the caller.
func (s *ProductStore) Candidates(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	where, args := productWhere(f)
	items, err := s.query(ctx,
		`SELECT `+productColumns+` FROM products`+where+orderBy(models.ProductSort{Field: "createdAt", Desc: true}),
		args...)
	if err != nil {
		return nil, fmt.Errorf("list search candidates: %w", err)
	}
	return items, nil
}

// FindByID retrieves a product by its UUID. Returns nil if not found.
func (s *ProductStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(pgtype.NewMap(), row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

func encodeSpecs(p *models.Product) (string, error) {
	b, err := json.Marshal(p.Specifications)
	if err != nil {
		return "", fmt.Errorf("encode specifications: %w", err)
	}
	return string(b), nil
}

// Create normalizes and inserts p, filling in its ID and timestamps.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	p.Normalize()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	specs, err := encodeSpecs(p)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO products (id, management_id, name, description, price, original_price,
		                      category, category_id, image, gallery, in_stock, stock_count,
		                      rating, reviews, featured, tags, specifications, discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`, p.ID, p.ManagementID, p.Name, p.Description, p.Price, p.OriginalPrice,
		p.Category, p.CategoryID, p.Image, p.Gallery, p.InStock, p.StockCount,
		p.Rating, p.Reviews, p.Featured, p.Tags, specs, p.Discount,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update normalizes p and overwrites the stored row.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	p.Normalize()
	specs, err := encodeSpecs(p)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx, `
		UPDATE products SET
			management_id = $2, name = $3, description = $4, price = $5,
			original_price = $6, category = $7, category_id = $8, image = $9,
			gallery = $10, in_stock = $11, stock_count = $12, rating = $13,
			reviews = $14, featured = $15, tags = $16, specifications = $17,
			discount = $18, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.ManagementID, p.Name, p.Description, p.Price,
		p.OriginalPrice, p.Category, p.CategoryID, p.Image,
		p.Gallery, p.InStock, p.StockCount, p.Rating,
		p.Reviews, p.Featured, p.Tags, specs,
		p.Discount,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateStock sets the stock count of a product and the derived in-stock
// flag. Returns nil if the product does not exist.
func (s *ProductStore) UpdateStock(ctx context.Context, id uuid.UUID, count int) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE products SET stock_count = $2, in_stock = $2 > 0, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns, id, count)
	p, err := scanProduct(pgtype.NewMap(), row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update product stock: %w", err)
	}
	return p, nil
}

// Delete removes a product by ID.
func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// CountByCategory returns the number of products filed under a category.
func (s *ProductStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return n, nil
}
