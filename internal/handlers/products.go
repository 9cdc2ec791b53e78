// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/search"
	"storefront/internal/store"
)

// ProductRepository is the product persistence the handlers need.
// *store.ProductStore implements it.
type ProductRepository interface {
	List(ctx context.Context, f models.ProductFilter, sort models.ProductSort, page store.Page) ([]models.Product, error)
	Count(ctx context.Context, f models.ProductFilter) (int, error)
	Candidates(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, count int) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Products groups the product catalog HTTP handlers.
type Products struct {
	products   ProductRepository
	categories *catalog.Manager
	scorer     *search.Scorer
	invalidator
}

// NewProducts creates the product handler group. cache and cacheLog may be nil.
func NewProducts(products ProductRepository, categories *catalog.Manager, scorer *search.Scorer, cache ResponseCache, cacheLog InvalidationLogger) *Products {
	return &Products{
		products:    products,
		categories:  categories,
		scorer:      scorer,
		invalidator: invalidator{cache: cache, log: cacheLog},
	}
}

// SearchInfo echoes how a search term was interpreted.
type SearchInfo struct {
	Query           string   `json:"query"`
	NormalizedQuery string   `json:"normalizedQuery"`
	Words           []string `json:"words"`
	IncludeScore    bool     `json:"includeScore"`
}

// scoredProduct is a product with its relevance score attached.
type scoredProduct struct {
	models.Product
	RelevanceScore int `json:"relevanceScore"`
}

// productInput is the body accepted when creating or updating a product.
// Absent fields keep their stored value on update. The category name is
// always taken from the referenced category.
type productInput struct {
	ManagementID   *int64         `json:"managementId"`
	Name           *string        `json:"name"`
	Description    *string        `json:"description"`
	Price          *float64       `json:"price"`
	OriginalPrice  *float64       `json:"originalPrice"`
	CategoryID     *uuid.UUID     `json:"categoryId"`
	Gallery        []string       `json:"gallery"`
	ReplaceImages  *bool          `json:"replaceImages"`
	StockCount     *int           `json:"stockCount"`
	Rating         *float64       `json:"rating"`
	Reviews        *int           `json:"reviews"`
	Featured       *bool          `json:"featured"`
	Tags           []string       `json:"tags"`
	Specifications map[string]any `json:"specifications"`
	Discount       *int           `json:"discount"`
}

// stockInput is the body accepted by the stock endpoint. InStock is
// accepted for compatibility but always derived from StockCount.
type stockInput struct {
	StockCount *int  `json:"stockCount"`
	InStock    *bool `json:"inStock"`
}

// productFilter builds the structured filter shared by listing and search.
func productFilter(q url.Values) (models.ProductFilter, string) {
	f := models.ProductFilter{Category: strings.TrimSpace(q.Get("category"))}

	if v := q.Get("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, "Invalid categoryId."
		}
		f.CategoryID = &id
	}
	for _, bound := range []struct {
		key string
		dst **float64
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		v := q.Get(bound.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return f, bound.key + " must be a number."
		}
		*bound.dst = &n
	}
	switch q.Get("inStock") {
	case "true":
		b := true
		f.InStock = &b
	case "false":
		b := false
		f.InStock = &b
	}
	f.Featured = q.Get("featured") == "true"
	for _, raw := range q["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	return f, ""
}

// productSort reads sortBy and sortOrder. Newest first by default.
func productSort(q url.Values) (models.ProductSort, string) {
	field := q.Get("sortBy")
	if field == "" {
		field = "createdAt"
	}
	if !store.ValidProductSort(field) {
		return models.ProductSort{}, "Invalid sortBy field."
	}
	return models.ProductSort{Field: field, Desc: q.Get("sortOrder") != "asc"}, ""
}

// pageOf returns the items on the given 1-based page.
func pageOf[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+limit, len(items))]
}

// rank fetches the candidates for filter, keeps those matching term and
// orders them by relevance.
func (h *Products) rank(ctx context.Context, f models.ProductFilter, term string) ([]search.Result, error) {
	candidates, err := h.products.Candidates(ctx, f)
	if err != nil {
		return nil, err
	}
	return h.scorer.Rank(search.Filter(candidates, term), term), nil
}

func productsOf(results []search.Result) []models.Product {
	out := make([]models.Product, len(results))
	for i, r := range results {
		out[i] = r.Product
	}
	return out
}

// List returns a page of products. With a non-empty search term the
// results are ranked by relevance; otherwise sortBy/sortOrder apply.
func (h *Products) List(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, func() (int, envelope) {
		q := r.URL.Query()
		filter, msg := productFilter(q)
		if msg != "" {
			return http.StatusBadRequest, envelope{Message: msg}
		}
		page, limit := parsePage(q)

		if term := q.Get("search"); search.Normalize(term) != "" {
			results, err := h.rank(r.Context(), filter, term)
			if err != nil {
				slog.Error("search products failed", "error", err)
				return http.StatusInternalServerError, envelope{Message: "Internal server error"}
			}
			return http.StatusOK, envelope{
				Success:    true,
				Data:       pageOf(productsOf(results), page, limit),
				Pagination: newPagination(page, limit, len(results)),
			}
		}

		sort, msg := productSort(q)
		if msg != "" {
			return http.StatusBadRequest, envelope{Message: msg}
		}
		items, err := h.products.List(r.Context(), filter, sort, store.Page{Offset: (page - 1) * limit, Limit: limit})
		if err != nil {
			slog.Error("list products failed", "error", err)
			return http.StatusInternalServerError, envelope{Message: "Internal server error"}
		}
		total, err := h.products.Count(r.Context(), filter)
		if err != nil {
			slog.Error("count products failed", "error", err)
			return http.StatusInternalServerError, envelope{Message: "Internal server error"}
		}
		if items == nil {
			items = []models.Product{}
		}
		return http.StatusOK, envelope{
			Success:    true,
			Data:       items,
			Pagination: newPagination(page, limit, total),
		}
	})
}

// Search ranks products against the q parameter. includeScore=true adds a
// relevanceScore to every item.
func (h *Products) Search(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, func() (int, envelope) {
		q := r.URL.Query()
		term := q.Get("q")
		if strings.TrimSpace(term) == "" {
			return http.StatusBadRequest, envelope{Message: "Search parameter 'q' is required."}
		}
		filter, msg := productFilter(q)
		if msg != "" {
			return http.StatusBadRequest, envelope{Message: msg}
		}
		page, limit := parsePage(q)
		includeScore, _ := strconv.ParseBool(q.Get("includeScore"))

		results, err := h.rank(r.Context(), filter, term)
		if err != nil {
			slog.Error("search products failed", "error", err)
			return http.StatusInternalServerError, envelope{Message: "Internal server error"}
		}

		pageResults := pageOf(results, page, limit)
		var data any = productsOf(pageResults)
		if includeScore {
			scored := make([]scoredProduct, len(pageResults))
			for i, res := range pageResults {
				scored[i] = scoredProduct{Product: res.Product, RelevanceScore: res.Score}
			}
			data = scored
		}

		normalized := search.Normalize(term)
		slog.Debug("product search", "query", term, "matches", len(results))
		return http.StatusOK, envelope{
			Success: true,
			Data:    data,
			SearchInfo: &SearchInfo{
				Query:           term,
				NormalizedQuery: normalized,
				Words:           strings.Fields(normalized),
				IncludeScore:    includeScore,
			},
			Pagination: newPagination(page, limit, len(results)),
		}
	})
}

// Get returns a single product.
func (h *Products) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	p, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find product failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeData(w, http.StatusOK, p, "")
}

// Create adds a product to an existing category.
func (h *Products) Create(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Price == nil {
		writeError(w, http.StatusBadRequest, "Price is required.")
		return
	}
	if in.CategoryID == nil {
		writeError(w, http.StatusBadRequest, "categoryId is required.")
		return
	}
	cat, ok := h.category(w, r, *in.CategoryID)
	if !ok {
		return
	}

	p := &models.Product{CategoryID: cat.ID, Category: cat.Name}
	applyProductInput(p, &in)
	if msg := validateProduct(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.products.Create(r.Context(), p); err != nil {
		slog.Error("create product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Info("product created", "id", p.ID, "name", p.Name, "category_id", p.CategoryID)

	h.refreshCount(r.Context(), p.CategoryID)
	h.invalidate(r.Context(), "product", p.ID, "create")
	writeData(w, http.StatusCreated, p, "Product created")
}

// Update changes the fields present in the body. New gallery images
// replace the current ones unless replaceImages is false.
func (h *Products) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var in productInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find product failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	previousCategory := p.CategoryID
	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		cat, ok := h.category(w, r, *in.CategoryID)
		if !ok {
			return
		}
		p.CategoryID, p.Category = cat.ID, cat.Name
	}
	applyProductInput(p, &in)
	if msg := validateProduct(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		slog.Error("update product failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if previousCategory != p.CategoryID {
		h.refreshCount(r.Context(), previousCategory)
		h.refreshCount(r.Context(), p.CategoryID)
	}
	h.invalidate(r.Context(), "product", p.ID, "update")
	writeData(w, http.StatusOK, p, "Product updated")
}

// UpdateStock sets a product's stock count. The in-stock flag follows it.
func (h *Products) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var in stockInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.StockCount == nil {
		writeError(w, http.StatusBadRequest, "stockCount is required.")
		return
	}
	if *in.StockCount < 0 {
		writeError(w, http.StatusBadRequest, "Stock count must be zero or greater.")
		return
	}

	p, err := h.products.UpdateStock(r.Context(), id, *in.StockCount)
	if err != nil {
		slog.Error("update stock failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.invalidate(r.Context(), "product", id, "stock")
	writeData(w, http.StatusOK, map[string]any{
		"id":         p.ID,
		"stockCount": p.StockCount,
		"inStock":    p.InStock,
	}, "Stock updated")
}

// Delete removes a product.
func (h *Products) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	p, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find product failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		slog.Error("delete product failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Info("product deleted", "id", id, "name", p.Name)

	h.refreshCount(r.Context(), p.CategoryID)
	h.invalidate(r.Context(), "product", id, "delete")
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Product deleted"})
}

// category resolves a product's category reference, writing a 400 when it
// does not exist.
func (h *Products) category(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*models.Category, bool) {
	cat, err := h.categories.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Category not found")
		return nil, false
	}
	if err != nil {
		writeCatalogError(w, "find product category", err)
		return nil, false
	}
	return cat, true
}

// refreshCount reconciles a category's product count after a product
// write. Failures are logged; the recount pass repairs any drift.
func (h *Products) refreshCount(ctx context.Context, categoryID uuid.UUID) {
	err := h.categories.RefreshProductCount(ctx, categoryID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		slog.Warn("refresh category product count failed", "category_id", categoryID, "error", err)
	}
}

// applyProductInput copies the fields present in in onto p.
func applyProductInput(p *models.Product, in *productInput) {
	if in.ManagementID != nil {
		p.ManagementID = in.ManagementID
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = in.OriginalPrice
	}
	if in.StockCount != nil {
		p.StockCount = *in.StockCount
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Reviews != nil {
		p.Reviews = *in.Reviews
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Tags != nil {
		tags := make([]string, 0, len(in.Tags))
		for _, t := range in.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		p.Tags = tags
	}
	if in.Specifications != nil {
		p.Specifications = in.Specifications
	}

	if len(in.Gallery) > 0 {
		if in.ReplaceImages == nil || *in.ReplaceImages {
			p.Gallery = in.Gallery
		} else {
			current := p.Gallery
			if len(current) == 1 && current[0] == models.DefaultProductImage {
				current = nil
			}
			p.Gallery = append(current[:len(current):len(current)], in.Gallery...)
		}
	}

	switch {
	case in.Discount != nil:
		p.Discount = in.Discount
	case in.OriginalPrice != nil || in.Price != nil:
		if d := p.CalculatedDiscount(); d > 0 {
			p.Discount = &d
		} else {
			p.Discount = nil
		}
	}
}
