// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory category store and fake product,
// cache and session collaborators, so no database or Valkey is required.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/search"
	"storefront/internal/session"
	"storefront/internal/store"
)

// fakeProducts is an in-memory ProductRepository.
type fakeProducts struct {
	mu    sync.Mutex
	items []models.Product
	clock time.Time
	fail  error
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeProducts) matches(p *models.Product, flt models.ProductFilter) bool {
	if flt.Category != "" && p.Category != flt.Category {
		return false
	}
	if flt.CategoryID != nil && p.CategoryID != *flt.CategoryID {
		return false
	}
	if flt.MinPrice != nil && p.Price < *flt.MinPrice {
		return false
	}
	if flt.MaxPrice != nil && p.Price > *flt.MaxPrice {
		return false
	}
	if flt.InStock != nil && p.InStock != *flt.InStock {
		return false
	}
	if flt.Featured && !p.Featured {
		return false
	}
	if len(flt.Tags) > 0 && !slices.ContainsFunc(flt.Tags, func(t string) bool { return slices.Contains(p.Tags, t) }) {
		return false
	}
	return true
}

func (f *fakeProducts) filtered(flt models.ProductFilter, sort models.ProductSort) []models.Product {
	var out []models.Product
	for _, p := range f.items {
		if f.matches(&p, flt) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Product) int {
		var c int
		switch sort.Field {
		case "price":
			c = cmpFloat(a.Price, b.Price)
		case "name":
			c = strings.Compare(a.Name, b.Name)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if sort.Desc {
			return -c
		}
		return c
	})
	return out
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (f *fakeProducts) List(_ context.Context, flt models.ProductFilter, sort models.ProductSort, page store.Page) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := f.filtered(flt, sort)
	if page.Offset >= len(out) {
		return nil, nil
	}
	return out[page.Offset:min(page.Offset+page.Limit, len(out))], nil
}

func (f *fakeProducts) Count(_ context.Context, flt models.ProductFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filtered(flt, models.ProductSort{})), nil
}

func (f *fakeProducts) Candidates(_ context.Context, flt models.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return f.filtered(flt, models.ProductSort{Field: "createdAt", Desc: true}), nil
}

func (f *fakeProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.Normalize()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.clock = f.clock.Add(time.Second)
	p.CreatedAt, p.UpdatedAt = f.clock, f.clock
	f.items = append(f.items, *p)
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.Normalize()
	for i := range f.items {
		if f.items[i].ID == p.ID {
			f.items[i] = *p
			return nil
		}
	}
	return nil
}

func (f *fakeProducts) UpdateStock(_ context.Context, id uuid.UUID, count int) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].StockCount = count
			f.items[i].InStock = count > 0
			p := f.items[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = slices.DeleteFunc(f.items, func(p models.Product) bool { return p.ID == id })
	return nil
}

func (f *fakeProducts) countByCategory(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.items {
		if p.CategoryID == id {
			n++
		}
	}
	return n
}

// countingStore counts a category's products from the fake repository.
type countingStore struct {
	*catalog.MemoryStore
	products *fakeProducts
}

func (s countingStore) CountByCategoryID(_ context.Context, id uuid.UUID) (int, error) {
	return s.products.countByCategory(id), nil
}

// fakeCache is an in-memory ResponseCache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	cleared int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *fakeCache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), body...)
}

func (c *fakeCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.cleared++
}

// logEntry is one recorded invalidation.
type logEntry struct {
	entityType string
	id         uuid.UUID
	action     string
}

type fakeCacheLog struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *fakeCacheLog) Log(_ context.Context, entityType string, id uuid.UUID, action string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{entityType, id, action})
}

func (l *fakeCacheLog) last() logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return logEntry{}
	}
	return l.entries[len(l.entries)-1]
}

// testEnv holds the handler groups and their fakes.
type testEnv struct {
	Categories *catalog.MemoryStore
	Products   *fakeProducts
	Cache      *fakeCache
	CacheLog   *fakeCacheLog
	Manager    *catalog.Manager
	Router     http.Handler

	// Seeded tree: Garden > Pots, plus the root Tools.
	Garden, Pots, Tools models.Category
}

// newTestEnv builds handlers over a small seeded category tree.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	garden := models.Category{ID: uuid.New(), Name: "Garden", IsParent: true}
	gid := garden.ID
	pots := models.Category{ID: uuid.New(), Name: "Pots", ParentID: &gid, Level: 1}
	tools := models.Category{ID: uuid.New(), Name: "Tools"}

	mem := catalog.NewMemoryStore(garden, pots, tools)
	products := newFakeProducts()
	manager := catalog.NewManager(countingStore{MemoryStore: mem, products: products})
	rc := newFakeCache()
	cl := &fakeCacheLog{}

	cats := NewCategories(manager, rc, cl)
	prods := NewProducts(products, manager, search.NewScorer(search.DefaultWeights()), rc, cl)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", cats.List)
		r.Put("/categories/update-counts", cats.UpdateCounts)
		r.Post("/categories", cats.Create)
		r.Get("/categories/{id}", cats.Get)
		r.Get("/categories/{id}/subcategories", cats.Subcategories)
		r.Get("/categories/{id}/path", cats.Path)
		r.Put("/categories/{id}", cats.Update)
		r.Delete("/categories/{id}", cats.Delete)

		r.Get("/products", prods.List)
		r.Get("/products/search", prods.Search)
		r.Post("/products", prods.Create)
		r.Get("/products/{id}", prods.Get)
		r.Put("/products/{id}", prods.Update)
		r.Patch("/products/{id}/stock", prods.UpdateStock)
		r.Delete("/products/{id}", prods.Delete)
	})

	return &testEnv{
		Categories: mem,
		Products:   products,
		Cache:      rc,
		CacheLog:   cl,
		Manager:    manager,
		Router:     r,
		Garden:     garden,
		Pots:       pots,
		Tools:      tools,
	}
}

// do sends a request through the test router. body is JSON-encoded unless
// it is already a string.
func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// category reads a category straight from the store.
func (e *testEnv) category(t *testing.T, id uuid.UUID) models.Category {
	t.Helper()
	c, err := e.Categories.FindByID(context.Background(), id)
	if err != nil || c == nil {
		t.Fatalf("category %s missing: %v", id, err)
	}
	return *c
}

// addProduct stores a product directly, bypassing the handlers.
func (e *testEnv) addProduct(t *testing.T, p models.Product) models.Product {
	t.Helper()
	if p.Description == "" {
		p.Description = "test product"
	}
	if err := e.Products.Create(context.Background(), &p); err != nil {
		t.Fatalf("add product: %v", err)
	}
	return p
}

// response is the decoded API envelope.
type response struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Count      *int            `json:"count"`
	Pagination *Pagination     `json:"pagination"`
	SearchInfo *SearchInfo     `json:"searchInfo"`
}

// decode parses the envelope and, when data is non-nil, its payload.
func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) response {
	t.Helper()
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(resp.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", resp.Data, err)
		}
	}
	return resp
}

// expectStatus fails the test when the recorder holds a different status.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}
