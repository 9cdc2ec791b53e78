// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the storefront JSON API.
// Handlers are grouped by concern (categories, products, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront/internal/cache"
	"storefront/internal/catalog"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Pagination defaults, mirrored by every paginated listing.
const (
	defaultLimit = 10
	maxLimit     = 50
)

// envelope is the JSON shape of every API response.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	SearchInfo *SearchInfo `json:"searchInfo,omitempty"`
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// newPagination computes page counts for total items.
func newPagination(page, limit, total int) *Pagination {
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return &Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// parsePage reads page and limit from the query string. page is at least 1
// and limit is clamped to 1..50; unparseable values fall back to defaults.
func parsePage(q url.Values) (page, limit int) {
	page, limit = 1, defaultLimit
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page = max(1, v)
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = min(maxLimit, max(1, v))
	}
	return page, limit
}

// writeJSON encodes env with the given status.
func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeData writes a successful response carrying data.
func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

// writeError writes a failed response with a human-readable message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// catalogError maps catalog failures onto HTTP statuses: validation errors
// are the caller's fault, missing categories are 404, anything else is
// logged and hidden behind a 500.
func catalogError(op string, err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "Category not found"
	case catalog.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	default:
		slog.Error(op+" failed", "error", err)
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeCatalogError(w http.ResponseWriter, op string, err error) {
	status, msg := catalogError(op, err)
	writeError(w, status, msg)
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// urlID parses the {id} route parameter, writing a 400 when it is not a UUID.
func urlID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// ResponseCache stores encoded GET responses. *cache.CatalogCache
// implements it.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	InvalidateAll(ctx context.Context)
}

// InvalidationLogger records why the catalog cache was cleared.
// *store.CacheLogStore implements it.
type InvalidationLogger interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string)
}

// invalidator clears cached catalog responses after a write. Both fields
// are optional.
type invalidator struct {
	cache ResponseCache
	log   InvalidationLogger
}

func (iv invalidator) invalidate(ctx context.Context, entityType string, id uuid.UUID, action string) {
	if iv.cache != nil {
		iv.cache.InvalidateAll(ctx)
	}
	if iv.log != nil {
		iv.log.Log(ctx, entityType, id, action)
	}
}

// serveCached answers a GET from the response cache when possible. On a
// miss build produces the envelope; successful responses are stored.
func (iv invalidator) serveCached(w http.ResponseWriter, r *http.Request, build func() (int, envelope)) {
	if iv.cache == nil {
		status, env := build()
		writeJSON(w, status, env)
		return
	}

	key := cache.RequestKey(r.URL.Path, r.URL.Query())
	if body, ok := iv.cache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Write(body)
		return
	}

	status, env := build()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(env); err != nil {
		slog.Error("encode response failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if status == http.StatusOK {
		iv.cache.Set(r.Context(), key, buf.Bytes())
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
