// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

// Categories groups the category tree HTTP handlers.
type Categories struct {
	manager *catalog.Manager
	invalidator
}

// NewCategories creates the category handler group. cache and cacheLog may
// be nil.
func NewCategories(manager *catalog.Manager, cache ResponseCache, cacheLog InvalidationLogger) *Categories {
	return &Categories{
		manager:     manager,
		invalidator: invalidator{cache: cache, log: cacheLog},
	}
}

// categoryInput is the body accepted when creating a category.
type categoryInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`
	ParentID    optionalRef `json:"parentCategoryId"`
}

// categoryUpdate is the body accepted when updating a category. Absent
// fields keep their stored value.
type categoryUpdate struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Icon        *string     `json:"icon"`
	Color       *string     `json:"color"`
	ParentID    optionalRef `json:"parentCategoryId"`
}

// optionalRef distinguishes an absent parent reference from an explicit
// null (or empty string), which both clear the parent.
type optionalRef struct {
	Set bool
	ID  *uuid.UUID
}

func (o *optionalRef) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.ID = nil
	if s := string(b); s == "null" || s == `""` {
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.ID = &id
	return nil
}

// categoryFilter builds a filter from the listing query string.
func categoryFilter(q url.Values) (models.CategoryFilter, string) {
	f := models.CategoryFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Name:   strings.TrimSpace(q.Get("name")),
	}
	if v := q.Get("parentId"); v != "" {
		if v == "root" || v == "null" {
			f.RootsOnly = true
		} else {
			id, err := uuid.Parse(v)
			if err != nil {
				return f, "Invalid parentId."
			}
			f.ParentID = &id
		}
	}
	if v := q.Get("level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil || level < 0 || level > catalog.MaxLevel {
			return f, "level must be between 0 and 3."
		}
		f.Level = &level
	}
	if v := q.Get("isParent"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, "isParent must be true or false."
		}
		f.IsParent = &b
	}
	return f, ""
}

// List returns categories as a flat list (default), a nested hierarchy
// (view=hierarchy), or the hierarchy flattened in tree order (view=flat).
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, func() (int, envelope) {
		q := r.URL.Query()
		filter, msg := categoryFilter(q)
		if msg != "" {
			return http.StatusBadRequest, envelope{Message: msg}
		}

		var (
			cats []models.Category
			err  error
		)
		switch view := q.Get("view"); view {
		case "":
			cats, err = h.manager.List(r.Context(), filter)
		case "hierarchy":
			cats, err = h.manager.Hierarchy(r.Context(), filter)
		case "flat":
			cats, err = h.manager.List(r.Context(), filter)
			if err == nil {
				cats = catalog.Flatten(catalog.BuildHierarchy(cats))
			}
		default:
			return http.StatusBadRequest, envelope{Message: "view must be hierarchy or flat."}
		}
		if err != nil {
			status, msg := catalogError("list categories", err)
			return status, envelope{Message: msg}
		}

		if cats == nil {
			cats = []models.Category{}
		}
		n := len(cats)
		return http.StatusOK, envelope{Success: true, Data: cats, Count: &n}
	})
}

// Get returns a single category.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	c, err := h.manager.Get(r.Context(), id)
	if err != nil {
		writeCatalogError(w, "get category", err)
		return
	}
	writeData(w, http.StatusOK, c, "")
}

// Subcategories returns the direct children of a category.
func (h *Categories) Subcategories(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	kids, err := h.manager.Subcategories(r.Context(), id)
	if err != nil {
		writeCatalogError(w, "list subcategories", err)
		return
	}
	if kids == nil {
		kids = []models.Category{}
	}
	n := len(kids)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: kids, Count: &n})
}

// Path returns the chain of categories from the root down to the category.
func (h *Categories) Path(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	path, err := h.manager.ComputePath(r.Context(), id)
	if err != nil {
		writeCatalogError(w, "compute category path", err)
		return
	}
	names := make([]string, len(path))
	for i, c := range path {
		names[i] = c.Name
	}
	writeData(w, http.StatusOK, map[string]any{
		"path":       path,
		"pathString": strings.Join(names, " > "),
	}, "")
}

// Create adds a category, optionally under a parent.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateCategory(in.Name, in.Description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
		Color:       strings.TrimSpace(in.Color),
		ParentID:    in.ParentID.ID,
	}
	if err := h.manager.Create(r.Context(), c); err != nil {
		writeCatalogError(w, "create category", err)
		return
	}

	h.invalidate(r.Context(), "category", c.ID, "create")
	writeData(w, http.StatusCreated, c, "Category created")
}

// Update changes a category's fields and, when parentCategoryId is sent,
// moves it within the tree.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var in categoryUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.manager.Get(r.Context(), id)
	if err != nil {
		writeCatalogError(w, "get category", err)
		return
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Icon != nil {
		c.Icon = strings.TrimSpace(*in.Icon)
	}
	if in.Color != nil {
		c.Color = strings.TrimSpace(*in.Color)
	}
	if msg := validateCategory(c.Name, c.Description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	action := "update"
	parentID := c.ParentID
	if in.ParentID.Set {
		parentID = in.ParentID.ID
		if !sameParent(c.ParentID, parentID) {
			action = "move"
		}
	}

	if err := h.manager.Update(r.Context(), c, parentID); err != nil {
		writeCatalogError(w, "update category", err)
		return
	}
	if action == "move" {
		c.ParentName = ""
		if fresh, err := h.manager.Get(r.Context(), id); err == nil {
			c = fresh
		}
	}

	h.invalidate(r.Context(), "category", c.ID, action)
	writeData(w, http.StatusOK, c, "Category updated")
}

// Delete removes a category without subcategories. With requireEmpty=true
// it also refuses categories that still have products.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	requireEmpty, _ := strconv.ParseBool(r.URL.Query().Get("requireEmpty"))

	if err := h.manager.Delete(r.Context(), id, requireEmpty); err != nil {
		writeCatalogError(w, "delete category", err)
		return
	}

	h.invalidate(r.Context(), "category", id, "delete")
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Category deleted"})
}

// UpdateCounts recomputes the product count of every category.
func (h *Categories) UpdateCounts(w http.ResponseWriter, r *http.Request) {
	updated, err := h.manager.RecountAll(r.Context())
	if err != nil {
		writeCatalogError(w, "recount categories", err)
		return
	}
	if updated == nil {
		updated = []models.Category{}
	}

	h.invalidate(r.Context(), "category", uuid.Nil, "recount")
	n := len(updated)
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    updated,
		Count:   &n,
		Message: "Product counts updated",
	})
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
