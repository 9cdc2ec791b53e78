// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"storefront/internal/models"
)

func TestCategoriesList_DefaultIsFlatWithParentNames(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/categories", nil)
	expectStatus(t, rec, http.StatusOK)

	var cats []models.Category
	resp := decode(t, rec, &cats)
	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.Count == nil || *resp.Count != 3 {
		t.Fatalf("count = %v, want 3", resp.Count)
	}
	if cats[1].Name != "Pots" || cats[1].ParentName != "Garden" {
		t.Errorf("second category = %q (parent %q), want Pots under Garden", cats[1].Name, cats[1].ParentName)
	}
}

func TestCategoriesList_HierarchyView(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/categories?view=hierarchy", nil)
	expectStatus(t, rec, http.StatusOK)

	var roots []models.Category
	decode(t, rec, &roots)
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	if roots[0].Name != "Garden" || len(roots[0].Subcategories) != 1 {
		t.Fatalf("Garden should have one subcategory, got %+v", roots[0])
	}
	if roots[0].Subcategories[0].Name != "Pots" {
		t.Errorf("subcategory = %q, want Pots", roots[0].Subcategories[0].Name)
	}
}

func TestCategoriesList_FlatViewIsTreeOrder(t *testing.T) {
	env := newTestEnv(t)
	// Created after Tools, but listed right under its parent.
	rec := env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{
		"name":             "Seeds",
		"parentCategoryId": env.Garden.ID,
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(t, http.MethodGet, "/api/v1/categories?view=flat", nil)
	expectStatus(t, rec, http.StatusOK)

	var cats []models.Category
	decode(t, rec, &cats)
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "Garden,Pots,Seeds,Tools" {
		t.Errorf("flat order = %s, want Garden,Pots,Seeds,Tools", got)
	}
}

func TestCategoriesList_Filters(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		query string
		want  int
	}{
		{"parentId=root", 2},
		{"parentId=" + env.Garden.ID.String(), 1},
		{"level=1", 1},
		{"isParent=true", 1},
		{"search=OO", 1},
		{"search=o", 2},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/categories?"+tt.query, nil)
			expectStatus(t, rec, http.StatusOK)
			resp := decode(t, rec, nil)
			if resp.Count == nil || *resp.Count != tt.want {
				t.Errorf("count = %v, want %d", resp.Count, tt.want)
			}
		})
	}
}

func TestCategoriesList_BadQuery_Returns400(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"view=tree", "level=4", "level=x", "isParent=maybe", "parentId=nope"} {
		t.Run(q, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/categories?"+q, nil)
			expectStatus(t, rec, http.StatusBadRequest)
			if resp := decode(t, rec, nil); resp.Success {
				t.Error("expected success=false")
			}
		})
	}
}

func TestCategoriesList_CachedUntilWrite(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(t, http.MethodGet, "/api/v1/categories", nil)
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}
	second := env.do(t, http.MethodGet, "/api/v1/categories", nil)
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached body differs from the original")
	}

	rec := env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Lighting"})
	expectStatus(t, rec, http.StatusCreated)

	third := env.do(t, http.MethodGet, "/api/v1/categories", nil)
	if got := third.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache after write = %q, want MISS", got)
	}
	if resp := decode(t, third, nil); *resp.Count != 4 {
		t.Errorf("count after write = %d, want 4", *resp.Count)
	}
}

func TestCategoryGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/categories/"+env.Pots.ID.String(), nil)
	expectStatus(t, rec, http.StatusOK)
	var c models.Category
	decode(t, rec, &c)
	if c.Name != "Pots" || c.ParentName != "Garden" || c.Level != 1 {
		t.Errorf("got %+v", c)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/categories/"+uuid.NewString(), nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = env.do(t, http.MethodGet, "/api/v1/categories/not-a-uuid", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestCategorySubcategoriesAndPath(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/categories/"+env.Garden.ID.String()+"/subcategories", nil)
	expectStatus(t, rec, http.StatusOK)
	var kids []models.Category
	decode(t, rec, &kids)
	if len(kids) != 1 || kids[0].ID != env.Pots.ID {
		t.Errorf("subcategories = %+v, want [Pots]", kids)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/categories/"+env.Tools.ID.String()+"/subcategories", nil)
	expectStatus(t, rec, http.StatusOK)
	if resp := decode(t, rec, nil); string(resp.Data) != "[]" {
		t.Errorf("leaf subcategories = %s, want []", resp.Data)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/categories/"+env.Pots.ID.String()+"/path", nil)
	expectStatus(t, rec, http.StatusOK)
	var path struct {
		Path       []models.Category `json:"path"`
		PathString string            `json:"pathString"`
	}
	decode(t, rec, &path)
	if path.PathString != "Garden > Pots" || len(path.Path) != 2 {
		t.Errorf("path = %q (%d nodes), want Garden > Pots", path.PathString, len(path.Path))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/categories/"+uuid.NewString()+"/path", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCategoryCreate_UnderParent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{
		"name":             "  Hammers  ",
		"description":      "Claw and sledge",
		"icon":             "hammer",
		"parentCategoryId": env.Tools.ID,
	})
	expectStatus(t, rec, http.StatusCreated)

	var c models.Category
	decode(t, rec, &c)
	if c.Name != "Hammers" {
		t.Errorf("name = %q, want trimmed Hammers", c.Name)
	}
	if c.Level != 1 || c.ParentID == nil || *c.ParentID != env.Tools.ID {
		t.Errorf("placement = level %d parent %v", c.Level, c.ParentID)
	}
	if !env.category(t, env.Tools.ID).IsParent {
		t.Error("Tools should now be marked as a parent")
	}
	if got := env.CacheLog.last(); got.action != "create" || got.entityType != "category" || got.id != c.ID {
		t.Errorf("cache log = %+v", got)
	}
}

func TestCategoryCreate_Rejections(t *testing.T) {
	env := newTestEnv(t)

	// Build Garden > Pots > Small > Tiny so Tiny sits at the depth limit.
	small := env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Small", "parentCategoryId": env.Pots.ID})
	expectStatus(t, small, http.StatusCreated)
	var smallCat models.Category
	decode(t, small, &smallCat)
	tiny := env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Tiny", "parentCategoryId": smallCat.ID})
	expectStatus(t, tiny, http.StatusCreated)
	var tinyCat models.Category
	decode(t, tiny, &tinyCat)
	if tinyCat.Level != 3 {
		t.Fatalf("Tiny level = %d, want 3", tinyCat.Level)
	}

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"description": "x"}},
		{"name too long", map[string]any{"name": strings.Repeat("n", 101)}},
		{"duplicate name", map[string]any{"name": "Garden"}},
		{"unknown parent", map[string]any{"name": "Orphan", "parentCategoryId": uuid.New()}},
		{"too deep", map[string]any{"name": "Micro", "parentCategoryId": tinyCat.ID}},
		{"invalid parent id", `{"name":"X","parentCategoryId":"abc"}`},
		{"malformed json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/categories", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)
			if resp := decode(t, rec, nil); resp.Success || resp.Message == "" {
				t.Errorf("want failure with message, got %+v", resp)
			}
		})
	}
}

func TestCategoryUpdate_MoveToRoot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/categories/"+env.Pots.ID.String(), `{"parentCategoryId": null}`)
	expectStatus(t, rec, http.StatusOK)

	var c models.Category
	decode(t, rec, &c)
	if c.ParentID != nil || c.Level != 0 || c.ParentName != "" {
		t.Errorf("moved category = %+v, want a root", c)
	}
	if env.category(t, env.Garden.ID).IsParent {
		t.Error("Garden lost its only child and should no longer be a parent")
	}
	if got := env.CacheLog.last().action; got != "move" {
		t.Errorf("cache log action = %q, want move", got)
	}
}

func TestCategoryUpdate_FieldsOnlyKeepsParent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/categories/"+env.Pots.ID.String(), map[string]any{
		"name":  "Planters",
		"color": "#aa5500",
	})
	expectStatus(t, rec, http.StatusOK)

	stored := env.category(t, env.Pots.ID)
	if stored.Name != "Planters" || stored.Color != "#aa5500" {
		t.Errorf("stored = %+v", stored)
	}
	if stored.ParentID == nil || *stored.ParentID != env.Garden.ID || stored.Level != 1 {
		t.Errorf("parent changed: %+v", stored)
	}
	if got := env.CacheLog.last().action; got != "update" {
		t.Errorf("cache log action = %q, want update", got)
	}
}

func TestCategoryUpdate_Rejections(t *testing.T) {
	env := newTestEnv(t)
	gardenURL := "/api/v1/categories/" + env.Garden.ID.String()

	tests := []struct {
		name string
		url  string
		body any
		want int
	}{
		{"self parent", gardenURL, map[string]any{"parentCategoryId": env.Garden.ID}, http.StatusBadRequest},
		{"cycle", gardenURL, map[string]any{"parentCategoryId": env.Pots.ID}, http.StatusBadRequest},
		{"duplicate name", gardenURL, map[string]any{"name": "Tools"}, http.StatusBadRequest},
		{"blank name", gardenURL, map[string]any{"name": " "}, http.StatusBadRequest},
		{"unknown category", "/api/v1/categories/" + uuid.NewString(), map[string]any{"name": "X"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, tt.url, tt.body)
			expectStatus(t, rec, tt.want)
		})
	}

	if got := env.category(t, env.Garden.ID); got.Name != "Garden" || got.ParentID != nil {
		t.Errorf("rejected updates changed Garden: %+v", got)
	}
}

func TestCategoryDelete(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/v1/categories/"+env.Garden.ID.String(), nil)
	expectStatus(t, rec, http.StatusBadRequest)

	env.addProduct(t, models.Product{Name: "Clay Pot", CategoryID: env.Pots.ID, Category: "Pots"})
	rec = env.do(t, http.MethodDelete, "/api/v1/categories/"+env.Pots.ID.String()+"?requireEmpty=true", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodDelete, "/api/v1/categories/"+env.Pots.ID.String(), nil)
	expectStatus(t, rec, http.StatusOK)
	if env.category(t, env.Garden.ID).IsParent {
		t.Error("Garden should no longer be a parent")
	}
	if got := env.CacheLog.last(); got.action != "delete" || got.id != env.Pots.ID {
		t.Errorf("cache log = %+v", got)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/categories/"+env.Pots.ID.String(), nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCategoryUpdateCounts(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct(t, models.Product{Name: "Clay Pot", CategoryID: env.Pots.ID})
	env.addProduct(t, models.Product{Name: "Glazed Pot", CategoryID: env.Pots.ID})
	env.addProduct(t, models.Product{Name: "Trowel", CategoryID: env.Tools.ID})

	rec := env.do(t, http.MethodPut, "/api/v1/categories/update-counts", nil)
	expectStatus(t, rec, http.StatusOK)
	if resp := decode(t, rec, nil); resp.Count == nil || *resp.Count != 3 {
		t.Errorf("count = %v, want 3", resp.Count)
	}

	want := map[uuid.UUID]int{env.Garden.ID: 0, env.Pots.ID: 2, env.Tools.ID: 1}
	for id, n := range want {
		if got := env.category(t, id).ProductCount; got != n {
			t.Errorf("category %s count = %d, want %d", id, got, n)
		}
	}
	if got := env.CacheLog.last().action; got != "recount" {
		t.Errorf("cache log action = %q, want recount", got)
	}
}
