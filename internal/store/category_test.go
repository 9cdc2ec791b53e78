// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

func TestCategoryStoreSaveAndFind(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	t.Cleanup(func() { cleanCategories(t, db, "store-test-root") })

	c := &models.Category{Name: "store-test-root", Description: "d", Color: "#fff"}
	require.NoError(t, s.Save(ctx, c))
	require.NotEqual(t, uuid.Nil, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	found, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "store-test-root", found.Name)
	assert.Nil(t, found.ParentID)

	// Save again updates in place.
	found.Description = "updated"
	require.NoError(t, s.Save(ctx, found))
	again, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", again.Description)

	missing, err := s.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryStoreFindAllFilters(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	t.Cleanup(func() { cleanCategories(t, db, "filter-root", "filter-kid_%") })

	root := &models.Category{Name: "filter-root", IsParent: true}
	require.NoError(t, s.Save(ctx, root))
	kid := &models.Category{Name: "filter-kid_%", ParentID: &root.ID, Level: 1}
	require.NoError(t, s.Save(ctx, kid))

	kids, err := s.FindAll(ctx, models.CategoryFilter{ParentID: &root.ID})
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, kid.ID, kids[0].ID)

	// LIKE wildcards in the search term are literal.
	found, err := s.FindAll(ctx, models.CategoryFilter{Search: "KID_%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, kid.ID, found[0].ID)

	byName, err := s.FindAll(ctx, models.CategoryFilter{Name: "filter-root"})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	level := 1
	isParent := true
	none, err := s.FindAll(ctx, models.CategoryFilter{Name: "filter-kid_%", Level: &level, IsParent: &isParent})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCategoryStoreWithManager(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	m := catalog.NewManager(s)
	ctx := context.Background()
	names := []string{"mgr-a", "mgr-b", "mgr-c", "mgr-d", "mgr-e"}
	t.Cleanup(func() { cleanCategories(t, db, names...) })

	var ids []uuid.UUID
	var parent *uuid.UUID
	for _, name := range names[:4] {
		c := &models.Category{Name: name}
		if parent != nil {
			c.ParentID = parent
		}
		require.NoError(t, m.Create(ctx, c), name)
		ids = append(ids, c.ID)
		parent = &c.ID
	}

	deepest, err := s.FindByID(ctx, ids[3])
	require.NoError(t, err)
	assert.Equal(t, 3, deepest.Level)

	top, err := s.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, top.IsParent)

	// A fifth level is rejected and nothing is written.
	err = m.Create(ctx, &models.Category{Name: "mgr-e", ParentID: &ids[3]})
	assert.ErrorIs(t, err, catalog.ErrDepthLimitExceeded)
	none, err := s.FindAll(ctx, models.CategoryFilter{Name: "mgr-e"})
	require.NoError(t, err)
	assert.Empty(t, none)

	// Moving the root under its own descendant is a cycle.
	_, err = m.ValidateParentAssignment(ctx, ids[0], &ids[2])
	assert.ErrorIs(t, err, catalog.ErrCircularReference)

	path, err := m.ComputePath(ctx, ids[3])
	require.NoError(t, err)
	require.Len(t, path, 4)
	assert.Equal(t, "mgr-a", path[0].Name)
	assert.Equal(t, "mgr-d", path[3].Name)
}

func TestCategoryStoreInTxRollsBack(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	t.Cleanup(func() { cleanCategories(t, db, "tx-rollback") })

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx catalog.Store) error {
		if err := tx.Save(ctx, &models.Category{Name: "tx-rollback"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := s.FindAll(ctx, models.CategoryFilter{Name: "tx-rollback"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCategoryStoreDeleteWithChildrenFails(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	t.Cleanup(func() { cleanCategories(t, db, "del-root", "del-kid") })

	root := &models.Category{Name: "del-root", IsParent: true}
	require.NoError(t, s.Save(ctx, root))
	require.NoError(t, s.Save(ctx, &models.Category{Name: "del-kid", ParentID: &root.ID, Level: 1}))

	assert.Error(t, s.Delete(ctx, root.ID))
}

func TestCategoryStoreCountByCategoryID(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	ps := NewProductStore(db)
	ctx := context.Background()

	c := &models.Category{Name: "count-cat"}
	require.NoError(t, cs.Save(ctx, c))
	t.Cleanup(func() {
		cleanProducts(t, db, c.ID)
		cleanCategories(t, db, "count-cat")
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, ps.Create(ctx, &models.Product{
			Name: "counted", Description: "x", Price: 1, Category: c.Name, CategoryID: c.ID,
		}))
	}

	n, err := cs.CountByCategoryID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	m := catalog.NewManager(cs)
	require.NoError(t, m.RefreshProductCount(ctx, c.ID))
	got, err := cs.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ProductCount)
}
