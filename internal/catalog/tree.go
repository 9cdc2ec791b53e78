// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"github.com/google/uuid"

	"storefront/internal/models"
)

// treeNode is the mutable form of a category while the forest is assembled.
type treeNode struct {
	cat      models.Category
	children []*treeNode
}

// BuildHierarchy nests a flat category list into a forest. Roots are the
// categories without a parent, or whose parent is not in the list. Sibling
// order follows input order.
func BuildHierarchy(categories []models.Category) []models.Category {
	lookup := make(map[uuid.UUID]*treeNode, len(categories))
	order := make([]*treeNode, 0, len(categories))
	for _, c := range categories {
		if _, dup := lookup[c.ID]; dup {
			continue
		}
		c.Subcategories = nil
		n := &treeNode{cat: c}
		lookup[c.ID] = n
		order = append(order, n)
	}

	var roots []*treeNode
	for _, n := range order {
		pid := n.cat.ParentID
		if pid == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := lookup[*pid]
		if !ok || closesLoop(lookup, n.cat.ID, *pid) {
			roots = append(roots, n)
			continue
		}
		parent.children = append(parent.children, n)
	}

	return materialize(roots)
}

// closesLoop reports whether attaching id under parentID would make id its
// own ancestor within lookup.
func closesLoop(lookup map[uuid.UUID]*treeNode, id, parentID uuid.UUID) bool {
	cur := parentID
	for range len(lookup) {
		if cur == id {
			return true
		}
		n, ok := lookup[cur]
		if !ok || n.cat.ParentID == nil {
			return false
		}
		cur = *n.cat.ParentID
	}
	return true
}

func materialize(nodes []*treeNode) []models.Category {
	out := make([]models.Category, 0, len(nodes))
	for _, n := range nodes {
		c := n.cat
		c.Subcategories = materialize(n.children)
		out = append(out, c)
	}
	return out
}

// Flatten walks a forest in pre-order and returns every node with its
// Subcategories cleared. Nested nodes get the ParentID of the node they sit
// under; roots keep their stored ParentID, which may name a category
// outside the forest. BuildHierarchy(Flatten(f)) reproduces f.
func Flatten(forest []models.Category) []models.Category {
	var out []models.Category
	flattenInto(forest, nil, &out)
	return out
}

func flattenInto(nodes []models.Category, parentID *uuid.UUID, out *[]models.Category) {
	for _, n := range nodes {
		children := n.Subcategories
		n.Subcategories = nil
		if parentID != nil {
			n.ParentID = copyID(parentID)
		}
		*out = append(*out, n)
		id := n.ID
		flattenInto(children, &id, out)
	}
}

// AttachParentNames fills ParentName for every category whose parent is
// present in the same list.
func AttachParentNames(categories []models.Category) {
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for i := range categories {
		categories[i].ParentName = ""
		if pid := categories[i].ParentID; pid != nil {
			categories[i].ParentName = names[*pid]
		}
	}
}
