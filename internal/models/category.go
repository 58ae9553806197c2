// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the product category tree. Only leaf categories
// may hold products or be the target of a direct attribute link.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parentId"`
	IsLeaf    bool       `json:"isLeaf"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryUpdate carries the mutable fields of a category. Nil fields are
// left untouched. ParentSet distinguishes "move to root" (ParentSet with a
// nil ParentID) from "keep the current parent".
type CategoryUpdate struct {
	Name      *string
	Slug      *string
	ParentID  *uuid.UUID
	ParentSet bool
}

// TreeCounts holds the per-node aggregates of the category tree read model.
type TreeCounts struct {
	AttributesDirect int `json:"attributesDirect"`
	Products         int `json:"products"`
}

// TreeNode is one node of the nested category tree read model.
type TreeNode struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parentId"`
	IsLeaf   bool       `json:"isLeaf"`
	Counts   TreeCounts `json:"counts"`
	Children []TreeNode `json:"children"`
}

// TreePath is a closure-table row. Depth 0 is the self-row, 1 the direct
// parent, N the N-th ancestor.
type TreePath struct {
	AncestorID   uuid.UUID `json:"ancestorId"`
	DescendantID uuid.UUID `json:"descendantId"`
	Depth        int       `json:"depth"`
}

// SelfPath returns the depth-0 row for a category.
func SelfPath(id uuid.UUID) TreePath {
	return TreePath{AncestorID: id, DescendantID: id, Depth: 0}
}

// ShiftPaths derives the ancestor rows of child from the rows in which its
// parent is the descendant: every (A, parent, d) becomes (A, child, d+1).
// The parent's own self-row yields (parent, child, 1).
func ShiftPaths(child uuid.UUID, parentPaths []TreePath) []TreePath {
	rows := make([]TreePath, 0, len(parentPaths))
	for _, p := range parentPaths {
		rows = append(rows, TreePath{
			AncestorID:   p.AncestorID,
			DescendantID: child,
			Depth:        p.Depth + 1,
		})
	}
	return rows
}
