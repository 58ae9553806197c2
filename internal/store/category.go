// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"attrcatalog/internal/database"
	"attrcatalog/internal/models"
	"attrcatalog/internal/slug"
)

// CategoryStore manages categories and keeps their closure rows in step.
type CategoryStore struct {
	db    *sql.DB
	paths *TreePathStore
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB, paths *TreePathStore) *CategoryStore {
	return &CategoryStore{db: db, paths: paths}
}

const categoryColumns = `id, name, slug, parent_id, is_leaf, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.IsLeaf, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return findCategory(ctx, s.db, id, false)
}

// FindBySlug retrieves the category with the given slug under parentID
// (nil for roots). Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, categorySlug string, parentID *uuid.UUID) (*models.Category, error) {
	var row *sql.Row
	if parentID == nil {
		row = s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1 AND parent_id IS NULL`, categorySlug)
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1 AND parent_id = $2`, categorySlug, *parentID)
	}
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

func findCategory(ctx context.Context, q database.Querier, id uuid.UUID, forUpdate bool) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanCategory(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category under c.ParentID and writes its closure
// rows. The parent stops being a leaf.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
	if !slug.Valid(c.Slug) {
		return nil, models.Invalid("invalid category slug", c.Slug)
	}

	var created *models.Category
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockTree(ctx, tx); err != nil {
			return err
		}
		if c.ParentID != nil {
			if err := s.checkParent(ctx, tx, *c.ParentID); err != nil {
				return err
			}
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO categories (name, slug, parent_id, is_leaf)
			VALUES ($1, $2, $3, TRUE)
			RETURNING `+categoryColumns,
			c.Name, c.Slug, c.ParentID,
		)
		var err error
		created, err = scanCategory(row)
		if err != nil {
			if isUniqueViolation(err) {
				return models.Conflict("category slug %q already exists under this parent", c.Slug)
			}
			return fmt.Errorf("create category: %w", err)
		}

		if c.ParentID != nil {
			if err := recomputeLeaf(ctx, tx, *c.ParentID); err != nil {
				return err
			}
		}
		return s.paths.AddPathsForNewCategory(ctx, tx, created.ID, created.ParentID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// checkParent verifies that parentID exists and may receive children.
func (s *CategoryStore) checkParent(ctx context.Context, q database.Querier, parentID uuid.UUID) error {
	parent, err := findCategory(ctx, q, parentID, true)
	if err != nil {
		return err
	}
	if parent == nil {
		return models.Invalid("parent category does not exist", parentID.String())
	}
	var products int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`, parentID,
	).Scan(&products); err != nil {
		return fmt.Errorf("count parent products: %w", err)
	}
	if products > 0 {
		return models.Invalid("parent category holds products and must stay a leaf", parentID.String())
	}
	return nil
}

// Update renames and/or re-parents a category. A parent change rebuilds
// the closure rows of the whole moved subtree and recomputes the leaf
// flag of both the old and the new parent.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, upd models.CategoryUpdate) (*models.Category, error) {
	if upd.Slug != nil && !slug.Valid(*upd.Slug) {
		return nil, models.Invalid("invalid category slug", *upd.Slug)
	}

	var updated *models.Category
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockTree(ctx, tx); err != nil {
			return err
		}
		cur, err := findCategory(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if cur == nil {
			return models.NotFound("category", id)
		}

		name, categorySlug := cur.Name, cur.Slug
		if upd.Name != nil {
			name = *upd.Name
		}
		if upd.Slug != nil {
			categorySlug = *upd.Slug
		}

		oldParent := cur.ParentID
		newParent := cur.ParentID
		moved := upd.ParentSet && !sameParent(cur.ParentID, upd.ParentID)
		if moved {
			newParent = upd.ParentID
			if newParent != nil {
				if err := s.checkMoveTarget(ctx, tx, id, *newParent); err != nil {
					return err
				}
			}
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE categories SET name = $1, slug = $2, parent_id = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING `+categoryColumns,
			name, categorySlug, newParent, id,
		)
		updated, err = scanCategory(row)
		if err != nil {
			if isUniqueViolation(err) {
				return models.Conflict("category slug %q already exists under this parent", categorySlug)
			}
			return fmt.Errorf("update category: %w", err)
		}

		if !moved {
			return nil
		}
		for _, p := range []*uuid.UUID{oldParent, newParent} {
			if p == nil {
				continue
			}
			if err := recomputeLeaf(ctx, tx, *p); err != nil {
				return err
			}
		}
		return s.paths.RebuildSubtreePaths(ctx, tx, id, newParent)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkMoveTarget rejects moving id under itself or one of its descendants,
// and under a parent that may not receive children.
func (s *CategoryStore) checkMoveTarget(ctx context.Context, q database.Querier, id, parentID uuid.UUID) error {
	if parentID == id {
		return models.Invalid("category cannot be its own parent", id.String())
	}
	var cycle bool
	if err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM category_tree_paths
			WHERE ancestor_id = $1 AND descendant_id = $2
		)`, id, parentID,
	).Scan(&cycle); err != nil {
		return fmt.Errorf("check category cycle: %w", err)
	}
	if cycle {
		return models.Invalid("category cannot move below its own descendant", parentID.String())
	}
	return s.checkParent(ctx, q, parentID)
}

// RebuildPaths recomputes the closure rows of id and everything below it
// from the parent links. It repairs trees loaded outside the store.
func (s *CategoryStore) RebuildPaths(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockTree(ctx, tx); err != nil {
			return err
		}
		cur, err := findCategory(ctx, tx, id, false)
		if err != nil {
			return err
		}
		if cur == nil {
			return models.NotFound("category", id)
		}
		return s.paths.RebuildSubtreePaths(ctx, tx, id, cur.ParentID)
	})
}

// Delete removes a category. Categories with children, products or direct
// attribute links are refused. Closure rows go with the category.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockTree(ctx, tx); err != nil {
			return err
		}
		cur, err := findCategory(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if cur == nil {
			return models.NotFound("category", id)
		}

		var children, products, links int
		if err := tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM categories WHERE parent_id = $1),
				(SELECT COUNT(*) FROM products WHERE category_id = $1),
				(SELECT COUNT(*) FROM category_attribute_links WHERE category_id = $1)`, id,
		).Scan(&children, &products, &links); err != nil {
			return fmt.Errorf("count category dependents: %w", err)
		}
		switch {
		case children > 0:
			return models.Conflict("category %s has %d child categories", id, children)
		case products > 0:
			return models.Conflict("category %s holds %d products", id, products)
		case links > 0:
			return models.Conflict("category %s has %d direct attribute links", id, links)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			if isForeignKeyViolation(err) {
				return models.Conflict("category %s is still referenced", id)
			}
			return fmt.Errorf("delete category: %w", err)
		}
		if cur.ParentID != nil {
			return recomputeLeaf(ctx, tx, *cur.ParentID)
		}
		return nil
	})
}

// Ancestors returns the ancestors of id, root first, excluding id itself.
func (s *CategoryStore) Ancestors(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, models.NotFound("category", id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.parent_id, c.is_leaf, c.created_at, c.updated_at
		FROM category_tree_paths p
		JOIN categories c ON c.id = p.ancestor_id
		WHERE p.descendant_id = $1 AND p.depth > 0
		ORDER BY p.depth DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("list category ancestors: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Tree returns the whole category tree with per-node counts.
func (s *CategoryStore) Tree(ctx context.Context) ([]models.TreeNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.parent_id, c.is_leaf,
		       (SELECT COUNT(*) FROM category_attribute_links l WHERE l.category_id = c.id),
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
		FROM categories c`)
	if err != nil {
		return nil, fmt.Errorf("load category tree: %w", err)
	}
	defer rows.Close()

	var flat []models.TreeNode
	for rows.Next() {
		var n models.TreeNode
		if err := rows.Scan(
			&n.ID, &n.Name, &n.Slug, &n.ParentID, &n.IsLeaf,
			&n.Counts.AttributesDirect, &n.Counts.Products,
		); err != nil {
			return nil, fmt.Errorf("scan tree node: %w", err)
		}
		flat = append(flat, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

// BuildTree nests a flat node list. Siblings are ordered by name. Nodes
// whose parent is missing from the list become roots.
func BuildTree(flat []models.TreeNode) []models.TreeNode {
	sort.SliceStable(flat, func(i, j int) bool {
		if flat[i].Name != flat[j].Name {
			return flat[i].Name < flat[j].Name
		}
		return flat[i].ID.String() < flat[j].ID.String()
	})

	present := make(map[uuid.UUID]struct{}, len(flat))
	for _, n := range flat {
		present[n.ID] = struct{}{}
	}

	children := make(map[uuid.UUID][]int, len(flat))
	var roots []int
	for i, n := range flat {
		if n.ParentID != nil {
			if _, ok := present[*n.ParentID]; ok && *n.ParentID != n.ID {
				children[*n.ParentID] = append(children[*n.ParentID], i)
				continue
			}
		}
		roots = append(roots, i)
	}

	visited := make(map[uuid.UUID]struct{}, len(flat))
	var build func(idx []int) []models.TreeNode
	build = func(idx []int) []models.TreeNode {
		out := make([]models.TreeNode, 0, len(idx))
		for _, i := range idx {
			n := flat[i]
			if _, seen := visited[n.ID]; seen {
				continue
			}
			visited[n.ID] = struct{}{}
			n.Children = build(children[n.ID])
			out = append(out, n)
		}
		return out
	}
	return build(roots)
}

// recomputeLeaf sets is_leaf from the presence of children.
func recomputeLeaf(ctx context.Context, q database.Querier, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		UPDATE categories
		SET is_leaf = NOT EXISTS (SELECT 1 FROM categories ch WHERE ch.parent_id = $1),
		    updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("recompute leaf flag of %s: %w", id, err)
	}
	return nil
}

// sameParent compares two *uuid.UUID for equality (both nil or same value).
func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
