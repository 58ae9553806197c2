// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"attrcatalog/internal/database"
	"attrcatalog/internal/metrics"
	"attrcatalog/internal/models"
)

// TreePathStore maintains the category closure table. Its write methods
// take a Querier so they run inside the caller's transaction, which must
// already hold the exclusive tree lock.
type TreePathStore struct {
	db      *sql.DB
	metrics *metrics.Collector
}

// NewTreePathStore returns a new TreePathStore. m may be nil.
func NewTreePathStore(db *sql.DB, m *metrics.Collector) *TreePathStore {
	return &TreePathStore{db: db, metrics: m}
}

// PathsTo returns every closure row whose descendant is id, closest first.
func (s *TreePathStore) PathsTo(ctx context.Context, q database.Querier, id uuid.UUID) ([]models.TreePath, error) {
	return s.pathsFor(ctx, q, []uuid.UUID{id})
}

// PathsForDescendants returns the closure rows of every given category.
func (s *TreePathStore) PathsForDescendants(ctx context.Context, ids []uuid.UUID) ([]models.TreePath, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.pathsFor(ctx, s.db, ids)
}

func (s *TreePathStore) pathsFor(ctx context.Context, q database.Querier, ids []uuid.UUID) ([]models.TreePath, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ancestor_id, descendant_id, depth
		FROM category_tree_paths
		WHERE descendant_id = ANY($1::uuid[])
		ORDER BY descendant_id, depth`, idArray(ids))
	if err != nil {
		return nil, fmt.Errorf("query tree paths: %w", err)
	}
	defer rows.Close()

	var paths []models.TreePath
	for rows.Next() {
		var p models.TreePath
		if err := rows.Scan(&p.AncestorID, &p.DescendantID, &p.Depth); err != nil {
			return nil, fmt.Errorf("scan tree path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// AddPathsForNewCategory writes the self-row of a freshly inserted category
// and, when it has a parent, one row per ancestor of that parent shifted
// one level down.
func (s *TreePathStore) AddPathsForNewCategory(ctx context.Context, q database.Querier, id uuid.UUID, parentID *uuid.UUID) error {
	rows := []models.TreePath{models.SelfPath(id)}
	if parentID != nil {
		parentPaths, err := s.PathsTo(ctx, q, *parentID)
		if err != nil {
			return err
		}
		if len(parentPaths) == 0 {
			return fmt.Errorf("parent category %s has no tree paths", *parentID)
		}
		rows = append(rows, models.ShiftPaths(id, parentPaths)...)
	}
	return s.insert(ctx, q, rows)
}

// RebuildSubtreePaths recomputes the ancestor rows of id under newParentID
// (nil for a root) and then of every category below it, parents before
// children. It is idempotent.
func (s *TreePathStore) RebuildSubtreePaths(ctx context.Context, q database.Querier, id uuid.UUID, newParentID *uuid.UUID) error {
	if err := s.relink(ctx, q, id, newParentID); err != nil {
		return err
	}

	visited := map[uuid.UUID]struct{}{id: {}}
	frontier := []uuid.UUID{id}
	for len(frontier) > 0 {
		children, err := s.childrenOf(ctx, q, frontier)
		if err != nil {
			return err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if _, seen := visited[c.id]; seen {
				return fmt.Errorf("category %s appears twice below %s", c.id, id)
			}
			visited[c.id] = struct{}{}
			parent := c.parentID
			if err := s.relink(ctx, q, c.id, &parent); err != nil {
				return err
			}
			frontier = append(frontier, c.id)
		}
	}
	return nil
}

// relink replaces the ancestor rows of a single category. The parent's
// rows must already be correct.
func (s *TreePathStore) relink(ctx context.Context, q database.Querier, id uuid.UUID, parentID *uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `
		DELETE FROM category_tree_paths
		WHERE descendant_id = $1 AND ancestor_id <> $1`, id); err != nil {
		return fmt.Errorf("strip tree paths of %s: %w", id, err)
	}
	return s.AddPathsForNewCategory(ctx, q, id, parentID)
}

type childRef struct {
	id       uuid.UUID
	parentID uuid.UUID
}

func (s *TreePathStore) childrenOf(ctx context.Context, q database.Querier, parents []uuid.UUID) ([]childRef, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, parent_id FROM categories
		WHERE parent_id = ANY($1::uuid[])
		ORDER BY name, id`, idArray(parents))
	if err != nil {
		return nil, fmt.Errorf("query child categories: %w", err)
	}
	defer rows.Close()

	var out []childRef
	for rows.Next() {
		var c childRef
		if err := rows.Scan(&c.id, &c.parentID); err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// insert writes rows, leaving existing pairs untouched.
func (s *TreePathStore) insert(ctx context.Context, q database.Querier, rows []models.TreePath) error {
	if len(rows) == 0 {
		return nil
	}
	args := make([]any, 0, len(rows)*3)
	for _, r := range rows {
		args = append(args, r.AncestorID, r.DescendantID, r.Depth)
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO category_tree_paths (ancestor_id, descendant_id, depth)
		VALUES `+placeholders(len(rows), 3)+`
		ON CONFLICT (ancestor_id, descendant_id) DO NOTHING`, args...)
	if err != nil {
		return fmt.Errorf("insert tree paths: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.metrics.AddClosureRows(n)
	}
	return nil
}
