// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seed loads the demo catalog. Running it again converges on the
// same rows instead of duplicating them.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"attrcatalog/internal/models"
)

// CategoryStore is the category persistence the seeder writes through.
type CategoryStore interface {
	FindBySlug(ctx context.Context, slug string, parentID *uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, upd models.CategoryUpdate) (*models.Category, error)
	RebuildPaths(ctx context.Context, id uuid.UUID) error
}

// AttributeStore is the attribute persistence the seeder writes through.
type AttributeStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.Attribute, error)
	Create(ctx context.Context, a *models.Attribute, categoryIDs []uuid.UUID) (*models.Attribute, int, error)
	Update(ctx context.Context, id uuid.UUID, upd models.AttributeUpdate) (*models.Attribute, error)
	ResetCategoryLinks(ctx context.Context, attributeIDs []uuid.UUID, links []models.CategoryAttributeLink) error
}

// Seeder upserts a category tree and an attribute set.
type Seeder struct {
	categories CategoryStore
	attributes AttributeStore
}

// New creates a seeder writing through the given stores.
func New(categories CategoryStore, attributes AttributeStore) *Seeder {
	return &Seeder{categories: categories, attributes: attributes}
}

// Run seeds the demo catalog.
func (s *Seeder) Run(ctx context.Context) error {
	return s.Load(ctx, Categories, Attributes)
}

// Load upserts tree and attrs. Categories are matched by slug under their
// parent and attributes by slug. The links of every listed attribute are
// replaced by the listed ones, so global attributes lose stray links.
func (s *Seeder) Load(ctx context.Context, tree []CategoryDef, attrs []AttributeDef) error {
	start := time.Now()

	ids := make(map[string]uuid.UUID)
	for _, root := range tree {
		id, err := s.upsertCategory(ctx, root, nil, ids)
		if err != nil {
			return err
		}
		if err := s.categories.RebuildPaths(ctx, id); err != nil {
			return fmt.Errorf("seed rebuild paths of %s: %w", root.Slug, err)
		}
	}
	slog.Info("seeded categories", "count", len(ids), "elapsed", time.Since(start))

	attrIDs := make([]uuid.UUID, 0, len(attrs))
	var links []models.CategoryAttributeLink
	for _, def := range attrs {
		id, err := s.upsertAttribute(ctx, def)
		if err != nil {
			return err
		}
		attrIDs = append(attrIDs, id)
		for _, catSlug := range def.LinkTo {
			catID, ok := ids[catSlug]
			if !ok {
				slog.Warn("seed link target not found", "attribute", def.Slug, "category", catSlug)
				continue
			}
			links = append(links, models.CategoryAttributeLink{CategoryID: catID, AttributeID: id})
		}
	}

	if err := s.attributes.ResetCategoryLinks(ctx, attrIDs, links); err != nil {
		return fmt.Errorf("seed attribute links: %w", err)
	}
	slog.Info("seeded attributes",
		"count", len(attrIDs),
		"links", len(links),
		"elapsed", time.Since(start),
	)
	return nil
}

func (s *Seeder) upsertCategory(ctx context.Context, def CategoryDef, parentID *uuid.UUID, ids map[string]uuid.UUID) (uuid.UUID, error) {
	c, err := s.categories.FindBySlug(ctx, def.Slug, parentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed find category %s: %w", def.Slug, err)
	}

	switch {
	case c == nil:
		c, err = s.categories.Create(ctx, &models.Category{Name: def.Name, Slug: def.Slug, ParentID: parentID})
	case c.Name != def.Name:
		name := def.Name
		c, err = s.categories.Update(ctx, c.ID, models.CategoryUpdate{Name: &name})
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed category %s: %w", def.Slug, err)
	}
	ids[def.Slug] = c.ID

	for _, child := range def.Children {
		id := c.ID
		if _, err := s.upsertCategory(ctx, child, &id, ids); err != nil {
			return uuid.Nil, err
		}
	}
	return c.ID, nil
}

func (s *Seeder) upsertAttribute(ctx context.Context, def AttributeDef) (uuid.UUID, error) {
	a, err := s.attributes.FindBySlug(ctx, def.Slug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed find attribute %s: %w", def.Slug, err)
	}

	switch {
	case a == nil:
		a, _, err = s.attributes.Create(ctx, &models.Attribute{Name: def.Name, Slug: def.Slug, Type: def.Type}, nil)
	case a.Name != def.Name || a.Type != def.Type:
		name, typ := def.Name, def.Type
		a, err = s.attributes.Update(ctx, a.ID, models.AttributeUpdate{Name: &name, Type: &typ})
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed attribute %s: %w", def.Slug, err)
	}
	return a.ID, nil
}
