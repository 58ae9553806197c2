// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"attrcatalog/internal/cache"
	"attrcatalog/internal/models"
)

// CategoryStore is the category persistence used by the handlers.
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id uuid.UUID, upd models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Tree(ctx context.Context) ([]models.TreeNode, error)
	Ancestors(ctx context.Context, id uuid.UUID) ([]models.Category, error)
}

// Categories serves /api/categories.
type Categories struct {
	store CategoryStore
	tree  *cache.TreeCache
}

// NewCategories creates the category handlers. tree may be nil.
func NewCategories(store CategoryStore, tree *cache.TreeCache) *Categories {
	return &Categories{store: store, tree: tree}
}

type createCategoryRequest struct {
	Name     string     `json:"name" validate:"required,notblank,max=200"`
	Slug     string     `json:"slug" validate:"max=120"`
	ParentID *uuid.UUID `json:"parentId"`
}

// optionalUUID tells an absent field apart from an explicit null.
type optionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

// UnmarshalJSON only runs when the key is present.
func (o *optionalUUID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type updateCategoryRequest struct {
	Name     *string      `json:"name" validate:"omitempty,notblank,max=200"`
	Slug     *string      `json:"slug" validate:"omitempty,max=120"`
	ParentID optionalUUID `json:"parentId"`
}

// Create handles POST /api/categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.store.Create(r.Context(), &models.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.tree.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, c)
}

// List handles GET /api/categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Tree handles GET /api/categories/tree.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree.GetOrLoad(r.Context(), h.store.Tree)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tree == nil {
		tree = []models.TreeNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// Get handles GET /api/categories/{id}.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c == nil {
		writeError(w, r, models.NotFound("category", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Ancestors handles GET /api/categories/{id}/ancestors.
func (h *Categories) Ancestors(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.store.Ancestors(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Update handles PATCH /api/categories/{id}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.store.Update(r.Context(), id, models.CategoryUpdate{
		Name:      req.Name,
		Slug:      req.Slug,
		ParentID:  req.ParentID.Value,
		ParentSet: req.ParentID.Set,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.tree.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/categories/{id}.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.tree.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
