// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"attrcatalog/internal/cache"
	"attrcatalog/internal/models"
)

// AttributeStore is the attribute persistence used by the handlers.
type AttributeStore interface {
	Create(ctx context.Context, a *models.Attribute, categoryIDs []uuid.UUID) (*models.Attribute, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Attribute, error)
	Update(ctx context.Context, id uuid.UUID, upd models.AttributeUpdate) (*models.Attribute, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetCategoryLinks(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) (added, removed int, err error)
	Find(ctx context.Context, q models.AttributeQuery) (*models.AttributePage, error)
}

// Attributes serves /api/attributes.
type Attributes struct {
	store AttributeStore
	tree  *cache.TreeCache
}

// NewAttributes creates the attribute handlers. tree may be nil.
func NewAttributes(store AttributeStore, tree *cache.TreeCache) *Attributes {
	return &Attributes{store: store, tree: tree}
}

type createAttributeRequest struct {
	Name        string               `json:"name" validate:"required,notblank,max=200"`
	Slug        string               `json:"slug" validate:"max=120"`
	Type        models.AttributeType `json:"type" validate:"omitempty,oneof=text number boolean json"`
	CategoryIDs []uuid.UUID          `json:"categoryIds" validate:"max=500"`
}

type createAttributeResponse struct {
	*models.Attribute
	LinksCreated int `json:"linksCreated"`
}

type updateAttributeRequest struct {
	Name *string               `json:"name" validate:"omitempty,notblank,max=200"`
	Slug *string               `json:"slug" validate:"omitempty,max=120"`
	Type *models.AttributeType `json:"type" validate:"omitempty,oneof=text number boolean json"`
}

type setLinksRequest struct {
	CategoryIDs []uuid.UUID `json:"categoryIds" validate:"required,max=500"`
}

type setLinksResponse struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Create handles POST /api/attributes.
func (h *Attributes) Create(w http.ResponseWriter, r *http.Request) {
	var req createAttributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err)
		return
	}

	a, linked, err := h.store.Create(r.Context(), &models.Attribute{
		Name: req.Name,
		Slug: req.Slug,
		Type: req.Type,
	}, req.CategoryIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if linked > 0 {
		h.tree.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusCreated, createAttributeResponse{Attribute: a, LinksCreated: linked})
}

// List handles GET /api/attributes.
func (h *Attributes) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseAttributeQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.store.Find(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/attributes/{id}.
func (h *Attributes) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if a == nil {
		writeError(w, r, models.NotFound("attribute", id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Update handles PATCH /api/attributes/{id}.
func (h *Attributes) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateAttributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.store.Update(r.Context(), id, models.AttributeUpdate{
		Name: req.Name,
		Slug: req.Slug,
		Type: req.Type,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// SetCategories handles PUT /api/attributes/{id}/categories.
func (h *Attributes) SetCategories(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req setLinksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err)
		return
	}

	added, removed, err := h.store.SetCategoryLinks(r.Context(), id, req.CategoryIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if added > 0 || removed > 0 {
		h.tree.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusOK, setLinksResponse{Added: added, Removed: removed})
}

// Delete handles DELETE /api/attributes/{id}.
func (h *Attributes) Delete(w http.ResponseWriter, r *http.Request) {
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
