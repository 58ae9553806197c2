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

// ProductStore is the product persistence used by the handlers.
type ProductStore interface {
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
	Update(ctx context.Context, id uuid.UUID, upd models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Products serves /api/products.
type Products struct {
	store ProductStore
	tree  *cache.TreeCache
}

// NewProducts creates the product handlers. tree may be nil.
func NewProducts(store ProductStore, tree *cache.TreeCache) *Products {
	return &Products{store: store, tree: tree}
}

type createProductRequest struct {
	Name            string                       `json:"name" validate:"required,notblank,max=300"`
	CategoryID      *uuid.UUID                   `json:"categoryId" validate:"required"`
	AttributeValues []models.AttributeValueInput `json:"attributeValues" validate:"max=500"`
}

type updateProductRequest struct {
	Name            *string                      `json:"name" validate:"omitempty,notblank,max=300"`
	CategoryID      *uuid.UUID                   `json:"categoryId"`
	AttributeValues []models.AttributeValueInput `json:"attributeValues" validate:"max=500"`
}

// Create handles POST /api/products.
func (h *Products) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.store.Create(r.Context(), models.ProductInput{
		Name:            req.Name,
		CategoryID:      *req.CategoryID,
		AttributeValues: req.AttributeValues,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.tree.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /api/products.
func (h *Products) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.store.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/products/{id}.
func (h *Products) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, models.NotFound("product", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PATCH /api/products/{id}. Omitting attributeValues keeps
// the stored values; an empty list clears them.
func (h *Products) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.store.Update(r.Context(), id, models.ProductUpdate{
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		AttributeValues: req.AttributeValues,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.CategoryID != nil {
		h.tree.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/products/{id}.
func (h *Products) Delete(w http.ResponseWriter, r *http.Request) {
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
