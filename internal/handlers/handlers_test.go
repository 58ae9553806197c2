// handlers_test.go provides in-memory fakes of the stores so handler
// behaviour can be tested without PostgreSQL.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"attrcatalog/internal/models"
)

type fakeCategories struct {
	created   *models.Category
	update    models.CategoryUpdate
	err       error
	found     *models.Category
	tree      []models.TreeNode
	treeCalls int
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = c
	out := *c
	out.ID = uuid.New()
	out.IsLeaf = true
	return &out, nil
}

func (f *fakeCategories) FindByID(context.Context, uuid.UUID) (*models.Category, error) {
	return f.found, f.err
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	return []models.Category{}, f.err
}

func (f *fakeCategories) Update(_ context.Context, id uuid.UUID, upd models.CategoryUpdate) (*models.Category, error) {
	f.update = upd
	if f.err != nil {
		return nil, f.err
	}
	return &models.Category{ID: id}, nil
}

func (f *fakeCategories) Delete(context.Context, uuid.UUID) error { return f.err }

func (f *fakeCategories) Tree(context.Context) ([]models.TreeNode, error) {
	f.treeCalls++
	return f.tree, f.err
}

func (f *fakeCategories) Ancestors(context.Context, uuid.UUID) ([]models.Category, error) {
	return []models.Category{}, f.err
}

type fakeAttributes struct {
	query       models.AttributeQuery
	createdWith []uuid.UUID
	linkIDs     []uuid.UUID
	err         error
}

func (f *fakeAttributes) Create(_ context.Context, a *models.Attribute, ids []uuid.UUID) (*models.Attribute, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.createdWith = ids
	out := *a
	out.ID = uuid.New()
	return &out, len(ids), nil
}

func (f *fakeAttributes) FindByID(context.Context, uuid.UUID) (*models.Attribute, error) {
	return nil, f.err
}

func (f *fakeAttributes) Update(_ context.Context, id uuid.UUID, _ models.AttributeUpdate) (*models.Attribute, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Attribute{ID: id}, nil
}

func (f *fakeAttributes) Delete(context.Context, uuid.UUID) error { return f.err }

func (f *fakeAttributes) SetCategoryLinks(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (int, int, error) {
	f.linkIDs = ids
	return len(ids), 0, f.err
}

func (f *fakeAttributes) Find(_ context.Context, q models.AttributeQuery) (*models.AttributePage, error) {
	f.query = q
	if f.err != nil {
		return nil, f.err
	}
	return &models.AttributePage{Items: []models.AttributeListItem{}, Page: q.Page, PageSize: q.PageSize}, nil
}

type fakeProducts struct {
	input  models.ProductInput
	update models.ProductUpdate
	query  models.ProductQuery
	err    error
}

func (f *fakeProducts) Create(_ context.Context, in models.ProductInput) (*models.Product, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: uuid.New(), Name: in.Name, CategoryID: in.CategoryID}, nil
}

func (f *fakeProducts) FindByID(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, f.err
}

func (f *fakeProducts) List(_ context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	f.query = q
	return &models.ProductPage{Items: []models.Product{}}, f.err
}

func (f *fakeProducts) Update(_ context.Context, id uuid.UUID, upd models.ProductUpdate) (*models.Product, error) {
	f.update = upd
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: id}, nil
}

func (f *fakeProducts) Delete(context.Context, uuid.UUID) error { return f.err }

// mount wires handlers onto a router shaped like the real one.
func mount(c *Categories, a *Attributes, p *Products) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if c != nil {
		r.Route("/api/categories", func(r chi.Router) {
			r.Post("/", c.Create)
			r.Get("/", c.List)
			r.Get("/tree", c.Tree)
			r.Get("/{id}", c.Get)
			r.Get("/{id}/ancestors", c.Ancestors)
			r.Patch("/{id}", c.Update)
			r.Delete("/{id}", c.Delete)
		})
	}
	if a != nil {
		r.Route("/api/attributes", func(r chi.Router) {
			r.Post("/", a.Create)
			r.Get("/", a.List)
			r.Get("/{id}", a.Get)
			r.Patch("/{id}", a.Update)
			r.Put("/{id}/categories", a.SetCategories)
			r.Delete("/{id}", a.Delete)
		})
	}
	if p != nil {
		r.Route("/api/products", func(r chi.Router) {
			r.Post("/", p.Create)
			r.Get("/", p.List)
			r.Get("/{id}", p.Get)
			r.Patch("/{id}", p.Update)
			r.Delete("/{id}", p.Delete)
		})
	}
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}
