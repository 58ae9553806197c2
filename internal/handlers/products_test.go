package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrcatalog/internal/models"
)

func TestProductCreate(t *testing.T) {
	fake := &fakeProducts{}
	h := mount(nil, nil, NewProducts(fake, nil))
	cat, attr := uuid.New(), uuid.New()

	body := `{"name":"Oat milk","categoryId":"` + cat.String() + `","attributeValues":[` +
		`{"attributeId":"` + attr.String() + `","value":3.5},` +
		`{"attributeSlug":"brand","value":"Oatly"}]}`
	rr := do(t, h, http.MethodPost, "/api/products/", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	assert.Equal(t, "Oat milk", fake.input.Name)
	assert.Equal(t, cat, fake.input.CategoryID)
	require.Len(t, fake.input.AttributeValues, 2)
	assert.Equal(t, attr, *fake.input.AttributeValues[0].AttributeID)
	assert.JSONEq(t, `3.5`, string(fake.input.AttributeValues[0].Value))
	assert.Equal(t, "brand", fake.input.AttributeValues[1].AttributeSlug)
}

func TestProductCreateRequiresCategory(t *testing.T) {
	h := mount(nil, nil, NewProducts(&fakeProducts{}, nil))

	rr := do(t, h, http.MethodPost, "/api/products/", `{"name":"Oat milk"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "categoryId is required", decodeError(t, rr).Error)
}

func TestProductCreateInapplicable(t *testing.T) {
	attr := uuid.NewString()
	fake := &fakeProducts{err: models.Invalid("attributes are not applicable to the category", attr)}
	h := mount(nil, nil, NewProducts(fake, nil))

	rr := do(t, h, http.MethodPost, "/api/products/", `{"name":"Oat milk","categoryId":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{attr}, decodeError(t, rr).IDs)
}

func TestProductUpdateValueSemantics(t *testing.T) {
	id := uuid.New()

	fake := &fakeProducts{}
	h := mount(nil, nil, NewProducts(fake, nil))
	rr := do(t, h, http.MethodPatch, "/api/products/"+id.String(), `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Nil(t, fake.update.AttributeValues, "omitted values must stay nil")

	rr = do(t, h, http.MethodPatch, "/api/products/"+id.String(), `{"attributeValues":[]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotNil(t, fake.update.AttributeValues, "an empty list clears values")
	assert.Empty(t, fake.update.AttributeValues)
}

func TestProductListParsesQuery(t *testing.T) {
	fake := &fakeProducts{}
	h := mount(nil, nil, NewProducts(fake, nil))
	cat := uuid.New()

	rr := do(t, h, http.MethodGet, "/api/products/?q=milk&categoryId="+cat.String()+"&pageSize=10", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "milk", fake.query.Q)
	require.NotNil(t, fake.query.CategoryID)
	assert.Equal(t, cat, *fake.query.CategoryID)
	assert.Equal(t, 10, fake.query.PageSize)
	assert.Equal(t, 1, fake.query.Page)

	rr = do(t, h, http.MethodGet, "/api/products/?categoryId=x", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProductDeleteMissing(t *testing.T) {
	id := uuid.New()
	fake := &fakeProducts{err: models.NotFound("product", id)}
	h := mount(nil, nil, NewProducts(fake, nil))

	rr := do(t, h, http.MethodDelete, "/api/products/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
