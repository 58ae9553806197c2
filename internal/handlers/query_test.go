package handlers

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrcatalog/internal/models"
)

func TestListValues(t *testing.T) {
	q := url.Values{"ids": {"a,b", " c ", ",,", "d"}}
	assert.Equal(t, []string{"a", "b", "c", "d"}, listValues(q, "ids"))
	assert.Nil(t, listValues(q, "missing"))
}

func TestParseAttributeQuery(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("defaults", func(t *testing.T) {
		q, err := parseAttributeQuery(url.Values{})
		require.NoError(t, err)
		assert.Empty(t, q.CategoryIDs)
		assert.True(t, q.LinkTypes.Empty())
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, models.DefaultPageSize, q.PageSize)
		assert.Equal(t, models.SortByName, q.Sort)
	})

	t.Run("repeated and csv ids are merged and deduplicated", func(t *testing.T) {
		q, err := parseAttributeQuery(url.Values{
			"categoryIds": {a.String() + "," + b.String(), a.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, b}, q.CategoryIDs)
	})

	t.Run("every malformed id is reported", func(t *testing.T) {
		_, err := parseAttributeQuery(url.Values{"categoryIds": {"x," + a.String() + ",y"}})
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []string{"x", "y"}, ve.IDs)
	})

	t.Run("not-applicable is exclusive", func(t *testing.T) {
		q, err := parseAttributeQuery(url.Values{"linkType": {"direct,not-applicable"}})
		require.NoError(t, err)
		assert.Equal(t, models.LinkFilter{NotApplicable: true}, q.LinkTypes)
	})

	t.Run("unknown link type", func(t *testing.T) {
		_, err := parseAttributeQuery(url.Values{"linkType": {"direct,sideways"}})
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []string{"sideways"}, ve.IDs)
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, err := parseAttributeQuery(url.Values{"sort": {"popularity"}})
		assert.Error(t, err)
	})

	t.Run("page must be an integer", func(t *testing.T) {
		_, err := parseAttributeQuery(url.Values{"page": {"two"}})
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "page must be an integer", ve.Message)
	})

	t.Run("page size is clamped", func(t *testing.T) {
		q, err := parseAttributeQuery(url.Values{"pageSize": {"5000"}, "page": {"-3"}})
		require.NoError(t, err)
		assert.Equal(t, models.MaxPageSize, q.PageSize)
		assert.Equal(t, 1, q.Page)
	})
}
