package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScope(t *testing.T) {
	scope, db := NewScope(t)
	require.NotNil(t, db)

	item, err := inventory.NewInventoryItem("FLT-001", "Filter", "pcs")
	require.NoError(t, err)

	err = scope.Execute(context.Background(), func(repos uow.Repositories) error {
		return repos.InventoryItems().Save(context.Background(), item)
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("inventory_items").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
	assert.Equal(t, NewTestUUID("supplier"), TestSupplierID())
}

func TestDec(t *testing.T) {
	assert.True(t, Dec("2.20").Equal(decimal.NewFromFloat(2.2)))
	assert.Panics(t, func() { Dec("abc") })
}

func TestAPIClient(t *testing.T) {
	engine := gin.New()
	v1 := engine.Group("/api/v1")
	v1.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "ERR_BAD_REQUEST", "message": err.Error()},
			})
			return
		}
		body["key"] = c.GetHeader("Idempotency-Key")
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": body})
	})
	v1.GET("/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    []string{"a"},
			"meta":    gin.H{"total": 1, "page": 1, "page_size": 20},
		})
	})

	client := NewAPIClient(t, engine, "/api/v1")

	t.Run("decodes data and sends headers", func(t *testing.T) {
		var got map[string]string
		status, env := client.Do(http.MethodPost, "/echo", map[string]string{"name": "x"}, "Idempotency-Key", "k-1")
		client.Decode(status, http.StatusCreated, env, &got)
		assert.Equal(t, "x", got["name"])
		assert.Equal(t, "k-1", got["key"])
	})

	t.Run("raw string body", func(t *testing.T) {
		status, env := client.Do(http.MethodPost, "/echo", "{not json")
		AssertErrorEnvelope(t, status, env, http.StatusBadRequest, "ERR_BAD_REQUEST")
	})

	t.Run("list meta", func(t *testing.T) {
		_, env := client.Do(http.MethodGet, "/items", nil)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
		assert.Equal(t, 20, env.Meta.PageSize)
	})
}
