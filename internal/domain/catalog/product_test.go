package catalog

import (
	"testing"

	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product", func(t *testing.T) {
		p, err := NewProduct("P-0001", "Basmati Rice 5kg", "", decimal.NewFromInt(1500), decimal.NewFromInt(1200))

		require.NoError(t, err)
		assert.Equal(t, "P-0001", p.PublicID)
		assert.Equal(t, "pcs", p.Unit)
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.Zero(t, p.StockQty)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("P-0001", "", "kg", decimal.Zero, decimal.Zero)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("P-0001", "Salt", "kg", decimal.NewFromInt(-1), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestProduct_Stock(t *testing.T) {
	p, err := NewProduct("P-0002", "Sugar", "kg", decimal.NewFromInt(300), decimal.NewFromInt(250))
	require.NoError(t, err)
	require.NoError(t, p.SetReorderLevel(5))

	t.Run("add and deduct", func(t *testing.T) {
		require.NoError(t, p.AddStock(10))
		require.NoError(t, p.DeductStock(4))
		assert.Equal(t, 6, p.StockQty)
		assert.False(t, p.NeedsReorder())
	})

	t.Run("insufficient stock leaves quantity", func(t *testing.T) {
		err := p.DeductStock(7)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 6, p.StockQty)
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		assert.Error(t, p.AddStock(0))
		assert.Error(t, p.DeductStock(-1))
	})

	t.Run("reorder threshold", func(t *testing.T) {
		require.NoError(t, p.DeductStock(1))
		assert.True(t, p.NeedsReorder())
	})
}
