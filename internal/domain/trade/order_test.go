package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	t.Run("creates draft", func(t *testing.T) {
		order, err := NewOrder("O-0001", PaymentTypeCard, nil)
		require.NoError(t, err)
		assert.Equal(t, OrderStatusDraft, order.Status)
		assert.Equal(t, PaymentMethodCash, order.PaymentType.SaleMethod())
	})

	t.Run("credit order requires customer", func(t *testing.T) {
		_, err := NewOrder("O-0001", PaymentTypeCredit, nil)
		assert.Error(t, err)
	})

	t.Run("unknown payment type", func(t *testing.T) {
		_, err := NewOrder("O-0001", PaymentType("BARTER"), nil)
		assert.Error(t, err)
	})
}

func TestOrder_Items(t *testing.T) {
	order, err := NewOrder("O-0001", PaymentTypeCash, nil)
	require.NoError(t, err)
	productID := uuid.New()

	item, err := order.AddItem(productID, "Tea 100g", 3, dec("120.50"))
	require.NoError(t, err)
	assert.True(t, item.LineTotal.Equal(dec("361.50")))
	assert.Equal(t, order.ID, item.OrderID)

	_, err = order.AddItem(productID, "Tea 100g", 1, dec("120.50"))
	assert.True(t, shared.HasCode(err, "DUPLICATE_PRODUCT"))

	_, err = order.AddItem(uuid.New(), "Sugar", 2, dec("100"))
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(dec("561.50")))

	require.NoError(t, order.RemoveItem(item.ID))
	assert.True(t, order.TotalAmount.Equal(dec("200")))
	assert.Len(t, order.SaleLines(), 1)
}

func TestOrder_Transitions(t *testing.T) {
	t.Run("confirm draft", func(t *testing.T) {
		order, _ := NewOrder("O-0001", PaymentTypeCash, nil)
		_, err := order.AddItem(uuid.New(), "Rice", 1, dec("10"))
		require.NoError(t, err)

		saleID := uuid.New()
		require.NoError(t, order.Confirm(saleID))
		assert.Equal(t, OrderStatusConfirmed, order.Status)
		assert.Equal(t, saleID, *order.SaleID)
		assert.NotNil(t, order.ConfirmedAt)

		err = order.Confirm(uuid.New())
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
		err = order.Void()
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
		_, err = order.AddItem(uuid.New(), "Salt", 1, dec("1"))
		assert.Error(t, err)
	})

	t.Run("empty draft cannot be confirmed", func(t *testing.T) {
		order, _ := NewOrder("O-0002", PaymentTypeCash, nil)
		assert.True(t, shared.HasCode(order.Confirm(uuid.New()), shared.CodeValidation))
		assert.Equal(t, OrderStatusDraft, order.Status)
	})

	t.Run("void draft", func(t *testing.T) {
		order, _ := NewOrder("O-0003", PaymentTypeCash, nil)
		require.NoError(t, order.Void())
		assert.Equal(t, OrderStatusVoid, order.Status)
		assert.Error(t, order.Confirm(uuid.New()))
	})
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	lines := []PurchaseOrderLine{
		{ProductID: uuid.New(), ProductName: "Flour 25kg", Quantity: 4, UnitCost: dec("3000")},
		{ProductID: uuid.New(), ProductName: "Oil 5L", Quantity: 10, UnitCost: dec("1800.25")},
	}

	t.Run("send then receive", func(t *testing.T) {
		po, err := NewPurchaseOrder("PO-0001", uuid.New(), lines)
		require.NoError(t, err)
		assert.True(t, po.TotalAmount.Equal(dec("30002.50")))

		_, err = po.Receive()
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))

		require.NoError(t, po.Send())
		items, err := po.Receive()
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, PurchaseOrderStatusReceived, po.Status)
		assert.Error(t, po.Cancel("late"))
	})

	t.Run("cancel created order", func(t *testing.T) {
		po, err := NewPurchaseOrder("PO-0002", uuid.New(), lines)
		require.NoError(t, err)
		require.NoError(t, po.Cancel("supplier closed"))
		assert.Equal(t, "supplier closed", po.CancelReason)
		assert.Error(t, po.Send())
	})

	t.Run("requires supplier and items", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-0003", uuid.Nil, lines)
		assert.Error(t, err)
		_, err = NewPurchaseOrder("PO-0003", uuid.New(), nil)
		assert.Error(t, err)
	})
}
