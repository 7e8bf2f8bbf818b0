package trade_test

import (
	"context"
	"testing"

	"github.com/grocer/backoffice/internal/application/trade"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	tradedomain "github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_DraftEditing(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	rice := s.store.SeedProduct(t, "Rice 2kg", 120, 10)
	sugar := s.store.SeedProduct(t, "Sugar 1kg", 90, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CASH",
		Items:       []trade.LineInput{line(rice.ID, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "O-0001", order.PublicID)
	assert.Equal(t, string(tradedomain.OrderStatusDraft), order.Status)

	special := decimal.NewFromInt(80)
	order, err = s.orders.AddItem(ctx, order.ID, trade.AddOrderItemRequest{
		LineInput: trade.LineInput{ProductID: sugar.ID, Quantity: 1, UnitPrice: &special},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.True(t, decimal.NewFromInt(320).Equal(order.TotalAmount))

	order, err = s.orders.RemoveItem(ctx, order.ID, order.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, decimal.NewFromInt(80).Equal(order.TotalAmount))

	stored, err := s.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, 10, s.store.Stock(t, rice), "drafts do not reserve stock")
}

func TestOrderService_Confirm_CreditOrder(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	customer := s.store.SeedCustomer(t, "Amina Stores", 1000)
	rice := s.store.SeedProduct(t, "Rice 2kg", 120, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CREDIT",
		CustomerID:  &customer.ID,
		Items:       []trade.LineInput{line(rice.ID, 4)},
	})
	require.NoError(t, err)

	confirmed, err := s.orders.Confirm(ctx, order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, string(tradedomain.OrderStatusConfirmed), confirmed.Status)
	require.NotNil(t, confirmed.SaleID)
	assert.NotNil(t, confirmed.ConfirmedAt)

	sale, err := s.sales.GetByID(ctx, *confirmed.SaleID)
	require.NoError(t, err)
	assert.Equal(t, &order.ID, sale.OrderID)
	assert.Equal(t, string(tradedomain.PaymentMethodCredit), sale.PaymentMethod)
	assert.True(t, decimal.NewFromInt(480).Equal(sale.TotalRevenue))

	assert.Equal(t, 6, s.store.Stock(t, rice))
	assert.True(t, decimal.NewFromInt(480).Equal(s.store.Balance(t, customer)))

	events, err := s.store.Repos().ChargeEvents().FindBySource(ctx, shared.EntityTypeOrder, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, partner.ChargeCauseOrderConfirm, events[0].Cause)

	_, err = s.orders.Confirm(ctx, order.ID, nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
}

func TestOrderService_Confirm_CardOrderIsPaidSale(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	rice := s.store.SeedProduct(t, "Rice 2kg", 120, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CARD",
		Items:       []trade.LineInput{line(rice.ID, 1)},
	})
	require.NoError(t, err)

	confirmed, err := s.orders.Confirm(ctx, order.ID, nil)
	require.NoError(t, err)

	sale, err := s.sales.GetByID(ctx, *confirmed.SaleID)
	require.NoError(t, err)
	assert.Equal(t, string(tradedomain.PaymentMethodCash), sale.PaymentMethod)
	assert.Equal(t, string(tradedomain.PaymentStatusPaid), sale.PaymentStatus)
}

func TestOrderService_Confirm_OverLimitLeavesDraft(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	customer := s.store.SeedCustomer(t, "Amina Stores", 300)
	rice := s.store.SeedProduct(t, "Rice 2kg", 120, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CREDIT",
		CustomerID:  &customer.ID,
		Items:       []trade.LineInput{line(rice.ID, 3)},
	})
	require.NoError(t, err)

	_, err = s.orders.Confirm(ctx, order.ID, nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeCreditLimitExceeded))

	stored, err := s.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(tradedomain.OrderStatusDraft), stored.Status)
	assert.Nil(t, stored.SaleID)
	assert.Equal(t, 10, s.store.Stock(t, rice))
	assert.True(t, s.store.Balance(t, customer).IsZero())
}

func TestOrderService_Confirm_EmptyOrder(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{PaymentType: "CASH"})
	require.NoError(t, err)

	_, err = s.orders.Confirm(ctx, order.ID, nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestOrderService_Void(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	rice := s.store.SeedProduct(t, "Rice 2kg", 120, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CASH",
		Items:       []trade.LineInput{line(rice.ID, 1)},
	})
	require.NoError(t, err)

	voided, err := s.orders.Void(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(tradedomain.OrderStatusVoid), voided.Status)

	_, err = s.orders.Confirm(ctx, order.ID, nil)
	assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
}

func TestOrderService_Delete_ConfirmedOrderTakesSaleAlong(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	customer := s.store.SeedCustomer(t, "Amina Stores", 1000)
	rice := s.store.SeedProduct(t, "Rice 2kg", 100, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CREDIT",
		CustomerID:  &customer.ID,
		Items:       []trade.LineInput{line(rice.ID, 5)},
	})
	require.NoError(t, err)
	confirmed, err := s.orders.Confirm(ctx, order.ID, nil)
	require.NoError(t, err)

	actor := testutil.TestActorID()
	_, err = s.orders.Delete(ctx, order.ID, "customer cancelled", &actor)
	require.NoError(t, err)

	assert.True(t, s.store.Balance(t, customer).IsZero())
	_, err = s.sales.GetByID(ctx, *confirmed.SaleID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	trash, err := s.archive.List(ctx, shared.EntityTypeSale, shared.DefaultFilter())
	require.NoError(t, err)
	require.Equal(t, int64(1), trash.Total)
	assert.Equal(t, *confirmed.SaleID, trash.Items[0].OriginalID)

	events, err := s.store.Repos().ChargeEvents().FindBySource(ctx, shared.EntityTypeSale, *confirmed.SaleID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, partner.ChargeCauseOrderCancelReversal, events[0].Cause)
}

func TestOrderService_Restore_ConfirmedOrderBringsInvoiceBack(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	customer := s.store.SeedCustomer(t, "Amina Stores", 1000)
	rice := s.store.SeedProduct(t, "Rice 2kg", 100, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CREDIT",
		CustomerID:  &customer.ID,
		Items:       []trade.LineInput{line(rice.ID, 2)},
	})
	require.NoError(t, err)
	confirmed, err := s.orders.Confirm(ctx, order.ID, nil)
	require.NoError(t, err)
	saleID := *confirmed.SaleID
	require.True(t, decimal.NewFromInt(200).Equal(s.store.Balance(t, customer)))

	snapshot, err := s.orders.Delete(ctx, order.ID, "entered on wrong account", nil)
	require.NoError(t, err)
	require.True(t, s.store.Balance(t, customer).IsZero())

	_, err = s.archive.Restore(ctx, shared.EntityTypeOrder, snapshot.DeletedID)
	require.NoError(t, err)

	restored, err := s.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(tradedomain.OrderStatusConfirmed), restored.Status)
	require.NotNil(t, restored.SaleID)
	assert.Equal(t, saleID, *restored.SaleID)

	sale, err := s.sales.GetByID(ctx, saleID)
	require.NoError(t, err)
	require.NotNil(t, sale.OrderID)
	assert.Equal(t, order.ID, *sale.OrderID)
	assert.True(t, decimal.NewFromInt(200).Equal(s.store.Balance(t, customer)))
	assert.Equal(t, 8, s.store.Stock(t, rice), "restore does not move stock")

	trash, err := s.archive.List(ctx, shared.EntityTypeSale, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, trash.Total)

	events, err := s.store.Repos().ChargeEvents().FindBySource(ctx, shared.EntityTypeSale, saleID)
	require.NoError(t, err)
	causes := make([]partner.ChargeCause, 0, len(events))
	for _, e := range events {
		causes = append(causes, e.Cause)
	}
	assert.ElementsMatch(t, []partner.ChargeCause{
		partner.ChargeCauseOrderCancelReversal, partner.ChargeCauseOrderConfirm,
	}, causes)
}

func TestOrderService_Restore_PurgedInvoiceBlocksRestore(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	customer := s.store.SeedCustomer(t, "Amina Stores", 1000)
	rice := s.store.SeedProduct(t, "Rice 2kg", 100, 10)

	order, err := s.orders.Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CREDIT",
		CustomerID:  &customer.ID,
		Items:       []trade.LineInput{line(rice.ID, 2)},
	})
	require.NoError(t, err)
	_, err = s.orders.Confirm(ctx, order.ID, nil)
	require.NoError(t, err)
	snapshot, err := s.orders.Delete(ctx, order.ID, "", nil)
	require.NoError(t, err)

	saleTrash, err := s.archive.List(ctx, shared.EntityTypeSale, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, saleTrash.Items, 1)
	require.NoError(t, s.archive.PermanentDelete(ctx, shared.EntityTypeSale, saleTrash.Items[0].DeletedID))

	_, err = s.archive.Restore(ctx, shared.EntityTypeOrder, snapshot.DeletedID)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = s.orders.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	stored, err := s.archive.Get(ctx, snapshot.DeletedID)
	require.NoError(t, err)
	assert.False(t, stored.Restored)
	assert.True(t, s.store.Balance(t, customer).IsZero())
}
