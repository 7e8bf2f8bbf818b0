package finance_test

import (
	"context"
	"testing"

	"github.com/grocer/backoffice/internal/application/finance"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentService(store *testutil.Store) *finance.PaymentService {
	return finance.NewPaymentService(store.TxScope, ledger.New(nil), nil)
}

func TestPaymentService_RecordPayment_OnAccount(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCreditSale(t, customer, 400)
	svc := newPaymentService(store)
	actor := testutil.TestActorID()

	resp, err := svc.RecordPayment(ctx, customer.ID, finance.RecordPaymentRequest{
		Amount: decimal.NewFromInt(150),
		Note:   "counter payment",
	}, &actor)
	require.NoError(t, err)

	assert.Equal(t, "CASH", resp.Method)
	assert.True(t, decimal.NewFromInt(250).Equal(resp.BalanceAfter))
	assert.Empty(t, resp.InvoiceStatus)
	assert.Equal(t, &actor, resp.RecordedBy)
	assert.True(t, decimal.NewFromInt(250).Equal(store.Balance(t, customer)))

	payments, err := svc.ListByCustomer(ctx, customer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), payments.Total)
}

func TestPaymentService_RecordPayment_AgainstInvoice(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	sale := store.SeedCreditSale(t, customer, 400)
	svc := newPaymentService(store)

	resp, err := svc.RecordPayment(ctx, customer.ID, finance.RecordPaymentRequest{
		Amount:    decimal.NewFromInt(100),
		Method:    "BANK",
		InvoiceID: &sale.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, string(trade.PaymentStatusPartial), resp.InvoiceStatus)

	resp, err = svc.RecordPayment(ctx, customer.ID, finance.RecordPaymentRequest{
		Amount:    decimal.NewFromInt(300),
		InvoiceID: &sale.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, string(trade.PaymentStatusPaid), resp.InvoiceStatus)
	assert.True(t, resp.BalanceAfter.IsZero())

	stored, err := store.Repos().Sales().FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(stored.PaidAmount))
	assert.Equal(t, trade.PaymentStatusPaid, stored.PaymentStatus)
}

func TestPaymentService_RecordPayment_OverpayingInvoiceRollsBack(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	first := store.SeedCreditSale(t, customer, 100)
	store.SeedCreditSale(t, customer, 300)
	svc := newPaymentService(store)

	// The balance would cover it; the invoice does not.
	_, err := svc.RecordPayment(ctx, customer.ID, finance.RecordPaymentRequest{
		Amount:    decimal.NewFromInt(200),
		InvoiceID: &first.ID,
	}, nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeAmountExceedsBalance))

	assert.True(t, decimal.NewFromInt(400).Equal(store.Balance(t, customer)))
	stored, err := store.Repos().Sales().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.IsZero())

	payments, err := svc.ListByCustomer(ctx, customer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, payments.Total)
}

func TestPaymentService_RecordPayment_ExceedsBalance(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCreditSale(t, customer, 100)
	svc := newPaymentService(store)

	_, err := svc.RecordPayment(ctx, customer.ID, finance.RecordPaymentRequest{
		Amount: decimal.NewFromInt(101),
	}, nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeAmountExceedsBalance))
	assert.True(t, decimal.NewFromInt(100).Equal(store.Balance(t, customer)))
}

func TestPaymentService_RecordPayment_RejectsForeignInvoice(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	amina := store.SeedCustomer(t, "Amina Stores", 1000)
	brian := store.SeedCustomer(t, "Brian Kiosk", 1000)
	store.SeedCreditSale(t, amina, 200)
	brianSale := store.SeedCreditSale(t, brian, 200)
	svc := newPaymentService(store)

	_, err := svc.RecordPayment(ctx, amina.ID, finance.RecordPaymentRequest{
		Amount:    decimal.NewFromInt(50),
		InvoiceID: &brianSale.ID,
	}, nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
	assert.True(t, decimal.NewFromInt(200).Equal(store.Balance(t, amina)))
	assert.True(t, decimal.NewFromInt(200).Equal(store.Balance(t, brian)))
}

func TestPaymentService_RecordPayment_InvalidInput(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	svc := newPaymentService(store)

	tests := []struct {
		name string
		req  finance.RecordPaymentRequest
		code string
	}{
		{"zero amount", finance.RecordPaymentRequest{Amount: decimal.Zero}, shared.CodeInvalidAmount},
		{"negative amount", finance.RecordPaymentRequest{Amount: decimal.NewFromInt(-5)}, shared.CodeInvalidAmount},
		{"unknown method", finance.RecordPaymentRequest{Amount: decimal.NewFromInt(5), Method: "GOLD"}, shared.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(ctx, customer.ID, tt.req, nil)
			require.Error(t, err)
			assert.True(t, shared.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestPaymentService_PayInvoice(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	sale := store.SeedCreditSale(t, customer, 250)
	svc := newPaymentService(store)

	resp, err := svc.PayInvoice(ctx, sale.ID, finance.RecordPaymentRequest{
		Amount: decimal.NewFromInt(250),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, resp.CustomerID)
	assert.Equal(t, &sale.ID, resp.InvoiceID)
	assert.Equal(t, string(trade.PaymentStatusPaid), resp.InvoiceStatus)
	assert.True(t, store.Balance(t, customer).IsZero())
}

func TestPaymentService_ListByCustomer_UnknownCustomer(t *testing.T) {
	store := testutil.NewStore(t)
	svc := newPaymentService(store)

	_, err := svc.ListByCustomer(context.Background(), testutil.NewTestUUID("nobody"), shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
