package partner_test

import (
	"context"
	"testing"

	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/partner"
	partnerdomain "github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerService(t *testing.T) (*testutil.Store, *partner.CustomerService) {
	t.Helper()
	store := testutil.NewStore(t)
	archiver := archiveapp.NewService(store.TxScope, ledger.New(nil))
	return store, partner.NewCustomerService(store.TxScope, archiver)
}

func TestCustomerService_Create(t *testing.T) {
	_, svc := newCustomerService(t)

	resp, err := svc.Create(context.Background(), partner.CreateCreditCustomerRequest{
		Name:             "Amina Stores",
		Phone:            "+254700000001",
		CreditLimit:      decimal.NewFromInt(5000),
		PaymentTermsDays: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "CC-0001", resp.PublicID)
	assert.True(t, resp.OutstandingBalance.IsZero())
	assert.True(t, decimal.NewFromInt(5000).Equal(resp.AvailableCredit))
	assert.Equal(t, string(partnerdomain.CreditCustomerStatusActive), resp.Status)

	second, err := svc.Create(context.Background(), partner.CreateCreditCustomerRequest{
		Name:        "Baraka Kiosk",
		CreditLimit: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "CC-0002", second.PublicID)

	byPublic, err := svc.GetByPublicID(context.Background(), "CC-0002")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byPublic.ID)
}

func TestCustomerService_Create_NegativeLimit(t *testing.T) {
	_, svc := newCustomerService(t)

	_, err := svc.Create(context.Background(), partner.CreateCreditCustomerRequest{
		Name:        "Amina Stores",
		CreditLimit: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestCustomerService_Update_LimitBelowBalanceIsFlagged(t *testing.T) {
	ctx := context.Background()
	store, svc := newCustomerService(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCreditSale(t, customer, 600)

	limit := decimal.NewFromInt(400)
	resp, err := svc.Update(ctx, customer.ID, partner.UpdateCreditCustomerRequest{CreditLimit: &limit})
	require.NoError(t, err)
	assert.True(t, resp.LimitBelowBalance)
	assert.True(t, resp.OverLimit)
	assert.True(t, resp.AvailableCredit.IsZero())
	assert.True(t, decimal.NewFromInt(600).Equal(resp.OutstandingBalance), "lowering the limit never touches the balance")

	inactive := string(partnerdomain.CreditCustomerStatusInactive)
	resp, err = svc.Update(ctx, customer.ID, partner.UpdateCreditCustomerRequest{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, inactive, resp.Status)
	assert.False(t, resp.LimitBelowBalance)
}

func TestCustomerService_InvoicesAndCharges(t *testing.T) {
	ctx := context.Background()
	store, svc := newCustomerService(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCreditSale(t, customer, 200)
	store.SeedCreditSale(t, customer, 300)

	invoices, err := svc.Invoices(ctx, customer.ID, true, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), invoices.Total)
	for _, inv := range invoices.Items {
		assert.Equal(t, inv.TotalRevenue.String(), inv.RemainingDue.String())
		assert.NotNil(t, inv.DueDate)
		assert.Zero(t, inv.DaysOverdue)
	}

	charges, err := svc.Charges(ctx, customer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Equal(t, int64(2), charges.Total)
	for _, c := range charges.Items {
		assert.Equal(t, partnerdomain.ChargeCauseSale.String(), c.Cause)
		assert.True(t, c.Delta.IsPositive())
	}

	summary, err := svc.Summary(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(summary.OutstandingBalance))

	_, err = svc.Invoices(ctx, testutil.NewTestUUID("nobody"), false, shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerService_Portfolio(t *testing.T) {
	ctx := context.Background()
	store, svc := newCustomerService(t)
	amina := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCustomer(t, "Baraka Kiosk", 500)
	store.SeedCreditSale(t, amina, 250)

	portfolio, err := svc.Portfolio(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), portfolio.CustomerCount)
	assert.True(t, decimal.NewFromInt(1500).Equal(portfolio.TotalLimit))
	assert.True(t, decimal.NewFromInt(250).Equal(portfolio.TotalOutstanding))
	assert.True(t, decimal.NewFromInt(1250).Equal(portfolio.TotalAvailable))
	assert.Zero(t, portfolio.OverLimitCount)
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()
	store, svc := newCustomerService(t)
	settled := store.SeedCustomer(t, "Baraka Kiosk", 500)
	owing := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCreditSale(t, owing, 250)

	_, err := svc.Delete(ctx, owing.ID, "", nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	snapshot, err := svc.Delete(ctx, settled.ID, "closed shop", nil)
	require.NoError(t, err)
	assert.Equal(t, "Baraka Kiosk", snapshot.DisplayName)

	_, err = svc.GetByID(ctx, settled.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
