package ledger_test

import (
	"context"
	"testing"

	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Charge(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	l := ledger.New(nil)
	saleID := testutil.NewTestUUID("sale")

	var result *ledger.Result
	err := store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		result, err = l.Charge(ctx, repos, customer.ID, decimal.NewFromInt(300), partner.ChargeCauseSale, ledger.Source{
			Type:      shared.EntityTypeSale,
			ID:        saleID,
			Reference: "S-0042",
		})
		return err
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(300).Equal(result.Customer.OutstandingBalance))
	assert.True(t, result.Event.BalanceBefore.IsZero())
	assert.True(t, decimal.NewFromInt(300).Equal(result.Event.BalanceAfter))
	assert.False(t, result.Event.OverLimit)
	assert.True(t, decimal.NewFromInt(300).Equal(store.Balance(t, customer)))

	events, err := store.Repos().ChargeEvents().FindBySource(ctx, shared.EntityTypeSale, saleID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "S-0042", events[0].Reference)
}

func TestLedger_Charge_LimitCheckedCauses(t *testing.T) {
	tests := []struct {
		name      string
		cause     partner.ChargeCause
		wantError bool
	}{
		{"sale is limit checked", partner.ChargeCauseSale, true},
		{"order confirm is limit checked", partner.ChargeCauseOrderConfirm, true},
		{"cheque bounce always posts", partner.ChargeCauseChequeBounce, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := testutil.NewStore(t)
			customer := store.SeedCustomer(t, "Amina Stores", 500)
			l := ledger.New(nil)

			var result *ledger.Result
			err := store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
				var err error
				result, err = l.Charge(ctx, repos, customer.ID, decimal.NewFromInt(700), tt.cause, ledger.Source{})
				return err
			})

			if tt.wantError {
				require.Error(t, err)
				assert.True(t, shared.HasCode(err, shared.CodeCreditLimitExceeded))
				assert.True(t, store.Balance(t, customer).IsZero())
				events, _, err := store.Repos().ChargeEvents().FindByCustomer(ctx, customer.ID, shared.DefaultFilter())
				require.NoError(t, err)
				assert.Empty(t, events)
				return
			}
			require.NoError(t, err)
			assert.True(t, result.Event.OverLimit)
			assert.True(t, decimal.NewFromInt(700).Equal(store.Balance(t, customer)))
		})
	}
}

func TestLedger_Reverse(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	sale := store.SeedCreditSale(t, customer, 400)
	l := ledger.New(nil)

	err := store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		result, err := l.Reverse(ctx, repos, customer.ID, decimal.Zero, partner.ChargeCauseSaleReversal, ledger.Source{})
		assert.Nil(t, result, "zero reversal is a no-op")
		return err
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(store.Balance(t, customer)))

	err = store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		_, err := l.Reverse(ctx, repos, customer.ID, decimal.NewFromInt(400), partner.ChargeCauseSaleReversal, ledger.Source{
			Type: shared.EntityTypeSale, ID: sale.ID, Reference: sale.PublicID,
		})
		return err
	})
	require.NoError(t, err)
	assert.True(t, store.Balance(t, customer).IsZero())

	err = store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		_, err := l.Reverse(ctx, repos, customer.ID, decimal.NewFromInt(1), partner.ChargeCauseSaleReversal, ledger.Source{})
		return err
	})
	require.Error(t, err, "reversing below zero is a ledger drift")
	assert.True(t, store.Balance(t, customer).IsZero())
}

func TestLedger_Pay(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCreditSale(t, customer, 400)
	l := ledger.New(nil)

	var result *ledger.Result
	err := store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		result, err = l.Pay(ctx, repos, customer.ID, decimal.NewFromInt(150), ledger.Source{})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, partner.ChargeCausePayment, result.Event.Cause)
	assert.True(t, decimal.NewFromInt(250).Equal(result.Event.BalanceAfter))
	assert.NotNil(t, result.Customer.LastPaymentDate)

	err = store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		_, err := l.Pay(ctx, repos, customer.ID, decimal.NewFromInt(251), ledger.Source{})
		return err
	})
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeAmountExceedsBalance))
	assert.True(t, decimal.NewFromInt(250).Equal(store.Balance(t, customer)))
}

func TestLedger_UnknownCustomer(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	l := ledger.New(nil)

	err := store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		_, err := l.Charge(ctx, repos, testutil.NewTestUUID("nobody"), decimal.NewFromInt(1), partner.ChargeCauseSale, ledger.Source{})
		return err
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
