package archive_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) Export(ctx context.Context, snapshot *archive.Snapshot) (string, error) {
	args := m.Called(ctx, snapshot)
	return args.String(0), args.Error(1)
}

func newService(t *testing.T, opts ...archiveapp.Option) (*testutil.Store, *archiveapp.Service) {
	t.Helper()
	store := testutil.NewStore(t)
	return store, archiveapp.NewService(store.TxScope, ledger.New(nil), opts...)
}

// seedPurchaseOrder creates a purchase order with two lines
func seedPurchaseOrder(t *testing.T, store *testutil.Store) *trade.PurchaseOrder {
	t.Helper()
	ctx := context.Background()
	supplier := store.SeedSupplier(t, "Mombasa Millers")
	flour := store.SeedProduct(t, "Flour 2kg", 140, 0)
	salt := store.SeedProduct(t, "Salt 500g", 30, 0)

	var po *trade.PurchaseOrder
	err := store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypePurchaseOrder)
		if err != nil {
			return err
		}
		po, err = trade.NewPurchaseOrder(publicID, supplier.ID, []trade.PurchaseOrderLine{
			{ProductID: flour.ID, ProductName: flour.Name, Quantity: 10, UnitCost: decimal.NewFromInt(100)},
			{ProductID: salt.ID, ProductName: salt.Name, Quantity: 20, UnitCost: decimal.NewFromInt(20)},
		})
		if err != nil {
			return err
		}
		return repos.PurchaseOrders().Insert(ctx, po)
	})
	require.NoError(t, err)
	return po
}

func TestService_ArchiveAndRestore_RoundTripsItems(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	po := seedPurchaseOrder(t, store)
	actor := testutil.TestActorID()

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypePurchaseOrder, po.ID, "duplicate entry", &actor)
	require.NoError(t, err)
	assert.Equal(t, po.ID, snapshot.OriginalID)
	assert.Equal(t, "PO-0001", snapshot.PublicID)
	assert.Equal(t, &actor, snapshot.DeletedByUserID)
	assert.False(t, snapshot.Restored)

	_, err = store.Repos().PurchaseOrders().FindByID(ctx, po.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	result, err := svc.Restore(ctx, shared.EntityTypePurchaseOrder, snapshot.DeletedID)
	require.NoError(t, err)
	assert.Equal(t, po.ID, result.RestoredID)
	assert.Equal(t, "PO-0001", result.PublicID)
	assert.Equal(t, 1, result.RestoreCount)

	restored, err := store.Repos().PurchaseOrders().FindByID(ctx, po.ID)
	require.NoError(t, err)
	require.Len(t, restored.Items, 2)
	itemIDs := []any{restored.Items[0].ID, restored.Items[1].ID}
	assert.ElementsMatch(t, []any{po.Items[0].ID, po.Items[1].ID}, itemIDs)
	assert.True(t, po.TotalAmount.Equal(restored.TotalAmount))

	stored, err := svc.Get(ctx, snapshot.DeletedID)
	require.NoError(t, err)
	assert.True(t, stored.Restored)
	assert.NotNil(t, stored.RestoredAt)

	trash, err := svc.List(ctx, shared.EntityTypePurchaseOrder, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, trash.Total, "restored snapshots leave the trash listing")
}

func TestService_Restore_AlreadyRestored(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	supplier := store.SeedSupplier(t, "Mombasa Millers")

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, supplier.ID, "", nil)
	require.NoError(t, err)
	_, err = svc.Restore(ctx, shared.EntityTypeSupplier, snapshot.DeletedID)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, shared.EntityTypeSupplier, snapshot.DeletedID)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyRestored)
}

func TestService_Restore_IDConflictLeavesSnapshotPending(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	supplier := store.SeedSupplier(t, "Mombasa Millers")

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, supplier.ID, "", nil)
	require.NoError(t, err)

	// Someone re-created a row at the original id in the meantime.
	require.NoError(t, store.Repos().Suppliers().Insert(ctx, supplier))

	_, err = svc.Restore(ctx, shared.EntityTypeSupplier, snapshot.DeletedID)
	require.Error(t, err)
	var conflict *shared.IDConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, supplier.ID, conflict.OriginalID)

	stored, err := svc.Get(ctx, snapshot.DeletedID)
	require.NoError(t, err)
	assert.False(t, stored.Restored)
	assert.Zero(t, stored.RestoreCount)
}

func TestService_Restore_WrongTypeIsNotFound(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	supplier := store.SeedSupplier(t, "Mombasa Millers")

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, supplier.ID, "", nil)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, shared.EntityTypeProduct, snapshot.DeletedID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Restore(ctx, "", snapshot.DeletedID)
	assert.NoError(t, err)
}

func TestService_Restore_ConcurrentRequestsRestoreOnce(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	supplier := store.SeedSupplier(t, "Mombasa Millers")

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, supplier.ID, "", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Restore(ctx, shared.EntityTypeSupplier, snapshot.DeletedID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrAlreadyRestored)
	}
	assert.Equal(t, 1, succeeded)
}

func TestService_ArchiveCustomer_RequiresSettledAccount(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	store.SeedCreditSale(t, customer, 250)

	_, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeCreditCustomer, customer.ID, "closing account", nil)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation), "got %v", err)

	_, err = store.Repos().Customers().FindByID(ctx, customer.ID)
	assert.NoError(t, err, "customer stays live")
}

func TestService_SaleDeleteAndRestore_MovesBalance(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	sale := store.SeedCreditSale(t, customer, 400)

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSale, sale.ID, "keyed twice", nil)
	require.NoError(t, err)
	assert.True(t, store.Balance(t, customer).IsZero())

	trash, err := svc.List(ctx, shared.EntityTypeSale, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, trash.Items, 1)
	assert.Equal(t, "Sale S-0001", trash.Items[0].DisplayName)

	_, err = svc.Restore(ctx, shared.EntityTypeSale, snapshot.DeletedID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(store.Balance(t, customer)))

	restored, err := store.Repos().Sales().FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, restored.Items, 1)
	assert.Equal(t, sale.Items[0].ID, restored.Items[0].ID)
}

func TestService_SaleRestore_FailsOverLimit(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	customer := store.SeedCustomer(t, "Amina Stores", 500)
	sale := store.SeedCreditSale(t, customer, 400)

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSale, sale.ID, "", nil)
	require.NoError(t, err)
	store.SeedCreditSale(t, customer, 300)

	_, err = svc.Restore(ctx, shared.EntityTypeSale, snapshot.DeletedID)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeCreditLimitExceeded))

	assert.True(t, decimal.NewFromInt(300).Equal(store.Balance(t, customer)))
	stored, err := svc.Get(ctx, snapshot.DeletedID)
	require.NoError(t, err)
	assert.False(t, stored.Restored)
	_, err = store.Repos().Sales().FindByID(ctx, sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_SaleRestore_NeedsCustomer(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	sale := store.SeedCreditSale(t, customer, 400)

	saleSnapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSale, sale.ID, "", nil)
	require.NoError(t, err)
	customerSnapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeCreditCustomer, customer.ID, "", nil)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, shared.EntityTypeSale, saleSnapshot.DeletedID)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = svc.Restore(ctx, shared.EntityTypeCreditCustomer, customerSnapshot.DeletedID)
	require.NoError(t, err)
	_, err = svc.Restore(ctx, shared.EntityTypeSale, saleSnapshot.DeletedID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(store.Balance(t, customer)))
}

func TestService_SaleRestore_PaidPartIsNotRecharged(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	customer := store.SeedCustomer(t, "Amina Stores", 1000)
	sale := store.SeedCreditSale(t, customer, 400)

	err := store.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		locked, err := repos.Sales().FindByIDForUpdate(ctx, sale.ID)
		if err != nil {
			return err
		}
		if err := locked.ApplyPayment(decimal.NewFromInt(150)); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, locked); err != nil {
			return err
		}
		_, err = ledger.New(nil).Pay(ctx, repos, customer.ID, decimal.NewFromInt(150), ledger.Source{})
		return err
	})
	require.NoError(t, err)

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSale, sale.ID, "", nil)
	require.NoError(t, err)
	assert.True(t, store.Balance(t, customer).IsZero())

	_, err = svc.Restore(ctx, shared.EntityTypeSale, snapshot.DeletedID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(store.Balance(t, customer)))

	events, err := store.Repos().ChargeEvents().FindBySource(ctx, shared.EntityTypeSale, sale.ID)
	require.NoError(t, err)
	causes := make([]partner.ChargeCause, 0, len(events))
	for _, e := range events {
		causes = append(causes, e.Cause)
	}
	assert.ElementsMatch(t, []partner.ChargeCause{
		partner.ChargeCauseSale, partner.ChargeCauseSaleReversal, partner.ChargeCauseSale,
	}, causes)
}

func TestService_List_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	first := store.SeedSupplier(t, "First Supplier")
	second := store.SeedSupplier(t, "Second Supplier")

	_, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, first.ID, "", nil)
	require.NoError(t, err)
	_, err = svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, second.ID, "", nil)
	require.NoError(t, err)

	trash, err := svc.List(ctx, shared.EntityTypeSupplier, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, trash.Items, 2)
	assert.Equal(t, "Second Supplier", trash.Items[0].DisplayName)
	assert.Equal(t, "First Supplier", trash.Items[1].DisplayName)

	_, err = svc.List(ctx, "INVOICE", shared.DefaultFilter())
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestService_PermanentDelete_ExportsFirst(t *testing.T) {
	ctx := context.Background()
	exporter := new(mockExporter)
	store, svc := newService(t, archiveapp.WithExporter(exporter))
	supplier := store.SeedSupplier(t, "Mombasa Millers")

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, supplier.ID, "", nil)
	require.NoError(t, err)

	exporter.On("Export", mock.Anything, mock.MatchedBy(func(s *archive.Snapshot) bool {
		return s.DeletedID == snapshot.DeletedID
	})).Return("s3://retention/SUPPLIER/"+snapshot.DeletedID.String()+".json", nil).Once()

	require.NoError(t, svc.PermanentDelete(ctx, shared.EntityTypeSupplier, snapshot.DeletedID))
	exporter.AssertExpectations(t)

	_, err = svc.Get(ctx, snapshot.DeletedID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_PermanentDelete_FailedExportKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	exporter := new(mockExporter)
	store, svc := newService(t, archiveapp.WithExporter(exporter))
	supplier := store.SeedSupplier(t, "Mombasa Millers")

	snapshot, err := svc.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, supplier.ID, "", nil)
	require.NoError(t, err)

	exporter.On("Export", mock.Anything, mock.Anything).Return("", errors.New("bucket unreachable")).Once()

	err = svc.PermanentDelete(ctx, shared.EntityTypeSupplier, snapshot.DeletedID)
	require.Error(t, err)

	stored, err := svc.Get(ctx, snapshot.DeletedID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.DeletedID, stored.DeletedID)
}

func TestService_ArchiveAndDelete_UnknownType(t *testing.T) {
	_, svc := newService(t)

	_, err := svc.ArchiveAndDelete(context.Background(), "INVOICE", testutil.NewTestUUID("x"), "", nil)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestService_ArchiveAndDelete_Missing(t *testing.T) {
	_, svc := newService(t)

	_, err := svc.ArchiveAndDelete(context.Background(), shared.EntityTypeProduct, testutil.NewTestUUID("x"), "", nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
