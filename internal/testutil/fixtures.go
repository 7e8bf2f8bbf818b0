package testutil

import (
	"context"
	"testing"

	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Store is a migrated sqlite database with a transaction scope over it
type Store struct {
	DB      *gorm.DB
	TxScope *persistence.GormTransactionScope
}

// NewStore opens a fresh sqlite store
func NewStore(t *testing.T) *Store {
	t.Helper()
	db := NewSQLiteDB(t)
	return &Store{DB: db, TxScope: persistence.NewGormTransactionScope(db)}
}

// Repos returns repositories bound to the pool, for asserting on committed state
func (s *Store) Repos() scope.Repositories {
	return persistence.NewGormRepositories(s.DB)
}

// SeedCustomer creates a credit customer with the given limit and 30 day terms
func (s *Store) SeedCustomer(t *testing.T, name string, limit int64) *partner.CreditCustomer {
	t.Helper()
	ctx := context.Background()

	var customer *partner.CreditCustomer
	err := s.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeCreditCustomer)
		if err != nil {
			return err
		}
		customer, err = partner.NewCreditCustomer(publicID, name, "0700000000", decimal.NewFromInt(limit), 30)
		if err != nil {
			return err
		}
		return repos.Customers().Insert(ctx, customer)
	})
	require.NoError(t, err)
	return customer
}

// SeedProduct creates an active product. A zero stock leaves the shelf empty.
func (s *Store) SeedProduct(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	ctx := context.Background()

	var product *catalog.Product
	err := s.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeProduct)
		if err != nil {
			return err
		}
		product, err = catalog.NewProduct(publicID, name, "pcs", decimal.NewFromInt(price), decimal.NewFromInt(price/2))
		if err != nil {
			return err
		}
		if stock > 0 {
			if err := product.AddStock(stock); err != nil {
				return err
			}
		}
		return repos.Products().Insert(ctx, product)
	})
	require.NoError(t, err)
	return product
}

// SeedSupplier creates a supplier
func (s *Store) SeedSupplier(t *testing.T, name string) *partner.Supplier {
	t.Helper()
	ctx := context.Background()

	var supplier *partner.Supplier
	err := s.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeSupplier)
		if err != nil {
			return err
		}
		supplier, err = partner.NewSupplier(publicID, name)
		if err != nil {
			return err
		}
		return repos.Suppliers().Insert(ctx, supplier)
	})
	require.NoError(t, err)
	return supplier
}

// Stock reads a product's committed stock quantity
func (s *Store) Stock(t *testing.T, product *catalog.Product) int {
	t.Helper()
	p, err := s.Repos().Products().FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	return p.StockQty
}

// SeedCreditSale books a credit sale of amount against the customer without
// touching stock, charging the ledger the way the sale service does
func (s *Store) SeedCreditSale(t *testing.T, customer *partner.CreditCustomer, amount int64) *trade.Sale {
	t.Helper()
	ctx := context.Background()

	var sale *trade.Sale
	err := s.TxScope.Execute(ctx, func(repos scope.Repositories) error {
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeSale)
		if err != nil {
			return err
		}
		sale, err = trade.NewSale(publicID, trade.PaymentMethodCredit, &customer.ID, []trade.SaleLine{{
			ProductID:   NewTestUUID("seed-product"),
			ProductName: "Seed item",
			Quantity:    1,
			UnitPrice:   decimal.NewFromInt(amount),
		}})
		if err != nil {
			return err
		}

		locked, err := repos.Customers().FindByIDForUpdate(ctx, customer.ID)
		if err != nil {
			return err
		}
		event, err := locked.Charge(sale.TotalRevenue, partner.ChargeCauseSale)
		if err != nil {
			return err
		}
		event.WithSource(shared.EntityTypeSale, sale.ID, sale.PublicID)
		sale.MarkCharged(sale.TotalRevenue, locked.DueDate(sale.CreatedAt))
		if err := repos.Customers().Save(ctx, locked); err != nil {
			return err
		}
		if err := repos.ChargeEvents().Append(ctx, event); err != nil {
			return err
		}
		return repos.Sales().Insert(ctx, sale)
	})
	require.NoError(t, err)
	return sale
}

// Balance reads a customer's committed outstanding balance
func (s *Store) Balance(t *testing.T, customer *partner.CreditCustomer) decimal.Decimal {
	t.Helper()
	c, err := s.Repos().Customers().FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	return c.OutstandingBalance
}
