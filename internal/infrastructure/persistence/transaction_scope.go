package persistence

import (
	"context"

	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/grocer/backoffice/internal/domain/identity"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Serialization failures and deadlocks re-run the whole transaction.
type GormTransactionScope struct {
	db       *gorm.DB
	attempts uint64
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db, attempts: DefaultRetryAttempts}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos scope.Repositories) error) error {
	return RetryOnSerializationFailure(ctx, s.attempts, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(NewGormRepositories(tx))
		})
	})
}

// GormRepositories builds every repository on one database handle, either the
// pool for reads or a transaction inside Execute
type GormRepositories struct {
	tx *gorm.DB
}

// NewGormRepositories creates repositories bound to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{tx: db}
}

// Customers returns the credit customer repository
func (r *GormRepositories) Customers() partner.CreditCustomerRepository {
	return NewGormCreditCustomerRepository(r.tx)
}

// ChargeEvents returns the charge event repository
func (r *GormRepositories) ChargeEvents() partner.ChargeEventRepository {
	return NewGormChargeEventRepository(r.tx)
}

// Suppliers returns the supplier repository
func (r *GormRepositories) Suppliers() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

// Products returns the product repository
func (r *GormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Users returns the user repository
func (r *GormRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Sales returns the sale repository
func (r *GormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Orders returns the order repository
func (r *GormRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// PurchaseOrders returns the purchase order repository
func (r *GormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// Cheques returns the cheque repository
func (r *GormRepositories) Cheques() finance.ChequeRepository {
	return NewGormChequeRepository(r.tx)
}

// Payments returns the credit payment repository
func (r *GormRepositories) Payments() finance.CreditPaymentRepository {
	return NewGormCreditPaymentRepository(r.tx)
}

// Snapshots returns the archive snapshot repository
func (r *GormRepositories) Snapshots() archive.SnapshotRepository {
	return NewGormSnapshotRepository(r.tx)
}

// Sequences returns the public id allocator
func (r *GormRepositories) Sequences() shared.SequenceAllocator {
	return NewGormSequenceAllocator(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ scope.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ scope.Repositories = (*GormRepositories)(nil)
