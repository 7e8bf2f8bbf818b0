// Package scope defines the unit of work every ledger, archive and sequence
// mutation runs in.
package scope

import (
	"context"

	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/grocer/backoffice/internal/domain/identity"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
)

// TransactionScope defines the interface for executing operations within a transaction.
// Implementations should ensure atomicity: either all operations succeed or none do.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to every repository within one transaction.
// All repositories returned share the same underlying database handle, so row
// locks taken through one are held for the others.
type Repositories interface {
	Customers() partner.CreditCustomerRepository
	ChargeEvents() partner.ChargeEventRepository
	Suppliers() partner.SupplierRepository
	Products() catalog.ProductRepository
	Users() identity.UserRepository
	Sales() trade.SaleRepository
	Orders() trade.OrderRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	Cheques() finance.ChequeRepository
	Payments() finance.CreditPaymentRepository
	Snapshots() archive.SnapshotRepository

	// Sequences allocates public ids inside the same transaction
	Sequences() shared.SequenceAllocator
}
