package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// SaleRepository defines the interface for sale (invoice) persistence.
// Items are always loaded and saved together with the sale.
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate loads the sale and its items under a row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, int64, error)

	// FindByCustomer lists a customer's invoices; unsettledOnly keeps UNPAID and PARTIAL
	FindByCustomer(ctx context.Context, customerID uuid.UUID, unsettledOnly bool, filter shared.Filter) ([]Sale, int64, error)

	// CountUnsettledByCustomer counts UNPAID and PARTIAL invoices of a customer
	CountUnsettledByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)

	Save(ctx context.Context, sale *Sale) error
	Insert(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	FindBySaleID(ctx context.Context, saleID uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)
	Save(ctx context.Context, order *Order) error
	Insert(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	Insert(ctx context.Context, order *PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
