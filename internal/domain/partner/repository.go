package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// CreditCustomerRepository defines the interface for credit customer persistence
type CreditCustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CreditCustomer, error)

	// FindByIDForUpdate loads the customer under a row lock (SELECT ... FOR UPDATE).
	// Every read-modify-write of the balance must start here.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CreditCustomer, error)

	// FindByPublicID finds a customer by its external identifier
	FindByPublicID(ctx context.Context, publicID string) (*CreditCustomer, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]CreditCustomer, int64, error)

	// Portfolio aggregates limits and balances across all customers
	Portfolio(ctx context.Context) (PortfolioSummary, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *CreditCustomer) error

	// Insert creates a customer keeping its existing ID, used by restore
	Insert(ctx context.Context, customer *CreditCustomer) error

	Delete(ctx context.Context, id uuid.UUID) error

	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// ChargeEventRepository persists the append-only charge audit trail
type ChargeEventRepository interface {
	Append(ctx context.Context, event *ChargeEvent) error
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]ChargeEvent, int64, error)
	FindBySource(ctx context.Context, sourceType shared.EntityType, sourceID uuid.UUID) ([]ChargeEvent, error)
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, supplier *Supplier) error
	Insert(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
