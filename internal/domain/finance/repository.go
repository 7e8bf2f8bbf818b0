package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// ChequeRepository defines the interface for cheque persistence
type ChequeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cheque, error)

	// FindByIDForUpdate loads the cheque under a row lock so concurrent bounce
	// requests serialize on it
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Cheque, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Cheque, int64, error)
	Save(ctx context.Context, cheque *Cheque) error
	Insert(ctx context.Context, cheque *Cheque) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreditPaymentRepository persists recorded payments
type CreditPaymentRepository interface {
	Create(ctx context.Context, payment *CreditPayment) error
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]CreditPayment, int64, error)
}
