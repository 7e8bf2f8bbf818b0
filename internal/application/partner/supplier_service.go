package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	txScope  scope.TransactionScope
	archiver archive.Archiver
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(txScope scope.TransactionScope, archiver archive.Archiver) *SupplierService {
	return &SupplierService{
		txScope:  txScope,
		archiver: archiver,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "create")
	defer span.End()

	var supplier *partner.Supplier
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeSupplier)
		if err != nil {
			return err
		}
		supplier, err = partner.NewSupplier(publicID, req.Name)
		if err != nil {
			return err
		}
		if req.ContactName != "" || req.Phone != "" || req.Email != "" || req.Address != "" {
			if err := supplier.SetContact(req.ContactName, req.Phone, req.Email, req.Address); err != nil {
				return err
			}
		}
		return repos.Suppliers().Save(ctx, supplier)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	var supplier *partner.Supplier
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		supplier, err = repos.Suppliers().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves a page of suppliers
func (s *SupplierService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[SupplierResponse], error) {
	var suppliers []partner.Supplier
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		suppliers, total, err = repos.Suppliers().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		items = append(items, ToSupplierResponse(&suppliers[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves a supplier to the trash
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypeSupplier, id, reason, actorID)
}
