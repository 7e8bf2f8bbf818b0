package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
)

// ProductService handles product-related business operations
type ProductService struct {
	txScope  scope.TransactionScope
	archiver archive.Archiver
}

// NewProductService creates a new ProductService
func NewProductService(txScope scope.TransactionScope, archiver archive.Archiver) *ProductService {
	return &ProductService{
		txScope:  txScope,
		archiver: archiver,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create")
	defer span.End()

	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if req.SupplierID != nil {
			if ok, err := repos.Suppliers().ExistsByID(ctx, *req.SupplierID); err != nil {
				return err
			} else if !ok {
				return shared.NewNotFoundError("Supplier")
			}
		}

		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeProduct)
		if err != nil {
			return err
		}
		product, err = catalog.NewProduct(publicID, req.Name, req.Unit, req.UnitPrice, req.PurchasePrice)
		if err != nil {
			return err
		}
		product.Category = req.Category
		product.SupplierID = req.SupplierID
		if err := product.SetReorderLevel(req.ReorderLevel); err != nil {
			return err
		}
		if req.InitialStock > 0 {
			if err := product.AddStock(req.InitialStock); err != nil {
				return err
			}
		}
		return repos.Products().Insert(ctx, product)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		product, err = repos.Products().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	var products []catalog.Product
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		products, total, err = repos.Products().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, ToProductResponse(&products[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves a product to the trash. Past sales keep their copied name.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypeProduct, id, reason, actorID)
}
