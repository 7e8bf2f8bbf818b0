package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	txScope  scope.TransactionScope
	archiver archive.Archiver
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(txScope scope.TransactionScope, archiver archive.Archiver) *PurchaseOrderService {
	return &PurchaseOrderService{
		txScope:  txScope,
		archiver: archiver,
	}
}

// Create raises a purchase order against a supplier
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create")
	defer span.End()

	var po *trade.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if ok, err := repos.Suppliers().ExistsByID(ctx, req.SupplierID); err != nil {
			return err
		} else if !ok {
			return shared.NewNotFoundError("Supplier")
		}

		lines := make([]trade.PurchaseOrderLine, 0, len(req.Items))
		for _, in := range req.Items {
			product, err := repos.Products().FindByID(ctx, in.ProductID)
			if err != nil {
				return err
			}
			cost := product.PurchasePrice
			if in.UnitCost != nil {
				cost = *in.UnitCost
			}
			lines = append(lines, trade.PurchaseOrderLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    in.Quantity,
				UnitCost:    cost,
			})
		}

		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypePurchaseOrder)
		if err != nil {
			return err
		}
		po, err = trade.NewPurchaseOrder(publicID, req.SupplierID, lines)
		if err != nil {
			return err
		}
		po.Note = req.Note
		return repos.PurchaseOrders().Insert(ctx, po)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// Send marks a purchase order as sent to the supplier
func (s *PurchaseOrderService) Send(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, id, "send", func(_ scope.Repositories, po *trade.PurchaseOrder) error {
		return po.Send()
	})
}

// Receive books the goods into stock
func (s *PurchaseOrderService) Receive(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	resp, err := s.transition(ctx, id, "receive", func(repos scope.Repositories, po *trade.PurchaseOrder) error {
		received, err := po.Receive()
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(received))
		moves := make([]stockMove, len(received))
		for i, item := range received {
			ids[i] = item.ProductID
			moves[i] = stockMove{productID: item.ProductID, quantity: item.Quantity}
		}
		products, err := lockProducts(ctx, repos, ids)
		if err != nil {
			return err
		}
		return applyStock(ctx, repos, products, moves)
	})
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("purchase order received",
		zap.String("purchase_order_id", resp.ID.String()),
		zap.String("public_id", resp.PublicID),
		zap.Int("lines", len(resp.Items)),
	)
	return resp, nil
}

// Cancel cancels a purchase order that has not been received
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, id, "cancel", func(_ scope.Repositories, po *trade.PurchaseOrder) error {
		return po.Cancel(req.Reason)
	})
}

func (s *PurchaseOrderService) transition(ctx context.Context, id uuid.UUID, method string, fn func(scope.Repositories, *trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", method,
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, id.String()),
	)
	defer span.End()

	var po *trade.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(repos, po); err != nil {
			return err
		}
		return repos.PurchaseOrders().Save(ctx, po)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// GetByID retrieves a purchase order with its items
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	var po *trade.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// List retrieves a page of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseOrderResponse], error) {
	var orders []trade.PurchaseOrder
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		orders, total, err = repos.PurchaseOrders().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, ToPurchaseOrderResponse(&orders[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves a purchase order to the trash. Received stock stays on the shelf.
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypePurchaseOrder, id, reason, actorID)
}
