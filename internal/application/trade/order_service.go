package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderService handles draft orders and their confirmation into invoices
type OrderService struct {
	txScope  scope.TransactionScope
	ledger   *ledger.Ledger
	archiver archive.Archiver
}

// NewOrderService creates a new OrderService
func NewOrderService(txScope scope.TransactionScope, ledger *ledger.Ledger, archiver archive.Archiver) *OrderService {
	return &OrderService{
		txScope:  txScope,
		ledger:   ledger,
		archiver: archiver,
	}
}

// Create opens a draft order, optionally with its first lines
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create")
	defer span.End()

	var order *trade.Order
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if req.CustomerID != nil && trade.PaymentType(req.PaymentType) == trade.PaymentTypeCredit {
			if ok, err := repos.Customers().ExistsByID(ctx, *req.CustomerID); err != nil {
				return err
			} else if !ok {
				return shared.NewNotFoundError("Credit customer")
			}
		}

		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeOrder)
		if err != nil {
			return err
		}
		order, err = trade.NewOrder(publicID, trade.PaymentType(req.PaymentType), req.CustomerID)
		if err != nil {
			return err
		}
		for _, line := range req.Items {
			if err := addLine(ctx, repos, order, line); err != nil {
				return err
			}
		}
		return repos.Orders().Insert(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// AddItem adds a product line to a draft order at the catalog price unless
// a price is given
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, req AddOrderItemRequest) (*OrderResponse, error) {
	return s.modify(ctx, orderID, "add_item", func(repos scope.Repositories, order *trade.Order) error {
		return addLine(ctx, repos, order, req.LineInput)
	})
}

// RemoveItem removes a line from a draft order
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*OrderResponse, error) {
	return s.modify(ctx, orderID, "remove_item", func(_ scope.Repositories, order *trade.Order) error {
		return order.RemoveItem(itemID)
	})
}

// Void cancels a draft order. Nothing was deducted or charged yet.
func (s *OrderService) Void(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.modify(ctx, orderID, "void", func(_ scope.Repositories, order *trade.Order) error {
		return order.Void()
	})
}

func (s *OrderService) modify(ctx context.Context, orderID uuid.UUID, method string, fn func(scope.Repositories, *trade.Order) error) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", method,
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, orderID.String()),
	)
	defer span.End()

	var order *trade.Order
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := fn(repos, order); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// Confirm turns a draft order into an invoice. Stock is deducted, the sale
// is created and linked, and a credit order charges the customer with cause
// ORDER_CONFIRM under the credit limit. Any failure leaves the order a draft.
func (s *OrderService) Confirm(ctx context.Context, orderID uuid.UUID, cashierID *uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "confirm",
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, orderID.String()),
	)
	defer span.End()

	var order *trade.Order
	var sale *trade.Sale
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != trade.OrderStatusDraft {
			return shared.NewInvalidStateTransition("order", string(order.Status), string(trade.OrderStatusConfirmed))
		}
		if len(order.Items) == 0 {
			return shared.NewValidationError("Cannot confirm an order without items")
		}

		ids := make([]uuid.UUID, len(order.Items))
		moves := make([]stockMove, len(order.Items))
		for i, item := range order.Items {
			ids[i] = item.ProductID
			moves[i] = stockMove{productID: item.ProductID, quantity: -item.Quantity}
		}
		products, err := lockProducts(ctx, repos, ids)
		if err != nil {
			return err
		}
		if err := applyStock(ctx, repos, products, moves); err != nil {
			return err
		}

		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeSale)
		if err != nil {
			return err
		}
		lines := order.SaleLines()
		for i := range lines {
			lines[i].Category = products[lines[i].ProductID].Category
		}
		sale, err = trade.NewSale(publicID, order.PaymentType.SaleMethod(), order.CreditCustomerID, lines)
		if err != nil {
			return err
		}
		sale.LinkOrder(order.ID)
		sale.CashierID = cashierID

		if sale.CreditCustomerID != nil && sale.TotalRevenue.IsPositive() {
			result, err := s.ledger.Charge(ctx, repos, *sale.CreditCustomerID, sale.TotalRevenue, partner.ChargeCauseOrderConfirm, ledger.Source{
				Type:      shared.EntityTypeOrder,
				ID:        order.ID,
				Reference: order.PublicID,
			})
			if err != nil {
				return err
			}
			sale.MarkCharged(sale.TotalRevenue, result.Customer.DueDate(sale.SaleDate))
		}
		if err := repos.Sales().Insert(ctx, sale); err != nil {
			return fmt.Errorf("failed to create sale for order %s: %w", order.PublicID, err)
		}

		if err := order.Confirm(sale.ID); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("public_id", order.PublicID),
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_public_id", sale.PublicID),
		zap.String("total", sale.TotalRevenue.StringFixed(2)),
	)
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order with its items
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	var order *trade.Order
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves a page of orders
func (s *OrderService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	var orders []trade.Order
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		orders, total, err = repos.Orders().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, ToOrderResponse(&orders[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves an order to the trash. A confirmed credit order takes its
// invoice with it and reverses the unpaid charge.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypeOrder, id, reason, actorID)
}

func addLine(ctx context.Context, repos scope.Repositories, order *trade.Order, line LineInput) error {
	product, err := repos.Products().FindByID(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if !product.IsSellable() {
		return shared.NewValidationError(fmt.Sprintf("Product %s is not available for sale", product.PublicID))
	}
	price := product.UnitPrice
	if line.UnitPrice != nil {
		price = *line.UnitPrice
	}
	_, err = order.AddItem(product.ID, product.Name, line.Quantity, price)
	return err
}
