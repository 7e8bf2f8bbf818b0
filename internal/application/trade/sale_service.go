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

// SaleService records counter sales. A credit sale deducts stock, charges the
// customer and creates the invoice in one transaction.
type SaleService struct {
	txScope  scope.TransactionScope
	ledger   *ledger.Ledger
	archiver archive.Archiver
}

// NewSaleService creates a new SaleService
func NewSaleService(txScope scope.TransactionScope, ledger *ledger.Ledger, archiver archive.Archiver) *SaleService {
	return &SaleService{
		txScope:  txScope,
		ledger:   ledger,
		archiver: archiver,
	}
}

// Create records a sale. For CREDIT the total is charged to the customer
// under the credit limit; a rejected charge leaves stock untouched.
func (s *SaleService) Create(ctx context.Context, req CreateSaleRequest, cashierID *uuid.UUID) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
	defer span.End()

	method := trade.PaymentMethod(req.PaymentMethod)
	var sale *trade.Sale
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var customer *partner.CreditCustomer
		if method == trade.PaymentMethodCredit && req.CustomerID != nil {
			var err error
			if customer, err = repos.Customers().FindByID(ctx, *req.CustomerID); err != nil {
				return err
			}
			if !customer.IsActive() {
				return shared.NewValidationError(fmt.Sprintf("Credit customer %s is inactive", customer.PublicID))
			}
		}

		lines, err := saleLines(ctx, repos, req.Items)
		if err != nil {
			return err
		}
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeSale)
		if err != nil {
			return err
		}
		sale, err = trade.NewSale(publicID, method, req.CustomerID, lines)
		if err != nil {
			return err
		}
		sale.CashierID = cashierID
		sale.Note = req.Note

		// a zero-total invoice is already settled and books nothing
		if customer != nil && sale.TotalRevenue.IsPositive() {
			result, err := s.ledger.Charge(ctx, repos, customer.ID, sale.TotalRevenue, partner.ChargeCauseSale, ledger.Source{
				Type:      shared.EntityTypeSale,
				ID:        sale.ID,
				Reference: sale.PublicID,
			})
			if err != nil {
				return err
			}
			sale.MarkCharged(sale.TotalRevenue, result.Customer.DueDate(sale.SaleDate))
		}
		return repos.Sales().Insert(ctx, sale)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPublicID, sale.PublicID,
		telemetry.SpanAttrAmount, sale.TotalRevenue.String(),
	)
	logger.L(ctx).Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("public_id", sale.PublicID),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("total", sale.TotalRevenue.StringFixed(2)),
	)
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale with its items
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves a page of sales
func (s *SaleService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[SaleResponse], error) {
	var sales []trade.Sale
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		sales, total, err = repos.Sales().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, ToSaleResponse(&sales[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves a sale to the trash. The unpaid part of a credit sale is
// reversed off the customer's balance.
func (s *SaleService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypeSale, id, reason, actorID)
}
