package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CustomerService handles credit customer accounts. Balance changes are not
// made here; sales, orders, payments and cheques move the balance through
// the ledger.
type CustomerService struct {
	txScope  scope.TransactionScope
	archiver archive.Archiver
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(txScope scope.TransactionScope, archiver archive.Archiver) *CustomerService {
	return &CustomerService{
		txScope:  txScope,
		archiver: archiver,
	}
}

// Create creates a credit customer and assigns its public id
func (s *CustomerService) Create(ctx context.Context, req CreateCreditCustomerRequest) (*CreditCustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_customer", "create")
	defer span.End()

	var customer *partner.CreditCustomer
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeCreditCustomer)
		if err != nil {
			return err
		}
		customer, err = partner.NewCreditCustomer(publicID, req.Name, req.Phone, req.CreditLimit, req.PaymentTermsDays)
		if err != nil {
			return err
		}
		customer.Address = req.Address
		if err := customer.SetAuthorizedThreshold(req.AuthorizedThreshold); err != nil {
			return err
		}
		return repos.Customers().Save(ctx, customer)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPublicID, customer.PublicID)
	logger.L(ctx).Info("credit customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("public_id", customer.PublicID),
		zap.String("credit_limit", customer.CreditLimit.StringFixed(2)),
	)
	response := ToCreditCustomerResponse(customer)
	return &response, nil
}

// Update changes contact fields, limit, terms and status. A limit lowered
// below the outstanding balance is accepted and flagged on the response.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCreditCustomerRequest) (*CreditCustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_customer", "update",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, id.String()),
	)
	defer span.End()

	var customer *partner.CreditCustomer
	var belowBalance bool
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		customer, err = repos.Customers().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		name, phone, address := customer.Name, customer.Phone, customer.Address
		limit, terms := customer.CreditLimit, customer.PaymentTermsDays
		if req.Name != nil {
			name = *req.Name
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Address != nil {
			address = *req.Address
		}
		if req.CreditLimit != nil {
			limit = *req.CreditLimit
		}
		if req.PaymentTermsDays != nil {
			terms = *req.PaymentTermsDays
		}
		belowBalance, err = customer.Update(name, phone, address, limit, terms)
		if err != nil {
			return err
		}

		if req.AuthorizedThreshold != nil {
			if err := customer.SetAuthorizedThreshold(req.AuthorizedThreshold); err != nil {
				return err
			}
		}
		if req.Status != nil {
			switch partner.CreditCustomerStatus(*req.Status) {
			case partner.CreditCustomerStatusActive:
				customer.Activate()
			case partner.CreditCustomerStatusInactive:
				customer.Deactivate()
			}
		}
		return repos.Customers().Save(ctx, customer)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if belowBalance {
		logger.L(ctx).Warn("credit limit lowered below outstanding balance",
			zap.String("customer_id", customer.ID.String()),
			zap.String("credit_limit", customer.CreditLimit.StringFixed(2)),
			zap.String("outstanding_balance", customer.OutstandingBalance.StringFixed(2)),
		)
	}
	response := ToCreditCustomerResponse(customer)
	response.LimitBelowBalance = belowBalance
	return &response, nil
}

// GetByID retrieves a credit customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CreditCustomerResponse, error) {
	var customer *partner.CreditCustomer
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		customer, err = repos.Customers().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToCreditCustomerResponse(customer)
	return &response, nil
}

// GetByPublicID retrieves a credit customer by its public id, e.g. CC-0001
func (s *CustomerService) GetByPublicID(ctx context.Context, publicID string) (*CreditCustomerResponse, error) {
	var customer *partner.CreditCustomer
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		customer, err = repos.Customers().FindByPublicID(ctx, publicID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToCreditCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of credit customers
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[CreditCustomerResponse], error) {
	var customers []partner.CreditCustomer
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		customers, total, err = repos.Customers().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]CreditCustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, ToCreditCustomerResponse(&customers[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Summary returns the ledger view of one customer
func (s *CustomerService) Summary(ctx context.Context, id uuid.UUID) (*partner.CreditSummary, error) {
	var summary partner.CreditSummary
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		customer, err := repos.Customers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		summary = customer.Summary()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Portfolio aggregates limits and balances across all customers
func (s *CustomerService) Portfolio(ctx context.Context) (*partner.PortfolioSummary, error) {
	var portfolio partner.PortfolioSummary
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		portfolio, err = repos.Customers().Portfolio(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// Invoices lists a customer's credit sales; unsettledOnly keeps UNPAID and PARTIAL
func (s *CustomerService) Invoices(ctx context.Context, id uuid.UUID, unsettledOnly bool, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	var sales []trade.Sale
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if ok, err := repos.Customers().ExistsByID(ctx, id); err != nil {
			return err
		} else if !ok {
			return shared.NewNotFoundError("Credit customer")
		}
		var err error
		sales, total, err = repos.Sales().FindByCustomer(ctx, id, unsettledOnly, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]InvoiceResponse, 0, len(sales))
	for i := range sales {
		items = append(items, ToInvoiceResponse(&sales[i], now))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Charges lists a customer's ledger entries, newest first
func (s *CustomerService) Charges(ctx context.Context, id uuid.UUID, filter shared.Filter) (*shared.Paginated[ChargeEventResponse], error) {
	var events []partner.ChargeEvent
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if ok, err := repos.Customers().ExistsByID(ctx, id); err != nil {
			return err
		} else if !ok {
			return shared.NewNotFoundError("Credit customer")
		}
		var err error
		events, total, err = repos.ChargeEvents().FindByCustomer(ctx, id, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]ChargeEventResponse, 0, len(events))
	for i := range events {
		items = append(items, ToChargeEventResponse(&events[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves a settled customer to the trash
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypeCreditCustomer, id, reason, actorID)
}
