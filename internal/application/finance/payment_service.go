package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService records payments from credit customers. The account
// balance and the invoice move together in one transaction.
type PaymentService struct {
	txScope scope.TransactionScope
	ledger  *ledger.Ledger
	metrics *telemetry.LedgerMetrics
}

// NewPaymentService creates a new PaymentService. metrics may be nil.
func NewPaymentService(txScope scope.TransactionScope, ledger *ledger.Ledger, metrics *telemetry.LedgerMetrics) *PaymentService {
	return &PaymentService{
		txScope: txScope,
		ledger:  ledger,
		metrics: metrics,
	}
}

// RecordPayment applies a payment to the customer's balance and, when an
// invoice is named, to that invoice. The invoice must belong to the customer
// and the amount may not exceed what is still due on it.
func (s *PaymentService) RecordPayment(ctx context.Context, customerID uuid.UUID, req RecordPaymentRequest, actorID *uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, customerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()),
	)
	defer span.End()

	var response *PaymentResponse
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		response, err = s.record(ctx, repos, customerID, req, actorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.paymentRecorded(ctx, response)
	return response, nil
}

// PayInvoice records a payment against a credit sale for the sale's customer
func (s *PaymentService) PayInvoice(ctx context.Context, saleID uuid.UUID, req RecordPaymentRequest, actorID *uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "pay_invoice",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, saleID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()),
	)
	defer span.End()

	var response *PaymentResponse
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.CreditCustomerID == nil {
			return shared.NewValidationError(fmt.Sprintf("Sale %s was paid in cash and takes no payments", sale.PublicID))
		}
		req.InvoiceID = &sale.ID
		response, err = s.record(ctx, repos, *sale.CreditCustomerID, req, actorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.paymentRecorded(ctx, response)
	return response, nil
}

func (s *PaymentService) record(ctx context.Context, repos scope.Repositories, customerID uuid.UUID, req RecordPaymentRequest, actorID *uuid.UUID) (*PaymentResponse, error) {
	payment, err := finance.NewCreditPayment(customerID, req.InvoiceID, req.Amount, finance.PaymentMethod(req.Method), req.Note)
	if err != nil {
		return nil, err
	}
	payment.RecordedBy = actorID

	src := ledger.Source{ID: payment.ID}
	var invoice *trade.Sale
	if req.InvoiceID != nil {
		invoice, err = repos.Sales().FindByIDForUpdate(ctx, *req.InvoiceID)
		if err != nil {
			return nil, err
		}
		if invoice.CreditCustomerID == nil || *invoice.CreditCustomerID != customerID {
			return nil, shared.NewValidationError(fmt.Sprintf("Invoice %s does not belong to this customer", invoice.PublicID))
		}
		if err := invoice.ApplyPayment(req.Amount); err != nil {
			return nil, err
		}
		if err := repos.Sales().Save(ctx, invoice); err != nil {
			return nil, fmt.Errorf("failed to save invoice %s: %w", invoice.PublicID, err)
		}
		src = ledger.Source{Type: shared.EntityTypeSale, ID: invoice.ID, Reference: invoice.PublicID}
	}

	result, err := s.ledger.Pay(ctx, repos, customerID, req.Amount, src)
	if err != nil {
		return nil, err
	}
	if err := repos.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	response := ToPaymentResponse(payment)
	response.BalanceAfter = result.Customer.OutstandingBalance
	if invoice != nil {
		response.InvoiceStatus = string(invoice.PaymentStatus)
	}
	return &response, nil
}

func (s *PaymentService) paymentRecorded(ctx context.Context, p *PaymentResponse) {
	s.metrics.RecordPayment(ctx, p.Method)
	fields := []zap.Field{
		zap.String("payment_id", p.ID.String()),
		zap.String("customer_id", p.CustomerID.String()),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.String("method", p.Method),
	}
	if p.InvoiceID != nil {
		fields = append(fields,
			zap.String("invoice_id", p.InvoiceID.String()),
			zap.String("invoice_status", p.InvoiceStatus),
		)
	}
	logger.L(ctx).Info("payment recorded", fields...)
}

// ListByCustomer lists a customer's payments, newest first
func (s *PaymentService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[PaymentResponse], error) {
	var payments []finance.CreditPayment
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if ok, err := repos.Customers().ExistsByID(ctx, customerID); err != nil {
			return err
		} else if !ok {
			return shared.NewNotFoundError("Credit customer")
		}
		var err error
		payments, total, err = repos.Payments().FindByCustomer(ctx, customerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, ToPaymentResponse(&payments[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
