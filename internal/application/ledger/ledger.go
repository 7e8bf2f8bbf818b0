// Package ledger applies balance mutations to credit customers. Every caller
// that charges, reverses or pays runs through Ledger inside its own
// transaction, so the customer row lock, the balance update and the charge
// event commit or roll back together with the triggering document.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source identifies the document behind a balance mutation
type Source struct {
	Type      shared.EntityType
	ID        uuid.UUID
	Reference string
}

// Result is what a mutation left behind
type Result struct {
	Customer *partner.CreditCustomer
	Event    *partner.ChargeEvent
}

// Ledger mutates customer balances on the caller's transaction
type Ledger struct {
	metrics *telemetry.LedgerMetrics
}

// New creates a Ledger. metrics may be nil.
func New(metrics *telemetry.LedgerMetrics) *Ledger {
	return &Ledger{metrics: metrics}
}

// Charge raises the customer's balance. SALE and ORDER_CONFIRM are limit
// checked; CHEQUE_BOUNCE always goes through and may leave the customer over
// the limit.
func (l *Ledger) Charge(ctx context.Context, repos scope.Repositories, customerID uuid.UUID, amount decimal.Decimal, cause partner.ChargeCause, src Source) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "charge")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, customerID.String(),
		telemetry.SpanAttrAmount, amount.String(),
		telemetry.SpanAttrCause, cause.String(),
	)

	result, err := l.mutate(ctx, repos, customerID, src, func(c *partner.CreditCustomer) (*partner.ChargeEvent, error) {
		return c.Charge(amount, cause)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if result.Event.OverLimit {
		telemetry.AddEvent(span, "customer_over_limit", telemetry.SpanAttrCustomerID, customerID.String())
		logger.L(ctx).Warn("cheque bounce pushed customer over credit limit",
			zap.String("customer_id", customerID.String()),
			zap.String("public_id", result.Customer.PublicID),
			zap.String("credit_limit", result.Customer.CreditLimit.StringFixed(2)),
			zap.String("balance_after", result.Event.BalanceAfter.StringFixed(2)),
			zap.String("source_id", src.ID.String()),
		)
	}
	return result, nil
}

// Reverse lowers the balance by exactly amount when a charged document is
// cancelled. A zero amount is a no-op and returns a nil result.
func (l *Ledger) Reverse(ctx context.Context, repos scope.Repositories, customerID uuid.UUID, amount decimal.Decimal, cause partner.ChargeCause, src Source) (*Result, error) {
	if amount.IsZero() {
		return nil, nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "reverse")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, customerID.String(),
		telemetry.SpanAttrAmount, amount.String(),
		telemetry.SpanAttrCause, cause.String(),
	)

	result, err := l.mutate(ctx, repos, customerID, src, func(c *partner.CreditCustomer) (*partner.ChargeEvent, error) {
		return c.ReverseCharge(amount, cause)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// Pay applies a payment to the customer's balance
func (l *Ledger) Pay(ctx context.Context, repos scope.Repositories, customerID uuid.UUID, amount decimal.Decimal, src Source) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "pay")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, customerID.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	result, err := l.mutate(ctx, repos, customerID, src, func(c *partner.CreditCustomer) (*partner.ChargeEvent, error) {
		return c.ApplyPayment(amount)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// mutate is the lock, apply, save, append sequence shared by every mutation
func (l *Ledger) mutate(ctx context.Context, repos scope.Repositories, customerID uuid.UUID, src Source, apply func(*partner.CreditCustomer) (*partner.ChargeEvent, error)) (*Result, error) {
	ctx = logger.WithCustomerID(ctx, customerID.String())
	customer, err := repos.Customers().FindByIDForUpdate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	event, err := apply(customer)
	if err != nil {
		return nil, err
	}
	if src.Type != "" {
		event.WithSource(src.Type, src.ID, src.Reference)
	}

	if err := repos.Customers().Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer %s: %w", customer.PublicID, err)
	}
	if err := repos.ChargeEvents().Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append charge event: %w", err)
	}

	logger.L(ctx).Info("customer balance changed",
		zap.String("customer_id", customer.ID.String()),
		zap.String("cause", event.Cause.String()),
		zap.String("amount", event.Amount.StringFixed(2)),
		zap.String("balance_after", event.BalanceAfter.StringFixed(2)),
		zap.String("reference", event.Reference),
	)
	l.metrics.RecordBalanceMutation(ctx, event.Cause.String(), event.Amount, event.OverLimit)

	return &Result{Customer: customer, Event: event}, nil
}
