package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrCause         = attribute.Key("cause")
	AttrOverLimit     = attribute.Key("over_limit")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrEntityType    = attribute.Key("entity_type")
	AttrOutcome       = attribute.Key("outcome")
)

// Restore outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
)

// ErrMeterNil is returned when NewLedgerMetrics gets no meter
var ErrMeterNil = errors.New("NewLedgerMetrics: meter cannot be nil")

// LedgerMetrics counts balance mutations and trash activity. A nil
// *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	balanceMutations metric.Int64Counter
	mutationAmount   metric.Float64Counter
	payments         metric.Int64Counter
	bounces          metric.Int64Counter
	archives         metric.Int64Counter
	restores         metric.Int64Counter
	purges           metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	lm := &LedgerMetrics{}
	var err error
	if lm.balanceMutations, err = meter.Int64Counter("ledger_balance_mutations_total",
		metric.WithDescription("Credit balance mutations by cause"),
		metric.WithUnit("{events}")); err != nil {
		return nil, counterErr("ledger_balance_mutations_total", err)
	}
	if lm.mutationAmount, err = meter.Float64Counter("ledger_balance_mutation_amount_total",
		metric.WithDescription("Sum of credit balance mutation amounts by cause"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, counterErr("ledger_balance_mutation_amount_total", err)
	}
	if lm.payments, err = meter.Int64Counter("ledger_payments_total",
		metric.WithDescription("Recorded credit payments by method"),
		metric.WithUnit("{payments}")); err != nil {
		return nil, counterErr("ledger_payments_total", err)
	}
	if lm.bounces, err = meter.Int64Counter("ledger_cheque_bounces_total",
		metric.WithDescription("Cheques that bounced for the first time"),
		metric.WithUnit("{cheques}")); err != nil {
		return nil, counterErr("ledger_cheque_bounces_total", err)
	}
	if lm.archives, err = meter.Int64Counter("archive_snapshots_created_total",
		metric.WithDescription("Aggregates moved to the trash"),
		metric.WithUnit("{snapshots}")); err != nil {
		return nil, counterErr("archive_snapshots_created_total", err)
	}
	if lm.restores, err = meter.Int64Counter("archive_restores_total",
		metric.WithDescription("Restore attempts by outcome"),
		metric.WithUnit("{restores}")); err != nil {
		return nil, counterErr("archive_restores_total", err)
	}
	if lm.purges, err = meter.Int64Counter("archive_purges_total",
		metric.WithDescription("Snapshots permanently deleted"),
		metric.WithUnit("{snapshots}")); err != nil {
		return nil, counterErr("archive_purges_total", err)
	}
	return lm, nil
}

func counterErr(name string, err error) error {
	return fmt.Errorf("failed to create counter %s: %w", name, err)
}

// RecordBalanceMutation counts one charge event
func (m *LedgerMetrics) RecordBalanceMutation(ctx context.Context, cause string, amount decimal.Decimal, overLimit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrCause.String(cause), AttrOverLimit.Bool(overLimit))
	m.balanceMutations.Add(ctx, 1, attrs)
	m.mutationAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

// RecordPayment counts a recorded credit payment
func (m *LedgerMetrics) RecordPayment(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.payments.Add(ctx, 1, metric.WithAttributes(AttrPaymentMethod.String(method)))
}

// RecordBounce counts a first bounce
func (m *LedgerMetrics) RecordBounce(ctx context.Context, overLimit bool) {
	if m == nil {
		return
	}
	m.bounces.Add(ctx, 1, metric.WithAttributes(AttrOverLimit.Bool(overLimit)))
}

// RecordArchive counts a snapshot taken on delete
func (m *LedgerMetrics) RecordArchive(ctx context.Context, entityType string) {
	if m == nil {
		return
	}
	m.archives.Add(ctx, 1, metric.WithAttributes(AttrEntityType.String(entityType)))
}

// RecordRestore counts a restore attempt with its outcome
func (m *LedgerMetrics) RecordRestore(ctx context.Context, entityType, outcome string) {
	if m == nil {
		return
	}
	m.restores.Add(ctx, 1, metric.WithAttributes(
		AttrEntityType.String(entityType),
		AttrOutcome.String(outcome),
	))
}

// RecordPurge counts a permanent delete
func (m *LedgerMetrics) RecordPurge(ctx context.Context, entityType string) {
	if m == nil {
		return
	}
	m.purges.Add(ctx, 1, metric.WithAttributes(AttrEntityType.String(entityType)))
}
