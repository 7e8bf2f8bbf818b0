package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChargeCause identifies what moved a credit customer's outstanding balance
type ChargeCause string

const (
	// ChargeCauseSale is a credit sale invoiced directly
	ChargeCauseSale ChargeCause = "SALE"
	// ChargeCauseOrderConfirm is a credit order being confirmed into an invoice
	ChargeCauseOrderConfirm ChargeCause = "ORDER_CONFIRM"
	// ChargeCausePayment is a customer payment (balance decrease)
	ChargeCausePayment ChargeCause = "PAYMENT"
	// ChargeCauseChequeBounce is a bounced cheque turned into debt; never limit-checked
	ChargeCauseChequeBounce ChargeCause = "CHEQUE_BOUNCE"
	// ChargeCauseOrderCancelReversal undoes the charge of a deleted confirmed order
	ChargeCauseOrderCancelReversal ChargeCause = "ORDER_CANCEL_REVERSAL"
	// ChargeCauseSaleReversal undoes the charge of a deleted sale
	ChargeCauseSaleReversal ChargeCause = "SALE_REVERSAL"
)

// String returns the string representation of ChargeCause
func (c ChargeCause) String() string {
	return string(c)
}

// IsValid returns true if the cause is known
func (c ChargeCause) IsValid() bool {
	switch c {
	case ChargeCauseSale,
		ChargeCauseOrderConfirm,
		ChargeCausePayment,
		ChargeCauseChequeBounce,
		ChargeCauseOrderCancelReversal,
		ChargeCauseSaleReversal:
		return true
	}
	return false
}

// IsIncrease returns true if this cause raises the outstanding balance
func (c ChargeCause) IsIncrease() bool {
	switch c {
	case ChargeCauseSale, ChargeCauseOrderConfirm, ChargeCauseChequeBounce:
		return true
	}
	return false
}

// IsLimitChecked returns true if charges with this cause must respect the credit limit
func (c ChargeCause) IsLimitChecked() bool {
	return c == ChargeCauseSale || c == ChargeCauseOrderConfirm
}

// IsReversal returns true for the causes accepted by ReverseCharge
func (c ChargeCause) IsReversal() bool {
	return c == ChargeCauseOrderCancelReversal || c == ChargeCauseSaleReversal
}

// ChargeEvent is an immutable record of one balance mutation on a credit customer.
// Corrections are made with new events, never by editing old ones.
type ChargeEvent struct {
	shared.BaseEntity
	CustomerID    uuid.UUID         `json:"customer_id"`
	Cause         ChargeCause       `json:"cause"`
	Amount        decimal.Decimal   `json:"amount"` // always positive; direction comes from Cause
	BalanceBefore decimal.Decimal   `json:"balance_before"`
	BalanceAfter  decimal.Decimal   `json:"balance_after"`
	SourceType    shared.EntityType `json:"source_type"`
	SourceID      *uuid.UUID        `json:"source_id,omitempty"`
	Reference     string            `json:"reference"`
	OverLimit     bool              `json:"over_limit"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

func newChargeEvent(customerID uuid.UUID, cause ChargeCause, amount, before, after decimal.Decimal) *ChargeEvent {
	return &ChargeEvent{
		BaseEntity:    shared.NewBaseEntity(),
		CustomerID:    customerID,
		Cause:         cause,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		OccurredAt:    time.Now(),
	}
}

// WithSource links the event to the document that caused it
func (e *ChargeEvent) WithSource(sourceType shared.EntityType, sourceID uuid.UUID, reference string) *ChargeEvent {
	e.SourceType = sourceType
	e.SourceID = &sourceID
	e.Reference = reference
	return e
}

// Delta returns the signed balance change
func (e *ChargeEvent) Delta() decimal.Decimal {
	return e.BalanceAfter.Sub(e.BalanceBefore)
}
