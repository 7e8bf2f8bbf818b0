package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a credit customer paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCheque PaymentMethod = "CHEQUE"
	PaymentMethodBank   PaymentMethod = "BANK"
)

// IsValid returns true if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBank:
		return true
	}
	return false
}

// CreditPayment is a payment received against a credit customer's balance,
// optionally allocated to one invoice.
type CreditPayment struct {
	shared.BaseEntity
	CustomerID  uuid.UUID       `json:"customer_id"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	Note        string          `json:"note"`
	PaymentDate time.Time       `json:"payment_date"`
	RecordedBy  *uuid.UUID      `json:"recorded_by,omitempty"`
}

// NewCreditPayment validates and creates a payment record
func NewCreditPayment(customerID uuid.UUID, invoiceID *uuid.UUID, amount decimal.Decimal, method PaymentMethod, note string) (*CreditPayment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount must be positive")
	}
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Payment method must be CASH, CHEQUE or BANK")
	}
	return &CreditPayment{
		BaseEntity:  shared.NewBaseEntity(),
		CustomerID:  customerID,
		InvoiceID:   invoiceID,
		Amount:      amount,
		Method:      method,
		Note:        note,
		PaymentDate: time.Now(),
	}, nil
}
