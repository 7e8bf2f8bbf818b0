package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditCustomerStatus represents the status of a credit customer
type CreditCustomerStatus string

const (
	CreditCustomerStatusActive   CreditCustomerStatus = "ACTIVE"
	CreditCustomerStatusInactive CreditCustomerStatus = "INACTIVE"
)

// IsValid returns true if the status is known
func (s CreditCustomerStatus) IsValid() bool {
	return s == CreditCustomerStatusActive || s == CreditCustomerStatusInactive
}

// DefaultPaymentTermsDays is applied when a customer is created without terms
const DefaultPaymentTermsDays = 30

// CreditCustomer is a customer account buying on credit. It is the aggregate
// root of the credit ledger: every change to OutstandingBalance goes through
// Charge, ApplyPayment or ReverseCharge and yields a ChargeEvent.
//
// OutstandingBalance never goes negative and stays within CreditLimit after
// every limit-checked charge. Only a cheque bounce may push it past the limit.
type CreditCustomer struct {
	shared.BaseAggregateRoot
	Name                string               `json:"name"`
	Phone               string               `json:"phone"`
	Address             string               `json:"address"`
	CreditLimit         decimal.Decimal      `json:"credit_limit"`
	OutstandingBalance  decimal.Decimal      `json:"outstanding_balance"`
	PaymentTermsDays    int                  `json:"payment_terms_days"`
	AuthorizedThreshold *decimal.Decimal     `json:"authorized_threshold,omitempty"`
	TotalPurchases      decimal.Decimal      `json:"total_purchases"`
	TotalPaid           decimal.Decimal      `json:"total_paid"`
	LastPaymentDate     *time.Time           `json:"last_payment_date,omitempty"`
	Status              CreditCustomerStatus `json:"status"`
}

// NewCreditCustomer creates an active credit customer with a zero balance
func NewCreditCustomer(publicID, name, phone string, creditLimit decimal.Decimal, paymentTermsDays int) (*CreditCustomer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewValidationError("Credit limit cannot be negative")
	}
	if paymentTermsDays < 0 {
		return nil, shared.NewValidationError("Payment terms cannot be negative")
	}
	if paymentTermsDays == 0 {
		paymentTermsDays = DefaultPaymentTermsDays
	}

	return &CreditCustomer{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(publicID),
		Name:               strings.TrimSpace(name),
		Phone:              strings.TrimSpace(phone),
		CreditLimit:        creditLimit,
		OutstandingBalance: decimal.Zero,
		PaymentTermsDays:   paymentTermsDays,
		TotalPurchases:     decimal.Zero,
		TotalPaid:          decimal.Zero,
		Status:             CreditCustomerStatusActive,
	}, nil
}

// AvailableCredit returns max(0, limit - outstanding)
func (c *CreditCustomer) AvailableCredit() decimal.Decimal {
	available := c.CreditLimit.Sub(c.OutstandingBalance)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// IsOverLimit returns true when a forced charge left the balance above the limit
func (c *CreditCustomer) IsOverLimit() bool {
	return c.OutstandingBalance.GreaterThan(c.CreditLimit)
}

// Charge raises the outstanding balance. SALE and ORDER_CONFIRM are checked
// against the credit limit and leave the account untouched on failure.
// CHEQUE_BOUNCE is applied unconditionally and flags OverLimit on the event.
func (c *CreditCustomer) Charge(amount decimal.Decimal, cause ChargeCause) (*ChargeEvent, error) {
	if !cause.IsIncrease() {
		return nil, shared.NewValidationError(fmt.Sprintf("%s is not a charge cause", cause))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Charge amount must be positive")
	}

	before := c.OutstandingBalance
	after := before.Add(amount)
	if cause.IsLimitChecked() && after.GreaterThan(c.CreditLimit) {
		return nil, shared.NewCreditLimitExceededError(c.CreditLimit, before, amount)
	}

	c.OutstandingBalance = after
	if cause != ChargeCauseChequeBounce {
		c.TotalPurchases = c.TotalPurchases.Add(amount)
	}
	c.touch()

	event := newChargeEvent(c.ID, cause, amount, before, after)
	event.OverLimit = after.GreaterThan(c.CreditLimit)
	return event, nil
}

// ApplyPayment lowers the outstanding balance by amount and records the payment
// date. The amount must be positive and no larger than the balance.
func (c *CreditCustomer) ApplyPayment(amount decimal.Decimal) (*ChargeEvent, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount must be positive")
	}
	if amount.GreaterThan(c.OutstandingBalance) {
		return nil, shared.NewDomainError(shared.CodeAmountExceedsBalance,
			fmt.Sprintf("Payment %s exceeds outstanding balance %s",
				amount.StringFixed(2), c.OutstandingBalance.StringFixed(2)))
	}

	before := c.OutstandingBalance
	c.OutstandingBalance = before.Sub(amount)
	c.TotalPaid = c.TotalPaid.Add(amount)
	today := truncateToDay(time.Now())
	c.LastPaymentDate = &today
	c.touch()

	return newChargeEvent(c.ID, ChargeCausePayment, amount, before, c.OutstandingBalance), nil
}

// ReverseCharge lowers the balance by exactly amount when a charged document
// is cancelled. A result below zero means the ledger drifted and is reported
// as an invariant violation instead of being clamped.
func (c *CreditCustomer) ReverseCharge(amount decimal.Decimal, cause ChargeCause) (*ChargeEvent, error) {
	if !cause.IsReversal() {
		return nil, shared.NewValidationError(fmt.Sprintf("%s is not a reversal cause", cause))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Reversal amount must be positive")
	}

	before := c.OutstandingBalance
	after := before.Sub(amount)
	if after.IsNegative() {
		return nil, shared.NewInvariantViolationError("non_negative_balance",
			fmt.Sprintf("Reversing %s from customer %s would leave a negative balance %s",
				amount.StringFixed(2), c.PublicID, after.StringFixed(2)))
	}

	c.OutstandingBalance = after
	c.TotalPurchases = decimal.Max(decimal.Zero, c.TotalPurchases.Sub(amount))
	c.touch()

	return newChargeEvent(c.ID, cause, amount, before, after), nil
}

// CanDelete reports whether the customer may be archived: the balance must be
// zero and no unpaid or partially paid invoice may reference it.
func (c *CreditCustomer) CanDelete(unsettledInvoices int64) error {
	if !c.OutstandingBalance.IsZero() {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Customer %s still owes %s", c.PublicID, c.OutstandingBalance.StringFixed(2)))
	}
	if unsettledInvoices > 0 {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Customer %s has %d unsettled invoices", c.PublicID, unsettledInvoices))
	}
	return nil
}

// Update changes contact fields, limit and terms. Lowering the limit below the
// current balance is allowed; the returned flag reports it. An update that
// keeps or raises the limit never sets the flag, even for a customer already
// over the limit.
func (c *CreditCustomer) Update(name, phone, address string, creditLimit decimal.Decimal, paymentTermsDays int) (belowBalance bool, err error) {
	if err := validateCustomerName(name); err != nil {
		return false, err
	}
	if creditLimit.IsNegative() {
		return false, shared.NewValidationError("Credit limit cannot be negative")
	}
	if paymentTermsDays < 0 {
		return false, shared.NewValidationError("Payment terms cannot be negative")
	}

	lowered := creditLimit.LessThan(c.CreditLimit)
	c.Name = strings.TrimSpace(name)
	c.Phone = strings.TrimSpace(phone)
	c.Address = strings.TrimSpace(address)
	c.CreditLimit = creditLimit
	if paymentTermsDays > 0 {
		c.PaymentTermsDays = paymentTermsDays
	}
	c.touch()
	return lowered && c.OutstandingBalance.GreaterThan(creditLimit), nil
}

// SetAuthorizedThreshold sets the optional sign-off threshold; nil clears it
func (c *CreditCustomer) SetAuthorizedThreshold(threshold *decimal.Decimal) error {
	if threshold != nil && threshold.IsNegative() {
		return shared.NewValidationError("Authorized threshold cannot be negative")
	}
	c.AuthorizedThreshold = threshold
	c.touch()
	return nil
}

// Deactivate marks the customer inactive
func (c *CreditCustomer) Deactivate() {
	c.Status = CreditCustomerStatusInactive
	c.touch()
}

// Activate marks the customer active
func (c *CreditCustomer) Activate() {
	c.Status = CreditCustomerStatusActive
	c.touch()
}

// IsActive returns true if the customer may be charged for new sales
func (c *CreditCustomer) IsActive() bool {
	return c.Status == CreditCustomerStatusActive
}

// DueDate returns the due date of an invoice issued on issuedAt
func (c *CreditCustomer) DueDate(issuedAt time.Time) time.Time {
	return truncateToDay(issuedAt).AddDate(0, 0, c.PaymentTermsDays)
}

// Summary returns a read-only view of the account
func (c *CreditCustomer) Summary() CreditSummary {
	return CreditSummary{
		CustomerID:         c.ID,
		PublicID:           c.PublicID,
		Name:               c.Name,
		CreditLimit:        c.CreditLimit,
		OutstandingBalance: c.OutstandingBalance,
		AvailableCredit:    c.AvailableCredit(),
		TotalPurchases:     c.TotalPurchases,
		TotalPaid:          c.TotalPaid,
		LastPaymentDate:    c.LastPaymentDate,
		PaymentTermsDays:   c.PaymentTermsDays,
		Status:             c.Status,
	}
}

func (c *CreditCustomer) touch() {
	c.Touch()
	c.IncrementVersion()
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Customer name cannot exceed 200 characters")
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
