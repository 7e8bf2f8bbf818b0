package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale is settled
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCredit PaymentMethod = "CREDIT"
)

// IsValid returns true if the method is known
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCredit
}

// PaymentStatus is the settlement state of an invoice
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// UnsettledStatuses are the statuses that block deleting the customer
var UnsettledStatuses = []PaymentStatus{PaymentStatusUnpaid, PaymentStatusPartial}

// SaleLine is the input for one invoice line
type SaleLine struct {
	ProductID   uuid.UUID
	ProductName string
	Category    string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// SaleItem is a line of a sale. Product name and category are copied at sale
// time so later catalog edits do not rewrite history.
type SaleItem struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Sale is an invoice. For credit sales it is the document a customer's
// charge and payments are booked against.
//
// PaymentStatus is always derived from PaidAmount and TotalRevenue:
// PAID iff paid >= total, PARTIAL iff 0 < paid < total, otherwise UNPAID.
type Sale struct {
	shared.BaseAggregateRoot
	SaleDate         time.Time       `json:"sale_date"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalItemsSold   int             `json:"total_items_sold"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	ChargedAmount    decimal.Decimal `json:"charged_amount"` // amount booked on the customer's ledger
	DueDate          *time.Time      `json:"due_date,omitempty"`
	CreditCustomerID *uuid.UUID      `json:"credit_customer_id,omitempty"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	CashierID        *uuid.UUID      `json:"cashier_id,omitempty"`
	Note             string          `json:"note"`
	Items            []SaleItem      `json:"items"`
}

// NewSale creates an invoice from its lines. A cash sale is paid in full on
// creation; a credit sale requires a customer and starts UNPAID.
func NewSale(publicID string, method PaymentMethod, customerID *uuid.UUID, lines []SaleLine) (*Sale, error) {
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown payment method %q", method))
	}
	if method == PaymentMethodCredit && (customerID == nil || *customerID == uuid.Nil) {
		return nil, shared.NewValidationError("Credit sale requires a credit customer")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Sale must have at least one item")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(publicID),
		SaleDate:          time.Now(),
		PaymentMethod:     method,
		PaidAmount:        decimal.Zero,
		ChargedAmount:     decimal.Zero,
		Items:             make([]SaleItem, 0, len(lines)),
	}
	if method == PaymentMethodCredit {
		sale.CreditCustomerID = customerID
	}

	for _, line := range lines {
		if err := sale.addItem(line); err != nil {
			return nil, err
		}
	}

	if method == PaymentMethodCash {
		sale.PaidAmount = sale.TotalRevenue
	}
	sale.recomputeStatus()
	return sale, nil
}

func (s *Sale) addItem(line SaleLine) error {
	if line.ProductID == uuid.Nil {
		return shared.NewValidationError("Product ID cannot be empty")
	}
	if line.Quantity <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	if line.UnitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	item := SaleItem{
		ID:          uuid.New(),
		SaleID:      s.ID,
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Category:    line.Category,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		LineTotal:   valueobject.LineTotal(line.Quantity, line.UnitPrice),
	}
	s.Items = append(s.Items, item)
	s.TotalRevenue = s.TotalRevenue.Add(item.LineTotal)
	s.TotalItemsSold += item.Quantity
	return nil
}

// MarkCharged records that the total was booked on the customer's ledger and
// sets the due date from the customer's payment terms.
func (s *Sale) MarkCharged(amount decimal.Decimal, dueDate time.Time) {
	s.ChargedAmount = amount
	s.DueDate = &dueDate
	s.touch()
}

// RemainingDue returns what is still owed on the invoice
func (s *Sale) RemainingDue() decimal.Decimal {
	return valueobject.MaxZero(s.TotalRevenue.Sub(s.PaidAmount))
}

// OutstandingCharge is the part of the ledger charge not yet paid back. It is
// what must be reversed when the invoice is deleted.
func (s *Sale) OutstandingCharge() decimal.Decimal {
	return valueobject.MaxZero(s.ChargedAmount.Sub(s.PaidAmount))
}

// ApplyPayment books a payment against the invoice and recomputes its status.
// The caller applies the same amount to the customer's ledger in the same
// transaction.
func (s *Sale) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount must be positive")
	}
	if amount.GreaterThan(s.RemainingDue()) {
		return shared.NewDomainError(shared.CodeAmountExceedsBalance,
			fmt.Sprintf("Payment %s exceeds amount due %s on invoice %s",
				amount.StringFixed(2), s.RemainingDue().StringFixed(2), s.PublicID))
	}
	s.PaidAmount = s.PaidAmount.Add(amount)
	s.recomputeStatus()
	s.touch()
	return nil
}

// IsSettled returns true once the invoice is fully paid
func (s *Sale) IsSettled() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// IsOverdue reports whether an unsettled invoice is past its due date
func (s *Sale) IsOverdue(now time.Time) bool {
	return !s.IsSettled() && s.DueDate != nil && now.After(*s.DueDate)
}

// DaysOverdue returns whole days past the due date, or zero
func (s *Sale) DaysOverdue(now time.Time) int {
	if !s.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(*s.DueDate).Hours() / 24)
}

// LinkOrder records the order this invoice was generated from
func (s *Sale) LinkOrder(orderID uuid.UUID) {
	s.OrderID = &orderID
}

func (s *Sale) recomputeStatus() {
	switch {
	case s.PaidAmount.GreaterThanOrEqual(s.TotalRevenue):
		s.PaymentStatus = PaymentStatusPaid
	case s.PaidAmount.IsPositive():
		s.PaymentStatus = PaymentStatusPartial
	default:
		s.PaymentStatus = PaymentStatusUnpaid
	}
}

func (s *Sale) touch() {
	s.Touch()
	s.IncrementVersion()
}
