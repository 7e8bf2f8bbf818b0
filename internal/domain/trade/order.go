package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentType is how a customer intends to pay for an order
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "CASH"
	PaymentTypeCard   PaymentType = "CARD"
	PaymentTypeCredit PaymentType = "CREDIT"
)

// IsValid returns true if the payment type is known
func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentTypeCash, PaymentTypeCard, PaymentTypeCredit:
		return true
	}
	return false
}

// SaleMethod maps the order payment type to the invoice payment method
func (p PaymentType) SaleMethod() PaymentMethod {
	if p == PaymentTypeCredit {
		return PaymentMethodCredit
	}
	return PaymentMethodCash
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusVoid      OrderStatus = "VOID"
)

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == OrderStatusDraft {
		return target == OrderStatusConfirmed || target == OrderStatusVoid
	}
	return false // CONFIRMED and VOID are terminal
}

// OrderItem represents a line item in an order
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Order is a customer order drafted ahead of the sale. Confirming it
// deducts stock and produces the linked Sale invoice.
type Order struct {
	shared.BaseAggregateRoot
	OrderDate        time.Time       `json:"order_date"`
	PaymentType      PaymentType     `json:"payment_type"`
	Status           OrderStatus     `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	CreditCustomerID *uuid.UUID      `json:"credit_customer_id,omitempty"`
	SaleID           *uuid.UUID      `json:"sale_id,omitempty"`
	Items            []OrderItem     `json:"items"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	VoidedAt         *time.Time      `json:"voided_at,omitempty"`
}

// NewOrder creates an empty draft order
func NewOrder(publicID string, paymentType PaymentType, customerID *uuid.UUID) (*Order, error) {
	if !paymentType.IsValid() {
		return nil, shared.NewValidationError("Payment type must be CASH, CARD or CREDIT")
	}
	if paymentType == PaymentTypeCredit && (customerID == nil || *customerID == uuid.Nil) {
		return nil, shared.NewValidationError("Credit order requires a credit customer")
	}
	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(publicID),
		OrderDate:         time.Now(),
		PaymentType:       paymentType,
		Status:            OrderStatusDraft,
		TotalAmount:       decimal.Zero,
		Items:             make([]OrderItem, 0),
	}
	if paymentType == PaymentTypeCredit {
		order.CreditCustomerID = customerID
	}
	return order, nil
}

// AddItem adds a new item to the order
// Only allowed in DRAFT status
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item := OrderItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   valueobject.LineTotal(quantity, unitPrice),
	}
	o.Items = append(o.Items, item)
	o.recalculateTotal()
	o.touch()
	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem removes an item from the order
// Only allowed in DRAFT status
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.touch()
			return nil
		}
	}
	return shared.NewNotFoundError("Order item")
}

// Confirm moves a non-empty draft to CONFIRMED and links the invoice
func (o *Order) Confirm(saleID uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewInvalidStateTransition("order", string(o.Status), string(OrderStatusConfirmed))
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError("Cannot confirm an order without items")
	}
	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.SaleID = &saleID
	o.ConfirmedAt = &now
	o.touch()
	return nil
}

// Void cancels a draft order
func (o *Order) Void() error {
	if !o.Status.CanTransitionTo(OrderStatusVoid) {
		return shared.NewInvalidStateTransition("order", string(o.Status), string(OrderStatusVoid))
	}
	now := time.Now()
	o.Status = OrderStatusVoid
	o.VoidedAt = &now
	o.touch()
	return nil
}

// ClearSaleLink detaches the invoice after it was deleted on its own
func (o *Order) ClearSaleLink() {
	o.SaleID = nil
	o.touch()
}

// SaleLines converts the order items to invoice lines
func (o *Order) SaleLines() []SaleLine {
	lines := make([]SaleLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, SaleLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return lines
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	o.TotalAmount = total
}

func (o *Order) touch() {
	o.Touch()
	o.IncrementVersion()
}
