package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusCreated   PurchaseOrderStatus = "CREATED"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "SENT"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusCreated:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	}
	return false
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID              uuid.UUID       `json:"id"`
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// PurchaseOrderLine is the input for one purchase order line
type PurchaseOrderLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitCost    decimal.Decimal
}

// PurchaseOrder is a stock replenishment order raised against a supplier
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	SupplierID   uuid.UUID           `json:"supplier_id"`
	PODate       time.Time           `json:"po_date"`
	Status       PurchaseOrderStatus `json:"status"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Note         string              `json:"note"`
	Items        []PurchaseOrderItem `json:"items"`
	SentAt       *time.Time          `json:"sent_at,omitempty"`
	ReceivedAt   *time.Time          `json:"received_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason"`
}

// NewPurchaseOrder creates a purchase order with its lines
func NewPurchaseOrder(publicID string, supplierID uuid.UUID, lines []PurchaseOrderLine) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Purchase order must have at least one item")
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(publicID),
		SupplierID:        supplierID,
		PODate:            time.Now(),
		Status:            PurchaseOrderStatusCreated,
		TotalAmount:       decimal.Zero,
		Items:             make([]PurchaseOrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("Product ID cannot be empty")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewValidationError("Quantity must be positive")
		}
		if line.UnitCost.IsNegative() {
			return nil, shared.NewValidationError("Unit cost cannot be negative")
		}
		item := PurchaseOrderItem{
			ID:              uuid.New(),
			PurchaseOrderID: po.ID,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			UnitCost:        line.UnitCost,
			LineTotal:       valueobject.LineTotal(line.Quantity, line.UnitCost),
		}
		po.Items = append(po.Items, item)
		po.TotalAmount = po.TotalAmount.Add(item.LineTotal)
	}
	return po, nil
}

// Send marks the order as sent to the supplier
func (o *PurchaseOrder) Send() error {
	if err := o.transition(PurchaseOrderStatusSent); err != nil {
		return err
	}
	now := time.Now()
	o.SentAt = &now
	return nil
}

// Receive marks the goods as received. The caller adds the returned items to stock.
func (o *PurchaseOrder) Receive() ([]PurchaseOrderItem, error) {
	if err := o.transition(PurchaseOrderStatusReceived); err != nil {
		return nil, err
	}
	now := time.Now()
	o.ReceivedAt = &now
	return o.Items, nil
}

// Cancel cancels an order that has not been received
func (o *PurchaseOrder) Cancel(reason string) error {
	if err := o.transition(PurchaseOrderStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = reason
	return nil
}

func (o *PurchaseOrder) transition(target PurchaseOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateTransition("purchase order", string(o.Status), string(target))
	}
	o.Status = target
	o.Touch()
	o.IncrementVersion()
	return nil
}
