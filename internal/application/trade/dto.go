package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Sale DTOs ====================

// LineInput is one product line on a sale or order request
type LineInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	// UnitPrice overrides the catalog price when set
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest represents a counter sale
type CreateSaleRequest struct {
	PaymentMethod string      `json:"payment_method" binding:"required,oneof=CASH CREDIT"`
	CustomerID    *uuid.UUID  `json:"customer_id"`
	Note          string      `json:"note" binding:"max=500"`
	Items         []LineInput `json:"items" binding:"required,min=1,dive"`
}

// SaleItemResponse represents a sale line
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID               uuid.UUID          `json:"id"`
	PublicID         string             `json:"public_id"`
	SaleDate         time.Time          `json:"sale_date"`
	PaymentMethod    string             `json:"payment_method"`
	PaymentStatus    string             `json:"payment_status"`
	TotalRevenue     decimal.Decimal    `json:"total_revenue"`
	TotalItemsSold   int                `json:"total_items_sold"`
	PaidAmount       decimal.Decimal    `json:"paid_amount"`
	RemainingDue     decimal.Decimal    `json:"remaining_due"`
	DueDate          *time.Time         `json:"due_date,omitempty"`
	CreditCustomerID *uuid.UUID         `json:"credit_customer_id,omitempty"`
	OrderID          *uuid.UUID         `json:"order_id,omitempty"`
	CashierID        *uuid.UUID         `json:"cashier_id,omitempty"`
	Note             string             `json:"note"`
	Items            []SaleItemResponse `json:"items"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ToSaleResponse converts a domain Sale to a response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return SaleResponse{
		ID:               s.ID,
		PublicID:         s.PublicID,
		SaleDate:         s.SaleDate,
		PaymentMethod:    string(s.PaymentMethod),
		PaymentStatus:    string(s.PaymentStatus),
		TotalRevenue:     s.TotalRevenue,
		TotalItemsSold:   s.TotalItemsSold,
		PaidAmount:       s.PaidAmount,
		RemainingDue:     s.RemainingDue(),
		DueDate:          s.DueDate,
		CreditCustomerID: s.CreditCustomerID,
		OrderID:          s.OrderID,
		CashierID:        s.CashierID,
		Note:             s.Note,
		Items:            items,
		CreatedAt:        s.CreatedAt,
	}
}

// ==================== Order DTOs ====================

// CreateOrderRequest opens a draft order
type CreateOrderRequest struct {
	PaymentType string      `json:"payment_type" binding:"required,oneof=CASH CARD CREDIT"`
	CustomerID  *uuid.UUID  `json:"customer_id"`
	Items       []LineInput `json:"items" binding:"omitempty,dive"`
}

// AddOrderItemRequest adds one product line to a draft order
type AddOrderItemRequest struct {
	LineInput
}

// OrderItemResponse represents an order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	PublicID         string              `json:"public_id"`
	OrderDate        time.Time           `json:"order_date"`
	PaymentType      string              `json:"payment_type"`
	Status           string              `json:"status"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	CreditCustomerID *uuid.UUID          `json:"credit_customer_id,omitempty"`
	SaleID           *uuid.UUID          `json:"sale_id,omitempty"`
	ConfirmedAt      *time.Time          `json:"confirmed_at,omitempty"`
	VoidedAt         *time.Time          `json:"voided_at,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain Order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return OrderResponse{
		ID:               o.ID,
		PublicID:         o.PublicID,
		OrderDate:        o.OrderDate,
		PaymentType:      string(o.PaymentType),
		Status:           string(o.Status),
		TotalAmount:      o.TotalAmount,
		CreditCustomerID: o.CreditCustomerID,
		SaleID:           o.SaleID,
		ConfirmedAt:      o.ConfirmedAt,
		VoidedAt:         o.VoidedAt,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ==================== Purchase Order DTOs ====================

// PurchaseLineInput is one line of a purchase order request
type PurchaseLineInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	// UnitCost defaults to the product's purchase price
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID           `json:"supplier_id" binding:"required"`
	Note       string              `json:"note" binding:"max=500"`
	Items      []PurchaseLineInput `json:"items" binding:"required,min=1,dive"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PurchaseOrderItemResponse represents a purchase order line
type PurchaseOrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	PublicID     string                      `json:"public_id"`
	SupplierID   uuid.UUID                   `json:"supplier_id"`
	PODate       time.Time                   `json:"po_date"`
	Status       string                      `json:"status"`
	TotalAmount  decimal.Decimal             `json:"total_amount"`
	Note         string                      `json:"note"`
	SentAt       *time.Time                  `json:"sent_at,omitempty"`
	ReceivedAt   *time.Time                  `json:"received_at,omitempty"`
	CancelledAt  *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason string                      `json:"cancel_reason,omitempty"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	CreatedAt    time.Time                   `json:"created_at"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response
func ToPurchaseOrderResponse(po *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, 0, len(po.Items))
	for _, item := range po.Items {
		items = append(items, PurchaseOrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			LineTotal:   item.LineTotal,
		})
	}
	return PurchaseOrderResponse{
		ID:           po.ID,
		PublicID:     po.PublicID,
		SupplierID:   po.SupplierID,
		PODate:       po.PODate,
		Status:       string(po.Status),
		TotalAmount:  po.TotalAmount,
		Note:         po.Note,
		SentAt:       po.SentAt,
		ReceivedAt:   po.ReceivedAt,
		CancelledAt:  po.CancelledAt,
		CancelReason: po.CancelReason,
		Items:        items,
		CreatedAt:    po.CreatedAt,
	}
}
