package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale (invoice) aggregate root.
type SaleModel struct {
	AggregateModel
	SaleDate         time.Time           `gorm:"not null;index"`
	PaymentMethod    trade.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentStatus    trade.PaymentStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	TotalRevenue     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalItemsSold   int                 `gorm:"not null;default:0"`
	PaidAmount       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ChargedAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DueDate          *time.Time          `gorm:"type:date"`
	CreditCustomerID *uuid.UUID          `gorm:"type:uuid;index"`
	OrderID          *uuid.UUID          `gorm:"type:uuid;index"`
	CashierID        *uuid.UUID          `gorm:"type:uuid"`
	Note             string              `gorm:"type:text"`
	Items            []SaleItemModel     `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SaleDate:          m.SaleDate,
		PaymentMethod:     m.PaymentMethod,
		PaymentStatus:     m.PaymentStatus,
		TotalRevenue:      m.TotalRevenue,
		TotalItemsSold:    m.TotalItemsSold,
		PaidAmount:        m.PaidAmount,
		ChargedAmount:     m.ChargedAmount,
		DueDate:           m.DueDate,
		CreditCustomerID:  m.CreditCustomerID,
		OrderID:           m.OrderID,
		CashierID:         m.CashierID,
		Note:              m.Note,
		Items:             make([]trade.SaleItem, len(m.Items)),
	}
	for i := range m.Items {
		s.Items[i] = *m.Items[i].ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SaleDate = s.SaleDate
	m.PaymentMethod = s.PaymentMethod
	m.PaymentStatus = s.PaymentStatus
	m.TotalRevenue = s.TotalRevenue
	m.TotalItemsSold = s.TotalItemsSold
	m.PaidAmount = s.PaidAmount
	m.ChargedAmount = s.ChargedAmount
	m.DueDate = s.DueDate
	m.CreditCustomerID = s.CreditCustomerID
	m.OrderID = s.OrderID
	m.CashierID = s.CashierID
	m.Note = s.Note
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		m.Items[i] = *SaleItemModelFromDomain(&s.Items[i])
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is the persistence model for a sale line
type SaleItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Category    string          `gorm:"type:varchar(100)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem
func (m *SaleItemModel) ToDomain() *trade.SaleItem {
	return &trade.SaleItem{
		ID:          m.ID,
		SaleID:      m.SaleID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Category:    m.Category,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
	}
}

// SaleItemModelFromDomain creates a new persistence model from a domain SaleItem
func SaleItemModelFromDomain(item *trade.SaleItem) *SaleItemModel {
	return &SaleItemModel{
		ID:          item.ID,
		SaleID:      item.SaleID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Category:    item.Category,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
	}
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderDate        time.Time         `gorm:"not null;index"`
	PaymentType      trade.PaymentType `gorm:"type:varchar(20);not null"`
	Status           trade.OrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	TotalAmount      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CreditCustomerID *uuid.UUID        `gorm:"type:uuid;index"`
	SaleID           *uuid.UUID        `gorm:"type:uuid;index"`
	ConfirmedAt      *time.Time
	VoidedAt         *time.Time
	Items            []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderDate:         m.OrderDate,
		PaymentType:       m.PaymentType,
		Status:            m.Status,
		TotalAmount:       m.TotalAmount,
		CreditCustomerID:  m.CreditCustomerID,
		SaleID:            m.SaleID,
		ConfirmedAt:       m.ConfirmedAt,
		VoidedAt:          m.VoidedAt,
		Items:             make([]trade.OrderItem, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = *m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderDate = o.OrderDate
	m.PaymentType = o.PaymentType
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.CreditCustomerID = o.CreditCustomerID
	m.SaleID = o.SaleID
	m.ConfirmedAt = o.ConfirmedAt
	m.VoidedAt = o.VoidedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() *trade.OrderItem {
	return &trade.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
	}
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem
func OrderItemModelFromDomain(item *trade.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
	}
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	AggregateModel
	SupplierID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PODate       time.Time                 `gorm:"column:po_date;not null"`
	Status       trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'CREATED';index"`
	TotalAmount  decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Note         string                    `gorm:"type:text"`
	SentAt       *time.Time
	ReceivedAt   *time.Time
	CancelledAt  *time.Time
	CancelReason string                   `gorm:"type:varchar(500)"`
	Items        []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SupplierID:        m.SupplierID,
		PODate:            m.PODate,
		Status:            m.Status,
		TotalAmount:       m.TotalAmount,
		Note:              m.Note,
		SentAt:            m.SentAt,
		ReceivedAt:        m.ReceivedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Items:             make([]trade.PurchaseOrderItem, len(m.Items)),
	}
	for i := range m.Items {
		po.Items[i] = *m.Items[i].ToDomain()
	}
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(po *trade.PurchaseOrder) {
	m.FromDomainAggregateRoot(po.BaseAggregateRoot)
	m.SupplierID = po.SupplierID
	m.PODate = po.PODate
	m.Status = po.Status
	m.TotalAmount = po.TotalAmount
	m.Note = po.Note
	m.SentAt = po.SentAt
	m.ReceivedAt = po.ReceivedAt
	m.CancelledAt = po.CancelledAt
	m.CancelReason = po.CancelReason
	m.Items = make([]PurchaseOrderItemModel, len(po.Items))
	for i := range po.Items {
		m.Items[i] = *PurchaseOrderItemModelFromDomain(&po.Items[i])
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder entity.
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(po)
	return m
}

// PurchaseOrderItemModel is the persistence model for a purchase order line
type PurchaseOrderItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Quantity        int             `gorm:"not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem
func (m *PurchaseOrderItemModel) ToDomain() *trade.PurchaseOrderItem {
	return &trade.PurchaseOrderItem{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		LineTotal:       m.LineTotal,
	}
}

// PurchaseOrderItemModelFromDomain creates a new persistence model from a domain PurchaseOrderItem
func PurchaseOrderItemModelFromDomain(item *trade.PurchaseOrderItem) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		ID:              item.ID,
		PurchaseOrderID: item.PurchaseOrderID,
		ProductID:       item.ProductID,
		ProductName:     item.ProductName,
		Quantity:        item.Quantity,
		UnitCost:        item.UnitCost,
		LineTotal:       item.LineTotal,
	}
}
