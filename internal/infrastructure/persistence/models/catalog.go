package models

import (
	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	Name          string                `gorm:"type:varchar(200);not null;index"`
	Category      string                `gorm:"type:varchar(100);index"`
	Unit          string                `gorm:"type:varchar(20);not null"`
	UnitPrice     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PurchasePrice decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	StockQty      int                   `gorm:"not null;default:0"`
	ReorderLevel  int                   `gorm:"not null;default:0"`
	SupplierID    *uuid.UUID            `gorm:"type:uuid;index"`
	Status        catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Category:          m.Category,
		Unit:              m.Unit,
		UnitPrice:         m.UnitPrice,
		PurchasePrice:     m.PurchasePrice,
		StockQty:          m.StockQty,
		ReorderLevel:      m.ReorderLevel,
		SupplierID:        m.SupplierID,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Category = p.Category
	m.Unit = p.Unit
	m.UnitPrice = p.UnitPrice
	m.PurchasePrice = p.PurchasePrice
	m.StockQty = p.StockQty
	m.ReorderLevel = p.ReorderLevel
	m.SupplierID = p.SupplierID
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
