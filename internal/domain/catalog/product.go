package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "ACTIVE"
	ProductStatusInactive     ProductStatus = "INACTIVE"
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

// Product represents a stocked item. It is the aggregate root for stock
// movements caused by sales, order confirmation and goods receipt.
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`     // selling price
	PurchasePrice decimal.Decimal `json:"purchase_price"` // cost price
	StockQty      int             `json:"stock_qty"`
	ReorderLevel  int             `json:"reorder_level"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Status        ProductStatus   `json:"status"`
}

// NewProduct creates a new active product with no stock
func NewProduct(publicID, name, unit string, unitPrice, purchasePrice decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Product name cannot exceed 200 characters")
	}
	if unitPrice.IsNegative() || purchasePrice.IsNegative() {
		return nil, shared.NewValidationError("Prices cannot be negative")
	}
	if unit == "" {
		unit = "pcs"
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(publicID),
		Name:              name,
		Unit:              unit,
		UnitPrice:         unitPrice,
		PurchasePrice:     purchasePrice,
		Status:            ProductStatusActive,
	}, nil
}

// DeductStock removes qty units, failing if the shelf does not hold enough
func (p *Product) DeductStock(qty int) error {
	if qty <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	if qty > p.StockQty {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", p.Name, p.StockQty, qty))
	}
	p.StockQty -= qty
	p.touch()
	return nil
}

// AddStock adds received units
func (p *Product) AddStock(qty int) error {
	if qty <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	p.StockQty += qty
	p.touch()
	return nil
}

// SetReorderLevel sets the low-stock threshold
func (p *Product) SetReorderLevel(level int) error {
	if level < 0 {
		return shared.NewValidationError("Reorder level cannot be negative")
	}
	p.ReorderLevel = level
	p.touch()
	return nil
}

// NeedsReorder returns true when stock is at or below the reorder level
func (p *Product) NeedsReorder() bool {
	return p.StockQty <= p.ReorderLevel
}

// IsSellable returns true if the product may appear on new sales and orders
func (p *Product) IsSellable() bool {
	return p.Status == ProductStatusActive
}

func (p *Product) touch() {
	p.Touch()
	p.IncrementVersion()
}
