package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to add a product to the catalog
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Category      string          `json:"category" binding:"max=100"`
	Unit          string          `json:"unit" binding:"max=20"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	InitialStock  int             `json:"initial_stock" binding:"gte=0"`
	ReorderLevel  int             `json:"reorder_level" binding:"gte=0"`
	SupplierID    *uuid.UUID      `json:"supplier_id"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	PublicID      string          `json:"public_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	StockQty      int             `json:"stock_qty"`
	ReorderLevel  int             `json:"reorder_level"`
	NeedsReorder  bool            `json:"needs_reorder"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		PublicID:      p.PublicID,
		Name:          p.Name,
		Category:      p.Category,
		Unit:          p.Unit,
		UnitPrice:     p.UnitPrice,
		PurchasePrice: p.PurchasePrice,
		StockQty:      p.StockQty,
		ReorderLevel:  p.ReorderLevel,
		NeedsReorder:  p.NeedsReorder(),
		SupplierID:    p.SupplierID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
