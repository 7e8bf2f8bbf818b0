package persistence

import (
	"strings"

	"github.com/grocer/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applyPageAndOrder applies pagination and whitelisted ordering.
// Unknown sort fields fall back to defaultField DESC.
func applyPageAndOrder(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, allowed, "")
	if sortField != "" {
		return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	}
	return query.Order(defaultField + " DESC")
}

// likePattern builds a case-insensitive LIKE pattern, usable on both
// postgres and sqlite with LOWER(column) LIKE ?
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"public_id":  true,
	"username":   true,
	"full_name":  true,
	"role":       true,
	"status":     true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"public_id":      true,
	"name":           true,
	"category":       true,
	"status":         true,
	"unit_price":     true,
	"purchase_price": true,
	"stock_qty":      true,
	"reorder_level":  true,
}

// CreditCustomerSortFields contains allowed sort fields for credit customers
var CreditCustomerSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"public_id":           true,
	"name":                true,
	"status":              true,
	"credit_limit":        true,
	"outstanding_balance": true,
	"available_credit":    true,
	"total_purchases":     true,
	"last_payment_date":   true,
}

// ChargeEventSortFields contains allowed sort fields for the charge audit trail
var ChargeEventSortFields = map[string]bool{
	"occurred_at": true,
	"amount":      true,
	"cause":       true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"public_id":    true,
	"name":         true,
	"contact_name": true,
	"status":       true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"public_id":      true,
	"sale_date":      true,
	"payment_method": true,
	"payment_status": true,
	"total_revenue":  true,
	"paid_amount":    true,
	"due_date":       true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"public_id":    true,
	"order_date":   true,
	"payment_type": true,
	"status":       true,
	"total_amount": true,
	"confirmed_at": true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"public_id":    true,
	"supplier_id":  true,
	"po_date":      true,
	"status":       true,
	"total_amount": true,
	"received_at":  true,
}

// ChequeSortFields contains allowed sort fields for cheques
var ChequeSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"public_id":     true,
	"cheque_number": true,
	"bank_name":     true,
	"amount":        true,
	"issue_date":    true,
	"due_date":      true,
	"status":        true,
}

// CreditPaymentSortFields contains allowed sort fields for credit payments
var CreditPaymentSortFields = map[string]bool{
	"created_at":   true,
	"payment_date": true,
	"amount":       true,
	"method":       true,
}

// ArchiveSnapshotSortFields contains allowed sort fields for the trash listing
var ArchiveSnapshotSortFields = map[string]bool{
	"deleted_at":    true,
	"public_id":     true,
	"display_name":  true,
	"restore_count": true,
}
