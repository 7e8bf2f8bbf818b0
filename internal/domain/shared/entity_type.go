package shared

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EntityType identifies an archivable, publicly numbered aggregate kind
type EntityType string

const (
	EntityTypeUser           EntityType = "USER"
	EntityTypeProduct        EntityType = "PRODUCT"
	EntityTypeSale           EntityType = "SALE"
	EntityTypeOrder          EntityType = "ORDER"
	EntityTypeCreditCustomer EntityType = "CREDIT_CUSTOMER"
	EntityTypeCheque         EntityType = "CHEQUE"
	EntityTypePurchaseOrder  EntityType = "PURCHASE_ORDER"
	EntityTypeSupplier       EntityType = "SUPPLIER"
)

var entityPrefixes = map[EntityType]string{
	EntityTypeUser:           "U",
	EntityTypeProduct:        "P",
	EntityTypeSale:           "S",
	EntityTypeOrder:          "O",
	EntityTypeCreditCustomer: "CC",
	EntityTypeCheque:         "C",
	EntityTypePurchaseOrder:  "PO",
	EntityTypeSupplier:       "SUP",
}

// AllEntityTypes returns every entity type in a stable order
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTypeUser,
		EntityTypeProduct,
		EntityTypeSale,
		EntityTypeOrder,
		EntityTypeCreditCustomer,
		EntityTypeCheque,
		EntityTypePurchaseOrder,
		EntityTypeSupplier,
	}
}

// IsValid checks if the entity type is known
func (t EntityType) IsValid() bool {
	_, ok := entityPrefixes[t]
	return ok
}

// Prefix returns the public id prefix for the type
func (t EntityType) Prefix() string {
	return entityPrefixes[t]
}

// String returns the string representation of EntityType
func (t EntityType) String() string {
	return string(t)
}

// Label returns a human readable name, e.g. "Credit Customer"
func (t EntityType) Label() string {
	words := strings.ReplaceAll(strings.ToLower(string(t)), "_", " ")
	return cases.Title(language.English).String(words)
}

// FormatPublicID renders a sequence number as prefix-%04d
func (t EntityType) FormatPublicID(n int64) string {
	return fmt.Sprintf("%s-%04d", t.Prefix(), n)
}

// ParseEntityType accepts both enum names ("CREDIT_CUSTOMER") and URL slugs
// ("credit-customers", "purchase-orders").
func ParseEntityType(s string) (EntityType, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	if t := EntityType(normalized); t.IsValid() {
		return t, nil
	}
	if t := EntityType(strings.TrimSuffix(normalized, "S")); t.IsValid() {
		return t, nil
	}
	return "", NewValidationError(fmt.Sprintf("Unknown entity type %q", s))
}

// SequenceAllocator hands out gap-free public identifiers. Implementations are
// bound to the caller's transaction so a rollback also rolls back the counter.
type SequenceAllocator interface {
	NextID(ctx context.Context, entityType EntityType) (string, error)
}
