package partner

import (
	"strings"

	"github.com/grocer/backoffice/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "ACTIVE"
	SupplierStatusInactive SupplierStatus = "INACTIVE"
)

// Supplier represents a vendor purchase orders are raised against
type Supplier struct {
	shared.BaseAggregateRoot
	Name        string         `json:"name"`
	ContactName string         `json:"contact_name"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
	Address     string         `json:"address"`
	Status      SupplierStatus `json:"status"`
}

// NewSupplier creates a new active supplier
func NewSupplier(publicID, name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Supplier name cannot exceed 200 characters")
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(publicID),
		Name:              name,
		Status:            SupplierStatusActive,
	}, nil
}

// SetContact updates the contact fields
func (s *Supplier) SetContact(contactName, phone, email, address string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewValidationError("Invalid email format")
	}
	s.ContactName = strings.TrimSpace(contactName)
	s.Phone = strings.TrimSpace(phone)
	s.Email = email
	s.Address = strings.TrimSpace(address)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// IsActive returns true if purchase orders may be raised against the supplier
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}
