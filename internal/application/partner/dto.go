package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Credit customer DTOs
// =============================================================================

// CreateCreditCustomerRequest represents a request to create a credit customer
type CreateCreditCustomerRequest struct {
	Name                string           `json:"name" binding:"required,min=1,max=200"`
	Phone               string           `json:"phone" binding:"max=50"`
	Address             string           `json:"address" binding:"max=500"`
	CreditLimit         decimal.Decimal  `json:"credit_limit"`
	PaymentTermsDays    int              `json:"payment_terms_days" binding:"min=0,max=365"`
	AuthorizedThreshold *decimal.Decimal `json:"authorized_threshold"`
}

// UpdateCreditCustomerRequest represents a request to update a credit customer
type UpdateCreditCustomerRequest struct {
	Name                *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Phone               *string          `json:"phone" binding:"omitempty,max=50"`
	Address             *string          `json:"address" binding:"omitempty,max=500"`
	CreditLimit         *decimal.Decimal `json:"credit_limit"`
	PaymentTermsDays    *int             `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
	AuthorizedThreshold *decimal.Decimal `json:"authorized_threshold"`
	Status              *string          `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// CreditCustomerResponse represents a credit customer in API responses
type CreditCustomerResponse struct {
	ID                  uuid.UUID        `json:"id"`
	PublicID            string           `json:"public_id"`
	Name                string           `json:"name"`
	Phone               string           `json:"phone"`
	Address             string           `json:"address"`
	CreditLimit         decimal.Decimal  `json:"credit_limit"`
	OutstandingBalance  decimal.Decimal  `json:"outstanding_balance"`
	AvailableCredit     decimal.Decimal  `json:"available_credit"`
	PaymentTermsDays    int              `json:"payment_terms_days"`
	AuthorizedThreshold *decimal.Decimal `json:"authorized_threshold,omitempty"`
	TotalPurchases      decimal.Decimal  `json:"total_purchases"`
	TotalPaid           decimal.Decimal  `json:"total_paid"`
	LastPaymentDate     *time.Time       `json:"last_payment_date,omitempty"`
	Status              string           `json:"status"`
	OverLimit           bool             `json:"over_limit"`
	LimitBelowBalance   bool             `json:"limit_below_balance,omitempty"`
	Version             int              `json:"version"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ToCreditCustomerResponse converts a domain CreditCustomer to a response
func ToCreditCustomerResponse(c *partner.CreditCustomer) CreditCustomerResponse {
	return CreditCustomerResponse{
		ID:                  c.ID,
		PublicID:            c.PublicID,
		Name:                c.Name,
		Phone:               c.Phone,
		Address:             c.Address,
		CreditLimit:         c.CreditLimit,
		OutstandingBalance:  c.OutstandingBalance,
		AvailableCredit:     c.AvailableCredit(),
		PaymentTermsDays:    c.PaymentTermsDays,
		AuthorizedThreshold: c.AuthorizedThreshold,
		TotalPurchases:      c.TotalPurchases,
		TotalPaid:           c.TotalPaid,
		LastPaymentDate:     c.LastPaymentDate,
		Status:              string(c.Status),
		OverLimit:           c.IsOverLimit(),
		Version:             c.Version,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// InvoiceResponse is a customer's invoice as shown on the account page
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	PublicID      string          `json:"public_id"`
	SaleDate      time.Time       `json:"sale_date"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	RemainingDue  decimal.Decimal `json:"remaining_due"`
	PaymentStatus string          `json:"payment_status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	DaysOverdue   int             `json:"days_overdue"`
}

// ToInvoiceResponse converts a sale to an InvoiceResponse
func ToInvoiceResponse(s *trade.Sale, now time.Time) InvoiceResponse {
	return InvoiceResponse{
		ID:            s.ID,
		PublicID:      s.PublicID,
		SaleDate:      s.SaleDate,
		TotalRevenue:  s.TotalRevenue,
		PaidAmount:    s.PaidAmount,
		RemainingDue:  s.RemainingDue(),
		PaymentStatus: string(s.PaymentStatus),
		DueDate:       s.DueDate,
		DaysOverdue:   s.DaysOverdue(now),
	}
}

// ChargeEventResponse represents one ledger entry
type ChargeEventResponse struct {
	ID            uuid.UUID       `json:"id"`
	Cause         string          `json:"cause"`
	Amount        decimal.Decimal `json:"amount"`
	Delta         decimal.Decimal `json:"delta"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	SourceType    string          `json:"source_type,omitempty"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	OverLimit     bool            `json:"over_limit"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ToChargeEventResponse converts a charge event to a response
func ToChargeEventResponse(e *partner.ChargeEvent) ChargeEventResponse {
	return ChargeEventResponse{
		ID:            e.ID,
		Cause:         e.Cause.String(),
		Amount:        e.Amount,
		Delta:         e.Delta(),
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		SourceType:    e.SourceType.String(),
		SourceID:      e.SourceID,
		Reference:     e.Reference,
		OverLimit:     e.OverLimit,
		OccurredAt:    e.OccurredAt,
	}
}

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Address     string `json:"address" binding:"max=500"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID          uuid.UUID `json:"id"`
	PublicID    string    `json:"public_id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain Supplier to a response
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		PublicID:    s.PublicID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
