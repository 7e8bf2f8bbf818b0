package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Credit payment DTOs
// =============================================================================

// RecordPaymentRequest represents a payment received from a credit customer
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Method    string          `json:"method" binding:"omitempty,oneof=CASH CHEQUE BANK"`
	Note      string          `json:"note" binding:"max=500"`
	InvoiceID *uuid.UUID      `json:"invoice_id"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Note          string          `json:"note"`
	PaymentDate   time.Time       `json:"payment_date"`
	RecordedBy    *uuid.UUID      `json:"recorded_by,omitempty"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	InvoiceStatus string          `json:"invoice_status,omitempty"`
}

// ToPaymentResponse converts a domain CreditPayment to a response
func ToPaymentResponse(p *finance.CreditPayment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Method:      string(p.Method),
		Note:        p.Note,
		PaymentDate: p.PaymentDate,
		RecordedBy:  p.RecordedBy,
	}
}

// =============================================================================
// Cheque DTOs
// =============================================================================

// CreateChequeRequest represents a request to register a received cheque
type CreateChequeRequest struct {
	ChequeNumber string          `json:"cheque_number" binding:"required,min=1,max=50"`
	BankName     string          `json:"bank_name" binding:"max=100"`
	CustomerID   *uuid.UUID      `json:"customer_id"`
	InvoiceID    *uuid.UUID      `json:"invoice_id"`
	Amount       decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	IssueDate    time.Time       `json:"issue_date" binding:"required"`
	DueDate      time.Time       `json:"due_date" binding:"required"`
	Note         string          `json:"note" binding:"max=500"`
}

// ChangeChequeStatusRequest moves a cheque through its lifecycle
type ChangeChequeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING DEPOSITED CLEARED BOUNCED"`
	Reason string `json:"reason" binding:"max=500"`
}

// ChequeResponse represents a cheque in API responses
type ChequeResponse struct {
	ID             uuid.UUID       `json:"id"`
	PublicID       string          `json:"public_id"`
	ChequeNumber   string          `json:"cheque_number"`
	BankName       string          `json:"bank_name"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	InvoiceID      *uuid.UUID      `json:"invoice_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	DepositDate    *time.Time      `json:"deposit_date,omitempty"`
	ClearedDate    *time.Time      `json:"cleared_date,omitempty"`
	BouncedDate    *time.Time      `json:"bounced_date,omitempty"`
	BounceReason   string          `json:"bounce_reason,omitempty"`
	MigratedToDebt bool            `json:"migrated_to_debt"`
	Status         string          `json:"status"`
	Note           string          `json:"note"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToChequeResponse converts a domain Cheque to a response
func ToChequeResponse(c *finance.Cheque) ChequeResponse {
	return ChequeResponse{
		ID:             c.ID,
		PublicID:       c.PublicID,
		ChequeNumber:   c.ChequeNumber,
		BankName:       c.BankName,
		CustomerID:     c.CustomerID,
		InvoiceID:      c.InvoiceID,
		Amount:         c.Amount,
		IssueDate:      c.IssueDate,
		DueDate:        c.DueDate,
		DepositDate:    c.DepositDate,
		ClearedDate:    c.ClearedDate,
		BouncedDate:    c.BouncedDate,
		BounceReason:   c.BounceReason,
		MigratedToDebt: c.MigratedToDebt,
		Status:         string(c.Status),
		Note:           c.Note,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
