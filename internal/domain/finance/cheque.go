package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChequeStatus represents where a cheque is in its clearing lifecycle
type ChequeStatus string

const (
	ChequeStatusPending   ChequeStatus = "PENDING"
	ChequeStatusDeposited ChequeStatus = "DEPOSITED"
	ChequeStatusCleared   ChequeStatus = "CLEARED"
	ChequeStatusBounced   ChequeStatus = "BOUNCED"
)

// IsValid returns true if the status is known
func (s ChequeStatus) IsValid() bool {
	switch s {
	case ChequeStatusPending, ChequeStatusDeposited, ChequeStatusCleared, ChequeStatusBounced:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can move to target.
// BOUNCED to BOUNCED is accepted as an idempotent repeat.
func (s ChequeStatus) CanTransitionTo(target ChequeStatus) bool {
	switch s {
	case ChequeStatusPending:
		return target == ChequeStatusDeposited || target == ChequeStatusBounced
	case ChequeStatusDeposited:
		return target == ChequeStatusCleared || target == ChequeStatusBounced
	case ChequeStatusBounced:
		return target == ChequeStatusBounced
	}
	return false
}

// Cheque is a post-dated cheque received from a customer
type Cheque struct {
	shared.BaseAggregateRoot
	ChequeNumber   string          `json:"cheque_number"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	BankName       string          `json:"bank_name"`
	Amount         decimal.Decimal `json:"amount"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	InvoiceID      *uuid.UUID      `json:"invoice_id,omitempty"`
	DepositDate    *time.Time      `json:"deposit_date,omitempty"`
	ClearedDate    *time.Time      `json:"cleared_date,omitempty"`
	BouncedDate    *time.Time      `json:"bounced_date,omitempty"`
	BounceReason   string          `json:"bounce_reason"`
	MigratedToDebt bool            `json:"migrated_to_debt"`
	Status         ChequeStatus    `json:"status"`
	Note           string          `json:"note"`
}

// NewCheque creates a pending cheque
func NewCheque(publicID, chequeNumber, bankName string, customerID *uuid.UUID, amount decimal.Decimal, issueDate, dueDate time.Time) (*Cheque, error) {
	chequeNumber = strings.TrimSpace(chequeNumber)
	if chequeNumber == "" {
		return nil, shared.NewValidationError("Cheque number cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Cheque amount must be positive")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewValidationError("Due date cannot be before issue date")
	}
	return &Cheque{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(publicID),
		ChequeNumber:      chequeNumber,
		BankName:          strings.TrimSpace(bankName),
		CustomerID:        customerID,
		Amount:            amount,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Status:            ChequeStatusPending,
	}, nil
}

// ChangeStatus moves the cheque to target. firstBounce is true only when the
// cheque enters BOUNCED from a non-bounced state; the caller then charges the
// customer. Repeating BOUNCED is a no-op that reports firstBounce = false.
func (c *Cheque) ChangeStatus(target ChequeStatus, reason string, on time.Time) (firstBounce bool, err error) {
	if !target.IsValid() {
		return false, shared.NewValidationError(fmt.Sprintf("Unknown cheque status %q", target))
	}
	if !c.Status.CanTransitionTo(target) {
		return false, shared.NewInvalidStateTransition("cheque", string(c.Status), string(target))
	}
	if c.Status == ChequeStatusBounced {
		return false, nil
	}

	switch target {
	case ChequeStatusDeposited:
		c.DepositDate = &on
	case ChequeStatusCleared:
		c.ClearedDate = &on
	case ChequeStatusBounced:
		c.BouncedDate = &on
		c.BounceReason = reason
		firstBounce = true
	}
	c.Status = target
	c.Touch()
	c.IncrementVersion()
	return firstBounce, nil
}

// MarkMigratedToDebt records that the bounced amount was charged to the customer
func (c *Cheque) MarkMigratedToDebt() {
	c.MigratedToDebt = true
	c.Touch()
}

// EnsureDeletable allows deleting only cheques that never left PENDING
func (c *Cheque) EnsureDeletable() error {
	if c.Status != ChequeStatusPending {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Only pending cheques can be deleted, cheque %s is %s", c.PublicID, c.Status))
	}
	return nil
}
