package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// ChequeModel is the persistence model for the Cheque aggregate root.
type ChequeModel struct {
	AggregateModel
	ChequeNumber   string               `gorm:"type:varchar(50);not null;index"`
	CustomerID     *uuid.UUID           `gorm:"type:uuid;index"`
	BankName       string               `gorm:"type:varchar(100);not null"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	IssueDate      time.Time            `gorm:"type:date;not null"`
	DueDate        time.Time            `gorm:"type:date;not null;index"`
	InvoiceID      *uuid.UUID           `gorm:"type:uuid;index"`
	DepositDate    *time.Time           `gorm:"type:date"`
	ClearedDate    *time.Time           `gorm:"type:date"`
	BouncedDate    *time.Time           `gorm:"type:date"`
	BounceReason   string               `gorm:"type:varchar(500)"`
	MigratedToDebt bool                 `gorm:"not null;default:false"`
	Status         finance.ChequeStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Note           string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ChequeModel) TableName() string {
	return "cheques"
}

// ToDomain converts the persistence model to a domain Cheque entity.
func (m *ChequeModel) ToDomain() *finance.Cheque {
	return &finance.Cheque{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ChequeNumber:      m.ChequeNumber,
		CustomerID:        m.CustomerID,
		BankName:          m.BankName,
		Amount:            m.Amount,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		InvoiceID:         m.InvoiceID,
		DepositDate:       m.DepositDate,
		ClearedDate:       m.ClearedDate,
		BouncedDate:       m.BouncedDate,
		BounceReason:      m.BounceReason,
		MigratedToDebt:    m.MigratedToDebt,
		Status:            m.Status,
		Note:              m.Note,
	}
}

// FromDomain populates the persistence model from a domain Cheque entity.
func (m *ChequeModel) FromDomain(c *finance.Cheque) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ChequeNumber = c.ChequeNumber
	m.CustomerID = c.CustomerID
	m.BankName = c.BankName
	m.Amount = c.Amount
	m.IssueDate = c.IssueDate
	m.DueDate = c.DueDate
	m.InvoiceID = c.InvoiceID
	m.DepositDate = c.DepositDate
	m.ClearedDate = c.ClearedDate
	m.BouncedDate = c.BouncedDate
	m.BounceReason = c.BounceReason
	m.MigratedToDebt = c.MigratedToDebt
	m.Status = c.Status
	m.Note = c.Note
}

// ChequeModelFromDomain creates a new persistence model from a domain Cheque entity.
func ChequeModelFromDomain(c *finance.Cheque) *ChequeModel {
	m := &ChequeModel{}
	m.FromDomain(c)
	return m
}

// CreditPaymentModel is the persistence model for a recorded customer payment
type CreditPaymentModel struct {
	BaseModel
	CustomerID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceID   *uuid.UUID            `gorm:"type:uuid;index"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method      finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	Note        string                `gorm:"type:text"`
	PaymentDate time.Time             `gorm:"not null;index"`
	RecordedBy  *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CreditPaymentModel) TableName() string {
	return "credit_payments"
}

// ToDomain converts the persistence model to a domain CreditPayment
func (m *CreditPaymentModel) ToDomain() *finance.CreditPayment {
	return &finance.CreditPayment{
		BaseEntity:  m.BaseModel.ToDomain(),
		CustomerID:  m.CustomerID,
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		Method:      m.Method,
		Note:        m.Note,
		PaymentDate: m.PaymentDate,
		RecordedBy:  m.RecordedBy,
	}
}

// CreditPaymentModelFromDomain creates a new persistence model from a domain CreditPayment
func CreditPaymentModelFromDomain(p *finance.CreditPayment) *CreditPaymentModel {
	m := &CreditPaymentModel{
		CustomerID:  p.CustomerID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Method:      p.Method,
		Note:        p.Note,
		PaymentDate: p.PaymentDate,
		RecordedBy:  p.RecordedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
