package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditCustomerModel is the persistence model for the CreditCustomer aggregate root.
// AvailableCredit is denormalised for listing and recomputed on every save.
type CreditCustomerModel struct {
	AggregateModel
	Name                string                       `gorm:"type:varchar(200);not null"`
	Phone               string                       `gorm:"type:varchar(50);index"`
	Address             string                       `gorm:"type:text"`
	CreditLimit         decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	OutstandingBalance  decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableCredit     decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentTermsDays    int                          `gorm:"not null;default:30"`
	AuthorizedThreshold *decimal.Decimal             `gorm:"type:decimal(18,4)"`
	TotalPurchases      decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaid           decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	LastPaymentDate     *time.Time                   `gorm:"type:date"`
	Status              partner.CreditCustomerStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (CreditCustomerModel) TableName() string {
	return "credit_customers"
}

// ToDomain converts the persistence model to a domain CreditCustomer entity.
func (m *CreditCustomerModel) ToDomain() *partner.CreditCustomer {
	return &partner.CreditCustomer{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		Name:                m.Name,
		Phone:               m.Phone,
		Address:             m.Address,
		CreditLimit:         m.CreditLimit,
		OutstandingBalance:  m.OutstandingBalance,
		PaymentTermsDays:    m.PaymentTermsDays,
		AuthorizedThreshold: m.AuthorizedThreshold,
		TotalPurchases:      m.TotalPurchases,
		TotalPaid:           m.TotalPaid,
		LastPaymentDate:     m.LastPaymentDate,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain CreditCustomer entity.
func (m *CreditCustomerModel) FromDomain(c *partner.CreditCustomer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Phone = c.Phone
	m.Address = c.Address
	m.CreditLimit = c.CreditLimit
	m.OutstandingBalance = c.OutstandingBalance
	m.AvailableCredit = c.AvailableCredit()
	m.PaymentTermsDays = c.PaymentTermsDays
	m.AuthorizedThreshold = c.AuthorizedThreshold
	m.TotalPurchases = c.TotalPurchases
	m.TotalPaid = c.TotalPaid
	m.LastPaymentDate = c.LastPaymentDate
	m.Status = c.Status
}

// CreditCustomerModelFromDomain creates a new persistence model from a domain CreditCustomer entity.
func CreditCustomerModelFromDomain(c *partner.CreditCustomer) *CreditCustomerModel {
	m := &CreditCustomerModel{}
	m.FromDomain(c)
	return m
}

// ChargeEventModel is the append-only ledger audit row
type ChargeEventModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key"`
	CustomerID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Cause         partner.ChargeCause `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	BalanceBefore decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	SourceType    string              `gorm:"type:varchar(30)"`
	SourceID      *uuid.UUID          `gorm:"type:uuid;index"`
	Reference     string              `gorm:"type:varchar(50)"`
	OverLimit     bool                `gorm:"not null;default:false"`
	OccurredAt    time.Time           `gorm:"not null;index"`
	CreatedAt     time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChargeEventModel) TableName() string {
	return "charge_events"
}

// ToDomain converts the persistence model to a domain ChargeEvent
func (m *ChargeEventModel) ToDomain() *partner.ChargeEvent {
	return &partner.ChargeEvent{
		BaseEntity:    shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.CreatedAt},
		CustomerID:    m.CustomerID,
		Cause:         m.Cause,
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    shared.EntityType(m.SourceType),
		SourceID:      m.SourceID,
		Reference:     m.Reference,
		OverLimit:     m.OverLimit,
		OccurredAt:    m.OccurredAt,
	}
}

// ChargeEventModelFromDomain creates a new persistence model from a domain ChargeEvent
func ChargeEventModelFromDomain(e *partner.ChargeEvent) *ChargeEventModel {
	return &ChargeEventModel{
		ID:            e.ID,
		CustomerID:    e.CustomerID,
		Cause:         e.Cause,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		SourceType:    string(e.SourceType),
		SourceID:      e.SourceID,
		Reference:     e.Reference,
		OverLimit:     e.OverLimit,
		OccurredAt:    e.OccurredAt,
		CreatedAt:     e.CreatedAt,
	}
}

// SupplierModel is the persistence model for the Supplier aggregate root.
type SupplierModel struct {
	AggregateModel
	Name        string                 `gorm:"type:varchar(200);not null"`
	ContactName string                 `gorm:"type:varchar(100)"`
	Phone       string                 `gorm:"type:varchar(50)"`
	Email       string                 `gorm:"type:varchar(200)"`
	Address     string                 `gorm:"type:text"`
	Status      partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		ContactName:       m.ContactName,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		Status:            m.Status,
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:        s.Name,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		Status:      s.Status,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
