package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with the public id and a version for optimistic locking.
type AggregateModel struct {
	BaseModel
	PublicID string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Version  int    `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.PublicID = a.PublicID
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		PublicID:   m.PublicID,
		Version:    m.Version,
	}
}

// All lists every table the ledger core owns, in dependency order
func All() []any {
	return []any{
		&UserModel{},
		&ProductModel{},
		&SupplierModel{},
		&CreditCustomerModel{},
		&ChargeEventModel{},
		&SaleModel{},
		&SaleItemModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&ChequeModel{},
		&CreditPaymentModel{},
		&ArchiveSnapshotModel{},
		&PublicIDSequenceModel{},
	}
}
