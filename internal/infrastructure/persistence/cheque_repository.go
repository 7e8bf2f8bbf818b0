package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChequeRepository implements ChequeRepository using GORM
type GormChequeRepository struct {
	db *gorm.DB
}

// NewGormChequeRepository creates a new GormChequeRepository
func NewGormChequeRepository(db *gorm.DB) *GormChequeRepository {
	return &GormChequeRepository{db: db}
}

// FindByID finds a cheque by ID
func (r *GormChequeRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Cheque, error) {
	var model models.ChequeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a cheque and locks its row
func (r *GormChequeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.Cheque, error) {
	var model models.ChequeModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all cheques matching the filter
func (r *GormChequeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Cheque, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ChequeModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(cheque_number) LIKE ? OR LOWER(bank_name) LIKE ? OR LOWER(public_id) LIKE ?",
			pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "due_before":
			query = query.Where("due_date <= ?", value)
		}
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ChequeModel
	if err := applyPageAndOrder(query, filter, ChequeSortFields, "due_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	cheques := make([]finance.Cheque, len(rows))
	for i := range rows {
		cheques[i] = *rows[i].ToDomain()
	}
	return cheques, total, nil
}

// Save creates or updates a cheque
func (r *GormChequeRepository) Save(ctx context.Context, cheque *finance.Cheque) error {
	return translateError(r.db.WithContext(ctx).Save(models.ChequeModelFromDomain(cheque)).Error)
}

// Insert creates a cheque row keeping the cheque's ID
func (r *GormChequeRepository) Insert(ctx context.Context, cheque *finance.Cheque) error {
	return translateError(r.db.WithContext(ctx).Create(models.ChequeModelFromDomain(cheque)).Error)
}

// Delete deletes a cheque
func (r *GormChequeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.ChequeModel{}, "id = ?", id))
}

// ExistsByID checks if a cheque exists
func (r *GormChequeRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.ChequeModel{}, id)
}

// GormCreditPaymentRepository implements CreditPaymentRepository using GORM
type GormCreditPaymentRepository struct {
	db *gorm.DB
}

// NewGormCreditPaymentRepository creates a new GormCreditPaymentRepository
func NewGormCreditPaymentRepository(db *gorm.DB) *GormCreditPaymentRepository {
	return &GormCreditPaymentRepository{db: db}
}

// Create records a payment
func (r *GormCreditPaymentRepository) Create(ctx context.Context, payment *finance.CreditPayment) error {
	return translateError(r.db.WithContext(ctx).Create(models.CreditPaymentModelFromDomain(payment)).Error)
}

// FindByCustomer lists a customer's payments
func (r *GormCreditPaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]finance.CreditPayment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CreditPaymentModel{}).
		Where("customer_id = ?", customerID)
	if invoiceID, ok := filter.Filters["invoice_id"]; ok {
		query = query.Where("invoice_id = ?", invoiceID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CreditPaymentModel
	if err := applyPageAndOrder(query, filter, CreditPaymentSortFields, "payment_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]finance.CreditPayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, total, nil
}

// Ensure the repositories implement their domain interfaces
var (
	_ finance.ChequeRepository        = (*GormChequeRepository)(nil)
	_ finance.CreditPaymentRepository = (*GormCreditPaymentRepository)(nil)
)
