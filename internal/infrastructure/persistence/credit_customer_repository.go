package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCreditCustomerRepository implements CreditCustomerRepository using GORM
type GormCreditCustomerRepository struct {
	db *gorm.DB
}

// NewGormCreditCustomerRepository creates a new GormCreditCustomerRepository
func NewGormCreditCustomerRepository(db *gorm.DB) *GormCreditCustomerRepository {
	return &GormCreditCustomerRepository{db: db}
}

// FindByID finds a credit customer by its ID
func (r *GormCreditCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.CreditCustomer, error) {
	var model models.CreditCustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a credit customer and locks its row until the
// surrounding transaction ends
func (r *GormCreditCustomerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.CreditCustomer, error) {
	var model models.CreditCustomerModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByPublicID finds a credit customer by its public id (e.g. CC-0001)
func (r *GormCreditCustomerRepository) FindByPublicID(ctx context.Context, publicID string) (*partner.CreditCustomer, error) {
	var model models.CreditCustomerModel
	if err := r.db.WithContext(ctx).First(&model, "public_id = ?", publicID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all credit customers matching the filter
func (r *GormCreditCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.CreditCustomer, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CreditCustomerModel{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CreditCustomerModel
	if err := applyPageAndOrder(query, filter, CreditCustomerSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	customers := make([]partner.CreditCustomer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, total, nil
}

// Portfolio aggregates limits and balances across all customers
func (r *GormCreditCustomerRepository) Portfolio(ctx context.Context) (partner.PortfolioSummary, error) {
	var row struct {
		CustomerCount    int64
		TotalLimit       decimal.Decimal
		TotalOutstanding decimal.Decimal
		OverLimitCount   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.CreditCustomerModel{}).
		Select(`COUNT(*) AS customer_count,
			COALESCE(SUM(credit_limit), 0) AS total_limit,
			COALESCE(SUM(outstanding_balance), 0) AS total_outstanding,
			COALESCE(SUM(CASE WHEN outstanding_balance > credit_limit THEN 1 ELSE 0 END), 0) AS over_limit_count`).
		Scan(&row).Error
	if err != nil {
		return partner.PortfolioSummary{}, err
	}
	return partner.NewPortfolioSummary(row.CustomerCount, row.TotalLimit, row.TotalOutstanding, row.OverLimitCount), nil
}

// Save creates or updates a credit customer
func (r *GormCreditCustomerRepository) Save(ctx context.Context, customer *partner.CreditCustomer) error {
	model := models.CreditCustomerModelFromDomain(customer)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Insert creates a credit customer row keeping the customer's ID
func (r *GormCreditCustomerRepository) Insert(ctx context.Context, customer *partner.CreditCustomer) error {
	model := models.CreditCustomerModelFromDomain(customer)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Delete deletes a credit customer
func (r *GormCreditCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.CreditCustomerModel{}, "id = ?", id))
}

// ExistsByID checks if a credit customer exists
func (r *GormCreditCustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.CreditCustomerModel{}, id)
}

func (r *GormCreditCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(public_id) LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "over_limit":
			if v, ok := value.(bool); ok && v {
				query = query.Where("outstanding_balance > credit_limit")
			}
		case "has_balance":
			if v, ok := value.(bool); ok && v {
				query = query.Where("outstanding_balance > 0")
			}
		}
	}
	return query
}

// GormChargeEventRepository implements ChargeEventRepository using GORM
type GormChargeEventRepository struct {
	db *gorm.DB
}

// NewGormChargeEventRepository creates a new GormChargeEventRepository
func NewGormChargeEventRepository(db *gorm.DB) *GormChargeEventRepository {
	return &GormChargeEventRepository{db: db}
}

// Append writes a charge event. Events are never updated.
func (r *GormChargeEventRepository) Append(ctx context.Context, event *partner.ChargeEvent) error {
	return r.db.WithContext(ctx).Create(models.ChargeEventModelFromDomain(event)).Error
}

// FindByCustomer lists a customer's charge events, newest first by default
func (r *GormChargeEventRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]partner.ChargeEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ChargeEventModel{}).Where("customer_id = ?", customerID)
	if cause, ok := filter.Filters["cause"]; ok {
		query = query.Where("cause = ?", cause)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ChargeEventModel
	if err := applyPageAndOrder(query, filter, ChargeEventSortFields, "occurred_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return chargeEventsToDomain(rows), total, nil
}

// FindBySource lists the charge events booked for one source document in order
func (r *GormChargeEventRepository) FindBySource(ctx context.Context, sourceType shared.EntityType, sourceID uuid.UUID) ([]partner.ChargeEvent, error) {
	var rows []models.ChargeEventModel
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", string(sourceType), sourceID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return chargeEventsToDomain(rows), nil
}

func chargeEventsToDomain(rows []models.ChargeEventModel) []partner.ChargeEvent {
	events := make([]partner.ChargeEvent, len(rows))
	for i := range rows {
		events[i] = *rows[i].ToDomain()
	}
	return events
}

// Ensure the repositories implement their domain interfaces
var (
	_ partner.CreditCustomerRepository = (*GormCreditCustomerRepository)(nil)
	_ partner.ChargeEventRepository    = (*GormChargeEventRepository)(nil)
)
