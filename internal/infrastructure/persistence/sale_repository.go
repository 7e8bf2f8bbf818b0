package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by ID with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a sale with its items and locks the sale row
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter)
	return r.list(query, filter)
}

// FindByCustomer lists a customer's invoices
func (r *GormSaleRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, unsettledOnly bool, filter shared.Filter) ([]trade.Sale, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter).
		Where("credit_customer_id = ?", customerID)
	if unsettledOnly {
		query = query.Where("payment_status IN ?", trade.UnsettledStatuses)
	}
	return r.list(query, filter)
}

// CountUnsettledByCustomer counts a customer's UNPAID and PARTIAL invoices
func (r *GormSaleRepository) CountUnsettledByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("credit_customer_id = ? AND payment_status IN ?", customerID, trade.UnsettledStatuses).
		Count(&count).Error
	return count, err
}

func (r *GormSaleRepository) list(query *gorm.DB, filter shared.Filter) ([]trade.Sale, int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := applyPageAndOrder(query, filter, SaleSortFields, "sale_date").
		Preload("Items").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, total, nil
}

// Save creates or updates a sale and reconciles its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SaleModelFromDomain(sale)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return translateError(err)
		}

		itemIDs := make([]uuid.UUID, len(sale.Items))
		for i, item := range sale.Items {
			itemIDs[i] = item.ID
		}
		stale := tx.Where("sale_id = ?", sale.ID)
		if len(itemIDs) > 0 {
			stale = stale.Where("id NOT IN ?", itemIDs)
		}
		if err := stale.Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
			if err := tx.Save(models.SaleItemModelFromDomain(&sale.Items[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Insert creates a sale with its items keeping every existing ID
func (r *GormSaleRepository) Insert(ctx context.Context, sale *trade.Sale) error {
	return translateError(r.db.WithContext(ctx).Create(models.SaleModelFromDomain(sale)).Error)
}

// Delete deletes a sale and its items
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&models.SaleModel{}, "id = ?", id))
	})
}

// ExistsByID checks if a sale exists
func (r *GormSaleRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.SaleModel{}, id)
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(public_id) LIKE ? OR LOWER(note) LIKE ?",
			likePattern(filter.Search), likePattern(filter.Search))
	}

	for key, value := range filter.Filters {
		switch key {
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "credit_customer_id":
			query = query.Where("credit_customer_id = ?", value)
		case "cashier_id":
			query = query.Where("cashier_id = ?", value)
		case "start_date":
			query = query.Where("sale_date >= ?", value)
		case "end_date":
			query = query.Where("sale_date <= ?", value)
		}
	}
	return query
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an order with its items and locks the order row
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySaleID finds the order that produced a sale
func (r *GormOrderRepository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "sale_id = ?", saleID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(public_id) LIKE ?", likePattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_type":
			query = query.Where("payment_type = ?", value)
		case "credit_customer_id":
			query = query.Where("credit_customer_id = ?", value)
		}
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := applyPageAndOrder(query, filter, OrderSortFields, "order_date").
		Preload("Items").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Save creates or updates an order and reconciles its items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(order)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return translateError(err)
		}

		itemIDs := make([]uuid.UUID, len(order.Items))
		for i, item := range order.Items {
			itemIDs[i] = item.ID
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(itemIDs) > 0 {
			stale = stale.Where("id NOT IN ?", itemIDs)
		}
		if err := stale.Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Save(models.OrderItemModelFromDomain(&order.Items[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Insert creates an order with its items keeping every existing ID
func (r *GormOrderRepository) Insert(ctx context.Context, order *trade.Order) error {
	return translateError(r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error)
}

// Delete deletes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&models.OrderModel{}, "id = ?", id))
	})
}

// ExistsByID checks if an order exists
func (r *GormOrderRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx), &models.OrderModel{}, id)
}

// Ensure the repositories implement their domain interfaces
var (
	_ trade.SaleRepository  = (*GormSaleRepository)(nil)
	_ trade.OrderRepository = (*GormOrderRepository)(nil)
)
