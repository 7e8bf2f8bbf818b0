package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/grocer/backoffice/internal/domain/identity"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
)

// handler binds one entity type to its repositories. load must take the row
// lock where the repository offers one and must include owned line items.
type handler struct {
	entityType   shared.EntityType
	load         func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error)
	displayName  func(root shared.AggregateRoot) string
	beforeDelete func(ctx context.Context, d *deletion, root shared.AggregateRoot) error
	remove       func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error
	exists       func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error)
	restore      func(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error
}

func newHandlers(s *Service) map[shared.EntityType]*handler {
	list := []*handler{
		{
			entityType: shared.EntityTypeUser,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.Users().FindByID(ctx, id)
			},
			displayName: func(root shared.AggregateRoot) string {
				u := root.(*identity.User)
				return fmt.Sprintf("%s (%s)", u.FullName, u.Username)
			},
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.Users().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.Users().ExistsByID(ctx, id)
			},
			restore: restoreUser,
		},
		{
			entityType: shared.EntityTypeProduct,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.Products().FindByIDForUpdate(ctx, id)
			},
			displayName: func(root shared.AggregateRoot) string {
				return root.(*catalog.Product).Name
			},
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.Products().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.Products().ExistsByID(ctx, id)
			},
			restore: restoreProduct,
		},
		{
			entityType: shared.EntityTypeSale,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.Sales().FindByIDForUpdate(ctx, id)
			},
			beforeDelete: s.beforeDeleteSale,
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.Sales().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.Sales().ExistsByID(ctx, id)
			},
			restore: s.restoreSale,
		},
		{
			entityType: shared.EntityTypeOrder,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.Orders().FindByIDForUpdate(ctx, id)
			},
			beforeDelete: s.beforeDeleteOrder,
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.Orders().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.Orders().ExistsByID(ctx, id)
			},
			restore: s.restoreOrder,
		},
		{
			entityType: shared.EntityTypeCreditCustomer,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.Customers().FindByIDForUpdate(ctx, id)
			},
			displayName: func(root shared.AggregateRoot) string {
				return root.(*partner.CreditCustomer).Name
			},
			beforeDelete: beforeDeleteCustomer,
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.Customers().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.Customers().ExistsByID(ctx, id)
			},
			restore: restoreCustomer,
		},
		{
			entityType: shared.EntityTypeCheque,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.Cheques().FindByIDForUpdate(ctx, id)
			},
			displayName: func(root shared.AggregateRoot) string {
				c := root.(*finance.Cheque)
				return fmt.Sprintf("Cheque %s (#%s)", c.PublicID, c.ChequeNumber)
			},
			beforeDelete: func(_ context.Context, _ *deletion, root shared.AggregateRoot) error {
				return root.(*finance.Cheque).EnsureDeletable()
			},
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.Cheques().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.Cheques().ExistsByID(ctx, id)
			},
			restore: restoreCheque,
		},
		{
			entityType: shared.EntityTypePurchaseOrder,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
			},
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.PurchaseOrders().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.PurchaseOrders().ExistsByID(ctx, id)
			},
			restore: restorePurchaseOrder,
		},
		{
			entityType: shared.EntityTypeSupplier,
			load: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (shared.AggregateRoot, error) {
				return repos.Suppliers().FindByID(ctx, id)
			},
			displayName: func(root shared.AggregateRoot) string {
				return root.(*partner.Supplier).Name
			},
			remove: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) error {
				return repos.Suppliers().Delete(ctx, id)
			},
			exists: func(ctx context.Context, repos scope.Repositories, id uuid.UUID) (bool, error) {
				return repos.Suppliers().ExistsByID(ctx, id)
			},
			restore: restoreSupplier,
		},
	}

	handlers := make(map[shared.EntityType]*handler, len(list))
	for _, h := range list {
		handlers[h.entityType] = h
	}
	return handlers
}

// beforeDeleteCustomer refuses to archive a customer that still owes money
func beforeDeleteCustomer(ctx context.Context, d *deletion, root shared.AggregateRoot) error {
	customer := root.(*partner.CreditCustomer)
	unsettled, err := d.repos.Sales().CountUnsettledByCustomer(ctx, customer.ID)
	if err != nil {
		return err
	}
	return customer.CanDelete(unsettled)
}

// beforeDeleteSale reverses the unpaid part of a credit sale's charge and
// detaches the sale from the order it came from
func (s *Service) beforeDeleteSale(ctx context.Context, d *deletion, root shared.AggregateRoot) error {
	sale := root.(*trade.Sale)
	if err := s.reverseSale(ctx, d.repos, sale, partner.ChargeCauseSaleReversal); err != nil {
		return err
	}

	if sale.OrderID == nil {
		return nil
	}
	order, err := d.repos.Orders().FindByIDForUpdate(ctx, *sale.OrderID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if order.SaleID != nil && *order.SaleID == sale.ID {
		order.ClearSaleLink()
		return d.repos.Orders().Save(ctx, order)
	}
	return nil
}

// beforeDeleteOrder cancels a confirmed order's invoice: the unpaid charge is
// reversed as ORDER_CANCEL_REVERSAL and the sale goes to the trash with it
func (s *Service) beforeDeleteOrder(ctx context.Context, d *deletion, root shared.AggregateRoot) error {
	order := root.(*trade.Order)
	if order.Status != trade.OrderStatusConfirmed || order.SaleID == nil {
		return nil
	}

	sale, err := d.repos.Sales().FindByIDForUpdate(ctx, *order.SaleID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.reverseSale(ctx, d.repos, sale, partner.ChargeCauseOrderCancelReversal); err != nil {
		return err
	}
	return s.cascade(ctx, d, shared.EntityTypeSale, sale)
}

func (s *Service) reverseSale(ctx context.Context, repos scope.Repositories, sale *trade.Sale, cause partner.ChargeCause) error {
	if sale.CreditCustomerID == nil {
		return nil
	}
	_, err := s.ledger.Reverse(ctx, repos, *sale.CreditCustomerID, sale.OutstandingCharge(), cause, ledger.Source{
		Type:      shared.EntityTypeSale,
		ID:        sale.ID,
		Reference: sale.PublicID,
	})
	return err
}
