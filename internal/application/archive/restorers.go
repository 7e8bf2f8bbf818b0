package archive

import (
	"context"
	"errors"
	"fmt"

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

// Restorers decode the snapshot payload and re-insert the whole owned
// subgraph at the original ids. None of them touch stock.

func restoreUser(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var user identity.User
	if err := snapshot.Decode(&user); err != nil {
		return err
	}
	return repos.Users().Insert(ctx, &user)
}

func restoreProduct(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var product catalog.Product
	if err := snapshot.Decode(&product); err != nil {
		return err
	}
	return repos.Products().Insert(ctx, &product)
}

func restoreCustomer(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var customer partner.CreditCustomer
	if err := snapshot.Decode(&customer); err != nil {
		return err
	}
	return repos.Customers().Insert(ctx, &customer)
}

func restoreSupplier(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var supplier partner.Supplier
	if err := snapshot.Decode(&supplier); err != nil {
		return err
	}
	return repos.Suppliers().Insert(ctx, &supplier)
}

func restoreCheque(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var cheque finance.Cheque
	if err := snapshot.Decode(&cheque); err != nil {
		return err
	}
	return repos.Cheques().Insert(ctx, &cheque)
}

// restoreOrder re-inserts the order. A confirmed order whose invoice went to
// the trash with it brings that invoice back too, so the customer is charged
// again under the limit check.
func (s *Service) restoreOrder(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var order trade.Order
	if err := snapshot.Decode(&order); err != nil {
		return err
	}
	if order.SaleID != nil {
		if err := s.restoreLinkedSale(ctx, repos, &order); err != nil {
			return err
		}
	}
	return repos.Orders().Insert(ctx, &order)
}

func (s *Service) restoreLinkedSale(ctx context.Context, repos scope.Repositories, order *trade.Order) error {
	live, err := repos.Sales().ExistsByID(ctx, *order.SaleID)
	if err != nil || live {
		return err
	}

	saleSnapshot, err := repos.Snapshots().FindPendingByOriginalIDForUpdate(ctx, shared.EntityTypeSale, *order.SaleID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError(fmt.Sprintf(
			"Cannot restore order %s: its invoice is no longer in the trash", order.PublicID))
	}
	if err != nil {
		return err
	}
	if err := s.restoreSale(ctx, repos, saleSnapshot); err != nil {
		return err
	}
	if err := saleSnapshot.MarkRestored(s.now()); err != nil {
		return err
	}
	if err := repos.Snapshots().MarkRestored(ctx, saleSnapshot); err != nil {
		return fmt.Errorf("failed to mark invoice snapshot restored: %w", err)
	}
	return nil
}

func restorePurchaseOrder(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var po trade.PurchaseOrder
	if err := snapshot.Decode(&po); err != nil {
		return err
	}
	return repos.PurchaseOrders().Insert(ctx, &po)
}

// restoreSale re-inserts the invoice and books its unpaid part on the
// customer's ledger again. The re-charge is limit checked, so a customer who
// has since used up their credit blocks the restore.
func (s *Service) restoreSale(ctx context.Context, repos scope.Repositories, snapshot *archive.Snapshot) error {
	var sale trade.Sale
	if err := snapshot.Decode(&sale); err != nil {
		return err
	}

	if sale.CreditCustomerID != nil {
		cause := partner.ChargeCauseSale
		if sale.OrderID != nil {
			cause = partner.ChargeCauseOrderConfirm
		}
		if outstanding := sale.OutstandingCharge(); outstanding.IsPositive() {
			_, err := s.ledger.Charge(ctx, repos, *sale.CreditCustomerID, outstanding, cause, ledger.Source{
				Type:      shared.EntityTypeSale,
				ID:        sale.ID,
				Reference: sale.PublicID,
			})
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError(fmt.Sprintf(
					"Cannot restore sale %s: its credit customer no longer exists, restore the customer first", sale.PublicID))
			}
			if err != nil {
				return err
			}
		}
	}
	return repos.Sales().Insert(ctx, &sale)
}
