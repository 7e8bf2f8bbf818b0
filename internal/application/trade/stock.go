package trade

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/domain/trade"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// stockMove is a signed quantity change for one product
type stockMove struct {
	productID uuid.UUID
	quantity  int
}

// lockProducts loads every product under a row lock in id order, so two
// documents touching the same products cannot deadlock on each other
func lockProducts(ctx context.Context, repos scope.Repositories, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool {
		return bytes.Compare(unique[i][:], unique[j][:]) < 0
	})

	products := make(map[uuid.UUID]*catalog.Product, len(unique))
	for _, id := range unique {
		product, err := repos.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		products[id] = product
	}
	return products, nil
}

// saleLines resolves request lines against the catalog and deducts their
// stock. Products must be sellable; a missing unit price takes the catalog price.
func saleLines(ctx context.Context, repos scope.Repositories, inputs []LineInput) ([]trade.SaleLine, error) {
	ids := make([]uuid.UUID, len(inputs))
	for i, in := range inputs {
		ids[i] = in.ProductID
	}
	products, err := lockProducts(ctx, repos, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]trade.SaleLine, 0, len(inputs))
	moves := make([]stockMove, 0, len(inputs))
	for _, in := range inputs {
		product := products[in.ProductID]
		if !product.IsSellable() {
			return nil, shared.NewValidationError(fmt.Sprintf("Product %s is not available for sale", product.PublicID))
		}
		price := product.UnitPrice
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		lines = append(lines, trade.SaleLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Category:    product.Category,
			Quantity:    in.Quantity,
			UnitPrice:   price,
		})
		moves = append(moves, stockMove{productID: product.ID, quantity: -in.Quantity})
	}
	if err := applyStock(ctx, repos, products, moves); err != nil {
		return nil, err
	}
	return lines, nil
}

// applyStock applies the moves to already locked products and saves each one once
func applyStock(ctx context.Context, repos scope.Repositories, products map[uuid.UUID]*catalog.Product, moves []stockMove) error {
	touched := make(map[uuid.UUID]struct{}, len(moves))
	for _, m := range moves {
		product := products[m.productID]
		var err error
		if m.quantity < 0 {
			err = product.DeductStock(-m.quantity)
		} else {
			err = product.AddStock(m.quantity)
		}
		if err != nil {
			return err
		}
		touched[m.productID] = struct{}{}
	}
	for id := range touched {
		product := products[id]
		if err := repos.Products().Save(ctx, product); err != nil {
			return fmt.Errorf("failed to save product %s: %w", product.PublicID, err)
		}
		if product.NeedsReorder() {
			logger.L(ctx).Warn("product at or below reorder level",
				zap.String("product_id", product.ID.String()),
				zap.String("public_id", product.PublicID),
				zap.Int("stock_qty", product.StockQty),
				zap.Int("reorder_level", product.ReorderLevel),
			)
		}
	}
	return nil
}
