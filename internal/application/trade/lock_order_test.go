package trade_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/application/trade"
	"github.com/grocer/backoffice/internal/domain/catalog"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockLog records the kind of every row lock taken inside a transaction
type lockLog struct {
	kinds []string
}

func (l *lockLog) add(kind string) {
	if n := len(l.kinds); n > 0 && l.kinds[n-1] == kind {
		return
	}
	l.kinds = append(l.kinds, kind)
}

type recordingScope struct {
	inner scope.TransactionScope
	log   *lockLog
}

func (s recordingScope) Execute(ctx context.Context, fn func(repos scope.Repositories) error) error {
	return s.inner.Execute(ctx, func(repos scope.Repositories) error {
		return fn(recordingRepos{Repositories: repos, log: s.log})
	})
}

type recordingRepos struct {
	scope.Repositories
	log *lockLog
}

func (r recordingRepos) Products() catalog.ProductRepository {
	return recordingProducts{ProductRepository: r.Repositories.Products(), log: r.log}
}

func (r recordingRepos) Customers() partner.CreditCustomerRepository {
	return recordingCustomers{CreditCustomerRepository: r.Repositories.Customers(), log: r.log}
}

func (r recordingRepos) Sequences() shared.SequenceAllocator {
	return recordingSequences{inner: r.Repositories.Sequences(), log: r.log}
}

type recordingProducts struct {
	catalog.ProductRepository
	log *lockLog
}

func (p recordingProducts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p.log.add("product")
	return p.ProductRepository.FindByIDForUpdate(ctx, id)
}

type recordingCustomers struct {
	partner.CreditCustomerRepository
	log *lockLog
}

func (c recordingCustomers) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.CreditCustomer, error) {
	c.log.add("customer")
	return c.CreditCustomerRepository.FindByIDForUpdate(ctx, id)
}

type recordingSequences struct {
	inner shared.SequenceAllocator
	log   *lockLog
}

func (s recordingSequences) NextID(ctx context.Context, entityType shared.EntityType) (string, error) {
	s.log.add("sequence")
	return s.inner.NextID(ctx, entityType)
}

func TestLockOrder_SaleAndOrderAgree(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	customer := store.SeedCustomer(t, "Amina Stores", 5000)
	rice := store.SeedProduct(t, "Rice 2kg", 120, 50)
	oil := store.SeedProduct(t, "Cooking Oil 1L", 250, 50)

	l := ledger.New(nil)
	log := &lockLog{}
	tx := recordingScope{inner: store.TxScope, log: log}
	archiver := archiveapp.NewService(store.TxScope, l)
	sales := trade.NewSaleService(tx, l, archiver)
	orders := trade.NewOrderService(tx, l, archiver)

	want := []string{"product", "sequence", "customer"}

	_, err := sales.Create(ctx, trade.CreateSaleRequest{
		PaymentMethod: "CREDIT",
		CustomerID:    &customer.ID,
		Items:         []trade.LineInput{line(oil.ID, 1), line(rice.ID, 2)},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, want, log.kinds, "sale create")

	order, err := trade.NewOrderService(store.TxScope, l, archiver).Create(ctx, trade.CreateOrderRequest{
		PaymentType: "CREDIT",
		CustomerID:  &customer.ID,
		Items:       []trade.LineInput{line(rice.ID, 1), line(oil.ID, 1)},
	})
	require.NoError(t, err)

	log.kinds = nil
	_, err = orders.Confirm(ctx, order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, want, log.kinds, "order confirm")
}
