package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGormSequenceAllocator_NextID(t *testing.T) {
	ctx := context.Background()
	alloc := NewGormSequenceAllocator(newSQLiteDB(t))

	first, err := alloc.NextID(ctx, shared.EntityTypeSale)
	require.NoError(t, err)
	second, err := alloc.NextID(ctx, shared.EntityTypeSale)
	require.NoError(t, err)
	other, err := alloc.NextID(ctx, shared.EntityTypeCreditCustomer)
	require.NoError(t, err)

	assert.Equal(t, "S-0001", first)
	assert.Equal(t, "S-0002", second)
	assert.Equal(t, "CC-0001", other, "counters are independent per entity type")

	next, err := alloc.Peek(ctx, shared.EntityTypeSale)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)
}

func TestGormSequenceAllocator_UnknownType(t *testing.T) {
	alloc := NewGormSequenceAllocator(newSQLiteDB(t))

	_, err := alloc.NextID(context.Background(), shared.EntityType("INVOICE"))
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestGormSequenceAllocator_RollbackReturnsNumber(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	txScope := NewGormTransactionScope(db)
	boom := errors.New("boom")

	err := txScope.Execute(ctx, func(repos scope.Repositories) error {
		id, err := repos.Sequences().NextID(ctx, shared.EntityTypeCheque)
		require.NoError(t, err)
		assert.Equal(t, "C-0001", id)
		return boom
	})
	require.ErrorIs(t, err, boom)

	id, err := NewGormSequenceAllocator(db).NextID(ctx, shared.EntityTypeCheque)
	require.NoError(t, err)
	assert.Equal(t, "C-0001", id)
}

func TestGormSequenceAllocator_ConcurrentCallersGetContiguousIDs(t *testing.T) {
	ctx := context.Background()
	txScope := NewGormTransactionScope(newSQLiteDB(t))

	const callers = 25
	var (
		mu  sync.Mutex
		ids []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			return txScope.Execute(gctx, func(repos scope.Repositories) error {
				id, err := repos.Sequences().NextID(gctx, shared.EntityTypeProduct)
				if err != nil {
					return err
				}
				mu.Lock()
				ids = append(ids, id)
				mu.Unlock()
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())

	sort.Strings(ids)
	want := make([]string, callers)
	for i := range want {
		want[i] = shared.EntityTypeProduct.FormatPublicID(int64(i + 1))
	}
	assert.Equal(t, want, ids)
}

func TestGormSequenceAllocator_LocksCounterRow(t *testing.T) {
	db, mock := newMockDB(t)
	alloc := NewGormSequenceAllocator(db)

	mock.ExpectQuery(`SELECT \* FROM "public_id_sequences" WHERE entity_type = \$1 ORDER BY .* LIMIT \$2 FOR UPDATE`).
		WithArgs("SALE", 1).
		WillReturnRows(sqlmock.NewRows([]string{"entity_type", "next_number", "updated_at"}).
			AddRow("SALE", 7, time.Now()))
	mock.ExpectExec(`UPDATE "public_id_sequences" SET "next_number"=\$1,"updated_at"=\$2 WHERE entity_type = \$3`).
		WithArgs(int64(8), sqlmock.AnyArg(), "SALE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := alloc.NextID(context.Background(), shared.EntityTypeSale)

	require.NoError(t, err)
	assert.Equal(t, "S-0007", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
