//go:build integration

package persistence

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newPostgresDB starts a throwaway postgres, applies migrations/ and returns
// a pool large enough for real row-lock contention
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("grocer_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := migration.NewFromURL(dsn, migrationsPath(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func migrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("migrations directory not found")
	return ""
}

func TestPostgres_NextIDUnderContention(t *testing.T) {
	ctx := context.Background()
	txScope := NewGormTransactionScope(newPostgresDB(t))

	const callers = 40
	var (
		mu  sync.Mutex
		ids []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			return txScope.Execute(gctx, func(repos scope.Repositories) error {
				id, err := repos.Sequences().NextID(gctx, shared.EntityTypeSale)
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
	require.Len(t, ids, callers)
	for i, id := range ids {
		assert.Equal(t, shared.EntityTypeSale.FormatPublicID(int64(i+1)), id)
	}
}

func TestPostgres_ConcurrentBouncesKeepBalanceExact(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	txScope := NewGormTransactionScope(db)

	customer, err := partner.NewCreditCustomer("CC-0001", "Corner Deli", "", decimal.NewFromInt(100), 0)
	require.NoError(t, err)
	require.NoError(t, NewGormCreditCustomerRepository(db).Insert(ctx, customer))

	const charges = 20
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < charges; i++ {
		g.Go(func() error {
			return txScope.Execute(gctx, func(repos scope.Repositories) error {
				c, err := repos.Customers().FindByIDForUpdate(gctx, customer.ID)
				if err != nil {
					return err
				}
				event, err := c.Charge(decimal.NewFromInt(10), partner.ChargeCauseChequeBounce)
				if err != nil {
					return err
				}
				if err := repos.Customers().Save(gctx, c); err != nil {
					return err
				}
				return repos.ChargeEvents().Append(gctx, event)
			})
		})
	}
	require.NoError(t, g.Wait())

	reloaded, err := NewGormCreditCustomerRepository(db).FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(reloaded.OutstandingBalance))

	events, total, err := NewGormChargeEventRepository(db).FindByCustomer(ctx, customer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(charges), total)
	assert.NotEmpty(t, events)
}
