package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	catalogapp "github.com/grocer/backoffice/internal/application/catalog"
	financeapp "github.com/grocer/backoffice/internal/application/finance"
	identityapp "github.com/grocer/backoffice/internal/application/identity"
	"github.com/grocer/backoffice/internal/application/ledger"
	partnerapp "github.com/grocer/backoffice/internal/application/partner"
	tradeapp "github.com/grocer/backoffice/internal/application/trade"
	"github.com/grocer/backoffice/internal/interfaces/http/middleware"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testAPI mounts the handlers on a bare engine backed by a migrated sqlite store
type testAPI struct {
	store  *testutil.Store
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := testutil.NewStore(t)
	l := ledger.New(nil)
	archiver := archiveapp.NewService(store.TxScope, l)
	payments := financeapp.NewPaymentService(store.TxScope, l, nil)

	customers := NewCustomerHandler(partnerapp.NewCustomerService(store.TxScope, archiver), payments)
	sales := NewSaleHandler(tradeapp.NewSaleService(store.TxScope, l, archiver), payments)
	orders := NewOrderHandler(tradeapp.NewOrderService(store.TxScope, l, archiver))
	purchases := NewPurchaseOrderHandler(tradeapp.NewPurchaseOrderService(store.TxScope, archiver))
	cheques := NewChequeHandler(financeapp.NewChequeService(store.TxScope, l, archiver, nil))
	products := NewProductHandler(catalogapp.NewProductService(store.TxScope, archiver))
	suppliers := NewSupplierHandler(partnerapp.NewSupplierService(store.TxScope, archiver))
	users := NewUserHandler(identityapp.NewUserService(store.TxScope, archiver))
	trash := NewTrashHandler(archiver)

	engine := gin.New()
	engine.Use(middleware.RequestID(), withActor(testutil.TestActorID()))

	cc := engine.Group("/credit-customers")
	cc.POST("", customers.Create)
	cc.GET("", customers.List)
	cc.GET("/summary", customers.Portfolio)
	cc.GET("/:id", customers.GetByID)
	cc.PUT("/:id", customers.Update)
	cc.DELETE("/:id", customers.Delete)
	cc.GET("/:id/summary", customers.Summary)
	cc.GET("/:id/payments", customers.Payments)
	cc.POST("/:id/payments", customers.RecordPayment)
	cc.GET("/:id/invoices", customers.Invoices)
	cc.GET("/:id/charges", customers.Charges)

	s := engine.Group("/sales")
	s.POST("", sales.Create)
	s.GET("/:id", sales.GetByID)
	s.DELETE("/:id", sales.Delete)
	s.POST("/:id/payments", sales.Pay)

	o := engine.Group("/orders")
	o.POST("", orders.Create)
	o.GET("/:id", orders.GetByID)
	o.POST("/:id/items", orders.AddItem)
	o.DELETE("/:id/items/:itemId", orders.RemoveItem)
	o.POST("/:id/confirm", orders.Confirm)
	o.POST("/:id/void", orders.Void)
	o.DELETE("/:id", orders.Delete)

	po := engine.Group("/purchase-orders")
	po.POST("", purchases.Create)
	po.POST("/:id/send", purchases.Send)
	po.POST("/:id/receive", purchases.Receive)
	po.POST("/:id/cancel", purchases.Cancel)

	ch := engine.Group("/cheques")
	ch.POST("", cheques.Create)
	ch.GET("/:id", cheques.GetByID)
	ch.PATCH("/:id/status", cheques.ChangeStatus)
	ch.DELETE("/:id", cheques.Delete)

	engine.POST("/products", products.Create)
	engine.GET("/products", products.List)
	engine.DELETE("/products/:id", products.Delete)
	engine.POST("/suppliers", suppliers.Create)
	engine.POST("/users", users.Create)
	engine.DELETE("/users/:id", users.Delete)

	engine.GET("/trash/:type", trash.List)
	engine.GET("/trash/:type/:deletedId", trash.Get)
	engine.POST("/trash/:type/:deletedId/restore", trash.Restore)
	engine.DELETE("/trash/:type/:deletedId", trash.PermanentDelete)

	return &testAPI{store: store, engine: engine}
}

func withActor(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorIDKey, id)
		c.Next()
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.PerformRequest(t, a.engine, method, path, body, nil)
}

// created asserts a 201 and returns the data object
func (a *testAPI) created(t *testing.T, path string, body any) map[string]any {
	t.Helper()
	w := a.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DataOf(t, w)
}

// money reads a decimal field rendered as a JSON string or number
func money(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		require.NoError(t, err)
		return d
	case float64:
		return decimal.NewFromFloat(n)
	default:
		t.Fatalf("not a decimal: %#v", v)
		return decimal.Zero
	}
}

func assertMoney(t *testing.T, expected int64, v any) {
	t.Helper()
	require.True(t, decimal.NewFromInt(expected).Equal(money(t, v)), "expected %d, got %v", expected, v)
}
