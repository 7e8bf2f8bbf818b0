package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/grocer/backoffice/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// allHandlers returns zero-value handlers; route registration only takes
// their method values and never calls them
func allHandlers() Handlers {
	return Handlers{
		Customers:      &handler.CustomerHandler{},
		Sales:          &handler.SaleHandler{},
		Orders:         &handler.OrderHandler{},
		PurchaseOrders: &handler.PurchaseOrderHandler{},
		Cheques:        &handler.ChequeHandler{},
		Products:       &handler.ProductHandler{},
		Suppliers:      &handler.SupplierHandler{},
		Users:          &handler.UserHandler{},
		Trash:          &handler.TrashHandler{},
		Health:         &handler.HealthHandler{},
	}
}

func routeKeys(engine *gin.Engine) []string {
	routes := engine.Routes()
	keys := make([]string, 0, len(routes))
	for _, r := range routes {
		keys = append(keys, r.Method+" "+r.Path)
	}
	sort.Strings(keys)
	return keys
}

func TestNew_RouteTable(t *testing.T) {
	engine := New(allHandlers(), Dependencies{})

	want := []string{
		"GET /health",

		"POST /api/v1/credit-customers",
		"GET /api/v1/credit-customers",
		"GET /api/v1/credit-customers/summary",
		"GET /api/v1/credit-customers/public/:publicId",
		"GET /api/v1/credit-customers/:id",
		"PUT /api/v1/credit-customers/:id",
		"DELETE /api/v1/credit-customers/:id",
		"GET /api/v1/credit-customers/:id/summary",
		"GET /api/v1/credit-customers/:id/payments",
		"POST /api/v1/credit-customers/:id/payments",
		"GET /api/v1/credit-customers/:id/invoices",
		"GET /api/v1/credit-customers/:id/charges",

		"POST /api/v1/sales",
		"GET /api/v1/sales",
		"GET /api/v1/sales/:id",
		"DELETE /api/v1/sales/:id",
		"POST /api/v1/sales/:id/payments",

		"POST /api/v1/orders",
		"GET /api/v1/orders",
		"GET /api/v1/orders/:id",
		"DELETE /api/v1/orders/:id",
		"POST /api/v1/orders/:id/items",
		"DELETE /api/v1/orders/:id/items/:itemId",
		"POST /api/v1/orders/:id/confirm",
		"POST /api/v1/orders/:id/void",

		"POST /api/v1/purchase-orders",
		"GET /api/v1/purchase-orders",
		"GET /api/v1/purchase-orders/:id",
		"DELETE /api/v1/purchase-orders/:id",
		"POST /api/v1/purchase-orders/:id/send",
		"POST /api/v1/purchase-orders/:id/receive",
		"POST /api/v1/purchase-orders/:id/cancel",

		"POST /api/v1/cheques",
		"GET /api/v1/cheques",
		"GET /api/v1/cheques/:id",
		"DELETE /api/v1/cheques/:id",
		"PATCH /api/v1/cheques/:id/status",

		"POST /api/v1/products",
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"DELETE /api/v1/products/:id",

		"POST /api/v1/suppliers",
		"GET /api/v1/suppliers",
		"GET /api/v1/suppliers/:id",
		"DELETE /api/v1/suppliers/:id",

		"POST /api/v1/users",
		"GET /api/v1/users",
		"GET /api/v1/users/:id",
		"DELETE /api/v1/users/:id",

		"GET /api/v1/trash/:type",
		"GET /api/v1/trash/:type/:deletedId",
		"DELETE /api/v1/trash/:type/:deletedId",
		"POST /api/v1/trash/:type/:deletedId/restore",
	}
	sort.Strings(want)

	assert.Equal(t, want, routeKeys(engine))
}

func TestDomainGroups_IdempotencyGuardsOnlyPaymentsAndRestore(t *testing.T) {
	guard := func(c *gin.Context) { c.Next() }

	var guarded []string
	for _, registrar := range DomainGroups(allHandlers(), guard) {
		group := registrar.(*DomainGroup)
		for _, route := range group.routes {
			if len(route.handlers) > 1 {
				guarded = append(guarded, route.method+" "+group.Prefix()+route.path)
			}
		}
	}

	assert.ElementsMatch(t, []string{
		"POST /credit-customers/:id/payments",
		"POST /sales/:id/payments",
		"POST /trash/:type/:deletedId/restore",
	}, guarded)
}

func TestDomainGroups_WithoutGuardRegistersBareHandlers(t *testing.T) {
	for _, registrar := range DomainGroups(allHandlers(), nil) {
		group := registrar.(*DomainGroup)
		for _, route := range group.routes {
			assert.Len(t, route.handlers, 1, "%s %s%s", route.method, group.Prefix(), route.path)
		}
	}
}

func TestRouter_WithAPIVersion(t *testing.T) {
	engine := gin.New()
	trash := DomainGroups(Handlers{Trash: &handler.TrashHandler{}}, nil)

	NewRouter(engine, WithAPIVersion("v2")).Register(trash...).Setup()

	keys := routeKeys(engine)
	assert.Contains(t, keys, "GET /api/v2/trash/:type")
	assert.NotContains(t, keys, "GET /api/v1/trash/:type")
}

func TestDomainGroup_MiddlewareStaysInItsPrefix(t *testing.T) {
	engine := gin.New()
	tagged := func(c *gin.Context) {
		c.Header("X-Ledger-Route", "cheques")
		c.Next()
	}

	cheques := NewDomainGroup("cheques", "/cheques").Use(tagged).
		PATCH("/:id/status", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	sales := NewDomainGroup("sales", "/sales").
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	NewRouter(engine).Register(cheques, sales).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/cheques/C-0001/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "C-0001", w.Body.String())
	assert.Equal(t, "cheques", w.Header().Get("X-Ledger-Route"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sales/S-0001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Ledger-Route"))
}

func TestDomainGroup_NameAndPrefix(t *testing.T) {
	g := NewDomainGroup("purchase-orders", "/purchase-orders")

	assert.Equal(t, "purchase-orders", g.Name())
	assert.Equal(t, "/purchase-orders", g.Prefix())
}
