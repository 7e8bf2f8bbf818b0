package handler

import (
	"net/http"
	"testing"

	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleHandler_CashSale(t *testing.T) {
	api := newTestAPI(t)
	rice := api.store.SeedProduct(t, "Rice 2kg", 120, 10)

	sale := api.created(t, "/sales", map[string]any{
		"payment_method": "CASH",
		"items":          []map[string]any{{"product_id": rice.ID, "quantity": 3}},
	})

	assert.Equal(t, "S-0001", sale["public_id"])
	assertMoney(t, 360, sale["total_revenue"])
	assertMoney(t, 0, sale["remaining_due"])
	assert.Equal(t, testutil.TestActorID().String(), sale["cashier_id"])
	assert.Equal(t, 7, api.store.Stock(t, rice))
}

func TestSaleHandler_InsufficientStock(t *testing.T) {
	api := newTestAPI(t)
	rice := api.store.SeedProduct(t, "Rice 2kg", 120, 2)

	w := api.do(t, http.MethodPost, "/sales", map[string]any{
		"payment_method": "CASH",
		"items":          []map[string]any{{"product_id": rice.ID, "quantity": 3}},
	})

	assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)
	assert.Less(t, w.Code, http.StatusInternalServerError)
	assert.Equal(t, 2, api.store.Stock(t, rice))
}

func TestSaleHandler_PayInvoice(t *testing.T) {
	api := newTestAPI(t)
	customer := api.store.SeedCustomer(t, "Amina Stores", 1000)
	sale := api.store.SeedCreditSale(t, customer, 300)

	payment := api.created(t, "/sales/"+sale.ID.String()+"/payments", map[string]any{"amount": "300"})
	assertMoney(t, 0, payment["balance_after"])

	w := api.do(t, http.MethodGet, "/sales/"+sale.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := testutil.DataOf(t, w)
	assertMoney(t, 0, data["remaining_due"])
	assert.Equal(t, "PAID", data["payment_status"])
}

func TestSaleHandler_PayCashSale(t *testing.T) {
	api := newTestAPI(t)
	rice := api.store.SeedProduct(t, "Rice 2kg", 120, 10)
	sale := api.created(t, "/sales", map[string]any{
		"payment_method": "CASH",
		"items":          []map[string]any{{"product_id": rice.ID, "quantity": 1}},
	})

	w := api.do(t, http.MethodPost, "/sales/"+sale["id"].(string)+"/payments", map[string]any{"amount": "10"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	testutil.AssertErrorResponse(t, w, shared.CodeValidation)
}

func TestSaleHandler_DeleteReversesBalance(t *testing.T) {
	api := newTestAPI(t)
	customer := api.store.SeedCustomer(t, "Amina Stores", 1000)
	rice := api.store.SeedProduct(t, "Rice 2kg", 100, 10)
	sale := api.created(t, "/sales", map[string]any{
		"payment_method": "CREDIT",
		"customer_id":    customer.ID,
		"items":          []map[string]any{{"product_id": rice.ID, "quantity": 4}},
	})
	assertMoney(t, 400, api.store.Balance(t, customer).String())

	w := api.do(t, http.MethodDelete, "/sales/"+sale["id"].(string)+"?reason=wrong+customer", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := testutil.DataOf(t, w)
	assert.Equal(t, "SALE", item["entity_type"])
	assert.Equal(t, "wrong customer", item["reason"])
	assert.Equal(t, testutil.TestActorID().String(), item["deleted_by_user_id"])
	assert.True(t, api.store.Balance(t, customer).IsZero())
	assert.Equal(t, 6, api.store.Stock(t, rice), "stock is not returned on delete")
}

func TestOrderHandler_DraftToConfirm(t *testing.T) {
	api := newTestAPI(t)
	customer := api.store.SeedCustomer(t, "Amina Stores", 1000)
	rice := api.store.SeedProduct(t, "Rice 2kg", 120, 10)
	oil := api.store.SeedProduct(t, "Cooking Oil 1L", 250, 5)

	order := api.created(t, "/orders", map[string]any{
		"payment_type": "CREDIT",
		"customer_id":  customer.ID,
		"items":        []map[string]any{{"product_id": rice.ID, "quantity": 2}},
	})
	assert.Equal(t, "O-0001", order["public_id"])
	assert.Equal(t, "DRAFT", order["status"])
	orderPath := "/orders/" + order["id"].(string)

	w := api.do(t, http.MethodPost, orderPath+"/items", map[string]any{"product_id": oil.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertMoney(t, 490, testutil.DataOf(t, w)["total_amount"])
	assert.Equal(t, 10, api.store.Stock(t, rice), "drafts do not reserve stock")

	w = api.do(t, http.MethodPost, orderPath+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := testutil.DataOf(t, w)
	assert.Equal(t, "CONFIRMED", confirmed["status"])
	assert.NotEmpty(t, confirmed["sale_id"])

	assert.Equal(t, 8, api.store.Stock(t, rice))
	assert.Equal(t, 4, api.store.Stock(t, oil))
	assertMoney(t, 490, api.store.Balance(t, customer).String())

	w = api.do(t, http.MethodPost, orderPath+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorResponse(t, w, shared.CodeInvalidStateTransition)
}

func TestOrderHandler_ConfirmOverLimitKeepsDraft(t *testing.T) {
	api := newTestAPI(t)
	customer := api.store.SeedCustomer(t, "Amina Stores", 100)
	rice := api.store.SeedProduct(t, "Rice 2kg", 120, 10)
	order := api.created(t, "/orders", map[string]any{
		"payment_type": "CREDIT",
		"customer_id":  customer.ID,
		"items":        []map[string]any{{"product_id": rice.ID, "quantity": 1}},
	})
	orderPath := "/orders/" + order["id"].(string)

	w := api.do(t, http.MethodPost, orderPath+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorResponse(t, w, shared.CodeCreditLimitExceeded)

	w = api.do(t, http.MethodGet, orderPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DRAFT", testutil.DataOf(t, w)["status"])
	assert.Equal(t, 10, api.store.Stock(t, rice))
}

func TestOrderHandler_RemoveItemAndVoid(t *testing.T) {
	api := newTestAPI(t)
	rice := api.store.SeedProduct(t, "Rice 2kg", 120, 10)
	order := api.created(t, "/orders", map[string]any{
		"payment_type": "CASH",
		"items":        []map[string]any{{"product_id": rice.ID, "quantity": 2}},
	})
	orderPath := "/orders/" + order["id"].(string)
	itemID := order["items"].([]any)[0].(map[string]any)["id"].(string)

	w := api.do(t, http.MethodDelete, orderPath+"/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, testutil.DataOf(t, w)["items"])

	w = api.do(t, http.MethodPost, orderPath+"/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	testutil.AssertErrorResponse(t, w, shared.CodeValidation)

	w = api.do(t, http.MethodPost, orderPath+"/void", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "VOID", testutil.DataOf(t, w)["status"])
}

func TestPurchaseOrderHandler_ReceiveAddsStock(t *testing.T) {
	api := newTestAPI(t)
	supplier := api.store.SeedSupplier(t, "Mombasa Millers")
	rice := api.store.SeedProduct(t, "Rice 2kg", 120, 4)

	po := api.created(t, "/purchase-orders", map[string]any{
		"supplier_id": supplier.ID,
		"items":       []map[string]any{{"product_id": rice.ID, "quantity": 20, "unit_cost": "90"}},
	})
	assert.Equal(t, "PO-0001", po["public_id"])
	assertMoney(t, 1800, po["total_amount"])
	poPath := "/purchase-orders/" + po["id"].(string)

	w := api.do(t, http.MethodPost, poPath+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SENT", testutil.DataOf(t, w)["status"])

	w = api.do(t, http.MethodPost, poPath+"/receive", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "RECEIVED", testutil.DataOf(t, w)["status"])
	assert.Equal(t, 24, api.store.Stock(t, rice))

	w = api.do(t, http.MethodPost, poPath+"/cancel", map[string]any{"reason": "late"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorResponse(t, w, shared.CodeInvalidStateTransition)
}
