package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	financeapp "github.com/grocer/backoffice/internal/application/finance"
	partnerapp "github.com/grocer/backoffice/internal/application/partner"
)

// CustomerHandler handles credit customer endpoints, including the
// customer's ledger views and account payments
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
	paymentService  *financeapp.PaymentService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService, paymentService *financeapp.PaymentService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		paymentService:  paymentService,
	}
}

// Create handles POST /credit-customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCreditCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// Update handles PUT /credit-customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCreditCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// GetByID handles GET /credit-customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// GetByPublicID handles GET /credit-customers/public/:publicId
func (h *CustomerHandler) GetByPublicID(c *gin.Context) {
	customer, err := h.customerService.GetByPublicID(c.Request.Context(), c.Param("publicId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List handles GET /credit-customers
func (h *CustomerHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "status", "over_limit", "has_balance")
	if !ok {
		return
	}

	page, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Summary handles GET /credit-customers/:id/summary
func (h *CustomerHandler) Summary(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	summary, err := h.customerService.Summary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Portfolio handles GET /credit-customers/summary
func (h *CustomerHandler) Portfolio(c *gin.Context) {
	summary, err := h.customerService.Portfolio(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Invoices handles GET /credit-customers/:id/invoices. Pass unsettled=true
// to list only invoices with an amount still due.
func (h *CustomerHandler) Invoices(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}
	unsettled := false
	if raw := c.Query("unsettled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "unsettled must be true or false")
			return
		}
		unsettled = v
	}

	page, err := h.customerService.Invoices(c.Request.Context(), id, unsettled, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Charges handles GET /credit-customers/:id/charges
func (h *CustomerHandler) Charges(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, "cause")
	if !ok {
		return
	}

	page, err := h.customerService.Charges(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// RecordPayment handles POST /credit-customers/:id/payments. With an
// invoice_id in the body the amount also settles that invoice.
func (h *CustomerHandler) RecordPayment(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req financeapp.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Payments handles GET /credit-customers/:id/payments
func (h *CustomerHandler) Payments(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, "invoice_id")
	if !ok {
		return
	}

	page, err := h.paymentService.ListByCustomer(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Delete handles DELETE /credit-customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	reason, ok := h.deleteReason(c)
	if !ok {
		return
	}

	snapshot, err := h.customerService.Delete(c.Request.Context(), id, reason, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, snapshot)
}
