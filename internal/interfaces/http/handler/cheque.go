package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/grocer/backoffice/internal/application/finance"
)

// ChequeHandler handles cheque endpoints. Status changes run through the
// cheque state machine; a first bounce moves the amount onto the
// customer's ledger.
type ChequeHandler struct {
	BaseHandler
	chequeService *financeapp.ChequeService
}

// NewChequeHandler creates a new ChequeHandler
func NewChequeHandler(chequeService *financeapp.ChequeService) *ChequeHandler {
	return &ChequeHandler{chequeService: chequeService}
}

// Create handles POST /cheques
func (h *ChequeHandler) Create(c *gin.Context) {
	var req financeapp.CreateChequeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cheque, err := h.chequeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cheque)
}

// GetByID handles GET /cheques/:id
func (h *ChequeHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	cheque, err := h.chequeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// List handles GET /cheques
func (h *ChequeHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "status", "customer_id", "due_before")
	if !ok {
		return
	}

	page, err := h.chequeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// ChangeStatus handles PATCH /cheques/:id/status
func (h *ChequeHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req financeapp.ChangeChequeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cheque, err := h.chequeService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// Delete handles DELETE /cheques/:id. Only pending cheques can be deleted.
func (h *ChequeHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	reason, ok := h.deleteReason(c)
	if !ok {
		return
	}

	snapshot, err := h.chequeService.Delete(c.Request.Context(), id, reason, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, snapshot)
}
