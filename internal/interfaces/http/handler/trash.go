package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// TrashHandler handles listing, restoring and purging archived entities
type TrashHandler struct {
	BaseHandler
	archiveService *archiveapp.Service
}

// NewTrashHandler creates a new TrashHandler
func NewTrashHandler(archiveService *archiveapp.Service) *TrashHandler {
	return &TrashHandler{archiveService: archiveService}
}

// entityType reads the :type path segment, which accepts both slugs
// ("credit-customers") and enum names ("CREDIT_CUSTOMER")
func (h *TrashHandler) entityType(c *gin.Context) (shared.EntityType, bool) {
	entityType, err := shared.ParseEntityType(c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return entityType, true
}

// List handles GET /trash/:type
func (h *TrashHandler) List(c *gin.Context) {
	entityType, ok := h.entityType(c)
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	page, err := h.archiveService.List(c.Request.Context(), entityType, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /trash/:type/:deletedId and returns the full snapshot
func (h *TrashHandler) Get(c *gin.Context) {
	entityType, ok := h.entityType(c)
	if !ok {
		return
	}
	deletedID, ok := h.ParamID(c, "deletedId")
	if !ok {
		return
	}

	snapshot, err := h.archiveService.Get(c.Request.Context(), deletedID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if snapshot.EntityType != entityType {
		h.HandleError(c, shared.NewNotFoundError(entityType.Label()+" snapshot"))
		return
	}
	if snapshot.EntityType == shared.EntityTypeUser {
		snapshot.Payload = redactPayload(snapshot.Payload, "password_hash")
	}
	h.Success(c, snapshot)
}

// redactPayload drops sensitive top-level keys from a snapshot payload.
// The stored snapshot keeps them so restores stay lossless.
func redactPayload(payload json.RawMessage, keys ...string) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil
	}
	for _, k := range keys {
		delete(fields, k)
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return out
}

// Restore handles POST /trash/:type/:deletedId/restore
func (h *TrashHandler) Restore(c *gin.Context) {
	entityType, ok := h.entityType(c)
	if !ok {
		return
	}
	deletedID, ok := h.ParamID(c, "deletedId")
	if !ok {
		return
	}

	result, err := h.archiveService.Restore(c.Request.Context(), entityType, deletedID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PermanentDelete handles DELETE /trash/:type/:deletedId
func (h *TrashHandler) PermanentDelete(c *gin.Context) {
	entityType, ok := h.entityType(c)
	if !ok {
		return
	}
	deletedID, ok := h.ParamID(c, "deletedId")
	if !ok {
		return
	}

	if err := h.archiveService.PermanentDelete(c.Request.Context(), entityType, deletedID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
