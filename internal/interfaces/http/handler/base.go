// Package handler holds the gin handlers for the back-office API. Handlers
// bind and validate input, call one application service method and render
// the result; no business rule lives here.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/interfaces/http/dto"
	"github.com/grocer/backoffice/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// detailer is implemented by typed domain errors that carry client-facing fields
type detailer interface {
	Details() map[string]any
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Deleted reports the trash entry created by a delete
func (h *BaseHandler) Deleted(c *gin.Context, snapshot *archive.Snapshot) {
	h.Success(c, archiveapp.ToTrashItem(snapshot))
}

// Page sends a paginated list with its meta block
func Page[T any](c *gin.Context, page *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(page.Items, page.Total, page.Page, page.PageSize))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError renders err. Domain errors keep their code and message, and
// typed variants add their details; anything else is logged and hidden
// behind a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.L(c.Request.Context()).Error("unhandled error", zap.String("route", c.FullPath()), zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("request failed", zap.String("code", code), zap.Error(err))
	}

	resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, middleware.GetRequestID(c))
	var withDetails detailer
	if errors.As(err, &withDetails) {
		resp.Error.Details = withDetails.Details()
	}
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(status, resp)
}

// BindJSON binds the body into req and renders a 400 on failure. It returns
// false when the handler should stop.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters into req
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
		c.JSON(http.StatusBadRequest, FormatValidationErrors(verrs, middleware.GetRequestID(c)))
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed request body: "+err.Error())
}

// ParamID parses a uuid path parameter and renders a 400 when it is malformed
func (h *BaseHandler) ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// ListFilter builds a repository filter from the standard list query
// parameters. Extra query keys named in filterKeys are passed through as
// filters; boolean-looking values are passed as bool.
func (h *BaseHandler) ListFilter(c *gin.Context, filterKeys ...string) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if !h.BindQuery(c, &req) {
		return shared.Filter{}, false
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = strings.TrimSpace(req.Search)
	for _, key := range filterKeys {
		v := strings.TrimSpace(c.Query(key))
		if v == "" {
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Filters[key] = b
			continue
		}
		filter.Filters[key] = v
	}
	return filter, true
}

// actorID returns the authenticated actor for audit fields, or nil
func actorID(c *gin.Context) *uuid.UUID {
	id, ok := middleware.GetActorID(c)
	if !ok {
		return nil
	}
	return &id
}

// DeleteRequest is the optional body of a delete call
type DeleteRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// deleteReason reads the optional reason from the body or the query string
func (h *BaseHandler) deleteReason(c *gin.Context) (string, bool) {
	var req DeleteRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return "", false
		}
	}
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}
	if len(req.Reason) > 500 {
		h.BadRequest(c, "reason must be at most 500 characters")
		return "", false
	}
	return strings.TrimSpace(req.Reason), true
}
