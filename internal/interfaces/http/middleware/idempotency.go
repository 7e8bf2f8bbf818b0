package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// HeaderIdempotencyKey carries the client's retry token
const HeaderIdempotencyKey = "Idempotency-Key"

// MaxIdempotencyKeyLength caps the header value
const MaxIdempotencyKeyLength = 255

// Idempotency deduplicates requests carrying an Idempotency-Key header. The
// first request with a key runs; repeats within ttl get 409 DUPLICATE_REQUEST.
// A request that fails (status >= 400) releases its key so the client can
// retry. Requests without the header are not deduplicated. If the store is
// unreachable the request runs unguarded.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.Set(ErrorCodeKey, dto.ErrCodeBadRequest)
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		// Scope the key to the endpoint so one token cannot block another route
		storeKey := c.Request.Method + " " + c.Request.URL.Path + " " + key

		fresh, err := store.MarkProcessed(ctx, storeKey, ttl)
		if err != nil {
			logger.L(ctx).Warn("idempotency store unavailable, running request unguarded", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.Set(ErrorCodeKey, shared.CodeDuplicateRequest)
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				shared.CodeDuplicateRequest, shared.ErrDuplicateRequest.Message, GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, storeKey); err != nil {
				logger.L(ctx).Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
