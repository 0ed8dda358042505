package middleware

import (
	"net/http"

	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit answers 413 when Content-Length already exceeds limit. Bodies of
// unknown length are wrapped so that reading past limit fails while binding.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request
		switch {
		case req.ContentLength > limit:
			abortTooLarge(c)
			return
		case req.Body != nil && req.Body != http.NoBody:
			req.Body = http.MaxBytesReader(c.Writer, req.Body, limit)
		}
		c.Next()
	}
}

func abortTooLarge(c *gin.Context) {
	resp := dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "request body is too large", GetRequestID(c))
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp)
}
