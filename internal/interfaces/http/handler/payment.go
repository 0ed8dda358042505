package handler

import (
	financeapp "github.com/fieldops/backend/internal/application/finance"
	"github.com/fieldops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

const maxIdempotencyKeyLength = 128

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	service *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes mounts the payments resource
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/payments")
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.DELETE("/:id", h.Delete)
}

// Create applies a payment to an invoice. An Idempotency-Key header makes a
// retried submission fail with ERR_DUPLICATE_REQUEST instead of paying twice.
// POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req financeapp.CreatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key must be at most 128 characters")
		return
	}

	payment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// GetByID GET /payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, payment)
}

// Delete reverts a payment and its treasury outflow
// DELETE /payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
