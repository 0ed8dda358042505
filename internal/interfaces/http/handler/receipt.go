package handler

import (
	tradeapp "github.com/fieldops/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles goods receipt endpoints
type ReceiptHandler struct {
	BaseHandler
	service *tradeapp.ReceivingService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(service *tradeapp.ReceivingService) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

// RegisterRoutes mounts the receipts resource
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/receipts")
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.DELETE("/:id", h.Delete)
}

// Create records a delivery. Stock and order quantities move in the same
// transaction; an over-receipt rejects the whole receipt.
// POST /receipts
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req tradeapp.CreateReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	receipt, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// GetByID GET /receipts/:id
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "receipt")
	if !ok {
		return
	}

	receipt, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, receipt)
}

// Delete reverses a receipt
// DELETE /receipts/:id
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "receipt")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
