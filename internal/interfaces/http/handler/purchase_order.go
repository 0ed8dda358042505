package handler

import (
	"context"

	tradeapp "github.com/fieldops/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orders    *tradeapp.PurchaseOrderService
	receiving *tradeapp.ReceivingService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders *tradeapp.PurchaseOrderService, receiving *tradeapp.ReceivingService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, receiving: receiving}
}

// RegisterRoutes mounts the purchase-orders resource
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/purchase-orders")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/send", h.Send)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/reject", h.Reject)
	g.GET("/:id/reconcile", h.Reconcile)
	g.GET("/:id/receipts", h.ListReceipts)
}

// Create POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, order)
}

// List GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter tradeapp.PurchaseOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, orders, total, filter.Page, filter.PageSize)
}

// Send POST /purchase-orders/:id/send
func (h *PurchaseOrderHandler) Send(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.Send(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, order)
}

// Cancel POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.close(c, h.orders.Cancel)
}

// Reject POST /purchase-orders/:id/reject
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	h.close(c, h.orders.Reject)
}

type closeFunc func(ctx context.Context, id uuid.UUID, req tradeapp.ClosePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error)

// close handles cancel and reject. The reason body is optional.
func (h *PurchaseOrderHandler) close(c *gin.Context, fn closeFunc) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req tradeapp.ClosePurchaseOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := fn(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, order)
}

// Reconcile re-derives the order's state from its stored rows and reports
// any drift without changing anything
// GET /purchase-orders/:id/reconcile
func (h *PurchaseOrderHandler) Reconcile(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	report, err := h.orders.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, report)
}

// ListReceipts GET /purchase-orders/:id/receipts
func (h *PurchaseOrderHandler) ListReceipts(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	receipts, err := h.receiving.ListByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, receipts)
}
