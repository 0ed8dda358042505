package handler

import (
	financeapp "github.com/fieldops/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// SupplierInvoiceHandler handles supplier invoice endpoints
type SupplierInvoiceHandler struct {
	BaseHandler
	invoices *financeapp.InvoiceService
	payments *financeapp.PaymentService
}

// NewSupplierInvoiceHandler creates a new SupplierInvoiceHandler
func NewSupplierInvoiceHandler(invoices *financeapp.InvoiceService, payments *financeapp.PaymentService) *SupplierInvoiceHandler {
	return &SupplierInvoiceHandler{invoices: invoices, payments: payments}
}

// RegisterRoutes mounts the supplier-invoices resource
func (h *SupplierInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/supplier-invoices")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/void", h.Void)
	g.GET("/:id/payments", h.ListPayments)
}

// Create POST /supplier-invoices
func (h *SupplierInvoiceHandler) Create(c *gin.Context) {
	var req financeapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID GET /supplier-invoices/:id
func (h *SupplierInvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, invoice)
}

// List GET /supplier-invoices
func (h *SupplierInvoiceHandler) List(c *gin.Context) {
	var filter financeapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	invoices, total, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, invoices, total, filter.Page, filter.PageSize)
}

// Update replaces the invoice's line set and moves the linked order lines'
// invoiced quantities by the difference
// PUT /supplier-invoices/:id
func (h *SupplierInvoiceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}
	var req financeapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, invoice)
}

// Delete DELETE /supplier-invoices/:id
func (h *SupplierInvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Void POST /supplier-invoices/:id/void
func (h *SupplierInvoiceHandler) Void(c *gin.Context) {
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}
	var req financeapp.VoidInvoiceRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.Void(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, invoice)
}

// ListPayments GET /supplier-invoices/:id/payments
func (h *SupplierInvoiceHandler) ListPayments(c *gin.Context) {
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	payments, err := h.payments.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, payments)
}
