package handler

import (
	inventoryapp "github.com/fieldops/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles stock item endpoints
type InventoryHandler struct {
	BaseHandler
	service *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes mounts the inventory-items and inventory-entries resources
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/inventory-items")
	items.POST("", h.CreateItem)
	items.GET("", h.ListItems)
	items.GET("/:id", h.GetItem)
	items.GET("/:id/entries", h.ListEntries)
	items.POST("/:id/usages", h.RecordUsage)

	entries := rg.Group("/inventory-entries")
	entries.POST("/:id/reverse", h.ReverseUsage)
}

// CreateItem registers a stock item with zero quantity and cost
// POST /inventory-items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req inventoryapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetItem GET /inventory-items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := h.pathID(c, "id", "item")
	if !ok {
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, item)
}

// ListItems GET /inventory-items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var filter inventoryapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, items, total, filter.Page, filter.PageSize)
}

// ListEntries lists the stock movements of one item
// GET /inventory-items/:id/entries
func (h *InventoryHandler) ListEntries(c *gin.Context) {
	id, ok := h.pathID(c, "id", "item")
	if !ok {
		return
	}
	var filter inventoryapp.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	entries, total, err := h.service.ListEntries(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, entries, total, filter.Page, filter.PageSize)
}

// RecordUsage consumes stock at the current average cost
// POST /inventory-items/:id/usages
func (h *InventoryHandler) RecordUsage(c *gin.Context) {
	id, ok := h.pathID(c, "id", "item")
	if !ok {
		return
	}
	var req inventoryapp.RecordUsageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.service.RecordUsage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ReverseUsage puts a usage entry's quantity back into stock
// POST /inventory-entries/:id/reverse
func (h *InventoryHandler) ReverseUsage(c *gin.Context) {
	id, ok := h.pathID(c, "id", "entry")
	if !ok {
		return
	}

	item, err := h.service.ReverseUsage(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, item)
}
