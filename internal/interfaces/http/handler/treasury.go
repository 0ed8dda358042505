package handler

import (
	treasuryapp "github.com/fieldops/backend/internal/application/treasury"
	"github.com/gin-gonic/gin"
)

// TreasuryHandler handles bank account and treasury movement endpoints
type TreasuryHandler struct {
	BaseHandler
	service *treasuryapp.TreasuryService
}

// NewTreasuryHandler creates a new TreasuryHandler
func NewTreasuryHandler(service *treasuryapp.TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{service: service}
}

// RegisterRoutes mounts the bank-accounts and treasury-movements resources
func (h *TreasuryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/bank-accounts")
	accounts.POST("", h.CreateAccount)
	accounts.GET("", h.ListAccounts)
	accounts.GET("/:id", h.GetAccount)

	movements := rg.Group("/treasury-movements")
	movements.POST("", h.CreateMovement)
	movements.GET("", h.ListMovements)
	movements.GET("/:id", h.GetMovement)
	movements.PUT("/:id", h.UpdateMovement)
	movements.DELETE("/:id", h.DeleteMovement)
}

// CreateAccount POST /bank-accounts
func (h *TreasuryHandler) CreateAccount(c *gin.Context) {
	var req treasuryapp.CreateBankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetAccount GET /bank-accounts/:id
func (h *TreasuryHandler) GetAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, account)
}

// ListAccounts GET /bank-accounts
func (h *TreasuryHandler) ListAccounts(c *gin.Context) {
	var filter treasuryapp.BankAccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	accounts, total, err := h.service.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, accounts, total, filter.Page, filter.PageSize)
}

// CreateMovement posts a manual inflow, outflow or transfer
// POST /treasury-movements
func (h *TreasuryHandler) CreateMovement(c *gin.Context) {
	var req treasuryapp.MovementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.service.CreateMovement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// GetMovement GET /treasury-movements/:id
func (h *TreasuryHandler) GetMovement(c *gin.Context) {
	id, ok := h.pathID(c, "id", "movement")
	if !ok {
		return
	}

	movement, err := h.service.GetMovement(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, movement)
}

// ListMovements GET /treasury-movements
func (h *TreasuryHandler) ListMovements(c *gin.Context) {
	var filter treasuryapp.MovementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	movements, total, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, movements, total, filter.Page, filter.PageSize)
}

// UpdateMovement PUT /treasury-movements/:id
func (h *TreasuryHandler) UpdateMovement(c *gin.Context) {
	id, ok := h.pathID(c, "id", "movement")
	if !ok {
		return
	}
	var req treasuryapp.MovementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.service.UpdateMovement(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, movement)
}

// DeleteMovement DELETE /treasury-movements/:id
func (h *TreasuryHandler) DeleteMovement(c *gin.Context) {
	id, ok := h.pathID(c, "id", "movement")
	if !ok {
		return
	}

	if err := h.service.DeleteMovement(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
