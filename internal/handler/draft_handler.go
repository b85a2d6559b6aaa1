package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sotsvc/service-estimate/internal/application"
	"github.com/sotsvc/service-estimate/internal/response"
)

// SessionIDHeader carries the anonymous session identifier that owns a
// booking draft. The storefront generates it once and sends it on every
// draft request.
const SessionIDHeader = "X-Session-ID"

// DraftHandler handles HTTP requests for the booking draft flow.
type DraftHandler struct {
	service *application.BookingFlowService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(service *application.BookingFlowService) *DraftHandler {
	return &DraftHandler{service: service}
}

// RegisterRoutes registers all draft routes on the given router group.
func (h *DraftHandler) RegisterRoutes(r *gin.RouterGroup) {
	drafts := r.Group("/api/v1/drafts")
	{
		drafts.POST("", h.StartDraft)
		drafts.GET("/current", h.GetDraft)
		drafts.PUT("/current", h.Configure)
		drafts.POST("/current/quote", h.CalculateQuote)
		drafts.POST("/current/slot", h.SelectSlot)
		drafts.POST("/current/checkout", h.Checkout)
		drafts.DELETE("/current", h.Abandon)
	}
}

// StartDraft handles POST /api/v1/drafts.
func (h *DraftHandler) StartDraft(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.StartDraft(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetDraft handles GET /api/v1/drafts/current.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.GetDraft(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Configure handles PUT /api/v1/drafts/current.
func (h *DraftHandler) Configure(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	var req application.ConfigureDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Configure(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CalculateQuote handles POST /api/v1/drafts/current/quote.
func (h *DraftHandler) CalculateQuote(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.CalculateQuote(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SelectSlot handles POST /api/v1/drafts/current/slot.
func (h *DraftHandler) SelectSlot(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	var req application.SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SelectSlot(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Checkout handles POST /api/v1/drafts/current/checkout.
func (h *DraftHandler) Checkout(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	var req application.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Abandon handles DELETE /api/v1/drafts/current.
func (h *DraftHandler) Abandon(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.service.Abandon(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// sessionID extracts the session header, answering 400 when missing.
func sessionID(c *gin.Context) (string, bool) {
	id := c.GetHeader(SessionIDHeader)
	if id == "" {
		response.BadRequest(c, "X-Session-ID header is required")
		return "", false
	}
	return id, true
}
