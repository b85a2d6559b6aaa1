package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sotsvc/service-estimate/internal/application"
	"github.com/sotsvc/service-estimate/internal/response"
)

// LeadHandler handles HTTP requests for lead form submissions.
type LeadHandler struct {
	service *application.LeadService
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(service *application.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// RegisterRoutes registers lead routes on the given router group.
func (h *LeadHandler) RegisterRoutes(r *gin.RouterGroup) {
	leads := r.Group("/api/v1/leads")
	{
		leads.POST("/contact", h.SubmitContact)
		leads.POST("/quote", h.SubmitQuoteInquiry)
	}
}

// SubmitContact handles POST /api/v1/leads/contact.
func (h *LeadHandler) SubmitContact(c *gin.Context) {
	var req application.ContactLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SubmitContact(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"status": "received"})
}

// SubmitQuoteInquiry handles POST /api/v1/leads/quote.
func (h *LeadHandler) SubmitQuoteInquiry(c *gin.Context) {
	var req application.QuoteInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SubmitQuoteInquiry(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"status": "received"})
}
