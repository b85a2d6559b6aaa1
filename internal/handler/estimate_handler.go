package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sotsvc/service-estimate/internal/application"
	"github.com/sotsvc/service-estimate/internal/response"
)

// EstimateHandler handles HTTP requests for anonymous price estimates and
// calendar availability.
type EstimateHandler struct {
	estimates    *application.EstimateService
	availability *application.AvailabilityService
}

// NewEstimateHandler creates a new EstimateHandler.
func NewEstimateHandler(estimates *application.EstimateService, availability *application.AvailabilityService) *EstimateHandler {
	return &EstimateHandler{estimates: estimates, availability: availability}
}

// RegisterRoutes registers estimate and availability routes on the router group.
func (h *EstimateHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/estimates", h.Estimate)
		v1.GET("/availability", h.Availability)
		v1.GET("/availability/next", h.NextOpenSlot)
	}
}

// Estimate handles POST /api/v1/estimates.
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req application.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.estimates.Estimate(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Availability handles GET /api/v1/availability. The optional ?at= query
// takes an RFC 3339 instant; absent, now is used.
func (h *EstimateHandler) Availability(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "at must be an RFC 3339 timestamp")
			return
		}
		at = parsed
	}

	response.Success(c, h.availability.Availability(at))
}

// NextOpenSlot handles GET /api/v1/availability/next. The optional ?from=
// query takes an RFC 3339 instant; absent, now is used.
func (h *EstimateHandler) NextOpenSlot(c *gin.Context) {
	from := time.Now()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "from must be an RFC 3339 timestamp")
			return
		}
		from = parsed
	}

	result, err := h.availability.NextOpenSlot(from)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
