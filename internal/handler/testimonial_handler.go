package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sotsvc/service-estimate/internal/application"
	"github.com/sotsvc/service-estimate/internal/auth"
	"github.com/sotsvc/service-estimate/internal/middleware"
	"github.com/sotsvc/service-estimate/internal/response"
)

// TestimonialHandler handles HTTP requests for customer testimonials.
type TestimonialHandler struct {
	service *application.TestimonialService
}

// NewTestimonialHandler creates a new TestimonialHandler.
func NewTestimonialHandler(service *application.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{service: service}
}

// RegisterRoutes registers testimonial routes. The public listing needs no
// auth; writing and reading your own requires a signed-in customer.
func (h *TestimonialHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	testimonials := r.Group("/api/v1/testimonials")
	{
		testimonials.GET("", h.ListApproved)
		testimonials.POST("", authMW, h.Submit)
		testimonials.GET("/mine", authMW, h.ListMine)
		testimonials.DELETE("/:id", authMW, h.Delete)
		testimonials.PUT("/:id/approve", authMW, middleware.RequireRole(auth.RoleAdmin), h.Approve)
	}
}

// ListApproved handles GET /api/v1/testimonials.
func (h *TestimonialHandler) ListApproved(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListApproved(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListMine handles GET /api/v1/testimonials/mine.
func (h *TestimonialHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Submit handles POST /api/v1/testimonials.
func (h *TestimonialHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SubmitTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Approve handles PUT /api/v1/testimonials/:id/approve.
func (h *TestimonialHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid testimonial ID")
		return
	}

	if err := h.service.Approve(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete handles DELETE /api/v1/testimonials/:id.
func (h *TestimonialHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid testimonial ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
