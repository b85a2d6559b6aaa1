package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sotsvc/service-estimate/internal/application"
	"github.com/sotsvc/service-estimate/internal/domain"
	"github.com/sotsvc/service-estimate/internal/response"
)

// AuthHandler handles HTTP requests for account operations.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers auth routes on the given router group. Sign-out
// and profile reads authenticate with the provider session token, not our
// own access token, so they bypass the JWT middleware.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	authRoutes := r.Group("/api/v1/auth")
	{
		authRoutes.POST("/signup", h.SignUp)
		authRoutes.POST("/signin", h.SignIn)
		authRoutes.POST("/signout", h.SignOut)
		authRoutes.GET("/me", h.Me)
	}
}

// SignUp handles POST /api/v1/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req application.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// SignIn handles POST /api/v1/auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req application.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SignOut handles POST /api/v1/auth/signout.
func (h *AuthHandler) SignOut(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}

	if err := h.service.SignOut(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}

	result, err := h.service.Me(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// bearerToken extracts the provider session token from the Authorization
// header, answering 401 when missing.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		response.Error(c, domain.NewUnauthorizedError("missing bearer token"))
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}
