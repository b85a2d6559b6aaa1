package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sotsvc/service-estimate/internal/domain"
)

// Success writes a 200 with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// NoContent writes a 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 with a message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Paginated writes a 200 with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": gin.H{"total": total, "page": page, "limit": limit},
	})
}

// userMessages maps error codes to the fixed user-readable message table.
// Raw provider errors are never shown.
var userMessages = map[domain.ErrorCode]string{
	domain.CodeConfiguration: "Invalid configuration. Please contact support.",
	domain.CodeUnavailable:   "Service temporarily unavailable. Please try again.",
}

// Error maps a tagged domain error to an HTTP status and a safe message.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	msg := de.Message
	if fixed, ok := userMessages[de.Code]; ok {
		msg = fixed
	}

	switch de.Code {
	case domain.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case domain.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	case domain.CodeConflict:
		c.JSON(http.StatusConflict, gin.H{"error": msg})
	case domain.CodeInvalidState:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
	case domain.CodeUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	case domain.CodeForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": msg})
	case domain.CodePayment:
		c.JSON(http.StatusPaymentRequired, gin.H{"error": msg, "retryable": de.Retryable})
	case domain.CodeUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
	case domain.CodeConfiguration:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
