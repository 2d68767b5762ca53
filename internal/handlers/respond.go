// Package handlers contains HTTP request handlers for the auth service.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorDetail describes one field-level validation failure.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondSuccess writes the success envelope.
func RespondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// RespondError writes the failure envelope with a stable machine-readable
// error code. The message is caller-safe; internal detail never goes here.
func RespondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   code,
	})
}

// LogAndRespondError logs the full internal error server-side and sends the
// caller only the given non-specific message and code.
func LogAndRespondError(c *gin.Context, status int, err error, message, code string) {
	log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	RespondError(c, status, message, code)
}

// RespondValidationError translates a binding failure into the
// VALIDATION_ERROR envelope with per-field details where available.
func RespondValidationError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Field:   fieldErr.Field(),
				Message: "failed on the '" + fieldErr.Tag() + "' rule",
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request data",
			"error":   "VALIDATION_ERROR",
			"errors":  details,
		})
		return
	}
	RespondError(c, http.StatusBadRequest, "Invalid request data", "VALIDATION_ERROR")
}
