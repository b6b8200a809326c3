package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookservice/pkg/library"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validationErrors turns a binding error into per-field messages.
func validationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		out = append(out, ValidationError{Field: field, Message: message})
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "validation error",
		"errors":  validationErrors(err),
	})
}

// fail writes the response for a repository error. notFound is the status
// used for ErrNotFound, which differs between lookups and writes.
func (h *Handler) fail(c *gin.Context, err error, notFound int) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		c.JSON(notFound, gin.H{"error": err.Error()})
	case errors.Is(err, library.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, library.ErrInUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("request_id", RequestIDFrom(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
