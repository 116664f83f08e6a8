package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/blob"
	"github.com/leadtriage/backend/internal/service"
	"github.com/leadtriage/backend/internal/store"
)

// Pinger is implemented by storage backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store     *store.Store
	Runner    *service.Runner
	Storage   blob.Store
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if p, ok := h.Storage.(Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage unavailable", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "leads": h.Store.Stats().Total})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeAppError maps a domain error onto the error envelope.
func writeAppError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", err.Error())
		return
	}
	if e.Kind == apperr.KindRateLimited && e.RetryAfter > 0 {
		c.Header("Retry-After", formatSeconds(e.RetryAfter))
	}
	writeError(c, e.HTTPStatus(), errorCode(e.Kind), e.Message, e.Details)
}

func errorCode(k apperr.Kind) string {
	switch k {
	case apperr.KindValidation:
		return "VALIDATION_ERROR"
	case apperr.KindNotFound:
		return "NOT_FOUND"
	case apperr.KindConflict:
		return "CONFLICT"
	case apperr.KindAuth:
		return "SCORING_AUTH_FAILURE"
	case apperr.KindRateLimited:
		return "SCORING_RATE_LIMITED"
	case apperr.KindTransport:
		return "SCORING_UNAVAILABLE"
	case apperr.KindMalformed:
		return "SCORING_MALFORMED_RESPONSE"
	default:
		return "INTERNAL_ERROR"
	}
}
