package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-llm/internal/domain"
	"persona-llm/internal/service"
)

// statusFor traduce los errores de dominio a códigos HTTP. El orden importa:
// un rate limit agotado también lleva ErrGenerationFailed en la cadena, y una respuesta
// malformada del modelo es 502 aunque arrastre un error de formato.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPersonaNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrInvalidCredentialsOrCorruptData),
		errors.Is(err, domain.ErrPasswordRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrGenerationFailed),
		errors.Is(err, domain.ErrMalformedGenerationResult):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidPersonaFormat):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError responde con el status mapeado. Los 5xx no exponen el detalle interno.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
		msg = "internal error"
	} else {
		logger.Warn(op+" rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}
