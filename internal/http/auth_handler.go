package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-llm/internal/service"
)

// AuthHandler expone la revocación de tokens. La emisión se hace por CLI con el mismo secreto.
type AuthHandler struct {
	logger *zap.Logger
	jwt    *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, jwtSvc *service.JWTService) *AuthHandler {
	return &AuthHandler{logger: logger, jwt: jwtSvc}
}

// Revoke maneja POST /auth/revoke: invalida el token con el que se autenticó la request.
func (h *AuthHandler) Revoke(c *gin.Context) {
	token := c.GetString(authTokenKey)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if err := h.jwt.Revoke(token); err != nil {
		h.logger.Warn("token revoke failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Status(http.StatusNoContent)
}
