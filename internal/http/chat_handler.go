package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-llm/internal/service"
)

// ChatHandler mantiene dependencias para endpoints de sesiones y mensajes.
type ChatHandler struct {
	logger   *zap.Logger
	personas *service.PersonaService
	sessions *service.SessionRegistry
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	personas *service.PersonaService,
	sessions *service.SessionRegistry,
) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		personas: personas,
		sessions: sessions,
	}
}

// CreateSession maneja POST /sessions.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req struct {
		PersonaID string `json:"persona_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	persona, err := h.personas.Get(c.Request.Context(), req.PersonaID)
	if err != nil {
		writeError(c, h.logger, "create session", err)
		return
	}

	session := h.sessions.Open(persona)
	c.JSON(http.StatusCreated, gin.H{"session": session.Snapshot()})
}

// GetSession maneja GET /sessions/:id.
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "get session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// PostMessage maneja POST /sessions/:id/messages. Si la generación falla el mensaje de error
// ya quedó en el transcript y se devuelve junto al status mapeado.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "post message", err)
		return
	}

	msg, err := session.Send(c.Request.Context(), req.Text)
	if err != nil {
		if msg.ID == "" {
			writeError(c, h.logger, "post message", err)
			return
		}
		h.logger.Warn("chat turn failed", zap.String("session_id", session.ID()), zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "message": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// Evolve maneja POST /sessions/:id/evolve y persiste el perfil corregido.
func (h *ChatHandler) Evolve(c *gin.Context) {
	var req struct {
		MessageID  string `json:"message_id" binding:"required"`
		Correction string `json:"correction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid evolve request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "evolve persona", err)
		return
	}

	persona, err := h.personas.EvolveAndSave(c.Request.Context(), session, req.MessageID, req.Correction)
	if err != nil {
		writeError(c, h.logger, "evolve persona", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": persona, "session": session.Snapshot()})
}
