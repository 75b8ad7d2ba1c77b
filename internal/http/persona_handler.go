package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-llm/internal/domain"
	"persona-llm/internal/service"
)

const (
	passwordHeader = "X-Persona-Password"
	maxImportBytes = 1 << 20
)

var errImportTooLarge = errors.New("import file too large")

// PersonaHandler mantiene dependencias para endpoints de personas y cuestionario.
type PersonaHandler struct {
	logger   *zap.Logger
	personas *service.PersonaService
	sessions *service.SessionRegistry
}

// NewPersonaHandler crea una instancia de PersonaHandler con dependencias necesarias.
func NewPersonaHandler(
	logger *zap.Logger,
	personas *service.PersonaService,
	sessions *service.SessionRegistry,
) *PersonaHandler {
	return &PersonaHandler{
		logger:   logger,
		personas: personas,
		sessions: sessions,
	}
}

// Questions maneja GET /questions?mode=basic|advanced.
func (h *PersonaHandler) Questions(c *gin.Context) {
	mode, err := service.ParseQuestionnaireMode(c.Query("mode"))
	if err != nil {
		writeError(c, h.logger, "questions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": mode, "questions": service.Questions(mode)})
}

// List maneja GET /personas.
func (h *PersonaHandler) List(c *gin.Context) {
	personas, err := h.personas.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "list personas", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"personas": personas})
}

// Get maneja GET /personas/:id.
func (h *PersonaHandler) Get(c *gin.Context) {
	persona, err := h.personas.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "get persona", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": persona})
}

// Delete maneja DELETE /personas/:id y cierra sus sesiones abiertas.
func (h *PersonaHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.personas.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "delete persona", err)
		return
	}
	if h.sessions != nil {
		h.sessions.CloseForPersona(id)
	}
	c.Status(http.StatusNoContent)
}

// Synthesize maneja POST /personas/synthesize.
func (h *PersonaHandler) Synthesize(c *gin.Context) {
	var req struct {
		Answers []domain.Answer `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid synthesize request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	persona, err := h.personas.SynthesizeAndCreate(c.Request.Context(), req.Answers)
	if err != nil {
		writeError(c, h.logger, "synthesize persona", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"persona": persona})
}

// Export maneja POST /personas/:id/export y devuelve el archivo para descargar.
func (h *PersonaHandler) Export(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	data, filename, err := h.personas.Export(c.Request.Context(), c.Param("id"), req.Password)
	if err != nil {
		writeError(c, h.logger, "export persona", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// Import maneja POST /personas/import. Acepta multipart (campo "file") o el JSON crudo en el body;
// la contraseña viaja en el header X-Persona-Password.
func (h *PersonaHandler) Import(c *gin.Context) {
	fileText, err := readImportBody(c)
	if errors.Is(err, errImportTooLarge) {
		h.logger.Warn("import body too large", zap.Int64("limit", maxImportBytes))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Warn("invalid import request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	password := c.GetHeader(passwordHeader)
	persona, err := h.personas.Import(c.Request.Context(), fileText, service.StaticPassword(password))
	if err != nil {
		writeError(c, h.logger, "import persona", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"persona": persona})
}

func readImportBody(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		if header.Size > maxImportBytes {
			return nil, errImportTooLarge
		}
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readLimited(f)
	}
	return readLimited(c.Request.Body)
}

// readLimited lee un byte de más para distinguir un archivo en el límite de uno que lo excede.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImportBytes {
		return nil, errImportTooLarge
	}
	return data, nil
}
