package service

import (
	"fmt"
	"sort"
	"strings"

	"persona-llm/internal/domain"
)

// DefaultContextWindow es la cantidad de mensajes previos que acompañan cada turno.
const DefaultContextWindow = 10

// ContextService recorta el transcript a la ventana que se envía al modelo.
type ContextService struct {
	size int
}

func NewContextService(size int) ContextService {
	if size <= 0 {
		size = DefaultContextWindow
	}
	return ContextService{size: size}
}

// Window devuelve los últimos N mensajes útiles (usuario y respuestas reales), del más antiguo al más nuevo.
// Los avisos de error y de sistema no se envían al modelo.
func (s ContextService) Window(messages []domain.ChatMessage) []domain.ChatMessage {
	size := s.size
	if size <= 0 {
		size = DefaultContextWindow
	}

	out := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == domain.RoleUser || m.IsReply() {
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	if len(out) > size {
		out = out[len(out)-size:]
	}
	return out
}

// FormatContextWindow genera líneas "User: ..." / "<nombre>: ...".
func FormatContextWindow(personaName string, window []domain.ChatMessage) string {
	if strings.TrimSpace(personaName) == "" {
		personaName = "Persona"
	}
	lines := make([]string, 0, len(window))
	for _, m := range window {
		speaker := "User"
		if m.Role == domain.RoleModel {
			speaker = personaName
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Text))
	}
	return strings.Join(lines, "\n")
}
