package domain

import "time"

// SessionState es el estado de una conversación abierta.
type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionSending SessionState = "sending"
)

// SessionSnapshot es la vista de solo lectura de una sesión de chat.
type SessionSnapshot struct {
	ID        string        `json:"id"`
	PersonaID string        `json:"persona_id"`
	State     SessionState  `json:"state"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}
