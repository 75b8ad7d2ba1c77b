package domain

import "time"

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// MessageKind distingue respuestas del persona de avisos generados localmente.
type MessageKind string

const (
	KindReply  MessageKind = "reply"
	KindError  MessageKind = "error"
	KindSystem MessageKind = "system"
)

// ChatMessage es una entrada del transcript. Nunca se persiste fuera de la sesión activa.
type ChatMessage struct {
	ID         string      `json:"id"`
	Role       string      `json:"role"`
	Kind       MessageKind `json:"kind,omitempty"`
	Text       string      `json:"text"`
	Reflection string      `json:"reflection,omitempty"`
	Confidence *int        `json:"confidence,omitempty"` // 1-10
	Timestamp  time.Time   `json:"timestamp"`
}

// IsReply indica si el mensaje es una respuesta real del persona (no error ni aviso).
func (m ChatMessage) IsReply() bool {
	return m.Role == RoleModel && (m.Kind == "" || m.Kind == KindReply)
}
