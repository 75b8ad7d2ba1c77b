package service

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"persona-llm/internal/domain"
)

const DefaultMaxSessions = 256

// SessionRegistry guarda en memoria las sesiones abiertas. Al superar el límite se descarta la menos usada;
// los transcripts nunca se persisten.
type SessionRegistry struct {
	orch     *ChatOrchestrator
	sessions *lru.Cache[string, *ChatSession]
	logger   *zap.Logger
}

func NewSessionRegistry(orch *ChatOrchestrator, maxSessions int, logger *zap.Logger) (*SessionRegistry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	cache, err := lru.NewWithEvict[string, *ChatSession](maxSessions, func(id string, _ *ChatSession) {
		logger.Debug("chat session evicted", zap.String("session_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &SessionRegistry{orch: orch, sessions: cache, logger: logger}, nil
}

// Open crea una sesión nueva para el persona dado.
func (r *SessionRegistry) Open(persona domain.Persona) *ChatSession {
	session := r.orch.NewSession(persona.ID, persona.Profile)
	r.sessions.Add(session.ID(), session)
	r.logger.Info("chat session opened", zap.String("session_id", session.ID()), zap.String("persona_id", persona.ID))
	return session
}

func (r *SessionRegistry) Get(id string) (*ChatSession, error) {
	session, ok := r.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Close descarta la sesión; no es error si ya no existía.
func (r *SessionRegistry) Close(id string) {
	r.sessions.Remove(id)
}

// CloseForPersona descarta las sesiones abiertas de un persona borrado.
func (r *SessionRegistry) CloseForPersona(personaID string) int {
	closed := 0
	for _, id := range r.sessions.Keys() {
		if s, ok := r.sessions.Peek(id); ok && s.PersonaID() == personaID {
			r.sessions.Remove(id)
			closed++
		}
	}
	return closed
}

func (r *SessionRegistry) Len() int { return r.sessions.Len() }
