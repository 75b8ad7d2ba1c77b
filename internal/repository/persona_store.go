package repository

import (
	"context"
	"sync"

	"persona-llm/internal/domain"
)

// PersonaStore persiste la lista ordenada de personas. Cada mutación reescribe la lista completa;
// el único escritor es service.PersonaService.
type PersonaStore interface {
	Load(ctx context.Context) ([]domain.Persona, error)
	Save(ctx context.Context, personas []domain.Persona) error
}

// MemoryPersonaStore mantiene la lista en memoria (tests y ejecuciones sin backend).
type MemoryPersonaStore struct {
	mu       sync.RWMutex
	personas []domain.Persona
}

func NewMemoryPersonaStore(seed ...domain.Persona) *MemoryPersonaStore {
	return &MemoryPersonaStore{personas: clonePersonas(seed)}
}

func (s *MemoryPersonaStore) Load(ctx context.Context) ([]domain.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePersonas(s.personas), nil
}

func (s *MemoryPersonaStore) Save(ctx context.Context, personas []domain.Persona) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personas = clonePersonas(personas)
	return nil
}

func clonePersonas(in []domain.Persona) []domain.Persona {
	out := make([]domain.Persona, len(in))
	copy(out, in)
	return out
}
