package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-llm/internal/domain"
	"persona-llm/internal/repository"
)

// PersonaService es el único que escribe en el store. Cada mutación carga la lista,
// calcula la nueva y la guarda completa bajo el mismo mutex.
type PersonaService struct {
	mu          sync.Mutex
	store       repository.PersonaStore
	synthesizer *PersonaSynthesizer
	exporter    *ExportService
	logger      *zap.Logger
	now         func() time.Time
	lastCreated time.Time
}

func NewPersonaService(store repository.PersonaStore, synthesizer *PersonaSynthesizer, exporter *ExportService, logger *zap.Logger) *PersonaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonaService{
		store:       store,
		synthesizer: synthesizer,
		exporter:    exporter,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List devuelve los personas en el orden guardado (más reciente primero).
func (s *PersonaService) List(ctx context.Context) ([]domain.Persona, error) {
	personas, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}
	return personas, nil
}

func (s *PersonaService) Get(ctx context.Context, id string) (domain.Persona, error) {
	personas, err := s.List(ctx)
	if err != nil {
		return domain.Persona{}, err
	}
	if idx := indexOf(personas, id); idx >= 0 {
		return personas[idx], nil
	}
	return domain.Persona{}, domain.ErrPersonaNotFound
}

// Create valida el perfil y lo agrega al principio de la lista con id y createdAt nuevos.
func (s *PersonaService) Create(ctx context.Context, profile domain.PersonaProfile, author domain.Author) (domain.Persona, error) {
	if err := profile.Validate(); err != nil {
		return domain.Persona{}, err
	}
	if author == "" {
		author = domain.AuthorUser
	}

	var created domain.Persona
	err := s.mutate(ctx, func(personas []domain.Persona) ([]domain.Persona, error) {
		created = domain.Persona{
			ID:        uuid.NewString(),
			Profile:   profile,
			CreatedAt: s.nextCreatedAt(personas),
			Author:    author,
			IsPublic:  false,
		}
		return append([]domain.Persona{created}, personas...), nil
	})
	if err != nil {
		return domain.Persona{}, err
	}
	s.logger.Info("persona created",
		zap.String("persona_id", created.ID),
		zap.String("author", string(created.Author)),
	)
	return created, nil
}

// Import lee un archivo exportado (plano o cifrado) y lo guarda como Imported.
func (s *PersonaService) Import(ctx context.Context, fileText []byte, prompt PasswordPrompt) (domain.Persona, error) {
	profile, err := s.exporter.Import(ctx, fileText, prompt)
	if err != nil {
		return domain.Persona{}, err
	}
	return s.Create(ctx, profile, domain.AuthorImported)
}

// Export devuelve los bytes del archivo y el nombre sugerido.
func (s *PersonaService) Export(ctx context.Context, id, password string) ([]byte, string, error) {
	persona, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.exporter.Export(persona.Profile, password)
	if err != nil {
		return nil, "", err
	}
	return data, ExportFilename(persona.Profile, password != ""), nil
}

// ReplaceProfile persiste un perfil evolucionado. ID, CreatedAt y Author no cambian.
func (s *PersonaService) ReplaceProfile(ctx context.Context, id string, profile domain.PersonaProfile) (domain.Persona, error) {
	var updated domain.Persona
	err := s.mutate(ctx, func(personas []domain.Persona) ([]domain.Persona, error) {
		idx := indexOf(personas, id)
		if idx < 0 {
			return nil, domain.ErrPersonaNotFound
		}
		personas[idx].Profile = profile
		updated = personas[idx]
		return personas, nil
	})
	if err != nil {
		return domain.Persona{}, err
	}
	return updated, nil
}

func (s *PersonaService) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(personas []domain.Persona) ([]domain.Persona, error) {
		idx := indexOf(personas, id)
		if idx < 0 {
			return nil, domain.ErrPersonaNotFound
		}
		return append(personas[:idx], personas[idx+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("persona deleted", zap.String("persona_id", id))
	return nil
}

// SynthesizeAndCreate genera un perfil a partir de las respuestas y lo guarda.
func (s *PersonaService) SynthesizeAndCreate(ctx context.Context, answers []domain.Answer) (domain.Persona, error) {
	normalized, err := NormalizeAnswers(answers)
	if err != nil {
		return domain.Persona{}, err
	}
	profile, err := s.synthesizer.Synthesize(ctx, normalized)
	if err != nil {
		return domain.Persona{}, err
	}
	if err := profile.Validate(); err != nil {
		return domain.Persona{}, fmt.Errorf("%w: synthesized profile: %v", domain.ErrMalformedGenerationResult, err)
	}
	return s.Create(ctx, profile, domain.AuthorUser)
}

// EvolveAndSave aplica una corrección desde el chat y persiste el perfil resultante.
// Si la generación falla no se escribe nada.
func (s *PersonaService) EvolveAndSave(ctx context.Context, session *ChatSession, messageID, correction string) (domain.Persona, error) {
	profile, err := session.Evolve(ctx, messageID, correction)
	if err != nil {
		return domain.Persona{}, err
	}
	return s.ReplaceProfile(ctx, session.PersonaID(), profile)
}

func (s *PersonaService) mutate(ctx context.Context, fn func([]domain.Persona) ([]domain.Persona, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	personas, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load personas: %w", err)
	}
	next, err := fn(personas)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save personas: %w", err)
	}
	return nil
}

// nextCreatedAt es estrictamente creciente, aun si el reloj retrocede o repite.
func (s *PersonaService) nextCreatedAt(existing []domain.Persona) time.Time {
	last := s.lastCreated
	for _, p := range existing {
		if p.CreatedAt.After(last) {
			last = p.CreatedAt
		}
	}
	now := s.now()
	if !now.After(last) {
		now = last.Add(time.Millisecond)
	}
	s.lastCreated = now
	return now
}

func indexOf(personas []domain.Persona, id string) int {
	id = strings.TrimSpace(id)
	for i, p := range personas {
		if p.ID == id {
			return i
		}
	}
	return -1
}
