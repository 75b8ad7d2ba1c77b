package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"persona-llm/internal/domain"
	"persona-llm/internal/llm"
	"persona-llm/internal/metrics"
)

const (
	DefaultSynthesisModel = "gemini-2.5-flash"
	synthesisTemperature  = 0.25
)

// PersonaSynthesizer convierte respuestas del cuestionario en un perfil y aplica correcciones
// (evolución). No infiere nada localmente: todo el contenido viene del servicio de generación.
type PersonaSynthesizer struct {
	client  *llm.StructuredClient
	retry   llm.RetryPolicy
	prompts PromptBuilder
	model   string
	logger  *zap.Logger
}

func NewPersonaSynthesizer(client *llm.StructuredClient, retry llm.RetryPolicy, model string, logger *zap.Logger) *PersonaSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}
	return &PersonaSynthesizer{
		client:  client,
		retry:   retry,
		prompts: DefaultPromptBuilder,
		model:   model,
		logger:  logger,
	}
}

// Synthesize genera un perfil nuevo. El resultado se devuelve sin modificar.
func (s *PersonaSynthesizer) Synthesize(ctx context.Context, answers []domain.Answer) (domain.PersonaProfile, error) {
	if len(answers) == 0 {
		return domain.PersonaProfile{}, fmt.Errorf("%w: no answers", domain.ErrInvalidInput)
	}

	req := llm.Request{
		Model:       s.model,
		Prompt:      s.prompts.BuildSynthesisPrompt(answers),
		Schema:      PersonaSchema,
		SchemaName:  "persona_profile",
		Temperature: llm.Float32(synthesisTemperature),
	}

	s.logger.Info("synthesizing persona", zap.Int("answers", len(answers)))
	profile, err := s.generateProfile(ctx, req)
	metrics.ObserveGeneration("synthesize", err)
	if err != nil {
		s.logger.Warn("persona synthesis failed", zap.Error(err))
		return domain.PersonaProfile{}, err
	}
	return profile, nil
}

// Evolve pide al modelo el perfil completo actualizado con la corrección. Reemplaza el perfil entero.
func (s *PersonaSynthesizer) Evolve(ctx context.Context, current domain.PersonaProfile, correction string) (domain.PersonaProfile, error) {
	if strings.TrimSpace(correction) == "" {
		return domain.PersonaProfile{}, fmt.Errorf("%w: empty correction", domain.ErrInvalidInput)
	}

	prompt, err := s.prompts.BuildEvolutionPrompt(current, correction)
	if err != nil {
		return domain.PersonaProfile{}, err
	}
	req := llm.Request{
		Model:      s.model,
		Prompt:     prompt,
		Schema:     PersonaSchema,
		SchemaName: "persona_profile",
	}

	s.logger.Info("evolving persona", zap.String("persona", current.Name))
	profile, err := s.generateProfile(ctx, req)
	metrics.ObserveGeneration("evolve", err)
	if err != nil {
		s.logger.Warn("persona evolution failed", zap.Error(err))
		return domain.PersonaProfile{}, err
	}
	return profile, nil
}

func (s *PersonaSynthesizer) generateProfile(ctx context.Context, req llm.Request) (domain.PersonaProfile, error) {
	if s == nil || s.client == nil {
		return domain.PersonaProfile{}, fmt.Errorf("%w: synthesizer not configured", domain.ErrGenerationFailed)
	}

	profile, err := llm.WithRetry(ctx, s.retry, func(ctx context.Context) (domain.PersonaProfile, error) {
		raw, err := s.client.GenerateJSON(ctx, req)
		if err != nil {
			return domain.PersonaProfile{}, err
		}
		return llm.DecodeJSON[domain.PersonaProfile](raw)
	})
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, domain.ErrMalformedGenerationResult) {
		return domain.PersonaProfile{}, err
	}
	return domain.PersonaProfile{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
}
