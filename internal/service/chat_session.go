package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-llm/internal/domain"
	"persona-llm/internal/llm"
	"persona-llm/internal/metrics"
)

var (
	ErrSessionBusy      = errors.New("session busy")
	ErrMessageNotFound  = errors.New("message not found")
	ErrSessionNotFound  = errors.New("session not found")
	errEmptyChatAnswer  = fmt.Errorf("%w: empty answer", domain.ErrMalformedGenerationResult)
	errChatNotAvailable = errors.New("chat not configured")
)

const (
	DefaultChatModel = "gemini-flash-lite-latest"
	chatTemperature  = 0.9
	chatTopP         = 0.95

	// Textos que ve el usuario cuando un turno falla.
	GenericChatErrorText   = "I'm having trouble connecting to my thought process right now. Please check the API key or try again."
	RateLimitChatErrorText = "I'm getting too many requests right now. Give me a few seconds and try again."

	minConfidence = 1
	maxConfidence = 10
)

// ChatConfig agrupa los parámetros del chat.
type ChatConfig struct {
	Model         string
	ContextWindow int
	Retry         llm.RetryPolicy
}

// ChatOrchestrator crea sesiones de chat y comparte entre ellas el cliente, el sintetizador y la política de reintentos.
type ChatOrchestrator struct {
	client      *llm.StructuredClient
	synthesizer *PersonaSynthesizer
	sanitizer   ResponseSanitizer
	prompts     PromptBuilder
	context     ContextService
	retry       llm.RetryPolicy
	model       string
	logger      *zap.Logger
	now         func() time.Time
}

func NewChatOrchestrator(client *llm.StructuredClient, synthesizer *PersonaSynthesizer, cfg ChatConfig, logger *zap.Logger) *ChatOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}
	if cfg.Retry.Logger == nil {
		cfg.Retry.Logger = logger
	}
	return &ChatOrchestrator{
		client:      client,
		synthesizer: synthesizer,
		sanitizer:   DefaultResponseSanitizer,
		prompts:     DefaultPromptBuilder,
		context:     NewContextService(cfg.ContextWindow),
		retry:       cfg.Retry,
		model:       cfg.Model,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewSession abre una conversación con el saludo inicial del persona.
func (o *ChatOrchestrator) NewSession(personaID string, profile domain.PersonaProfile) *ChatSession {
	s := &ChatSession{
		id:        uuid.NewString(),
		personaID: personaID,
		profile:   profile,
		state:     domain.SessionIdle,
		orch:      o,
		createdAt: o.now(),
	}
	greeting := s.newMessage(domain.RoleModel, domain.KindReply,
		fmt.Sprintf("Hello. I am %s. I'm ready to think through this with you.", strings.TrimSpace(profile.Name)))
	greeting.Confidence = intPtr(maxConfidence)
	s.messages = append(s.messages, greeting)
	return s
}

// ChatSession es una conversación abierta. Idle -> Sending -> Idle; como mucho una petición en vuelo.
type ChatSession struct {
	id        string
	personaID string
	createdAt time.Time
	orch      *ChatOrchestrator

	mu       sync.Mutex
	profile  domain.PersonaProfile
	messages []domain.ChatMessage
	state    domain.SessionState
}

func (s *ChatSession) ID() string        { return s.id }
func (s *ChatSession) PersonaID() string { return s.personaID }

// Profile devuelve el perfil vigente de la sesión (cambia tras una evolución).
func (s *ChatSession) Profile() domain.PersonaProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Send agrega el mensaje del usuario y exactamente un mensaje del modelo: la respuesta o un aviso de error.
// Devuelve el mensaje agregado; si el turno falló también devuelve la causa.
func (s *ChatSession) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	if s.state == domain.SessionSending {
		s.mu.Unlock()
		return domain.ChatMessage{}, ErrSessionBusy
	}
	s.state = domain.SessionSending
	window := s.orch.context.Window(s.messages)
	s.messages = append(s.messages, s.newMessage(domain.RoleUser, "", text))
	profile := s.profile
	s.mu.Unlock()

	reply, err := s.orch.generateReply(ctx, profile, window, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SessionIdle

	if err != nil {
		msg := s.newMessage(domain.RoleModel, domain.KindError, chatErrorText(err))
		s.messages = append(s.messages, msg)
		outcome := "error"
		if errors.Is(err, domain.ErrRateLimited) {
			outcome = "rate_limited"
		}
		metrics.ChatTurns.WithLabelValues(outcome).Inc()
		s.orch.logger.Warn("chat turn failed", zap.String("session_id", s.id), zap.Error(err))
		return msg, err
	}

	msg := s.newMessage(domain.RoleModel, domain.KindReply, reply.Answer)
	msg.Reflection = reply.Reflection
	msg.Confidence = clampConfidence(reply.Confidence)
	s.messages = append(s.messages, msg)
	metrics.ChatTurns.WithLabelValues("reply").Inc()
	return msg, nil
}

// Evolve aplica una corrección sobre una respuesta concreta del persona. Si tiene éxito reemplaza el
// perfil de la sesión, agrega un aviso al transcript y devuelve el perfil nuevo para que quien llama lo persista.
// Si falla el transcript no cambia.
func (s *ChatSession) Evolve(ctx context.Context, messageID, correction string) (domain.PersonaProfile, error) {
	if strings.TrimSpace(correction) == "" {
		return domain.PersonaProfile{}, fmt.Errorf("%w: empty correction", domain.ErrInvalidInput)
	}
	if s.orch.synthesizer == nil {
		return domain.PersonaProfile{}, errChatNotAvailable
	}

	s.mu.Lock()
	if s.state == domain.SessionSending {
		s.mu.Unlock()
		return domain.PersonaProfile{}, ErrSessionBusy
	}
	target, ok := s.findReply(messageID)
	if !ok {
		s.mu.Unlock()
		return domain.PersonaProfile{}, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
	}
	s.state = domain.SessionSending
	current := s.profile
	s.mu.Unlock()

	full := fmt.Sprintf("About your reply %q: %s", target.Text, strings.TrimSpace(correction))
	updated, err := s.orch.synthesizer.Evolve(ctx, current, full)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SessionIdle
	if err != nil {
		return domain.PersonaProfile{}, err
	}
	if err := updated.Validate(); err != nil {
		return domain.PersonaProfile{}, fmt.Errorf("%w: evolved profile: %v", domain.ErrMalformedGenerationResult, err)
	}

	s.profile = updated
	s.messages = append(s.messages, s.newMessage(domain.RoleModel, domain.KindSystem,
		fmt.Sprintf("Profile updated: %s", strings.TrimSpace(correction))))
	return updated, nil
}

// Transcript devuelve una copia del historial.
func (s *ChatSession) Transcript() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMessages(s.messages)
}

func (s *ChatSession) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionSnapshot{
		ID:        s.id,
		PersonaID: s.personaID,
		State:     s.state,
		Messages:  copyMessages(s.messages),
		CreatedAt: s.createdAt,
	}
}

// findReply requiere s.mu tomado.
func (s *ChatSession) findReply(id string) (domain.ChatMessage, bool) {
	for _, m := range s.messages {
		if m.ID == id && m.IsReply() {
			return m, true
		}
	}
	return domain.ChatMessage{}, false
}

// newMessage requiere s.mu tomado. El timestamp nunca retrocede respecto del último mensaje.
func (s *ChatSession) newMessage(role string, kind domain.MessageKind, text string) domain.ChatMessage {
	ts := s.orch.now()
	if n := len(s.messages); n > 0 && ts.Before(s.messages[n-1].Timestamp) {
		ts = s.messages[n-1].Timestamp
	}
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Kind:      kind,
		Text:      text,
		Timestamp: ts,
	}
}

func (o *ChatOrchestrator) generateReply(ctx context.Context, profile domain.PersonaProfile, window []domain.ChatMessage, text string) (chatReply, error) {
	if o.client == nil {
		return chatReply{}, errChatNotAvailable
	}

	req := llm.Request{
		Model:             o.model,
		SystemInstruction: o.prompts.BuildChatSystemInstruction(profile),
		Prompt:            o.prompts.BuildChatPrompt(profile.Name, window, text),
		Schema:            ChatReplySchema,
		SchemaName:        "chat_reply",
		Temperature:       llm.Float32(chatTemperature),
		TopP:              llm.Float32(chatTopP),
	}

	reply, err := llm.WithRetry(ctx, o.retry, func(ctx context.Context) (chatReply, error) {
		raw, err := o.client.GenerateJSON(ctx, req)
		if err != nil {
			return chatReply{}, err
		}
		return llm.DecodeJSON[chatReply](raw)
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedGenerationResult) {
			return chatReply{}, err
		}
		return chatReply{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	reply.Answer = o.sanitizer.Sanitize(reply.Answer)
	if reply.Answer == "" {
		return chatReply{}, errEmptyChatAnswer
	}
	return reply, nil
}

func chatErrorText(err error) string {
	if errors.Is(err, domain.ErrRateLimited) {
		return RateLimitChatErrorText
	}
	return GenericChatErrorText
}

func clampConfidence(v *float64) *int {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	f := math.Round(*v)
	if f < minConfidence {
		f = minConfidence
	}
	if f > maxConfidence {
		f = maxConfidence
	}
	c := int(f)
	return &c
}

func intPtr(v int) *int { return &v }

func copyMessages(in []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(in))
	copy(out, in)
	return out
}
