package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"persona-llm/internal/domain"
)

// StructuredClient envuelve una llamada al servicio de generación y garantiza que el cuerpo
// devuelto sea JSON. No valida campo por campo: eso queda para quien llama.
// No reintenta; el RetryPolicy se aplica en el sitio de llamada.
type StructuredClient struct {
	llm    LLMClient
	logger *zap.Logger
}

func NewStructuredClient(llmClient LLMClient, logger *zap.Logger) *StructuredClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructuredClient{llm: llmClient, logger: logger}
}

// GenerateJSON hace exactamente una llamada. Los errores de transporte se devuelven sin tocar
// para que RetryPolicy pueda detectar rate limits; cuerpo vacío o no-JSON es ErrMalformedGenerationResult.
func (c *StructuredClient) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	if c == nil || c.llm == nil {
		return nil, fmt.Errorf("structured client not configured")
	}

	raw, err := c.llm.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	cleaned := CleanJSONResponse(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty body", domain.ErrMalformedGenerationResult)
	}
	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	c.logger.Warn("llm body is not json",
		zap.String("schema", req.SchemaName),
		zap.String("body_prefix", truncate(cleaned, 120)),
	)
	return nil, fmt.Errorf("%w: body is not valid json", domain.ErrMalformedGenerationResult)
}

// DecodeJSON vuelca el JSON en la forma esperada; un desajuste de tipos también es malformado.
func DecodeJSON[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrMalformedGenerationResult, err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
