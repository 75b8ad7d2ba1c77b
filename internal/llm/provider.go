package llm

import "context"

// LLMClient es el servicio de generación externo: recibe instrucciones y un esquema
// y devuelve el cuerpo de texto del modelo (se espera JSON) o un error.
type LLMClient interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request describe una llamada de generación estructurada.
type Request struct {
	// Model permite sobreescribir el modelo por defecto del adaptador.
	Model             string
	SystemInstruction string
	Prompt            string
	Schema            *Schema
	SchemaName        string
	Temperature       *float32
	TopP              *float32
}

// Float32 devuelve un puntero, útil para Temperature/TopP.
func Float32(v float32) *float32 { return &v }
