package llm

// FieldType es el tipo de un campo en el descriptor de esquema.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Schema es un descriptor declarativo de la forma JSON esperada. Es dato, no código:
// cada adaptador lo traduce al formato de su proveedor.
type Schema struct {
	Type             FieldType
	Description      string
	Enum             []string
	Items            *Schema
	Properties       map[string]*Schema
	Required         []string
	PropertyOrdering []string
}

// ToJSONSchema traduce el descriptor a JSON Schema (response_format de APIs compatibles con OpenAI).
func (s *Schema) ToJSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		enum := make([]string, len(s.Enum))
		copy(enum, s.Enum)
		out["enum"] = enum
	}
	if s.Items != nil {
		out["items"] = s.Items.ToJSONSchema()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.ToJSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		req := make([]string, len(s.Required))
		copy(req, s.Required)
		out["required"] = req
	}
	return out
}
