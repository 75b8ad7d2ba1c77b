package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QuestionType indica como se responde una pregunta del cuestionario.
type QuestionType string

const (
	QuestionScale  QuestionType = "scale"
	QuestionText   QuestionType = "text"
	QuestionChoice QuestionType = "choice"
)

type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Min      int          `json:"min,omitempty"`
	Max      int          `json:"max,omitempty"`
	MinLabel string       `json:"minLabel,omitempty"`
	MaxLabel string       `json:"maxLabel,omitempty"`
	Category string       `json:"category,omitempty"`
}

// Answer es la respuesta cruda a una pregunta. Solo viaja hacia el servicio de generación;
// nunca se guarda junto al persona.
type Answer struct {
	QuestionID string      `json:"questionId"`
	Value      AnswerValue `json:"answer"`
}

// AnswerValue acepta texto o número (preguntas de escala) y lo conserva como texto.
type AnswerValue string

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AnswerValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer must be a string or number: %w", err)
	}
	*v = AnswerValue(n.String())
	return nil
}
