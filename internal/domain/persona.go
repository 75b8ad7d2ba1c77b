package domain

import (
	"strings"
	"time"
)

// RiskTolerance describe la actitud general del persona frente al riesgo.
type RiskTolerance string

const (
	RiskLow      RiskTolerance = "Low"
	RiskModerate RiskTolerance = "Moderate"
	RiskHigh     RiskTolerance = "High"
)

// Author etiqueta el origen de un Persona almacenado.
type Author string

const (
	AuthorUser     Author = "User"
	AuthorImported Author = "Imported"
	AuthorSystem   Author = "System"
)

// PersonaProfile es el artefacto portable y sin PII. Los nombres JSON son el formato de exportación.
type PersonaProfile struct {
	Name                string        `json:"name"`
	Tagline             string        `json:"tagline"`
	Traits              []string      `json:"traits"`
	CoreValues          []string      `json:"coreValues"`
	CommunicationStyle  string        `json:"communicationStyle"`
	DecisionMakingRules []string      `json:"decisionMakingRules"`
	RiskTolerance       RiskTolerance `json:"riskTolerance"`

	// Campos de fidelidad de voz, opcionales.
	LinguisticQuirks string           `json:"linguisticQuirks,omitempty"`
	CommonPhrases    []string         `json:"commonPhrases,omitempty"`
	VoiceSamples     []string         `json:"voiceSamples,omitempty"`
	MicroBehaviors   []string         `json:"microBehaviors,omitempty"`
	Examples         []PersonaExample `json:"examples,omitempty"`
}

// PersonaExample es un par entrada/salida usado como few-shot en el chat.
type PersonaExample struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// Validate comprueba la forma mínima que exige la importación: name, traits y decisionMakingRules.
func (p PersonaProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidPersonaFormat
	}
	if !hasNonBlank(p.Traits) || !hasNonBlank(p.DecisionMakingRules) {
		return ErrInvalidPersonaFormat
	}
	return nil
}

func hasNonBlank(items []string) bool {
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			return true
		}
	}
	return false
}

// Persona es una instancia almacenada. Solo el camino de evolución reemplaza Profile;
// ID, CreatedAt y Author se preservan.
type Persona struct {
	ID        string         `json:"id"`
	Profile   PersonaProfile `json:"profile"`
	CreatedAt time.Time      `json:"createdAt"`
	Author    Author         `json:"author"`
	IsPublic  bool           `json:"isPublic"`
}
