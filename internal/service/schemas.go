package service

import (
	"persona-llm/internal/domain"
	"persona-llm/internal/llm"
)

func stringList(desc string) *llm.Schema {
	return &llm.Schema{Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}, Description: desc}
}

// PersonaSchema es la forma que se pide al modelo tanto al sintetizar como al evolucionar.
var PersonaSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"name":    {Type: llm.TypeString, Description: "A creative name for this persona (e.g. 'The Strategic Optimist')."},
		"tagline": {Type: llm.TypeString, Description: "A short, punchy description of the mindset."},
		"traits": stringList("4-6 key personality traits. At least one must be a negative or flawed trait " +
			"(e.g. 'Impatient', 'Cynical')."),
		"coreValues": stringList("Top 3 core values driving decisions."),
		"communicationStyle": {Type: llm.TypeString, Description: "Linguistic analysis: sentence length, " +
			"punctuation habits, capitalization and emotional temperature."},
		"decisionMakingRules": stringList("5 concrete rules or axioms followed when making choices."),
		"riskTolerance": {
			Type:        llm.TypeString,
			Enum:        []string{string(domain.RiskLow), string(domain.RiskModerate), string(domain.RiskHigh)},
			Description: "General attitude towards risk.",
		},
		"linguisticQuirks": {Type: llm.TypeString, Description: "Syntax habits derived from the voice samples " +
			"(e.g. 'lowercase only', 'overuses dashes')."},
		"commonPhrases":  stringList("3-4 phrases or idioms they use."),
		"voiceSamples":   stringList("3-5 direct quotes representing their speech style."),
		"microBehaviors": stringList("Small behavioral triggers (e.g. 'Deflects compliments with humor')."),
		"examples": {
			Type: llm.TypeArray,
			Items: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"prompt":   {Type: llm.TypeString},
					"response": {Type: llm.TypeString},
				},
				Required: []string{"prompt", "response"},
			},
			Description: "3-4 User/Persona exchanges inferred from the voice samples.",
		},
	},
	Required: []string{
		"name", "tagline", "traits", "coreValues", "communicationStyle", "decisionMakingRules",
		"riskTolerance", "linguisticQuirks", "voiceSamples", "microBehaviors", "examples",
	},
	PropertyOrdering: []string{
		"name", "tagline", "traits", "coreValues", "communicationStyle", "decisionMakingRules",
		"riskTolerance", "linguisticQuirks", "commonPhrases", "voiceSamples", "microBehaviors", "examples",
	},
}

// ChatReplySchema es la forma de cada turno del persona en el chat.
var ChatReplySchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"answer": {Type: llm.TypeString, Description: "The persona's direct answer, first person, " +
			"mimicking the voice samples."},
		"reflection": {Type: llm.TypeString, Description: "Why the persona answered this way, referencing " +
			"a specific trait, rule or linguistic pattern."},
		"confidence": {Type: llm.TypeNumber, Description: "Score 1-10. High means the answer aligns " +
			"with the persona's rules."},
	},
	Required:         []string{"answer", "reflection", "confidence"},
	PropertyOrdering: []string{"answer", "reflection", "confidence"},
}

// chatReply es la forma decodificada de ChatReplySchema. Confidence llega como número y puede
// venir con decimales.
type chatReply struct {
	Answer     string   `json:"answer"`
	Reflection string   `json:"reflection"`
	Confidence *float64 `json:"confidence"`
}
