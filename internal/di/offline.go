package di

import (
	"encoding/json"
	"fmt"

	"persona-llm/internal/domain"
	"persona-llm/internal/llm"
)

// NewOfflineClient devuelve respuestas fijas para correr la API o el CLI sin proveedor real.
func NewOfflineClient() *llm.MockClient {
	profile := domain.PersonaProfile{
		Name:                "Offline Draft",
		Tagline:             "A placeholder until a real model is configured.",
		Traits:              []string{"Patient", "Literal"},
		CoreValues:          []string{"Clarity"},
		CommunicationStyle:  "Plain, short sentences.",
		DecisionMakingRules: []string{"When unsure, ask for one more detail."},
		RiskTolerance:       domain.RiskModerate,
	}
	profileJSON, _ := json.Marshal(profile)

	return &llm.MockClient{Script: func(call int, req llm.Request) (string, error) {
		if req.SchemaName == "chat_reply" {
			return fmt.Sprintf(`{"answer":"I hear you. Tell me more (turn %d).","reflection":"Offline mode echoes.","confidence":5}`, call+1), nil
		}
		return string(profileJSON), nil
	}}
}
