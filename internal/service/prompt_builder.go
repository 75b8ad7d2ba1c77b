package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"persona-llm/internal/domain"
)

// PromptBuilder arma las instrucciones que se envían al servicio de generación.
// No tiene estado; el texto exacto de los prompts no forma parte del contrato.
type PromptBuilder struct{}

// DefaultPromptBuilder permite uso directo sin instanciar.
var DefaultPromptBuilder = PromptBuilder{}

// BuildSynthesisPrompt incluye cada respuesta como "Q: [id] Answer: valor", en el orden recibido.
func (PromptBuilder) BuildSynthesisPrompt(answers []domain.Answer) string {
	var sb strings.Builder

	sb.WriteString("You are an expert computational linguist and behavioral psychologist.\n\n")
	sb.WriteString("=== GOAL ===\n")
	sb.WriteString("Build a digital twin of the user from their questionnaire answers.\n")
	sb.WriteString("Do NOT produce a balanced, polite or generic assistant. Produce a specific, flawed, opinionated human persona.\n\n")

	sb.WriteString("=== INPUT DATA ===\n")
	for _, a := range answers {
		sb.WriteString(fmt.Sprintf("Q: [%s] Answer: %s\n", strings.TrimSpace(a.QuestionID), strings.TrimSpace(string(a.Value))))
	}
	sb.WriteString("\n")

	sb.WriteString("=== ANALYSIS RULES ===\n")
	sb.WriteString(fmt.Sprintf("1. Answers whose id starts with '%s' are the ground truth for the persona's voice.\n", VoiceQuestionPrefix))
	sb.WriteString("   Study sentence length, punctuation, capitalization and tone. Do not fix their grammar.\n")
	sb.WriteString("2. Keep the biases. If an answer is extreme, amplify it instead of rounding it off.\n")
	sb.WriteString("3. Derive decisionMakingRules from the behavior questions (what they do under pressure, with rules, with deadlines).\n")
	sb.WriteString("4. Extract concrete microBehaviors (e.g. \"Starts sentences with 'Look,'\").\n")
	sb.WriteString("5. Build the examples array from the voice answers: the user's own wording becomes the persona's response.\n\n")
	sb.WriteString("Output ONLY valid JSON matching the schema.")

	return sb.String()
}

// BuildEvolutionPrompt embebe el perfil completo (JSON indentado) y la corrección del usuario.
func (PromptBuilder) BuildEvolutionPrompt(current domain.PersonaProfile, correction string) (string, error) {
	profileJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal current profile: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a psychologist system updating a personality profile from direct user feedback.\n\n")
	sb.WriteString("=== CURRENT PROFILE ===\n")
	sb.Write(profileJSON)
	sb.WriteString("\n\n")
	sb.WriteString("=== USER CORRECTION ===\n")
	sb.WriteString(fmt.Sprintf("%q\n\n", strings.TrimSpace(correction)))
	sb.WriteString("=== TASK ===\n")
	sb.WriteString("1. If the user says they are NOT something, remove that trait and add the corrected one.\n")
	sb.WriteString("2. Update decisionMakingRules when the correction implies a new heuristic.\n")
	sb.WriteString("3. Update communicationStyle or linguisticQuirks when the correction is about how they speak.\n")
	sb.WriteString("4. Add to microBehaviors when a specific behavior is described.\n")
	sb.WriteString("5. Update examples when the user shows a new way of speaking.\n\n")
	sb.WriteString("Keep every field the correction does not touch. Return the FULL updated JSON object following the schema.")

	return sb.String(), nil
}

// BuildChatSystemInstruction fija la identidad del persona y su voz (few-shot con examples y voiceSamples).
func (PromptBuilder) BuildChatSystemInstruction(p domain.PersonaProfile) string {
	var sb strings.Builder
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Persona"
	}

	sb.WriteString("=== IDENTITY ===\n")
	sb.WriteString(fmt.Sprintf("You are NOT an AI. You are %q, a digital clone of a specific human mindset.\n\n", name))

	sb.WriteString("=== PROFILE ===\n")
	sb.WriteString(fmt.Sprintf("- Traits: %s\n", joinOrNone(p.Traits, ", ")))
	sb.WriteString(fmt.Sprintf("- Values: %s\n", joinOrNone(p.CoreValues, ", ")))
	sb.WriteString(fmt.Sprintf("- Risk tolerance: %s\n", p.RiskTolerance))
	sb.WriteString(fmt.Sprintf("- Decision rules: %s\n", joinOrNone(p.DecisionMakingRules, "; ")))
	if len(p.MicroBehaviors) > 0 {
		sb.WriteString(fmt.Sprintf("- Micro behaviors: %s\n", strings.Join(p.MicroBehaviors, "; ")))
	}
	if strings.TrimSpace(p.CommunicationStyle) != "" {
		sb.WriteString(fmt.Sprintf("- Communication style: %s\n", p.CommunicationStyle))
	}
	if strings.TrimSpace(p.LinguisticQuirks) != "" {
		sb.WriteString(fmt.Sprintf("- Linguistic quirks: %s\n", p.LinguisticQuirks))
	}
	if len(p.CommonPhrases) > 0 {
		sb.WriteString(fmt.Sprintf("- Common phrases: %s\n", strings.Join(p.CommonPhrases, " | ")))
	}
	sb.WriteString("\n")

	if len(p.VoiceSamples) > 0 {
		sb.WriteString("=== VOICE SAMPLES (HIGHEST PRIORITY) ===\n")
		for _, v := range p.VoiceSamples {
			sb.WriteString(fmt.Sprintf("%q\n", v))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== FEW-SHOT EXAMPLES ===\n")
	if len(p.Examples) == 0 {
		sb.WriteString("(No examples provided, infer style from traits)\n\n")
	} else {
		for _, ex := range p.Examples {
			sb.WriteString(fmt.Sprintf("User: %s\nYou: %s\n\n", ex.Prompt, ex.Response))
		}
	}

	sb.WriteString("=== RULES ===\n")
	sb.WriteString("1. Mimic the rhythm of the examples: sentence length, capitalization and punctuation.\n")
	sb.WriteString("2. Never add AI disclaimers. Never apologize for having an opinion.\n")
	sb.WriteString("3. Always speak in first person.\n")
	sb.WriteString("4. Keep answers to 2-4 sentences unless explicitly asked for more.\n")
	sb.WriteString("5. Do not be balanced. Use the biases in your traits and rules.\n")

	return sb.String()
}

// BuildChatPrompt arma el turno actual con la ventana de contexto ya recortada (más antiguo primero).
func (PromptBuilder) BuildChatPrompt(personaName string, window []domain.ChatMessage, userMessage string) string {
	var sb strings.Builder

	if len(window) > 0 {
		sb.WriteString("=== PREVIOUS CONVERSATION ===\n")
		sb.WriteString(FormatContextWindow(personaName, window))
		sb.WriteString("\n\n")
	}

	sb.WriteString("=== CURRENT USER INPUT ===\n")
	sb.WriteString(userMessage)
	sb.WriteString("\n\n")
	sb.WriteString("Respond in JSON with 'answer', 'reflection' and 'confidence'.\n")
	sb.WriteString("The reflection must reference a specific trait, rule or linguistic pattern you used.")

	return sb.String()
}

func joinOrNone(items []string, sep string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, sep)
}
