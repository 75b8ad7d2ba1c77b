package service

import (
	"fmt"
	"strconv"
	"strings"

	"persona-llm/internal/domain"
)

// VoiceQuestionPrefix marca las preguntas de texto libre cuyas respuestas se usan como muestras de voz.
const VoiceQuestionPrefix = "voice_"

// QuestionnaireMode elige el subconjunto del banco de preguntas.
type QuestionnaireMode string

const (
	ModeBasic    QuestionnaireMode = "basic"
	ModeAdvanced QuestionnaireMode = "advanced"

	basicQuestionCount = 20
	scaleMin           = 1
	scaleMax           = 5
)

func choice(id, text string, options ...string) domain.Question {
	return domain.Question{ID: id, Text: text, Type: domain.QuestionChoice, Options: options}
}

func open(id, text string) domain.Question {
	return domain.Question{ID: id, Text: text, Type: domain.QuestionText}
}

func scale(id, text, minLabel, maxLabel string) domain.Question {
	return domain.Question{ID: id, Text: text, Type: domain.QuestionScale, Min: scaleMin, Max: scaleMax, MinLabel: minLabel, MaxLabel: maxLabel}
}

// questionBank: los primeros 20 forman el modo básico.
var questionBank = []domain.Question{
	choice("q_risk_uncertain", "A decision with high stakes has an unclear outcome. What is your first move?",
		"Wait for more information", "Go with my instinct right away", "Ask the people affected", "Prepare for the worst case"),
	choice("q_career_path", "Which path would you take?",
		"Stable work with guaranteed comfort", "Risky work with a shot at something huge"),
	choice("q_challenged", "Someone questions your judgment in front of others. You...",
		"Let it slide", "Push back hard", "Ask them to walk through their reasoning", "End the discussion", "Stay quiet and dwell on it later"),
	scale("q_planning", "How much do you plan your days in advance?", "Never", "Every hour"),
	choice("q_intolerable", "Which trait in other people bothers you the most?",
		"Incompetence", "Disloyalty", "Closed-mindedness", "Dishonesty", "Laziness"),
	choice("q_traditions", "Traditions are...",
		"Anchors worth protecting", "Reasonable defaults", "Weight that slows us down"),
	open(VoiceQuestionPrefix+"weekend", "Someone asks how your weekend was. Reply exactly as you would in a text message."),
	choice("q_last_years", "Unlimited money but five years left. What gets your time?",
		"Pleasure and travel", "Work that outlives me", "Family and friends", "Spiritual preparation"),
	choice("q_public_failure", "You fail in public. What does your inner voice say?",
		"\"Fix it, now.\"", "\"The game was rigged.\"", "\"I am not good enough.\"", "\"Whatever. Next.\""),
	choice("q_learning", "Faced with a new tool, you...",
		"Read the documentation first", "Start pressing buttons", "Watch someone use it"),
	scale("q_status", "How much does social status matter to you?", "Not at all", "Enormously"),
	choice("q_rules", "Rules are...", "Absolute", "Guidelines", "Suggestions", "Obstacles"),
	open(VoiceQuestionPrefix+"mistake", "A friend points out a mistake you made. Write your reply in your own words."),
	choice("q_detail", "Big picture or details?",
		"Big picture only", "Details only", "Mostly big picture", "Mostly details"),
	choice("q_negative_emotion", "Which negative emotion visits you most?",
		"Anger", "Anxiety", "Sadness", "Envy", "Numbness"),
	choice("q_behavior_deadline", "A deadline is close and the work is not great yet. You...",
		"Ship it late but polished", "Ship it on time and good enough", "Ask for more time", "Cut scope quietly"),
	choice("q_crisis_role", "In a crisis you tend to be...",
		"The one giving orders", "The one calming everyone", "The one fixing the problem", "The one panicking"),
	choice("q_success", "Success means...", "Wealth and power", "Peace and happiness", "Impact and legacy", "Mastery"),
	scale("q_optimism", "When things are uncertain, how do you expect them to turn out?", "Badly", "Well"),
	choice("q_solitude", "Time alone is something you...", "Avoid", "Tolerate", "Need", "Crave"),

	choice("q_human_nature", "If you could remove one thing from human nature:",
		"Greed", "Hate", "Ignorance", "Fear"),
	scale("q_authority", "How much do you trust institutions and authority?", "Zero", "Fully"),
	choice("q_stress", "Under heavy stress you become...",
		"Aggressive", "Silent", "Restless", "Clingy", "Cold"),
	open("q_controversial", "Share an opinion of yours that most people would disagree with."),
	choice("q_kind_right", "It is better to be...", "Kind rather than right", "Right rather than kind"),
	choice("q_money", "Money is mostly...", "Freedom", "Status", "Security", "A necessary evil"),
	open(VoiceQuestionPrefix+"recommendation", "Recommend something you love to a friend, the way you would actually say it."),
	choice("q_past", "Your relationship with the past:", "Nostalgic", "Regretful", "Indifferent", "Forgetful"),
	choice("q_life_is", "Life is...", "A competition", "A shared journey", "A test", "An accident"),
	choice("q_thinking_place", "Where do you think best?", "Total silence", "A busy cafe", "Outdoors", "In the shower"),
	scale("q_free_will", "Fate or free will?", "Everything is fate", "Everything is choice"),
	scale("q_decision_speed", "How fast do you make decisions?", "Painfully slow", "Instantly"),
	choice("q_motivation", "What moves you more?", "The reward", "Fear of the consequence"),
	choice("q_criticism", "When criticized you feel...", "Attacked", "Curious", "Indifferent", "Ashamed"),
	choice("q_theory_practice", "You prefer...", "Abstract theory", "Concrete practice"),
	choice("q_grudges", "Grudges:", "Forgive and forget", "Forgive but remember", "Never forgive"),
	open("q_ritual", "Describe a ritual you keep no matter what."),
	open(VoiceQuestionPrefix+"disagree", "Someone insists on an idea you think is wrong. Write what you would tell them."),
	scale("q_transparency", "How easy is it for others to read your emotions?", "Poker face", "Open book"),
	choice("q_helping", "Helping others:", "Everyone helps themselves", "Only family and friends", "Anyone who needs it"),
	choice("q_structure", "Structure or chaos?", "Strict schedule", "Loose plan", "Go with the flow", "Pure chaos"),
	open("q_lesson", "What is the most important lesson you have learned?"),
	choice("q_work", "Work is...", "Just a paycheck", "Meaningful but separate", "My life"),
	choice("q_self_worth", "Your self-worth comes from...", "Achievements", "Relationships", "Integrity", "Others' opinions"),
	open("q_world_rule", "If you could add one rule to the world, what would it be?"),
}

// ParseQuestionnaireMode acepta "basic" o "advanced" (vacío = basic).
func ParseQuestionnaireMode(raw string) (QuestionnaireMode, error) {
	switch QuestionnaireMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeBasic:
		return ModeBasic, nil
	case ModeAdvanced:
		return ModeAdvanced, nil
	default:
		return "", fmt.Errorf("%w: unknown questionnaire mode %q", domain.ErrInvalidInput, raw)
	}
}

// Questions devuelve una copia de las preguntas del modo pedido.
func Questions(mode QuestionnaireMode) []domain.Question {
	src := questionBank
	if mode != ModeAdvanced {
		src = questionBank[:basicQuestionCount]
	}
	out := make([]domain.Question, len(src))
	for i, q := range src {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// QuestionByID busca en el banco completo.
func QuestionByID(id string) (domain.Question, bool) {
	for _, q := range questionBank {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// NormalizeAnswers valida las respuestas contra el banco y las ordena como el cuestionario.
// Las respuestas vacías se descartan; ids desconocidos o valores fuera de rango son error.
func NormalizeAnswers(answers []domain.Answer) ([]domain.Answer, error) {
	byID := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		id := strings.TrimSpace(a.QuestionID)
		value := strings.TrimSpace(string(a.Value))
		if value == "" {
			continue
		}
		q, ok := QuestionByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: unknown question %q", domain.ErrInvalidInput, id)
		}
		if err := checkAnswer(q, value); err != nil {
			return nil, err
		}
		byID[id] = domain.Answer{QuestionID: id, Value: domain.AnswerValue(value)}
	}
	if len(byID) == 0 {
		return nil, fmt.Errorf("%w: no answers", domain.ErrInvalidInput)
	}

	out := make([]domain.Answer, 0, len(byID))
	for _, q := range questionBank {
		if a, ok := byID[q.ID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func checkAnswer(q domain.Question, value string) error {
	switch q.Type {
	case domain.QuestionScale:
		n, err := strconv.Atoi(value)
		if err != nil || n < q.Min || n > q.Max {
			return fmt.Errorf("%w: %s expects a number between %d and %d", domain.ErrInvalidInput, q.ID, q.Min, q.Max)
		}
	case domain.QuestionChoice:
		for _, opt := range q.Options {
			if opt == value {
				return nil
			}
		}
		return fmt.Errorf("%w: %s expects one of its options", domain.ErrInvalidInput, q.ID)
	}
	return nil
}
