package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-llm/internal/config"
	"persona-llm/internal/di"
	"persona-llm/internal/domain"
	"persona-llm/internal/service"
)

func TestParseEvolveCommand(t *testing.T) {
	cases := []struct {
		line   string
		n      int
		text   string
		wantOK bool
	}{
		{line: "/evolve 2 I would be blunter", n: 2, text: "I would be blunter", wantOK: true},
		{line: "/evolve   3   more warmth  ", n: 3, text: "more warmth", wantOK: true},
		{line: "/evolve 2", wantOK: false},
		{line: "/evolve two softer", wantOK: false},
		{line: "/evolve", wantOK: false},
	}
	for _, tc := range cases {
		n, text, ok := parseEvolveCommand(tc.line)
		assert.Equal(t, tc.wantOK, ok, tc.line)
		if tc.wantOK {
			assert.Equal(t, tc.n, n)
			assert.Equal(t, tc.text, text)
		}
	}
}

func TestParseAnswers(t *testing.T) {
	list, err := parseAnswers([]byte(`[{"questionId":"q_planning","answer":4},{"questionId":"voice_weekend","answer":"slept"}]`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.AnswerValue("4"), list[0].Value)

	byID, err := parseAnswers([]byte(`{"q_solitude":"Need","q_planning":2}`))
	require.NoError(t, err)
	require.Len(t, byID, 2)
	assert.Equal(t, "q_planning", byID[0].QuestionID)
	assert.Equal(t, domain.AnswerValue("2"), byID[0].Value)

	_, err = parseAnswers([]byte(`"nope"`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskQuestions(t *testing.T) {
	questions := []domain.Question{
		{ID: "c", Text: "Pick", Type: domain.QuestionChoice, Options: []string{"A", "B"}},
		{ID: "s", Text: "Rate", Type: domain.QuestionScale, Min: 1, Max: 5},
		{ID: "t", Text: "Say", Type: domain.QuestionText},
		{ID: "skip", Text: "Skip me", Type: domain.QuestionText},
	}
	in := bufio.NewReader(strings.NewReader("9\n2\n7\n3\nhello there\n\n"))
	var out bytes.Buffer

	answers, err := askQuestions(&out, in, questions)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, domain.AnswerValue("B"), answers[0].Value)
	assert.Equal(t, domain.AnswerValue("3"), answers[1].Value)
	assert.Equal(t, domain.AnswerValue("hello there"), answers[2].Value)
	assert.Contains(t, out.String(), "Not a valid answer")
}

func TestAskQuestions_StopsAtEOF(t *testing.T) {
	questions := service.Questions(service.ModeBasic)
	in := bufio.NewReader(strings.NewReader("1\n"))

	answers, err := askQuestions(&bytes.Buffer{}, in, questions)
	require.NoError(t, err)
	assert.Len(t, answers, 1)
}

func TestRunChat_OfflineEvolve(t *testing.T) {
	cfg := &config.Config{
		LLMProvider:       "mock",
		PersonaStore:      "memory",
		ChatContextWindow: 10,
		ChatMaxSessions:   2,
	}
	c, err := di.BuildContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	p, err := c.Personas.SynthesizeAndCreate(context.Background(), []domain.Answer{{QuestionID: "q_solitude", Value: "Crave"}})
	require.NoError(t, err)
	session := c.Sessions.Open(p)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	in := bufio.NewReader(strings.NewReader("hello\n/evolve 9 nope\n/evolve 2 be warmer\n/quit\n"))
	require.NoError(t, runChat(cmd, c.Personas, session, in))

	text := out.String()
	assert.Contains(t, text, "[1] Offline Draft: Hello.")
	assert.Contains(t, text, "[2] Offline Draft: I hear you.")
	assert.Contains(t, text, "no reply numbered 9")
	assert.Contains(t, text, "-- ")
}
