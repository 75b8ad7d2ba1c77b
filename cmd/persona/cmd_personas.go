package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"persona-llm/internal/domain"
	"persona-llm/internal/service"
)

var (
	questionsMode     string
	questionnaireSave string
	answersPath       string
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the questionnaire as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := service.ParseQuestionnaireMode(questionsMode)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), service.Questions(mode))
	},
}

var questionnaireCmd = &cobra.Command{
	Use:   "questionnaire",
	Short: "Answer the questionnaire interactively and synthesize a persona",
	Long: `Walks through the questionnaire one question at a time. Choices and scales take a
number, free-text questions take a line. Press enter to skip a question.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := service.ParseQuestionnaireMode(questionsMode)
		if err != nil {
			return err
		}
		answers, err := askQuestions(cmd.OutOrStdout(), stdin, service.Questions(mode))
		if err != nil {
			return err
		}
		if questionnaireSave != "" {
			data, err := json.MarshalIndent(answers, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(questionnaireSave, data, 0o600); err != nil {
				return fmt.Errorf("save answers: %w", err)
			}
		}
		return synthesize(cmd, answers)
	},
}

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Synthesize a persona from a saved answers file",
	Long: `Reads answers from a JSON file, either a list of {"questionId","answer"} objects
or an object mapping question id to answer, and stores the generated persona.

Example:
  persona synthesize --answers answers.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(answersPath)
		if err != nil {
			return fmt.Errorf("read answers: %w", err)
		}
		answers, err := parseAnswers(data)
		if err != nil {
			return err
		}
		return synthesize(cmd, answers)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored personas, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Cleanup()

		personas, err := c.Personas.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(personas) == 0 {
			fmt.Fprintln(out, "No personas yet. Run `persona questionnaire` to create one.")
			return nil
		}
		for _, p := range personas {
			fmt.Fprintf(out, "%s  %-28s %-9s %s\n", p.ID, p.Profile.Name, p.Author, p.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [persona-id]",
	Short: "Print a stored persona as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Cleanup()

		p, err := c.Personas.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [persona-id]",
	Short: "Delete a stored persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Cleanup()

		if err := c.Personas.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	questionsCmd.Flags().StringVar(&questionsMode, "mode", "basic", "Question set: basic or advanced")
	questionnaireCmd.Flags().StringVar(&questionsMode, "mode", "basic", "Question set: basic or advanced")
	questionnaireCmd.Flags().StringVar(&questionnaireSave, "save", "", "Also write the answers to this file")
	synthesizeCmd.Flags().StringVar(&answersPath, "answers", "", "Answers JSON file (required)")
	synthesizeCmd.MarkFlagRequired("answers")
}

func synthesize(cmd *cobra.Command, answers []domain.Answer) error {
	c, err := loadContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Cleanup()

	ctx, cancel := withTimeout(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Synthesizing persona...")
	p, err := c.Personas.SynthesizeAndCreate(ctx, answers)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created %q (%s)\n  %s\n", p.Profile.Name, p.ID, p.Profile.Tagline)
	return nil
}

// askQuestions hace el recorrido interactivo. Reintenta la misma pregunta si la respuesta no es válida.
func askQuestions(out io.Writer, in *bufio.Reader, questions []domain.Question) ([]domain.Answer, error) {
	var answers []domain.Answer
	for i, q := range questions {
		fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(questions), q.Text)
		switch q.Type {
		case domain.QuestionChoice:
			for j, opt := range q.Options {
				fmt.Fprintf(out, "  %d) %s\n", j+1, opt)
			}
		case domain.QuestionScale:
			fmt.Fprintf(out, "  %d = %s ... %d = %s\n", q.Min, q.MinLabel, q.Max, q.MaxLabel)
		}

		for {
			fmt.Fprint(out, "> ")
			line, err := in.ReadString('\n')
			line = strings.TrimSpace(line)
			if err != nil && line == "" {
				if err == io.EOF {
					return answers, nil
				}
				return nil, err
			}
			if line == "" {
				break
			}
			value, ok := answerFor(q, line)
			if !ok {
				fmt.Fprintln(out, "  Not a valid answer, try again (enter to skip).")
				continue
			}
			answers = append(answers, domain.Answer{QuestionID: q.ID, Value: domain.AnswerValue(value)})
			break
		}
	}
	return answers, nil
}

func answerFor(q domain.Question, line string) (string, bool) {
	switch q.Type {
	case domain.QuestionChoice:
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(q.Options) {
			return "", false
		}
		return q.Options[n-1], true
	case domain.QuestionScale:
		n, err := strconv.Atoi(line)
		if err != nil || n < q.Min || n > q.Max {
			return "", false
		}
		return strconv.Itoa(n), true
	default:
		return line, true
	}
}

// parseAnswers acepta una lista de Answer o un objeto id -> respuesta.
func parseAnswers(data []byte) ([]domain.Answer, error) {
	var list []domain.Answer
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var byID map[string]domain.AnswerValue
	if err := json.Unmarshal(data, &byID); err != nil {
		return nil, fmt.Errorf("%w: answers file must be a list or an object", domain.ErrInvalidInput)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	list = make([]domain.Answer, 0, len(ids))
	for _, id := range ids {
		list = append(list, domain.Answer{QuestionID: id, Value: byID[id]})
	}
	return list, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
