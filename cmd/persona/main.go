package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"persona-llm/internal/config"
	"persona-llm/internal/di"
)

var (
	verbose bool
	timeout time.Duration
	logger  = zap.NewNop()
	stdin   = bufio.NewReader(os.Stdin)
)

var rootCmd = &cobra.Command{
	Use:   "persona",
	Short: "Synthesize, chat with, and share abstract personas",
	Long: `persona builds an abstract persona from a questionnaire using a language model,
lets you chat with it, refine it from its own replies, and move it between machines
as a plain or password-protected JSON file.

Configuration comes from the environment (or a .env file): LLM_PROVIDER, LLM_API_KEY,
PERSONA_STORE, PERSONA_STORE_PATH, REDIS_ADDR, DATABASE_URL, JWT_SECRET.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		if verbose {
			if l, err := zap.NewDevelopment(); err == nil {
				logger = l
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout for each model operation")

	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(questionnaireCmd)
	rootCmd.AddCommand(synthesizeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadContainer lee la configuración y arma los servicios. Quien llama hace Cleanup.
func loadContainer(ctx context.Context) (*di.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return di.BuildContainer(ctx, cfg, logger)
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
