package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"persona-llm/internal/config"
	"persona-llm/internal/di"
	apihttp "persona-llm/internal/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	container, err := di.BuildContainer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build container", zap.Error(err))
	}
	defer container.Cleanup()

	if !container.JWT.Enabled() {
		logger.Warn("jwt secret not configured, API is open")
	}

	personaHandler := apihttp.NewPersonaHandler(logger, container.Personas, container.Sessions)
	chatHandler := apihttp.NewChatHandler(logger, container.Personas, container.Sessions)
	authHandler := apihttp.NewAuthHandler(logger, container.JWT)
	router := apihttp.NewRouter(logger, apihttp.RouterOptions{
		JWT:          container.JWT,
		Limiter:      container.Limiter,
		AllowOrigins: cfg.CORSAllowOrigins,
	}, personaHandler, chatHandler, authHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("port", cfg.HTTPPort),
			zap.String("provider", cfg.LLMProvider),
			zap.String("store", cfg.PersonaStore),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
