package di

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"persona-llm/internal/codec"
	"persona-llm/internal/config"
	"persona-llm/internal/db"
	"persona-llm/internal/llm"
	"persona-llm/internal/repository"
	"persona-llm/internal/service"
)

// Container agrupa las dependencias compartidas por la API y el CLI.
type Container struct {
	Personas *service.PersonaService
	Sessions *service.SessionRegistry
	JWT      *service.JWTService
	Limiter  service.RequestLimiter
	Store    repository.PersonaStore

	redis *redis.Client
	pool  *pgxpool.Pool
}

// Cleanup cierra las conexiones abiertas.
func (c *Container) Cleanup() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}

// BuildContainer arma proveedor LLM, store, servicios y auth según la configuración.
func BuildContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{}

	if cfg.RedisAddr != "" {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.redis.Ping(ctxPing).Err()
		cancel()
		if err != nil {
			if cfg.PersonaStore == "redis" {
				c.Cleanup()
				return nil, fmt.Errorf("redis ping: %w", err)
			}
			logger.Warn("redis ping failed, using in-memory limiter and token store", zap.Error(err))
			_ = c.redis.Close()
			c.redis = nil
		}
	}

	store, err := c.buildStore(ctx, cfg)
	if err != nil {
		c.Cleanup()
		return nil, err
	}
	c.Store = store

	provider, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	retry := llm.RetryPolicy{
		MaxAttempts: cfg.LLMMaxAttempts,
		BaseDelay:   time.Duration(cfg.LLMBaseDelayMS) * time.Millisecond,
		Logger:      logger,
	}
	structured := llm.NewStructuredClient(provider, logger)
	synth := service.NewPersonaSynthesizer(structured, retry, cfg.LLMModel, logger)
	exporter := service.NewExportService(codec.NewPasswordCodec(), logger)
	c.Personas = service.NewPersonaService(store, synth, exporter, logger)

	orch := service.NewChatOrchestrator(structured, synth, service.ChatConfig{
		Model:         cfg.LLMChatModel,
		ContextWindow: cfg.ChatContextWindow,
		Retry:         retry,
	}, logger)
	c.Sessions, err = service.NewSessionRegistry(orch, cfg.ChatMaxSessions, logger)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	var tokenStore service.RevokedTokenStore
	if c.redis != nil {
		tokenStore = service.NewRedisRevokedTokenStore(c.redis)
		c.Limiter = service.NewRedisRequestLimiter(c.redis, time.Minute, cfg.RateLimitPerMinute)
	} else {
		c.Limiter = service.NewMemoryRequestLimiter(time.Minute, cfg.RateLimitPerMinute)
	}
	if cfg.RateLimitPerMinute <= 0 {
		c.Limiter = nil
	}
	c.JWT = service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		tokenStore,
	)
	return c, nil
}

func (c *Container) buildStore(ctx context.Context, cfg *config.Config) (repository.PersonaStore, error) {
	switch cfg.PersonaStore {
	case "memory":
		return repository.NewMemoryPersonaStore(), nil
	case "redis":
		return repository.NewRedisPersonaStore(c.redis, cfg.PersonaRedisKey), nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		c.pool = pool
		if err := db.Ping(ctx, pool); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		return repository.NewPgPersonaRepository(pool), nil
	default:
		return repository.NewFilePersonaStore(cfg.PersonaStorePath), nil
	}
}

func buildProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.LLMClient, error) {
	switch cfg.LLMProvider {
	case "openai":
		return llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger), nil
	case "mock":
		logger.Warn("using offline mock provider, generated content is canned")
		return NewOfflineClient(), nil
	default:
		client, err := llm.NewGenAIClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, logger)
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		return client, nil
	}
}
