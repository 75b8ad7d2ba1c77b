package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMAPIKey         string `env:"LLM_API_KEY"`
	LLMBaseURL        string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel          string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	LLMChatModel      string `env:"LLM_CHAT_MODEL" envDefault:"gemini-flash-lite-latest"`
	LLMMaxAttempts    int    `env:"LLM_MAX_ATTEMPTS" envDefault:"3"`
	LLMBaseDelayMS    int    `env:"LLM_BASE_DELAY_MS" envDefault:"2000"`
	ChatContextWindow int    `env:"CHAT_CONTEXT_WINDOW" envDefault:"10"`
	ChatMaxSessions   int    `env:"CHAT_MAX_SESSIONS" envDefault:"256"`

	PersonaStore     string `env:"PERSONA_STORE" envDefault:"file"`
	PersonaStorePath string `env:"PERSONA_STORE_PATH" envDefault:"data/personas.json"`
	PersonaRedisKey  string `env:"PERSONA_REDIS_KEY" envDefault:"persona:list:v1"`
	DatabaseURL      string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`

	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	CORSAllowOrigins   []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse lee las variables sin validar; lo usan comandos que no tocan el proveedor LLM.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case "gemini", "openai", "mock":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.LLMProvider != "mock" && c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required for provider %s", c.LLMProvider)
	}

	c.PersonaStore = strings.ToLower(strings.TrimSpace(c.PersonaStore))
	switch c.PersonaStore {
	case "memory", "file":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for PERSONA_STORE=redis")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for PERSONA_STORE=postgres")
		}
	default:
		return fmt.Errorf("unsupported PERSONA_STORE %q", c.PersonaStore)
	}
	return nil
}
