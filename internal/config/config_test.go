package config

import (
	"strings"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "k")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLMProvider != "gemini" || cfg.PersonaStore != "file" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ChatContextWindow != 10 || cfg.LLMMaxAttempts != 3 || cfg.LLMBaseDelayMS != 2000 {
		t.Fatalf("unexpected chat/retry defaults: %+v", cfg)
	}
	if len(cfg.CORSAllowOrigins) != 1 || cfg.CORSAllowOrigins[0] != "*" {
		t.Fatalf("unexpected cors default: %v", cfg.CORSAllowOrigins)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "provider desconocido", env: map[string]string{"LLM_PROVIDER": "claude", "LLM_API_KEY": "k"}, wantErr: "LLM_PROVIDER"},
		{name: "sin api key", env: map[string]string{"LLM_PROVIDER": "openai"}, wantErr: "LLM_API_KEY"},
		{name: "redis sin addr", env: map[string]string{"LLM_PROVIDER": "mock", "PERSONA_STORE": "redis"}, wantErr: "REDIS_ADDR"},
		{name: "postgres sin url", env: map[string]string{"LLM_PROVIDER": "mock", "PERSONA_STORE": "postgres"}, wantErr: "DATABASE_URL"},
		{name: "store desconocido", env: map[string]string{"LLM_PROVIDER": "mock", "PERSONA_STORE": "s3"}, wantErr: "PERSONA_STORE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LLM_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_NormalizesCase(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " Mock ")
	t.Setenv("PERSONA_STORE", "MEMORY")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLMProvider != "mock" || cfg.PersonaStore != "memory" {
		t.Fatalf("expected normalized values, got %q %q", cfg.LLMProvider, cfg.PersonaStore)
	}
}

func TestParse_SkipsValidation(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTSecret != "s" || len(cfg.CORSAllowOrigins) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
