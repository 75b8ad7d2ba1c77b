package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"persona-llm/internal/domain"
)

const DefaultRedisPersonaKey = "persona:list:v1"

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisPersonaStore guarda la lista completa bajo una sola clave, sin expiración.
type RedisPersonaStore struct {
	client  redisKV
	key     string
	timeout time.Duration
}

func NewRedisPersonaStore(client *redis.Client, key string) *RedisPersonaStore {
	if key == "" {
		key = DefaultRedisPersonaKey
	}
	return &RedisPersonaStore{client: client, key: key, timeout: 2 * time.Second}
}

func (s *RedisPersonaStore) Load(ctx context.Context) ([]domain.Persona, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Persona{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get personas: %w", err)
	}

	var personas []domain.Persona
	if err := json.Unmarshal(raw, &personas); err != nil {
		return nil, fmt.Errorf("decode personas: %w", err)
	}
	if personas == nil {
		personas = []domain.Persona{}
	}
	return personas, nil
}

func (s *RedisPersonaStore) Save(ctx context.Context, personas []domain.Persona) error {
	if personas == nil {
		personas = []domain.Persona{}
	}
	data, err := json.Marshal(personas)
	if err != nil {
		return fmt.Errorf("encode personas: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set personas: %w", err)
	}
	return nil
}
