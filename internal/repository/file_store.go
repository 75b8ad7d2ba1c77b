package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"persona-llm/internal/domain"
)

// FilePersonaStore guarda la lista como un único documento JSON. La escritura es atómica (tmp + rename).
type FilePersonaStore struct {
	path string
	mu   sync.Mutex
}

func NewFilePersonaStore(path string) *FilePersonaStore {
	return &FilePersonaStore{path: path}
}

func (s *FilePersonaStore) Load(ctx context.Context) ([]domain.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Persona{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}
	if len(data) == 0 {
		return []domain.Persona{}, nil
	}

	var personas []domain.Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("decode persona file: %w", err)
	}
	if personas == nil {
		personas = []domain.Persona{}
	}
	return personas, nil
}

func (s *FilePersonaStore) Save(ctx context.Context, personas []domain.Persona) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if personas == nil {
		personas = []domain.Persona{}
	}
	data, err := json.MarshalIndent(personas, "", "  ")
	if err != nil {
		return fmt.Errorf("encode personas: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".personas-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace persona file: %w", err)
	}
	return nil
}
