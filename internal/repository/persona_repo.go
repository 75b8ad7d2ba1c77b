package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"persona-llm/internal/domain"
)

// PgPersonaRepository guarda la lista en Postgres: una fila por persona, con la posición y el perfil en jsonb.
type PgPersonaRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonaRepository(pool *pgxpool.Pool) *PgPersonaRepository {
	return &PgPersonaRepository{pool: pool}
}

func (r *PgPersonaRepository) Load(ctx context.Context) ([]domain.Persona, error) {
	const query = `
		SELECT id, profile, created_at, author, is_public
		FROM personas
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query personas: %w", err)
	}
	defer rows.Close()

	personas := []domain.Persona{}
	for rows.Next() {
		var (
			p          domain.Persona
			rawProfile []byte
			author     string
		)
		if err := rows.Scan(&p.ID, &rawProfile, &p.CreatedAt, &author, &p.IsPublic); err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		if err := json.Unmarshal(rawProfile, &p.Profile); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", p.ID, err)
		}
		p.Author = domain.Author(author)
		personas = append(personas, p)
	}
	return personas, rows.Err()
}

// Save reemplaza la lista completa dentro de una transacción.
func (r *PgPersonaRepository) Save(ctx context.Context, personas []domain.Persona) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM personas`); err != nil {
		return fmt.Errorf("clear personas: %w", err)
	}

	const insert = `
		INSERT INTO personas (id, position, profile, created_at, author, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	batch := &pgx.Batch{}
	for i, p := range personas {
		profile, err := json.Marshal(p.Profile)
		if err != nil {
			return fmt.Errorf("encode profile %s: %w", p.ID, err)
		}
		batch.Queue(insert, p.ID, i, profile, p.CreatedAt, string(p.Author), p.IsPublic)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert personas: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit personas: %w", err)
	}
	return nil
}
