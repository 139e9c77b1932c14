package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dutch-verb-trainer/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// VerbLoader loads verb JSONB from Postgres.
type VerbLoader struct {
	pool *pgxpool.Pool
}

func NewVerbLoader(pool *pgxpool.Pool) *VerbLoader {
	return &VerbLoader{pool: pool}
}

func (l *VerbLoader) LoadVerb(ctx context.Context, infinitive string) (domain.Verb, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM verbs WHERE infinitive=$1`, infinitive).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Verb{}, domain.ErrVerbNotFound
	}
	if err != nil {
		return domain.Verb{}, fmt.Errorf("load verb: %w", err)
	}
	var forms domain.TenseForms
	if err := json.Unmarshal(raw, &forms); err != nil {
		return domain.Verb{}, fmt.Errorf("unmarshal verb: %w", err)
	}
	return domain.Verb{Infinitive: infinitive, Forms: forms}, nil
}

func (l *VerbLoader) ListInfinitives(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT infinitive FROM verbs ORDER BY infinitive`)
	if err != nil {
		return nil, fmt.Errorf("list verbs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var inf string
		if err := rows.Scan(&inf); err != nil {
			return nil, err
		}
		out = append(out, inf)
	}
	return out, rows.Err()
}
