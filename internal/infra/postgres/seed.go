package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"dutch-verb-trainer/internal/domain"
	"github.com/uptrace/bun"
)

// SeedVerbs upserts every verb into the verbs table in one transaction.
func SeedVerbs(ctx context.Context, db *bun.DB, verbs []domain.Verb) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, v := range verbs {
			data, err := json.Marshal(v.Forms)
			if err != nil {
				return fmt.Errorf("marshal %q: %w", v.Infinitive, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO verbs (infinitive, data) VALUES (?, ?::jsonb) ON CONFLICT (infinitive) DO UPDATE SET data=EXCLUDED.data`,
				v.Infinitive, string(data),
			); err != nil {
				return fmt.Errorf("insert %q: %w", v.Infinitive, err)
			}
		}
		return nil
	})
}
