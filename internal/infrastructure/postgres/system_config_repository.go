package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var _ repository.SystemConfigRepository = (*SystemConfigRepo)(nil)

// SystemConfigRepo fila única (id = 1) de system_config.
type SystemConfigRepo struct {
	q Querier
}

func NewSystemConfigRepository(q Querier) *SystemConfigRepo {
	return &SystemConfigRepo{q: q}
}

func (r *SystemConfigRepo) Get(ctx context.Context) (*entity.SystemConfig, error) {
	var raw []byte
	cfg := &entity.SystemConfig{}
	err := r.q.QueryRow(ctx, `SELECT config, updated_at FROM system_config WHERE id = 1`).Scan(&raw, &cfg.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get system config")
	}
	if err := json.Unmarshal(raw, &cfg.Values); err != nil {
		return nil, errors.Wrap(err, "unmarshal system config")
	}
	return cfg, nil
}

// Save upsert de la fila única.
func (r *SystemConfigRepo) Save(ctx context.Context, cfg *entity.SystemConfig) error {
	raw, err := json.Marshal(nonNilMap(cfg.Values))
	if err != nil {
		return errors.Wrap(err, "marshal system config")
	}
	query := `
		INSERT INTO system_config (id, config, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, raw, cfg.UpdatedAt); err != nil {
		return errors.Wrap(err, "save system config")
	}
	return nil
}
