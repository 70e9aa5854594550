package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo copia local del registro de clientes.
type ClientRepo struct {
	q Querier
}

func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `document, code, name, trade_name, email, payload, synced_at`

func (r *ClientRepo) GetByDocument(ctx context.Context, document string) (*entity.RegistryClient, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM registry_clients WHERE document = $1`, document))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get registry client")
	}
	return c, nil
}

// Search por nombre/nombre comercial (ILIKE) o prefijo de documento.
func (r *ClientRepo) Search(ctx context.Context, term string, limit int) ([]*entity.RegistryClient, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + clientColumns + ` FROM registry_clients
		WHERE name ILIKE '%' || $1 || '%' OR trade_name ILIKE '%' || $1 || '%' OR ($2 <> '' AND starts_with(document, $2))
		ORDER BY name LIMIT $3`
	rows, err := r.q.Query(ctx, query, term, documentTerm(term), limit)
	if err != nil {
		return nil, errors.Wrap(err, "search registry clients")
	}
	defer rows.Close()
	var list []*entity.RegistryClient
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan registry client")
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *ClientRepo) Upsert(ctx context.Context, c *entity.RegistryClient) error {
	payload, err := json.Marshal(nonNilMap(c.Payload))
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}
	query := `
		INSERT INTO registry_clients (document, code, name, trade_name, email, payload, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (document) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name, trade_name = EXCLUDED.trade_name,
			email = EXCLUDED.email, payload = EXCLUDED.payload, synced_at = EXCLUDED.synced_at`
	if _, err := r.q.Exec(ctx, query, c.Document, c.Code, c.Name, c.TradeName, c.Email, payload, c.SyncedAt); err != nil {
		return errors.Wrap(err, "upsert registry client")
	}
	return nil
}

// documentTerm solo dígitos; con menos de 3 no se busca por documento.
func documentTerm(term string) string {
	digits := make([]rune, 0, len(term))
	for _, r := range term {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 3 {
		return ""
	}
	return string(digits)
}

func scanClient(row rowScanner) (*entity.RegistryClient, error) {
	var c entity.RegistryClient
	var payload []byte
	if err := row.Scan(&c.Document, &c.Code, &c.Name, &c.TradeName, &c.Email, &payload, &c.SyncedAt); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &c.Payload); err != nil {
			return nil, errors.Wrap(err, "unmarshal payload")
		}
	}
	return &c, nil
}
