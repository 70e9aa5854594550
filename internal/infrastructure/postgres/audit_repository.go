package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo tabla append-only audit_events.
type AuditRepo struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta el evento y completa su ID.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEvent) error {
	details, err := json.Marshal(nonNilMap(e.Details))
	if err != nil {
		return errors.Wrap(err, "marshal details")
	}
	query := `
		INSERT INTO audit_events (timestamp, level, event, actor_id, target_id, ip, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err = r.q.QueryRow(ctx, query, e.Timestamp, string(e.Level), string(e.Event), e.ActorID, e.TargetID, e.IP, details).Scan(&e.ID)
	if err != nil {
		return errors.Wrap(err, "insert audit event")
	}
	return nil
}

// List eventos más recientes primero.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditEvent, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, timestamp, level, event, actor_id, target_id, ip, details
		FROM audit_events
		WHERE ($1 = '' OR event = $1) AND ($2 = '' OR actor_id = $2)
		ORDER BY timestamp DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, string(f.Event), f.ActorID, limit, f.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list audit events")
	}
	defer rows.Close()
	var list []*entity.AuditEvent
	for rows.Next() {
		var e entity.AuditEvent
		var level, event string
		var details []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &level, &event, &e.ActorID, &e.TargetID, &e.IP, &details); err != nil {
			return nil, errors.Wrap(err, "scan audit event")
		}
		e.Level = entity.AuditLevel(level)
		e.Event = entity.AuditEventKind(event)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, errors.Wrap(err, "unmarshal details")
			}
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
