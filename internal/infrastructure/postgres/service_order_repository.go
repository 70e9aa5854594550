package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

// ServiceOrderRepo implementación de ServiceOrderRepository.
type ServiceOrderRepo struct {
	q Querier
}

func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

const serviceOrderColumns = `id, number, COALESCE(contract, ''), client_data, description, priority, status, scheduled_date, created_at, updated_at`

// LockContract advisory lock por contrato; dos asignaciones del mismo contrato se serializan.
func (r *ServiceOrderRepo) LockContract(ctx context.Context, contract string) error {
	if err := advisoryLock(ctx, r.q, "service_order:"+contract); err != nil {
		return errors.Wrap(err, "lock contract")
	}
	return nil
}

// ListIDsByPrefix ids que empiezan por prefix.
func (r *ServiceOrderRepo) ListIDsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM service_orders WHERE starts_with(id, $1)`, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "list ids by prefix")
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserta la OS; un ID repetido devuelve ErrConflict.
func (r *ServiceOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	client, err := json.Marshal(o.Client)
	if err != nil {
		return errors.Wrap(err, "marshal client")
	}
	query := `
		INSERT INTO service_orders (id, contract, client_data, description, priority, status, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING number`
	err = r.q.QueryRow(ctx, query,
		o.ID, nullIfEmpty(o.Contract), client, o.Description, string(o.Priority), string(o.Status),
		nullTime(o.ScheduledDate), o.CreatedAt, o.UpdatedAt,
	).Scan(&o.Number)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Kinded(domain.ErrConflict, "ya existe una orden de servicio con id "+o.ID)
		}
		return errors.Wrap(err, "insert service order")
	}
	return nil
}

func (r *ServiceOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	o, err := scanServiceOrder(r.q.QueryRow(ctx, `SELECT `+serviceOrderColumns+` FROM service_orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get service order")
	}
	return o, nil
}

func (r *ServiceOrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.ServiceOrder, error) {
	query := `SELECT ` + serviceOrderColumns + ` FROM service_orders ORDER BY number DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list service orders")
	}
	defer rows.Close()
	var list []*entity.ServiceOrder
	for rows.Next() {
		o, err := scanServiceOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan service order")
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *ServiceOrderRepo) UpdateStatus(ctx context.Context, id string, status entity.ServiceOrderStatus) error {
	_, err := r.q.Exec(ctx, `UPDATE service_orders SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return errors.Wrap(err, "update service order status")
	}
	return nil
}

func scanServiceOrder(row rowScanner) (*entity.ServiceOrder, error) {
	var o entity.ServiceOrder
	var client []byte
	var priority, status string
	var scheduled *time.Time
	if err := row.Scan(&o.ID, &o.Number, &o.Contract, &client, &o.Description, &priority, &status,
		&scheduled, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if len(client) > 0 {
		if err := json.Unmarshal(client, &o.Client); err != nil {
			return nil, errors.Wrap(err, "unmarshal client")
		}
	}
	o.Priority = entity.Priority(priority)
	o.Status = entity.ServiceOrderStatus(status)
	if scheduled != nil {
		o.ScheduledDate = *scheduled
	}
	return &o, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
