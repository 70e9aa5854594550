package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var _ repository.PendencyRepository = (*PendencyRepo)(nil)

// PendencyRepo implementación de PendencyRepository.
type PendencyRepo struct {
	q Querier
}

func NewPendencyRepository(q Querier) *PendencyRepo {
	return &PendencyRepo{q: q}
}

const pendencyColumns = `
	id::text, title, description, type, status, priority, origin_type, origin_os_id, created_by::text,
	responsible_id::text, responsible_sector_id::text, conclusion_text, conclusion_type, due_date, completed_at,
	created_at, updated_at`

func (r *PendencyRepo) Create(ctx context.Context, p *entity.Pendency) error {
	query := `
		INSERT INTO pendencies (id, title, description, type, status, priority, origin_type, origin_os_id, created_by,
			responsible_id, responsible_sector_id, conclusion_text, conclusion_type, due_date, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Title, p.Description, string(p.Type), string(p.Status), string(p.Priority), string(p.OriginType),
		p.OriginOSID, p.CreatedBy, p.ResponsibleID, p.ResponsibleSectorID, p.ConclusionText, conclusionArg(p.ConclusionType),
		p.DueDate, p.CompletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert pendency")
	}
	return nil
}

func (r *PendencyRepo) GetByID(ctx context.Context, id string) (*entity.Pendency, error) {
	return r.getOne(ctx, `SELECT `+pendencyColumns+` FROM pendencies WHERE id::text = $1`, id)
}

func (r *PendencyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Pendency, error) {
	return r.getOne(ctx, `SELECT `+pendencyColumns+` FROM pendencies WHERE id::text = $1 FOR UPDATE`, id)
}

func (r *PendencyRepo) GetByOriginOS(ctx context.Context, osID string) (*entity.Pendency, error) {
	return r.getOne(ctx, `SELECT `+pendencyColumns+` FROM pendencies WHERE origin_os_id = $1`, osID)
}

func (r *PendencyRepo) getOne(ctx context.Context, query, arg string) (*entity.Pendency, error) {
	p, err := scanPendency(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get pendency")
	}
	return p, nil
}

// List aplica visibilidad y filtros; los criterios de visibilidad se combinan con OR.
func (r *PendencyRepo) List(ctx context.Context, f repository.PendencyFilter) ([]*entity.Pendency, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.AllVisible {
		var vis []string
		if f.InvolvedUserID != "" {
			ph := arg(f.InvolvedUserID)
			vis = append(vis, "created_by::text = "+ph, "responsible_id::text = "+ph)
		}
		if f.VisibleSectorID != "" {
			vis = append(vis, "responsible_sector_id::text = "+arg(f.VisibleSectorID))
		}
		if len(vis) == 0 {
			return nil, nil
		}
		where = append(where, "("+strings.Join(vis, " OR ")+")")
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(string(f.Type)))
	}

	query := `SELECT ` + pendencyColumns + ` FROM pendencies`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list pendencies")
	}
	defer rows.Close()
	var list []*entity.Pendency
	for rows.Next() {
		p, err := scanPendency(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan pendency")
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PendencyRepo) Update(ctx context.Context, p *entity.Pendency) error {
	query := `
		UPDATE pendencies SET title = $2, description = $3, status = $4, priority = $5, responsible_id = $6,
			responsible_sector_id = $7, conclusion_text = $8, conclusion_type = $9, due_date = $10,
			completed_at = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Title, p.Description, string(p.Status), string(p.Priority), p.ResponsibleID,
		p.ResponsibleSectorID, p.ConclusionText, conclusionArg(p.ConclusionType), p.DueDate,
		p.CompletedAt, p.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "update pendency")
	}
	return nil
}

func (r *PendencyRepo) CountBySector(ctx context.Context, sectorID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM pendencies WHERE responsible_sector_id::text = $1`, sectorID)
}

func (r *PendencyRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM pendencies WHERE created_by::text = $1 OR responsible_id::text = $1`, userID)
}

func (r *PendencyRepo) CountOpenByResponsible(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `
		SELECT count(*) FROM pendencies
		WHERE responsible_id::text = $1 AND status NOT IN ('COMPLETED', 'CLOSED_WITHOUT_COMPLETION')`, userID)
}

func (r *PendencyRepo) count(ctx context.Context, query, arg string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count pendencies")
	}
	return n, nil
}

func scanPendency(row rowScanner) (*entity.Pendency, error) {
	var p entity.Pendency
	var typ, status, priority, origin string
	var conclusion *string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &typ, &status, &priority, &origin, &p.OriginOSID,
		&p.CreatedBy, &p.ResponsibleID, &p.ResponsibleSectorID, &p.ConclusionText, &conclusion, &p.DueDate,
		&p.CompletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = entity.PendencyType(typ)
	p.Status = entity.PendencyStatus(status)
	p.Priority = entity.Priority(priority)
	p.OriginType = entity.OriginType(origin)
	if conclusion != nil {
		p.ConclusionType = entity.ParseConclusionType(*conclusion)
	}
	return &p, nil
}

func conclusionArg(c *entity.ConclusionType) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}
