package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var (
	_ repository.SectorRepository   = (*SectorRepo)(nil)
	_ repository.PositionRepository = (*PositionRepo)(nil)
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
)

// SectorRepo implementación de SectorRepository.
type SectorRepo struct {
	q Querier
}

func NewSectorRepository(q Querier) *SectorRepo {
	return &SectorRepo{q: q}
}

func (r *SectorRepo) Create(ctx context.Context, s *entity.Sector) error {
	query := `
		INSERT INTO sectors (id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Description, s.Active, s.CreatedAt, s.UpdatedAt); err != nil {
		return errors.Wrap(err, "insert sector")
	}
	return nil
}

func (r *SectorRepo) GetByID(ctx context.Context, id string) (*entity.Sector, error) {
	query := `SELECT id::text, name, description, active, created_at, updated_at FROM sectors WHERE id::text = $1`
	var s entity.Sector
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get sector")
	}
	return &s, nil
}

func (r *SectorRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Sector, error) {
	query := `
		SELECT id::text, name, description, active, created_at, updated_at
		FROM sectors WHERE ($1 = FALSE OR active) ORDER BY name`
	rows, err := r.q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list sectors")
	}
	defer rows.Close()
	var list []*entity.Sector
	for rows.Next() {
		var s entity.Sector
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan sector")
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *SectorRepo) Update(ctx context.Context, s *entity.Sector) error {
	query := `UPDATE sectors SET name = $2, description = $3, active = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Description, s.Active, s.UpdatedAt); err != nil {
		return errors.Wrap(err, "update sector")
	}
	return nil
}

func (r *SectorRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sectors WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.InUse("sector", "otros registros")
		}
		return errors.Wrap(err, "delete sector")
	}
	return nil
}

// PositionRepo implementación de PositionRepository.
type PositionRepo struct {
	q Querier
}

func NewPositionRepository(q Querier) *PositionRepo {
	return &PositionRepo{q: q}
}

const positionColumns = `
	p.id::text, p.name, p.description, p.scope, p.active, p.created_at, p.updated_at,
	COALESCE((SELECT array_agg(ps.sector_id::text ORDER BY ps.sector_id) FROM position_sectors ps WHERE ps.position_id = p.id), '{}')`

// Create inserta el cargo y su conjunto de sectores permitidos.
func (r *PositionRepo) Create(ctx context.Context, p *entity.Position) error {
	query := `
		INSERT INTO positions (id, name, description, scope, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Description, string(p.Scope), p.Active, p.CreatedAt, p.UpdatedAt); err != nil {
		return errors.Wrap(err, "insert position")
	}
	return r.ReplaceSectors(ctx, p.ID, p.AllowedSectorIDs)
}

func (r *PositionRepo) GetByID(ctx context.Context, id string) (*entity.Position, error) {
	p, err := scanPosition(r.q.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions p WHERE p.id::text = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get position")
	}
	return p, nil
}

func (r *PositionRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Position, error) {
	rows, err := r.q.Query(ctx, `SELECT `+positionColumns+` FROM positions p WHERE ($1 = FALSE OR p.active) ORDER BY p.name`, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list positions")
	}
	defer rows.Close()
	var list []*entity.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan position")
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PositionRepo) Update(ctx context.Context, p *entity.Position) error {
	query := `UPDATE positions SET name = $2, description = $3, scope = $4, active = $5, updated_at = $6 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Description, string(p.Scope), p.Active, p.UpdatedAt); err != nil {
		return errors.Wrap(err, "update position")
	}
	return nil
}

// ReplaceSectors delete-then-insert de position_sectors.
func (r *PositionRepo) ReplaceSectors(ctx context.Context, positionID string, sectorIDs []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM position_sectors WHERE position_id = $1`, positionID); err != nil {
		return errors.Wrap(err, "delete position sectors")
	}
	if len(sectorIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO position_sectors (position_id, sector_id) SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING`,
		positionID, sectorIDs)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("sector inexistente")
		}
		return errors.Wrap(err, "insert position sectors")
	}
	return nil
}

func (r *PositionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.InUse("cargo", "funcionarios")
		}
		return errors.Wrap(err, "delete position")
	}
	return nil
}

func scanPosition(row rowScanner) (*entity.Position, error) {
	var p entity.Position
	var scope string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &scope, &p.Active, &p.CreatedAt, &p.UpdatedAt, &p.AllowedSectorIDs); err != nil {
		return nil, err
	}
	p.Scope = entity.Scope(scope)
	return &p, nil
}

// EmployeeRepo implementación de EmployeeRepository.
type EmployeeRepo struct {
	q Querier
}

func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

const employeeColumns = `id::text, name, corporate_email, sector_id::text, position_id::text, user_id::text, active, created_at, updated_at`

func (r *EmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	query := `
		INSERT INTO employees (id, name, corporate_email, sector_id, position_id, user_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, e.ID, e.Name, e.CorporateEmail, e.SectorID, e.PositionID, e.UserID, e.Active, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyLinked
		}
		return errors.Wrap(err, "insert employee")
	}
	return nil
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id::text = $1`, id)
}

// GetByUserID vínculo organizacional de un usuario.
func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID string) (*entity.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE user_id::text = $1`, userID)
}

func (r *EmployeeRepo) getOne(ctx context.Context, query, arg string) (*entity.Employee, error) {
	e, err := scanEmployee(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get employee")
	}
	return e, nil
}

func (r *EmployeeRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Employee, error) {
	rows, err := r.q.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE ($1 = FALSE OR active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list employees")
	}
	defer rows.Close()
	var list []*entity.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan employee")
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *EmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	query := `
		UPDATE employees SET name = $2, corporate_email = $3, sector_id = $4, position_id = $5, user_id = $6,
			active = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, e.ID, e.Name, e.CorporateEmail, e.SectorID, e.PositionID, e.UserID, e.Active, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyLinked
		}
		return errors.Wrap(err, "update employee")
	}
	return nil
}

func (r *EmployeeRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "delete employee")
	}
	return nil
}

func (r *EmployeeRepo) CountBySector(ctx context.Context, sectorID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM employees WHERE sector_id = $1`, sectorID).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count employees by sector")
	}
	return n, nil
}

func (r *EmployeeRepo) CountByPosition(ctx context.Context, positionID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM employees WHERE position_id = $1`, positionID).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count employees by position")
	}
	return n, nil
}

func scanEmployee(row rowScanner) (*entity.Employee, error) {
	var e entity.Employee
	if err := row.Scan(&e.ID, &e.Name, &e.CorporateEmail, &e.SectorID, &e.PositionID, &e.UserID, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
