package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo papeles, permisos y role_permissions.
type RoleRepo struct {
	q Querier
}

func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

const roleColumns = `
	r.id, r.name, r.description, r.is_system, r.created_at, r.updated_at,
	COALESCE((SELECT array_agg(rp.permission_id ORDER BY rp.permission_id) FROM role_permissions rp WHERE rp.role_id = r.id), '{}'),
	(SELECT count(*) FROM user_roles ur WHERE ur.role_id = r.id)`

// Create persiste el papel; las permisos se escriben con ReplacePermissions.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	query := `
		INSERT INTO roles (id, name, description, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, role.ID, role.Name, role.Description, role.IsSystem, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Kinded(domain.ErrConflict, "ya existe un papel con ese nombre")
		}
		return errors.Wrap(err, "insert role")
	}
	return nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get role")
	}
	return role, nil
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT `+roleColumns+` FROM roles r ORDER BY r.name`)
	if err != nil {
		return nil, errors.Wrap(err, "list roles")
	}
	defer rows.Close()
	var list []*entity.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan role")
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

// Update actualiza descripción y timestamp.
func (r *RoleRepo) Update(ctx context.Context, role *entity.Role) error {
	_, err := r.q.Exec(ctx, `UPDATE roles SET description = $2, updated_at = $3 WHERE id = $1`,
		role.ID, role.Description, role.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "update role")
	}
	return nil
}

func (r *RoleRepo) Rename(ctx context.Context, oldID, newID string) error {
	_, err := r.q.Exec(ctx, `UPDATE roles SET id = $2, name = $2 WHERE id = $1`, oldID, newID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Kinded(domain.ErrConflict, "ya existe un papel con ese nombre")
		}
		return errors.Wrap(err, "rename role")
	}
	return nil
}

// ReplacePermissions delete-then-insert; debe ejecutarse dentro de una tx.
func (r *RoleRepo) ReplacePermissions(ctx context.Context, roleID string, permissions []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return errors.Wrap(err, "delete role permissions")
	}
	if len(permissions) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id) SELECT $1, unnest($2::text[]) ON CONFLICT DO NOTHING`,
		roleID, permissions)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("permiso inexistente")
		}
		return errors.Wrap(err, "insert role permissions")
	}
	return nil
}

func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.InUse("papel", "usuarios")
		}
		return errors.Wrap(err, "delete role")
	}
	return nil
}

// PermissionsForRoles unión de permisos; se consulta en cada llamada.
func (r *RoleRepo) PermissionsForRoles(ctx context.Context, roles []string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT DISTINCT permission_id FROM role_permissions WHERE role_id = ANY($1::text[])`, roles)
	if err != nil {
		return nil, errors.Wrap(err, "permissions for roles")
	}
	defer rows.Close()
	var perms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, errors.Wrap(err, "scan permission")
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *RoleRepo) ListPermissions(ctx context.Context) ([]*entity.Permission, error) {
	rows, err := r.q.Query(ctx, `SELECT id, description FROM permissions ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list permissions")
	}
	defer rows.Close()
	var list []*entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Description); err != nil {
			return nil, errors.Wrap(err, "scan permission")
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *RoleRepo) MissingRoles(ctx context.Context, ids []string) ([]string, error) {
	return r.missing(ctx, "roles", ids)
}

func (r *RoleRepo) MissingPermissions(ctx context.Context, ids []string) ([]string, error) {
	return r.missing(ctx, "permissions", ids)
}

// missing devuelve los ids que no existen en la tabla (nombre de tabla constante, nunca del usuario).
func (r *RoleRepo) missing(ctx context.Context, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT x FROM unnest($1::text[]) AS x WHERE NOT EXISTS (SELECT 1 FROM ` + table + ` t WHERE t.id = x)`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, errors.Wrapf(err, "missing %s", table)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanRole(row rowScanner) (*entity.Role, error) {
	var role entity.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt,
		&role.Permissions, &role.UserCount); err != nil {
		return nil, err
	}
	return &role, nil
}
