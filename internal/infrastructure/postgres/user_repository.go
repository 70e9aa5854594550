package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// adminSetLockKey clave del advisory lock que serializa los cambios al conjunto de administradores.
const adminSetLockKey = "users:admin-set"

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios (pool o tx).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `
	u.id::text, u.name, u.email, u.password_hash, u.active, u.parameters, u.created_at, u.updated_at,
	COALESCE((SELECT array_agg(ur.role_id ORDER BY ur.role_id) FROM user_roles ur WHERE ur.user_id = u.id), '{}')`

// Create persiste un nuevo usuario (sin papeles; ver SetRoles).
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	params, err := json.Marshal(nonNilMap(user.Parameters))
	if err != nil {
		return errors.Wrap(err, "marshal parameters")
	}
	query := `
		INSERT INTO users (id, name, email, password_hash, active, parameters, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Active, params,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

// GetByID obtiene un usuario por ID con sus papeles.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id::text = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get user by id")
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email ya normalizado.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1 LIMIT 1`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get user by email")
	}
	return u, nil
}

// List lista usuarios ordenados por nombre.
func (r *UserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE ($1 = FALSE OR u.active) ORDER BY u.name`
	rows, err := r.q.Query(ctx, query, filter.ActiveOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Update actualiza datos básicos del usuario (no papeles).
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	params, err := json.Marshal(nonNilMap(user.Parameters))
	if err != nil {
		return errors.Wrap(err, "marshal parameters")
	}
	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, active = $5, parameters = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Active, params, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return errors.Wrap(err, "update user")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetRoles reemplaza los papeles del usuario.
func (r *UserRepo) SetRoles(ctx context.Context, userID string, roles []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "delete user roles")
	}
	if len(roles) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) SELECT $1, unnest($2::text[]) ON CONFLICT DO NOTHING`,
		userID, roles,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("papel inexistente")
		}
		return errors.Wrap(err, "insert user roles")
	}
	return nil
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.InUse("usuario", "otros registros")
		}
		return errors.Wrap(err, "delete user")
	}
	return nil
}

// CountActiveAdmins cuenta administradores activos distintos de excludeID.
func (r *UserRepo) CountActiveAdmins(ctx context.Context, excludeID string) (int, error) {
	query := `
		SELECT count(*) FROM users u
		JOIN user_roles ur ON ur.user_id = u.id AND ur.role_id = $1
		WHERE u.active AND u.id::text <> $2`
	var n int
	if err := r.q.QueryRow(ctx, query, entity.RoleAdmin, excludeID).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count active admins")
	}
	return n, nil
}

// LockAdminSet toma el advisory lock del conjunto de administradores.
func (r *UserRepo) LockAdminSet(ctx context.Context) error {
	if err := advisoryLock(ctx, r.q, adminSetLockKey); err != nil {
		return errors.Wrap(err, "lock admin set")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var params []byte
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Active, &params,
		&u.CreatedAt, &u.UpdatedAt, &u.Roles); err != nil {
		return nil, err
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &u.Parameters); err != nil {
			return nil, errors.Wrap(err, "unmarshal parameters")
		}
	}
	return &u, nil
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
