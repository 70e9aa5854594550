package repository

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// UserFilter filtros del listado de usuarios.
type UserFilter struct {
	ActiveOnly bool
}

// UserRepository define el puerto de persistencia para User (DIP).
// Los métodos de lectura devuelven (nil, nil) si el usuario no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// SetRoles reemplaza el conjunto de papeles (delete + insert); debe correr dentro de una tx.
	SetRoles(ctx context.Context, userID string, roles []string) error
	Delete(ctx context.Context, id string) error
	// CountActiveAdmins cuenta usuarios activos con ADMIN excluyendo excludeID.
	CountActiveAdmins(ctx context.Context, excludeID string) (int, error)
	// LockAdminSet serializa, hasta el fin de la tx, las operaciones que pueden reducir el conjunto de administradores.
	LockAdminSet(ctx context.Context) error
}
