package repository

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// RoleRepository puerto de persistencia para papeles y su relación con permisos.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	// Rename cambia el ID/nombre; user_roles y role_permissions siguen por ON UPDATE CASCADE.
	Rename(ctx context.Context, oldID, newID string) error
	ReplacePermissions(ctx context.Context, roleID string, permissions []string) error
	Delete(ctx context.Context, id string) error
	// PermissionsForRoles devuelve la unión de permisos de los papeles dados.
	PermissionsForRoles(ctx context.Context, roles []string) ([]string, error)
	ListPermissions(ctx context.Context) ([]*entity.Permission, error)
	MissingRoles(ctx context.Context, ids []string) ([]string, error)
	MissingPermissions(ctx context.Context, ids []string) ([]string, error)
}
