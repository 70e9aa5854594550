package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// RoleUseCase administración de papeles (ROLE:MANAGE).
type RoleUseCase struct {
	roles repository.RoleRepository
	tx    AdminTxRunner
	authz Authorizer
	audit Auditor
	now   func() time.Time
}

func NewRoleUseCase(roles repository.RoleRepository, tx AdminTxRunner, authorizer Authorizer, auditor Auditor) *RoleUseCase {
	return &RoleUseCase{roles: roles, tx: tx, authz: authorizer, audit: auditor, now: time.Now}
}

// List papeles con sus permisos y cantidad de usuarios.
func (uc *RoleUseCase) List(ctx context.Context, caller authz.Identity) ([]*dto.RoleResponse, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermRoleManage); err != nil {
		return nil, err
	}
	roles, err := uc.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out, nil
}

// ListPermissions catálogo de permisos existentes.
func (uc *RoleUseCase) ListPermissions(ctx context.Context, caller authz.Identity) ([]*dto.PermissionResponse, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermRoleManage); err != nil {
		return nil, err
	}
	perms, err := uc.roles.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, &dto.PermissionResponse{ID: p.ID, Description: p.Description})
	}
	return out, nil
}

// Create papel no-sistema con su conjunto de permisos.
func (uc *RoleUseCase) Create(ctx context.Context, caller authz.Identity, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermRoleManage); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	perms := dedupe(in.Permissions)
	now := uc.now()
	role := &entity.Role{
		ID:          name,
		Name:        name,
		Description: in.Description,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.tx.RunAdmin(ctx, func(_ repository.UserRepository, roles repository.RoleRepository, _ repository.EmployeeRepository, _ repository.PendencyRepository) error {
		existing, err := roles.GetByID(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Kinded(domain.ErrConflict, "ya existe un papel con ese nombre")
		}
		if err := checkPermissions(ctx, roles, perms); err != nil {
			return err
		}
		if err := roles.Create(ctx, role); err != nil {
			return err
		}
		return roles.ReplacePermissions(ctx, role.ID, perms)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{
		Event:    entity.EventRoleCreated,
		TargetID: role.ID,
		Details:  map[string]any{"permissions": perms},
	}))
	return toRoleResponse(role), nil
}

// Update descripción, renombrado (no para papeles del sistema) y reemplazo del conjunto de permisos.
func (uc *RoleUseCase) Update(ctx context.Context, caller authz.Identity, name string, in dto.UpdateRoleRequest) (*dto.RoleResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermRoleManage); err != nil {
		return nil, err
	}
	var result *entity.Role
	details := map[string]any{}
	err := uc.tx.RunAdmin(ctx, func(_ repository.UserRepository, roles repository.RoleRepository, _ repository.EmployeeRepository, _ repository.PendencyRepository) error {
		role, err := roles.GetByID(ctx, name)
		if err != nil {
			return err
		}
		if role == nil {
			return domain.ErrRoleNotFound
		}
		id := role.ID
		if in.Name != nil {
			newName := strings.TrimSpace(*in.Name)
			if newName != role.ID {
				if role.IsSystem {
					return domain.ErrSystemRoleImmutable
				}
				if err := roles.Rename(ctx, role.ID, newName); err != nil {
					return err
				}
				details["renamed_from"] = role.ID
				id = newName
			}
		}
		if in.Description != nil {
			role.ID = id
			role.Description = *in.Description
			role.UpdatedAt = uc.now()
			if err := roles.Update(ctx, role); err != nil {
				return err
			}
		}
		if in.Permissions != nil {
			perms := dedupe(in.Permissions)
			if err := checkPermissions(ctx, roles, perms); err != nil {
				return err
			}
			if err := roles.ReplacePermissions(ctx, id, perms); err != nil {
				return err
			}
			details["permissions"] = perms
		}
		result, err = roles.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{
		Event:    entity.EventRoleUpdated,
		TargetID: result.ID,
		Details:  details,
	}))
	return toRoleResponse(result), nil
}

// Delete rechaza papeles del sistema y papeles asignados a usuarios.
func (uc *RoleUseCase) Delete(ctx context.Context, caller authz.Identity, name string) error {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermRoleManage); err != nil {
		return err
	}
	err := uc.tx.RunAdmin(ctx, func(_ repository.UserRepository, roles repository.RoleRepository, _ repository.EmployeeRepository, _ repository.PendencyRepository) error {
		role, err := roles.GetByID(ctx, name)
		if err != nil {
			return err
		}
		if role == nil {
			return domain.ErrRoleNotFound
		}
		if role.IsSystem {
			return domain.ErrSystemRoleImmutable
		}
		if role.UserCount > 0 {
			return domain.InUse("papel "+role.ID, "usuarios")
		}
		return roles.Delete(ctx, role.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventRoleDeleted, TargetID: name}))
	return nil
}

func checkPermissions(ctx context.Context, roles repository.RoleRepository, perms []string) error {
	missing, err := roles.MissingPermissions(ctx, perms)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return domain.Invalid("permisos inexistentes: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toRoleResponse(r *entity.Role) *dto.RoleResponse {
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &dto.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		UserCount:   r.UserCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
