package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost costo mínimo aceptado para el hash de contraseñas.
const MinBcryptCost = 10

const (
	reasonGrantAdmin = "solo un administrador puede otorgar o retirar el papel ADMIN"
	reasonAdminOnly  = "solo un administrador puede modificar otros usuarios"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	users      repository.UserRepository
	tx         AdminTxRunner
	authz      Authorizer
	audit      Auditor
	bcryptCost int
	now        func() time.Time
}

// NewUserUseCase construye el caso de uso; bcryptCost por debajo de MinBcryptCost se eleva al mínimo.
func NewUserUseCase(users repository.UserRepository, tx AdminTxRunner, authorizer Authorizer, auditor Auditor, bcryptCost int) *UserUseCase {
	if bcryptCost < MinBcryptCost {
		bcryptCost = MinBcryptCost
	}
	return &UserUseCase{users: users, tx: tx, authz: authorizer, audit: auditor, bcryptCost: bcryptCost, now: time.Now}
}

// Create crea el usuario y sus papeles en una única transacción.
func (uc *UserUseCase) Create(ctx context.Context, caller authz.Identity, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return nil, err
	}
	roles := dedupe(in.Roles)
	if slices.Contains(roles, entity.RoleAdmin) && !caller.IsAdmin() {
		return nil, uc.authz.Deny(ctx, caller, authz.PermUserManage, reasonGrantAdmin)
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, domain.Invalid("la contraseña no puede estar vacía")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        entity.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Active:       active,
		Parameters:   in.Parameters,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.RunAdmin(ctx, func(users repository.UserRepository, rolesRepo repository.RoleRepository, _ repository.EmployeeRepository, _ repository.PendencyRepository) error {
		missing, err := rolesRepo.MissingRoles(ctx, roles)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return domain.Invalid("papeles inexistentes: %s", strings.Join(missing, ", "))
		}
		existing, err := users.GetByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateEmail
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return users.SetRoles(ctx, user.ID, roles)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Log(ctx, entry(caller, audit.Entry{
		Event:    entity.EventUserCreated,
		TargetID: user.ID,
		Details:  map[string]any{"email": user.Email, "roles": roles},
	}))
	return toUserResponse(user), nil
}

// GetByID el propio usuario o USER:MANAGE.
func (uc *UserUseCase) GetByID(ctx context.Context, caller authz.Identity, id string) (*dto.UserResponse, error) {
	if caller.UserID != id {
		if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
			return nil, err
		}
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

// List todos los usuarios (USER:MANAGE).
func (uc *UserUseCase) List(ctx context.Context, caller authz.Identity) ([]*dto.UserResponse, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return nil, err
	}
	users, err := uc.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

// ListSimple usuarios activos para selectores; basta con estar autenticado.
func (uc *UserUseCase) ListSimple(ctx context.Context, _ authz.Identity) ([]*dto.UserSimpleResponse, error) {
	users, err := uc.users.List(ctx, repository.UserFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserSimpleResponse, 0, len(users))
	for _, u := range users {
		out = append(out, &dto.UserSimpleResponse{ID: u.ID, Name: u.Name, Email: u.Email, Roles: u.Roles})
	}
	return out, nil
}

// Update: quien no es ADMIN con USER:MANAGE solo se edita a sí mismo (nombre, contraseña, parámetros).
// Nunca se puede dejar el sistema sin administrador activo.
func (uc *UserUseCase) Update(ctx context.Context, caller authz.Identity, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	isSelf := caller.UserID == id
	canManage, err := uc.authz.HasPermission(ctx, caller, authz.PermUserManage)
	if err != nil {
		return nil, err
	}
	if !canManage || !caller.IsAdmin() {
		if !isSelf {
			return nil, uc.authz.Deny(ctx, caller, authz.PermUserManage, reasonAdminOnly)
		}
		if in.Email != nil || in.Active != nil || in.Roles != nil {
			return nil, uc.authz.Deny(ctx, caller, authz.PermUserManage, "solo puede modificar nombre, contraseña y preferencias propias")
		}
	}
	if isSelf && in.Active != nil && !*in.Active {
		return nil, domain.ErrSelfModification
	}

	var newHash string
	if in.Password != nil {
		if strings.TrimSpace(*in.Password) == "" {
			return nil, domain.Invalid("la contraseña no puede estar vacía")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*in.Password), uc.bcryptCost)
		if err != nil {
			return nil, err
		}
		newHash = string(h)
	}

	var updated *entity.User
	var changes []string
	err = uc.tx.RunAdmin(ctx, func(users repository.UserRepository, roles repository.RoleRepository, _ repository.EmployeeRepository, _ repository.PendencyRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}

		var newRoles []string
		if in.Roles != nil {
			newRoles = dedupe(in.Roles)
			missing, err := roles.MissingRoles(ctx, newRoles)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return domain.Invalid("papeles inexistentes: %s", strings.Join(missing, ", "))
			}
		}

		wasActiveAdmin := user.IsActiveAdmin()
		if in.Name != nil {
			user.Name = strings.TrimSpace(*in.Name)
			changes = append(changes, "name")
		}
		if in.Email != nil {
			email := entity.NormalizeEmail(*in.Email)
			if email != user.Email {
				other, err := users.GetByEmail(ctx, email)
				if err != nil {
					return err
				}
				if other != nil && other.ID != user.ID {
					return domain.ErrDuplicateEmail
				}
				user.Email = email
				changes = append(changes, "email")
			}
		}
		if newHash != "" {
			user.PasswordHash = newHash
			changes = append(changes, "password")
		}
		if in.Active != nil && *in.Active != user.Active {
			user.Active = *in.Active
			changes = append(changes, "active")
		}
		if in.Parameters != nil {
			user.Parameters = in.Parameters
			changes = append(changes, "parameters")
		}
		if in.Roles != nil {
			user.Roles = newRoles
			changes = append(changes, "roles")
		}

		if wasActiveAdmin && !user.IsActiveAdmin() {
			if err := ensureAnotherAdmin(ctx, users, user.ID); err != nil {
				return err
			}
		}

		user.UpdatedAt = uc.now()
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		if in.Roles != nil {
			if err := users.SetRoles(ctx, user.ID, newRoles); err != nil {
				return err
			}
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Log(ctx, entry(caller, audit.Entry{
		Event:    entity.EventUserUpdated,
		TargetID: updated.ID,
		Details:  map[string]any{"changes": changes},
	}))
	return toUserResponse(updated), nil
}

// Delete rechaza la autoeliminación, la baja del último administrador y usuarios aún referenciados.
func (uc *UserUseCase) Delete(ctx context.Context, caller authz.Identity, id string) error {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return err
	}
	if caller.UserID == id {
		return domain.ErrSelfModification
	}
	var email string
	err := uc.tx.RunAdmin(ctx, func(users repository.UserRepository, _ repository.RoleRepository, employees repository.EmployeeRepository, pendencies repository.PendencyRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		email = user.Email
		if user.IsActiveAdmin() {
			if err := ensureAnotherAdmin(ctx, users, user.ID); err != nil {
				return err
			}
		}
		emp, err := employees.GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		if emp != nil {
			return domain.InUse("usuario", "funcionario "+emp.Name)
		}
		n, err := pendencies.CountByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InUse("usuario", "pendencias")
		}
		return users.Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{
		Event:    entity.EventUserDeleted,
		TargetID: id,
		Details:  map[string]any{"email": email},
	}))
	return nil
}

// ensureAnotherAdmin serializa con el advisory lock y exige otro ADMIN activo.
func ensureAnotherAdmin(ctx context.Context, users repository.UserRepository, excludeID string) error {
	if err := users.LockAdminSet(ctx); err != nil {
		return err
	}
	n, err := users.CountActiveAdmins(ctx, excludeID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLastAdmin
	}
	return nil
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &dto.UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Active:     u.Active,
		Roles:      roles,
		Parameters: u.Parameters,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
