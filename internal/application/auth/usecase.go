package auth

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

type userFinder interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// Auditor rastro de auditoría.
type Auditor interface {
	Log(ctx context.Context, e audit.Entry)
}

// AuthUseCase login con email/password.
type AuthUseCase struct {
	users  userFinder
	audit  Auditor
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users userFinder, auditor Auditor, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{users: users, audit: auditor, jwtCfg: jwtCfg}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email desconocido y password incorrecto responden igual (ErrUnauthorized); usuario inactivo → Forbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, ip string) (*dto.LoginResponse, error) {
	in.Email = entity.NormalizeEmail(in.Email)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	email := in.Email
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.failure(ctx, entity.ActorAnonymous, email, ip, "usuario inexistente")
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.failure(ctx, user.ID, email, ip, "password incorrecto")
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		uc.failure(ctx, user.ID, email, ip, "usuario inactivo")
		return nil, domain.Kinded(domain.ErrForbidden, "usuario inactivo")
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, jwt.Subject{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  user.Roles,
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, audit.Entry{
		Event:    entity.EventLoginSuccess,
		ActorID:  user.ID,
		TargetID: user.ID,
		IP:       ip,
	})
	return &dto.LoginResponse{
		Token: token,
		User: dto.UserResponse{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Active:     user.Active,
			Roles:      user.Roles,
			Parameters: user.Parameters,
			CreatedAt:  user.CreatedAt,
			UpdatedAt:  user.UpdatedAt,
		},
	}, nil
}

func (uc *AuthUseCase) failure(ctx context.Context, actor, email, ip, reason string) {
	uc.audit.Log(ctx, audit.Entry{
		Event:   entity.EventLoginFailure,
		Level:   entity.AuditWarn,
		ActorID: actor,
		IP:      ip,
		Details: map[string]any{"email": email, "reason": reason},
	})
}
