package pendency

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

type userReader interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// Creator resultado de resolver quién figura como creador de una pendencia.
type Creator struct {
	ID          string
	DeclaredID  string
	Substituted bool
}

// CreatorResolver exige que el creador sea un usuario activo; si no lo es usa el creador de respaldo configurado.
type CreatorResolver struct {
	users      userReader
	fallbackID string
	audit      Auditor
}

func NewCreatorResolver(users userReader, fallbackID string, auditor Auditor) *CreatorResolver {
	return &CreatorResolver{users: users, fallbackID: fallbackID, audit: auditor}
}

// Resolve sin creador válido ni respaldo registra PENDENCY_CREATE_FAILED y devuelve ErrCreatorNotResolved.
func (r *CreatorResolver) Resolve(ctx context.Context, caller authz.Identity) (Creator, error) {
	ok, err := r.activeUser(ctx, caller.UserID)
	if err != nil {
		return Creator{}, err
	}
	if ok {
		return Creator{ID: caller.UserID, DeclaredID: caller.UserID}, nil
	}
	if r.fallbackID != "" && r.fallbackID != caller.UserID {
		ok, err := r.activeUser(ctx, r.fallbackID)
		if err != nil {
			return Creator{}, err
		}
		if ok {
			return Creator{ID: r.fallbackID, DeclaredID: caller.UserID, Substituted: true}, nil
		}
	}
	r.audit.Log(ctx, audit.Entry{
		Event:   entity.EventPendencyCreateFailed,
		Level:   entity.AuditError,
		ActorID: actorOf(caller),
		IP:      caller.SourceIP,
		Details: map[string]any{"declared_creator": caller.UserID, "reason": domain.ErrCreatorNotResolved.Error()},
	})
	return Creator{}, domain.ErrCreatorNotResolved
}

// AuditSubstitution registra PENDENCY_CREATOR_FALLBACK; se llama después del commit.
func (r *CreatorResolver) AuditSubstitution(ctx context.Context, caller authz.Identity, c Creator, pendencyID string) {
	if !c.Substituted {
		return
	}
	r.audit.Log(ctx, audit.Entry{
		Event:    entity.EventPendencyCreatorFallback,
		Level:    entity.AuditWarn,
		ActorID:  actorOf(caller),
		TargetID: pendencyID,
		IP:       caller.SourceIP,
		Details:  map[string]any{"declared_creator": c.DeclaredID, "substituted_creator": c.ID},
	})
}

func (r *CreatorResolver) activeUser(ctx context.Context, id string) (bool, error) {
	if id == "" || id == entity.SystemIntegrationUserID {
		return false, nil
	}
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil && u.Active, nil
}

func actorOf(id authz.Identity) string {
	if id.UserID == "" {
		return entity.ActorAnonymous
	}
	return id.UserID
}
