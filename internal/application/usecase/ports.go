package usecase

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// Authorizer decisiones de permiso (implementado por authz.Catalog).
type Authorizer interface {
	HasPermission(ctx context.Context, id authz.Identity, permission string) (bool, error)
	AssertPermission(ctx context.Context, id authz.Identity, permission string) error
	Deny(ctx context.Context, id authz.Identity, permission, reason string) error
}

// Auditor rastro de auditoría (implementado por audit.Service).
type Auditor interface {
	Log(ctx context.Context, e audit.Entry)
}

// AdminTxRunner unidad atómica de usuarios y papeles.
type AdminTxRunner interface {
	RunAdmin(ctx context.Context, fn func(
		users repository.UserRepository,
		roles repository.RoleRepository,
		employees repository.EmployeeRepository,
		pendencies repository.PendencyRepository,
	) error) error
}

// OrganizationTxRunner unidad atómica de sectores, cargos y funcionarios.
type OrganizationTxRunner interface {
	RunOrganization(ctx context.Context, fn func(
		sectors repository.SectorRepository,
		positions repository.PositionRepository,
		employees repository.EmployeeRepository,
		pendencies repository.PendencyRepository,
	) error) error
}

func entry(caller authz.Identity, e audit.Entry) audit.Entry {
	if e.ActorID == "" {
		e.ActorID = caller.UserID
	}
	if e.IP == "" {
		e.IP = caller.SourceIP
	}
	return e
}
