package pendency

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// TxRunner unidad atómica pendencia + OS de origen.
type TxRunner interface {
	RunWorkflow(ctx context.Context, fn func(
		orders repository.ServiceOrderRepository,
		pendencies repository.PendencyRepository,
	) error) error
}

// Authorizer decisiones de permiso.
type Authorizer interface {
	HasPermission(ctx context.Context, id authz.Identity, permission string) (bool, error)
	AssertPermission(ctx context.Context, id authz.Identity, permission string) error
	Deny(ctx context.Context, id authz.Identity, permission, reason string) error
}

// Auditor rastro de auditoría.
type Auditor interface {
	Log(ctx context.Context, e audit.Entry)
}
