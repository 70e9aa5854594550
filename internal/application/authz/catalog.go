package authz

import (
	"context"
	"slices"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// PermissionReader lee role_permissions; se consulta en cada decisión.
type PermissionReader interface {
	PermissionsForRoles(ctx context.Context, roles []string) ([]string, error)
}

// Auditor destino de los eventos ACCESS_DENIED.
type Auditor interface {
	Log(ctx context.Context, e audit.Entry)
}

// DenialMetrics contador opcional de denegaciones.
type DenialMetrics interface {
	ObserveAccessDenied(permission string)
}

// Catalog decide si una identidad posee un permiso (unión de permisos de todos sus papeles).
type Catalog struct {
	perms   PermissionReader
	audit   Auditor
	metrics DenialMetrics
}

// NewCatalog construye el catálogo. metrics puede ser nil.
func NewCatalog(perms PermissionReader, auditor Auditor, metrics DenialMetrics) *Catalog {
	return &Catalog{perms: perms, audit: auditor, metrics: metrics}
}

// HasPermission sin papeles nunca autoriza y no consulta el almacenamiento.
func (c *Catalog) HasPermission(ctx context.Context, id Identity, permission string) (bool, error) {
	if len(id.Roles) == 0 {
		return false, nil
	}
	granted, err := c.perms.PermissionsForRoles(ctx, id.Roles)
	if err != nil {
		return false, err
	}
	return slices.Contains(granted, permission), nil
}

// AssertPermission devuelve *domain.PermissionError (ErrForbidden) y audita la denegación.
func (c *Catalog) AssertPermission(ctx context.Context, id Identity, permission string) error {
	ok, err := c.HasPermission(ctx, id, permission)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.Deny(ctx, id, permission, "")
}

// Deny registra ACCESS_DENIED para una decisión tomada fuera del catálogo (ej. otorgar ADMIN sin serlo).
func (c *Catalog) Deny(ctx context.Context, id Identity, permission, reason string) error {
	details := map[string]any{"permission": permission}
	if reason != "" {
		details["reason"] = reason
	}
	if c.metrics != nil {
		c.metrics.ObserveAccessDenied(permission)
	}
	if c.audit != nil {
		c.audit.Log(ctx, audit.Entry{
			Event:   entity.EventAccessDenied,
			Level:   entity.AuditWarn,
			ActorID: actorOf(id),
			IP:      id.SourceIP,
			Details: details,
		})
	}
	return domain.Forbidden(permission, reason)
}

func actorOf(id Identity) string {
	if id.UserID == "" {
		return entity.ActorAnonymous
	}
	return id.UserID
}
