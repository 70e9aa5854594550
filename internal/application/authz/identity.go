package authz

import (
	"slices"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// OrgBinding vínculo organizacional derivado del funcionario asociado al usuario.
type OrgBinding struct {
	EmployeeID string
	SectorID   string
	PositionID string
	Scope      entity.Scope
}

// Identity contexto del llamador ya autenticado. Es inmutable durante la solicitud.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	Roles    []string
	Binding  *OrgBinding
	SourceIP string
}

// HasRole informa si la identidad trae el papel.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// IsAdmin ADMIN.
func (i Identity) IsAdmin() bool { return i.HasRole(entity.RoleAdmin) }

// IsElevated ADMIN o SYSTEM: ven todo sin vínculo organizacional.
func (i Identity) IsElevated() bool {
	return i.HasRole(entity.RoleAdmin) || i.HasRole(entity.RoleSystem)
}

// SystemIdentity identidad de integración autenticada por API key.
func SystemIdentity(sourceIP string) Identity {
	return Identity{
		UserID:   entity.SystemIntegrationUserID,
		Name:     "Integración de sistemas",
		Roles:    []string{entity.RoleSystem},
		SourceIP: sourceIP,
	}
}
