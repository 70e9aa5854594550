package repository

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// PendencyFilter filtros de visibilidad y búsqueda. Los campos de visibilidad se combinan con OR;
// si AllVisible es true se ignoran.
type PendencyFilter struct {
	AllVisible      bool
	InvolvedUserID  string // creador o responsable
	VisibleSectorID string // sector responsable
	Status          entity.PendencyStatus
	Type            entity.PendencyType
	Limit           int
	Offset          int
}

// PendencyRepository puerto de persistencia para pendencias.
type PendencyRepository interface {
	Create(ctx context.Context, pendency *entity.Pendency) error
	GetByID(ctx context.Context, id string) (*entity.Pendency, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Pendency, error)
	GetByOriginOS(ctx context.Context, osID string) (*entity.Pendency, error)
	List(ctx context.Context, filter PendencyFilter) ([]*entity.Pendency, error)
	Update(ctx context.Context, pendency *entity.Pendency) error
	CountBySector(ctx context.Context, sectorID string) (int, error)
	// CountByUser cuenta pendencias creadas por el usuario o bajo su responsabilidad.
	CountByUser(ctx context.Context, userID string) (int, error)
	CountOpenByResponsible(ctx context.Context, userID string) (int, error)
}
