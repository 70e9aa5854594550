package repository

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// SectorRepository puerto de persistencia para sectores.
type SectorRepository interface {
	Create(ctx context.Context, sector *entity.Sector) error
	GetByID(ctx context.Context, id string) (*entity.Sector, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Sector, error)
	Update(ctx context.Context, sector *entity.Sector) error
	Delete(ctx context.Context, id string) error
}

// PositionRepository puerto de persistencia para cargos y sus sectores permitidos.
type PositionRepository interface {
	Create(ctx context.Context, position *entity.Position) error
	GetByID(ctx context.Context, id string) (*entity.Position, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Position, error)
	Update(ctx context.Context, position *entity.Position) error
	ReplaceSectors(ctx context.Context, positionID string, sectorIDs []string) error
	Delete(ctx context.Context, id string) error
}

// EmployeeRepository puerto de persistencia para funcionarios.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Employee, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Employee, error)
	Update(ctx context.Context, employee *entity.Employee) error
	Delete(ctx context.Context, id string) error
	CountBySector(ctx context.Context, sectorID string) (int, error)
	CountByPosition(ctx context.Context, positionID string) (int, error)
}
