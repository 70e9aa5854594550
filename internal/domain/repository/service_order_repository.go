package repository

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// ServiceOrderRepository puerto de persistencia para órdenes de servicio.
type ServiceOrderRepository interface {
	// LockContract toma un lock exclusivo por contrato hasta el fin de la tx.
	LockContract(ctx context.Context, contract string) error
	// ListIDsByPrefix devuelve los IDs que empiezan por prefix.
	ListIDsByPrefix(ctx context.Context, prefix string) ([]string, error)
	// Create inserta la OS y completa Number con el secuencial asignado por la BD.
	Create(ctx context.Context, order *entity.ServiceOrder) error
	GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error)
	List(ctx context.Context, limit, offset int) ([]*entity.ServiceOrder, error)
	UpdateStatus(ctx context.Context, id string, status entity.ServiceOrderStatus) error
}
