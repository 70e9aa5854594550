package repository

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// AuditFilter filtros de consulta del historial de auditoría.
type AuditFilter struct {
	Event   entity.AuditEventKind
	ActorID string
	Limit   int
	Offset  int
}

// AuditRepository persistencia append-only de eventos de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditEvent, error)
}

// SystemConfigRepository fila única de configuración global.
type SystemConfigRepository interface {
	// Get devuelve nil, nil si la fila todavía no existe.
	Get(ctx context.Context) (*entity.SystemConfig, error)
	Save(ctx context.Context, cfg *entity.SystemConfig) error
}

// ClientRepository copia local del registro legado de clientes.
type ClientRepository interface {
	GetByDocument(ctx context.Context, document string) (*entity.RegistryClient, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.RegistryClient, error)
	Upsert(ctx context.Context, client *entity.RegistryClient) error
}
