package dto

import "time"

// ListAuditEventsRequest filtros del historial.
type ListAuditEventsRequest struct {
	PageRequest
	Event   string `query:"event"`
	ActorID string `query:"actor_id"`
}

type AuditEventResponse struct {
	ID        int64          `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Event     string         `json:"event"`
	ActorID   string         `json:"actor_id"`
	TargetID  *string        `json:"target_id,omitempty"`
	IP        *string        `json:"ip,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// SystemConfigResponse blob de configuración tal cual.
type SystemConfigResponse struct {
	Values    map[string]any `json:"values"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// UpdateSystemConfigRequest claves a fusionar sobre la configuración actual.
type UpdateSystemConfigRequest struct {
	Values map[string]any `json:"values" validate:"required"`
}

// ClientResponse cliente del registro legado.
type ClientResponse struct {
	Document  string    `json:"document"`
	Code      int64     `json:"code"`
	Name      string    `json:"name"`
	TradeName string    `json:"trade_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	SyncedAt  time.Time `json:"synced_at"`
}
