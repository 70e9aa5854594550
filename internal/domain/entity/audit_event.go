package entity

import "time"

// AuditLevel severidad del evento.
type AuditLevel string

const (
	AuditInfo  AuditLevel = "INFO"
	AuditWarn  AuditLevel = "WARN"
	AuditError AuditLevel = "ERROR"
)

// AuditEventKind tipo de evento de seguridad o negocio.
type AuditEventKind string

const (
	EventLoginSuccess            AuditEventKind = "LOGIN_SUCCESS"
	EventLoginFailure            AuditEventKind = "LOGIN_FAILURE"
	EventAccessDenied            AuditEventKind = "ACCESS_DENIED"
	EventUserCreated             AuditEventKind = "USER_CREATED"
	EventUserUpdated             AuditEventKind = "USER_UPDATED"
	EventUserDeleted             AuditEventKind = "USER_DELETED"
	EventRoleCreated             AuditEventKind = "ROLE_CREATED"
	EventRoleUpdated             AuditEventKind = "ROLE_UPDATED"
	EventRoleDeleted             AuditEventKind = "ROLE_DELETED"
	EventSectorCreated           AuditEventKind = "SECTOR_CREATED"
	EventSectorUpdated           AuditEventKind = "SECTOR_UPDATED"
	EventSectorDeleted           AuditEventKind = "SECTOR_DELETED"
	EventPositionCreated         AuditEventKind = "POSITION_CREATED"
	EventPositionUpdated         AuditEventKind = "POSITION_UPDATED"
	EventPositionDeleted         AuditEventKind = "POSITION_DELETED"
	EventEmployeeCreated         AuditEventKind = "EMPLOYEE_CREATED"
	EventEmployeeUpdated         AuditEventKind = "EMPLOYEE_UPDATED"
	EventEmployeeDeleted         AuditEventKind = "EMPLOYEE_DELETED"
	EventServiceOrderCreated     AuditEventKind = "SERVICE_ORDER_CREATED"
	EventPendencyCreated         AuditEventKind = "PENDENCY_CREATED"
	EventPendencyUpdated         AuditEventKind = "PENDENCY_UPDATED"
	EventPendencyCompleted       AuditEventKind = "PENDENCY_COMPLETED"
	EventPendencyCreateFailed    AuditEventKind = "PENDENCY_CREATE_FAILED"
	EventPendencyCreatorFallback AuditEventKind = "PENDENCY_CREATOR_FALLBACK"
	EventSystemConfigUpdated     AuditEventKind = "SYSTEM_CONFIG_UPDATED"
	EventSystem                  AuditEventKind = "SYSTEM_EVENT"
)

// Actores que no son usuarios (actorId no tiene FK).
const (
	ActorSystem    = "system"
	ActorAnonymous = "anonymous"
)

// AuditEvent registro append-only.
type AuditEvent struct {
	ID        int64
	Timestamp time.Time
	Level     AuditLevel
	Event     AuditEventKind
	ActorID   string
	TargetID  *string
	IP        *string
	Details   map[string]any
}
