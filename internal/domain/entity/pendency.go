package entity

import (
	"strconv"
	"time"
)

// PendencyStatus estado de la pendencia.
type PendencyStatus string

const (
	PendencyPending                 PendencyStatus = "PENDING"
	PendencyInProgress              PendencyStatus = "IN_PROGRESS"
	PendencyCompleted               PendencyStatus = "COMPLETED"
	PendencyClosedWithoutCompletion PendencyStatus = "CLOSED_WITHOUT_COMPLETION"
)

// Valid informa si el estado es conocido.
func (s PendencyStatus) Valid() bool {
	switch s {
	case PendencyPending, PendencyInProgress, PendencyCompleted, PendencyClosedWithoutCompletion:
		return true
	}
	return false
}

// Terminal informa si el estado cierra la pendencia.
func (s PendencyStatus) Terminal() bool {
	return s == PendencyCompleted || s == PendencyClosedWithoutCompletion
}

// CanTransitionTo PENDING → IN_PROGRESS → {COMPLETED | CLOSED_WITHOUT_COMPLETION}; PENDING puede cerrarse directo.
func (s PendencyStatus) CanTransitionTo(next PendencyStatus) bool {
	if !next.Valid() || s == next {
		return false
	}
	switch s {
	case PendencyPending:
		return true
	case PendencyInProgress:
		return next.Terminal()
	}
	return false
}

// ServiceOrderStatus estado de OS que provoca la pendencia de origen OS al llegar a este estado.
func (s PendencyStatus) ServiceOrderStatus() (ServiceOrderStatus, bool) {
	switch s {
	case PendencyInProgress:
		return ServiceOrderInProgress, true
	case PendencyCompleted:
		return ServiceOrderCompleted, true
	case PendencyClosedWithoutCompletion:
		return ServiceOrderCancelled, true
	}
	return "", false
}

// PendencyType naturaleza del trabajo.
type PendencyType string

const (
	PendencyTypeTask     PendencyType = "TASK"
	PendencyTypeIncident PendencyType = "INCIDENT"
	PendencyTypeRequest  PendencyType = "REQUEST"
	PendencyTypeOS       PendencyType = "OS"
)

// Valid informa si el tipo es conocido.
func (t PendencyType) Valid() bool {
	switch t {
	case PendencyTypeTask, PendencyTypeIncident, PendencyTypeRequest, PendencyTypeOS:
		return true
	}
	return false
}

// OriginType de dónde nació la pendencia.
type OriginType string

const (
	OriginManual OriginType = "MANUAL"
	OriginOS     OriginType = "OS"
)

// ConclusionType motivo de cierre.
type ConclusionType string

const (
	ConclusionCompleted    ConclusionType = "COMPLETED"
	ConclusionNoCompletion ConclusionType = "NO_COMPLETION"
)

// ParseConclusionType devuelve nil para cualquier valor distinto de COMPLETED/NO_COMPLETION.
func ParseConclusionType(raw string) *ConclusionType {
	switch ConclusionType(raw) {
	case ConclusionCompleted:
		c := ConclusionCompleted
		return &c
	case ConclusionNoCompletion:
		c := ConclusionNoCompletion
		return &c
	}
	return nil
}

// Pendency ítem de trabajo interno.
type Pendency struct {
	ID                  string
	Title               string
	Description         string
	Type                PendencyType
	Status              PendencyStatus
	Priority            Priority
	OriginType          OriginType
	OriginOSID          *string
	CreatedBy           string
	ResponsibleID       *string
	ResponsibleSectorID *string
	ConclusionText      string
	ConclusionType      *ConclusionType
	DueDate             *time.Time
	CompletedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsInvolved informa si el usuario creó la pendencia o es su responsable.
func (p *Pendency) IsInvolved(userID string) bool {
	if userID == "" {
		return false
	}
	return p.CreatedBy == userID || (p.ResponsibleID != nil && *p.ResponsibleID == userID)
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }
