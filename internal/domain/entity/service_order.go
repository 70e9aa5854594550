package entity

import (
	"strings"
	"time"
)

// ServiceOrderStatus estado de la OS; avanza solo hacia adelante.
type ServiceOrderStatus string

const (
	ServiceOrderOpen       ServiceOrderStatus = "OPEN"
	ServiceOrderInProgress ServiceOrderStatus = "IN_PROGRESS"
	ServiceOrderCompleted  ServiceOrderStatus = "COMPLETED"
	ServiceOrderCancelled  ServiceOrderStatus = "CANCELLED"
)

// Terminal informa si el estado ya no admite transiciones.
func (s ServiceOrderStatus) Terminal() bool {
	return s == ServiceOrderCompleted || s == ServiceOrderCancelled
}

// CanTransitionTo aplica la máquina de estados monotónica OPEN → IN_PROGRESS → COMPLETED (CANCELLED terminal).
// Repetir el estado actual no es una transición.
func (s ServiceOrderStatus) CanTransitionTo(next ServiceOrderStatus) bool {
	switch s {
	case ServiceOrderOpen:
		return next == ServiceOrderInProgress || next == ServiceOrderCompleted || next == ServiceOrderCancelled
	case ServiceOrderInProgress:
		return next == ServiceOrderCompleted || next == ServiceOrderCancelled
	}
	return false
}

// Priority prioridad compartida por OS y pendencias.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// NormalizePriority acepta las variantes que envían los integradores (alta/ALTA/HIGH...);
// cualquier otro valor se trata como MEDIUM.
func NormalizePriority(raw string) Priority {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ALTA", "HIGH":
		return PriorityHigh
	case "BAIXA", "BAJA", "LOW":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// ClientSnapshot copia de los datos del cliente al momento de abrir la OS.
type ClientSnapshot struct {
	Name     string `json:"name"`
	Code     int64  `json:"code"`
	Document string `json:"document"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
	Contract string `json:"contract,omitempty"`
}

// ServiceOrder orden de servicio. ID es inmutable: "{contrato}-{n}" o UUID.
type ServiceOrder struct {
	ID            string
	Number        int64 // secuencial global asignado por la BD
	Contract      string
	Client        ClientSnapshot
	Description   string
	Priority      Priority
	Status        ServiceOrderStatus
	ScheduledDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayID identificador para humanos: el ID de contrato si existe, si no el número secuencial.
func (o *ServiceOrder) DisplayID() string {
	if o.Contract != "" {
		return o.ID
	}
	return formatInt(o.Number)
}
