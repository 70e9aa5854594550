package entity

import "time"

// Flags conocidas por la UI; el núcleo las guarda tal cual sin interpretarlas.
const (
	ConfigKanbanEnabled   = "kanbanEnabled"
	ConfigRestrictedMode  = "restrictedMode"
	ConfigMaintenanceMode = "maintenanceMode"
)

// SystemConfig blob clave-valor de fila única.
type SystemConfig struct {
	Values    map[string]any
	UpdatedAt time.Time
}

// DefaultSystemConfig valores iniciales cuando la fila aún no existe.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{Values: map[string]any{
		ConfigKanbanEnabled:   true,
		ConfigRestrictedMode:  false,
		ConfigMaintenanceMode: false,
	}}
}
