package entity

import "time"

// Role agrupa permisos; su ID es el propio nombre.
type Role struct {
	ID          string
	Name        string
	Description string
	IsSystem    bool
	Permissions []string
	UserCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission es un token opaco recurso:acción (ej. "OS:CREATE").
type Permission struct {
	ID          string
	Description string
}
