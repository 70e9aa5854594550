package entity

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Papeles distinguidos de los que dependen invariantes del núcleo.
const (
	RoleAdmin  = "ADMIN"
	RoleSystem = "SYSTEM" // integración de sistemas externos (API key)
)

// SystemIntegrationUserID es el actorId de la identidad de integración; no existe como fila en users.
const SystemIntegrationUserID = "system-integration"

// User representa un usuario del sistema.
type User struct {
	ID           string
	Name         string
	Email        string // siempre normalizado con NormalizeEmail
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Active       bool
	Parameters   map[string]any // preferencias personales libres
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole informa si el usuario posee el papel indicado.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsActiveAdmin informa si el usuario cuenta para el invariante de último administrador.
func (u *User) IsActiveAdmin() bool {
	return u.Active && u.HasRole(RoleAdmin)
}

// NormalizeEmail recorta y aplica case folding para que la unicidad no distinga mayúsculas.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
