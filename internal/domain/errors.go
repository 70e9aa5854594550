package domain

import (
	"errors"
	"fmt"
)

// Categorías de error de dominio (sin dependencias externas). La capa HTTP las traduce a códigos de estado.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvariantViolation  = errors.New("invariante del sistema violada")
	ErrUpstreamUnavailable = errors.New("servicio externo no disponible")
)

// Errores específicos; cada uno pertenece a una categoría (errors.Is(ErrLastAdmin, ErrInvariantViolation) == true).
var (
	ErrUserNotFound        = Kinded(ErrNotFound, "usuario no encontrado")
	ErrDuplicateEmail      = Kinded(ErrConflict, "el email ya está registrado")
	ErrLastAdmin           = Kinded(ErrInvariantViolation, "el sistema debe conservar al menos un administrador activo")
	ErrSelfModification    = Kinded(ErrInvariantViolation, "no puede desactivar ni eliminar su propia cuenta")
	ErrEntityInUse         = Kinded(ErrInvariantViolation, "el registro está en uso")
	ErrSystemRoleImmutable = Kinded(ErrInvariantViolation, "los papeles del sistema no pueden renombrarse ni eliminarse")
	ErrInvalidTransition   = Kinded(ErrInvariantViolation, "transición de estado no permitida")
	ErrOrgBindingRequired  = Kinded(ErrForbidden, "es necesario estar vinculado a un cargo y sector")
	ErrUserAlreadyLinked   = Kinded(ErrConflict, "el usuario ya tiene un funcionario vinculado")
	ErrCreatorNotResolved  = Kinded(ErrNotFound, "no fue posible resolver el creador de la pendencia")

	ErrRoleNotFound         = Kinded(ErrNotFound, "papel no encontrado")
	ErrSectorNotFound       = Kinded(ErrNotFound, "sector no encontrado")
	ErrPositionNotFound     = Kinded(ErrNotFound, "cargo no encontrado")
	ErrEmployeeNotFound     = Kinded(ErrNotFound, "funcionario no encontrado")
	ErrServiceOrderNotFound = Kinded(ErrNotFound, "orden de servicio no encontrada")
	ErrPendencyNotFound     = Kinded(ErrNotFound, "pendencia no encontrada")
	ErrClientNotFound       = Kinded(ErrNotFound, "cliente no encontrado")
)

// Error es un error de dominio con categoría. Unwrap devuelve la categoría para errors.Is.
type Error struct {
	kind error
	msg  string
}

// Kinded construye un error de la categoría indicada.
func Kinded(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// InUse devuelve ErrEntityInUse con el detalle de quién referencia el registro.
func InUse(entity, referencedBy string) error {
	return fmt.Errorf("%w: %s referenciado por %s", ErrEntityInUse, entity, referencedBy)
}

// Invalid devuelve ErrInvalidInput con un detalle legible.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// PermissionError indica que la identidad no tiene el permiso requerido.
type PermissionError struct {
	Permission string
	Reason     string
}

func (e *PermissionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "el usuario no posee el permiso: " + e.Permission
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }

// Forbidden construye un PermissionError con mensaje opcional.
func Forbidden(permission, reason string) error {
	return &PermissionError{Permission: permission, Reason: reason}
}
