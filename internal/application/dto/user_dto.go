package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Name       string         `json:"name" validate:"required,min=1,max=200"`
	Email      string         `json:"email" validate:"required,email"`
	Password   string         `json:"password" validate:"required,min=1"`
	Active     *bool          `json:"active"`
	Roles      []string       `json:"roles" validate:"omitempty,dive,required"`
	Parameters map[string]any `json:"parameters"`
}

// UpdateUserRequest actualización parcial: los campos nil no se tocan.
type UpdateUserRequest struct {
	Name       *string        `json:"name" validate:"omitempty,min=1,max=200"`
	Email      *string        `json:"email" validate:"omitempty,email"`
	Password   *string        `json:"password" validate:"omitempty,min=1"`
	Active     *bool          `json:"active"`
	Roles      []string       `json:"roles" validate:"omitempty,dive,required"`
	Parameters map[string]any `json:"parameters"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Active     bool           `json:"active"`
	Roles      []string       `json:"roles"`
	Parameters map[string]any `json:"parameters,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// UserSimpleResponse listado reducido para selectores (usuarios activos).
type UserSimpleResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT + usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
