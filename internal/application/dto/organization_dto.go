package dto

import "time"

// SectorRequest alta/edición de sector.
type SectorRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=500"`
	Active      *bool  `json:"active"`
}

type SectorResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PositionRequest alta/edición de cargo; Scope vacío = INDIVIDUAL.
type PositionRequest struct {
	Name             string   `json:"name" validate:"required,min=1,max=200"`
	Description      string   `json:"description" validate:"max=500"`
	Scope            string   `json:"scope" validate:"omitempty,oneof=INDIVIDUAL SECTOR GLOBAL"`
	Active           *bool    `json:"active"`
	AllowedSectorIDs []string `json:"allowed_sector_ids" validate:"omitempty,dive,uuid"`
}

type PositionResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Scope            string    `json:"scope"`
	Active           bool      `json:"active"`
	AllowedSectorIDs []string  `json:"allowed_sector_ids"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EmployeeRequest alta/edición de funcionario.
type EmployeeRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	CorporateEmail string  `json:"corporate_email" validate:"omitempty,email"`
	SectorID       string  `json:"sector_id" validate:"required,uuid"`
	PositionID     string  `json:"position_id" validate:"required,uuid"`
	UserID         *string `json:"user_id" validate:"omitempty,uuid"`
	Active         *bool   `json:"active"`
}

type EmployeeResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CorporateEmail string    `json:"corporate_email"`
	SectorID       string    `json:"sector_id"`
	PositionID     string    `json:"position_id"`
	UserID         *string   `json:"user_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ImportEmployeesResult resumen de la importación masiva.
type ImportEmployeesResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
