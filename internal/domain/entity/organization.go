package entity

import "time"

// Scope amplitud de autoridad organizacional que otorga un cargo.
type Scope string

const (
	ScopeIndividual Scope = "INDIVIDUAL"
	ScopeSector     Scope = "SECTOR"
	ScopeGlobal     Scope = "GLOBAL"
)

// Valid informa si el scope es uno de los valores conocidos.
func (s Scope) Valid() bool {
	switch s {
	case ScopeIndividual, ScopeSector, ScopeGlobal:
		return true
	}
	return false
}

// Sector área organizacional.
type Sector struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Position cargo; AllowedSectorIDs limita en qué sectores puede ejercerse.
type Position struct {
	ID               string
	Name             string
	Description      string
	Scope            Scope
	Active           bool
	AllowedSectorIDs []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Employee funcionario. UserID es opcional y único: un usuario respalda como máximo un funcionario.
type Employee struct {
	ID             string
	Name           string
	CorporateEmail string
	SectorID       string
	PositionID     string
	UserID         *string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
