package authz

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

type userReader interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type employeeReader interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Employee, error)
}

type positionReader interface {
	GetByID(ctx context.Context, id string) (*entity.Position, error)
}

// Resolver reconstruye la Identity a partir del usuario autenticado: papeles y vínculo
// se leen del estado actual, no del token.
type Resolver struct {
	users     userReader
	employees employeeReader
	positions positionReader
}

func NewResolver(users userReader, employees employeeReader, positions positionReader) *Resolver {
	return &Resolver{users: users, employees: employees, positions: positions}
}

// Resolve falla con ErrUnauthorized si el usuario no existe o está inactivo.
func (r *Resolver) Resolve(ctx context.Context, userID, sourceIP string) (Identity, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	if user == nil || !user.Active {
		return Identity{}, domain.Kinded(domain.ErrUnauthorized, "usuario inexistente o inactivo")
	}
	id := Identity{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Roles:    append([]string(nil), user.Roles...),
		SourceIP: sourceIP,
	}
	binding, err := r.binding(ctx, user.ID)
	if err != nil {
		return Identity{}, err
	}
	id.Binding = binding
	return id, nil
}

// binding nil si no hay funcionario activo vinculado o su cargo no existe.
func (r *Resolver) binding(ctx context.Context, userID string) (*OrgBinding, error) {
	emp, err := r.employees.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if emp == nil || !emp.Active {
		return nil, nil
	}
	pos, err := r.positions.GetByID(ctx, emp.PositionID)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, nil
	}
	scope := pos.Scope
	if !scope.Valid() {
		scope = entity.ScopeIndividual
	}
	return &OrgBinding{
		EmployeeID: emp.ID,
		SectorID:   emp.SectorID,
		PositionID: emp.PositionID,
		Scope:      scope,
	}, nil
}
