package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
	"github.com/jhoicas/servicedesk-api/pkg/logger"
)

// OrganizationUseCase sectores, cargos y funcionarios.
type OrganizationUseCase struct {
	sectors   repository.SectorRepository
	positions repository.PositionRepository
	employees repository.EmployeeRepository
	users     repository.UserRepository
	tx        OrganizationTxRunner
	authz     Authorizer
	audit     Auditor
	log       *logger.Logger
	now       func() time.Time
}

func NewOrganizationUseCase(
	sectors repository.SectorRepository,
	positions repository.PositionRepository,
	employees repository.EmployeeRepository,
	users repository.UserRepository,
	tx OrganizationTxRunner,
	authorizer Authorizer,
	auditor Auditor,
	log *logger.Logger,
) *OrganizationUseCase {
	return &OrganizationUseCase{
		sectors: sectors, positions: positions, employees: employees, users: users,
		tx: tx, authz: authorizer, audit: auditor, log: log, now: time.Now,
	}
}

// ── Sectores ─────────────────────────────────────────────────────────────────

func (uc *OrganizationUseCase) ListSectors(ctx context.Context, _ authz.Identity, activeOnly bool) ([]*dto.SectorResponse, error) {
	list, err := uc.sectors.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SectorResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSectorResponse(s))
	}
	return out, nil
}

func (uc *OrganizationUseCase) GetSector(ctx context.Context, _ authz.Identity, id string) (*dto.SectorResponse, error) {
	s, err := uc.sectors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrSectorNotFound
	}
	return toSectorResponse(s), nil
}

func (uc *OrganizationUseCase) CreateSector(ctx context.Context, caller authz.Identity, in dto.SectorRequest) (*dto.SectorResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermSystemConfigure); err != nil {
		return nil, err
	}
	now := uc.now()
	s := &entity.Sector{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Active:      in.Active == nil || *in.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.sectors.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventSectorCreated, TargetID: s.ID, Details: map[string]any{"name": s.Name}}))
	return toSectorResponse(s), nil
}

func (uc *OrganizationUseCase) UpdateSector(ctx context.Context, caller authz.Identity, id string, in dto.SectorRequest) (*dto.SectorResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermSystemConfigure); err != nil {
		return nil, err
	}
	s, err := uc.sectors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrSectorNotFound
	}
	s.Name = strings.TrimSpace(in.Name)
	s.Description = in.Description
	if in.Active != nil {
		s.Active = *in.Active
	}
	s.UpdatedAt = uc.now()
	if err := uc.sectors.Update(ctx, s); err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventSectorUpdated, TargetID: s.ID}))
	return toSectorResponse(s), nil
}

// DeleteSector rechazado mientras funcionarios o pendencias lo referencien.
func (uc *OrganizationUseCase) DeleteSector(ctx context.Context, caller authz.Identity, id string) error {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermSystemConfigure); err != nil {
		return err
	}
	err := uc.tx.RunOrganization(ctx, func(sectors repository.SectorRepository, _ repository.PositionRepository, employees repository.EmployeeRepository, pendencies repository.PendencyRepository) error {
		s, err := sectors.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrSectorNotFound
		}
		n, err := employees.CountBySector(ctx, s.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InUse("sector "+s.Name, fmt.Sprintf("%d funcionario(s)", n))
		}
		n, err = pendencies.CountBySector(ctx, s.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InUse("sector "+s.Name, fmt.Sprintf("%d pendencia(s)", n))
		}
		return sectors.Delete(ctx, s.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventSectorDeleted, TargetID: id}))
	return nil
}

// ── Cargos ───────────────────────────────────────────────────────────────────

func (uc *OrganizationUseCase) ListPositions(ctx context.Context, _ authz.Identity, activeOnly bool) ([]*dto.PositionResponse, error) {
	list, err := uc.positions.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PositionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPositionResponse(p))
	}
	return out, nil
}

func (uc *OrganizationUseCase) GetPosition(ctx context.Context, _ authz.Identity, id string) (*dto.PositionResponse, error) {
	p, err := uc.positions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPositionNotFound
	}
	return toPositionResponse(p), nil
}

// CreatePosition cargo + sectores permitidos en una transacción.
func (uc *OrganizationUseCase) CreatePosition(ctx context.Context, caller authz.Identity, in dto.PositionRequest) (*dto.PositionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermSystemConfigure); err != nil {
		return nil, err
	}
	now := uc.now()
	p := &entity.Position{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Scope:            scopeOrDefault(in.Scope),
		Active:           in.Active == nil || *in.Active,
		AllowedSectorIDs: dedupe(in.AllowedSectorIDs),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := uc.tx.RunOrganization(ctx, func(sectors repository.SectorRepository, positions repository.PositionRepository, _ repository.EmployeeRepository, _ repository.PendencyRepository) error {
		if err := checkSectorsExist(ctx, sectors, p.AllowedSectorIDs); err != nil {
			return err
		}
		return positions.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{
		Event:    entity.EventPositionCreated,
		TargetID: p.ID,
		Details:  map[string]any{"scope": string(p.Scope), "sectors": p.AllowedSectorIDs},
	}))
	return toPositionResponse(p), nil
}

// UpdatePosition reemplaza atómicamente el conjunto de sectores permitidos.
func (uc *OrganizationUseCase) UpdatePosition(ctx context.Context, caller authz.Identity, id string, in dto.PositionRequest) (*dto.PositionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermSystemConfigure); err != nil {
		return nil, err
	}
	var result *entity.Position
	err := uc.tx.RunOrganization(ctx, func(sectors repository.SectorRepository, positions repository.PositionRepository, _ repository.EmployeeRepository, _ repository.PendencyRepository) error {
		p, err := positions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPositionNotFound
		}
		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Scope = scopeOrDefault(in.Scope)
		if in.Active != nil {
			p.Active = *in.Active
		}
		p.AllowedSectorIDs = dedupe(in.AllowedSectorIDs)
		p.UpdatedAt = uc.now()
		if err := checkSectorsExist(ctx, sectors, p.AllowedSectorIDs); err != nil {
			return err
		}
		if err := positions.Update(ctx, p); err != nil {
			return err
		}
		if err := positions.ReplaceSectors(ctx, p.ID, p.AllowedSectorIDs); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventPositionUpdated, TargetID: result.ID}))
	return toPositionResponse(result), nil
}

// DeletePosition rechazado mientras algún funcionario lo ocupe.
func (uc *OrganizationUseCase) DeletePosition(ctx context.Context, caller authz.Identity, id string) error {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermSystemConfigure); err != nil {
		return err
	}
	err := uc.tx.RunOrganization(ctx, func(_ repository.SectorRepository, positions repository.PositionRepository, employees repository.EmployeeRepository, _ repository.PendencyRepository) error {
		p, err := positions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPositionNotFound
		}
		n, err := employees.CountByPosition(ctx, p.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InUse("cargo "+p.Name, fmt.Sprintf("%d funcionario(s)", n))
		}
		return positions.Delete(ctx, p.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventPositionDeleted, TargetID: id}))
	return nil
}

// ── Funcionarios ─────────────────────────────────────────────────────────────

func (uc *OrganizationUseCase) ListEmployees(ctx context.Context, caller authz.Identity, activeOnly bool) ([]*dto.EmployeeResponse, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return nil, err
	}
	list, err := uc.employees.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.EmployeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeResponse(e))
	}
	return out, nil
}

func (uc *OrganizationUseCase) GetEmployee(ctx context.Context, caller authz.Identity, id string) (*dto.EmployeeResponse, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return nil, err
	}
	e, err := uc.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return toEmployeeResponse(e), nil
}

// GetEmployeeByUser vínculo del usuario; el propio usuario o USER:MANAGE.
func (uc *OrganizationUseCase) GetEmployeeByUser(ctx context.Context, caller authz.Identity, userID string) (*dto.EmployeeResponse, error) {
	if caller.UserID != userID {
		if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
			return nil, err
		}
	}
	e, err := uc.employees.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return toEmployeeResponse(e), nil
}

func (uc *OrganizationUseCase) CreateEmployee(ctx context.Context, caller authz.Identity, in dto.EmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return nil, err
	}
	e, err := uc.createEmployee(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventEmployeeCreated, TargetID: e.ID, Details: map[string]any{"name": e.Name}}))
	return toEmployeeResponse(e), nil
}

func (uc *OrganizationUseCase) createEmployee(ctx context.Context, in dto.EmployeeRequest) (*entity.Employee, error) {
	now := uc.now()
	e := &entity.Employee{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(in.Name),
		CorporateEmail: entity.NormalizeEmail(in.CorporateEmail),
		SectorID:       in.SectorID,
		PositionID:     in.PositionID,
		UserID:         normalizeOptional(in.UserID),
		Active:         in.Active == nil || *in.Active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.checkUserLink(ctx, e.UserID, ""); err != nil {
		return nil, err
	}
	err := uc.tx.RunOrganization(ctx, func(sectors repository.SectorRepository, positions repository.PositionRepository, employees repository.EmployeeRepository, _ repository.PendencyRepository) error {
		if err := checkPlacement(ctx, sectors, positions, e.SectorID, e.PositionID); err != nil {
			return err
		}
		return employees.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *OrganizationUseCase) UpdateEmployee(ctx context.Context, caller authz.Identity, id string, in dto.EmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return nil, err
	}
	userID := normalizeOptional(in.UserID)
	if err := uc.checkUserLink(ctx, userID, id); err != nil {
		return nil, err
	}
	var result *entity.Employee
	err := uc.tx.RunOrganization(ctx, func(sectors repository.SectorRepository, positions repository.PositionRepository, employees repository.EmployeeRepository, _ repository.PendencyRepository) error {
		e, err := employees.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.ErrEmployeeNotFound
		}
		if err := checkPlacement(ctx, sectors, positions, in.SectorID, in.PositionID); err != nil {
			return err
		}
		e.Name = strings.TrimSpace(in.Name)
		e.CorporateEmail = entity.NormalizeEmail(in.CorporateEmail)
		e.SectorID = in.SectorID
		e.PositionID = in.PositionID
		e.UserID = userID
		if in.Active != nil {
			e.Active = *in.Active
		}
		e.UpdatedAt = uc.now()
		if err := employees.Update(ctx, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventEmployeeUpdated, TargetID: result.ID}))
	return toEmployeeResponse(result), nil
}

// DeleteEmployee rechazado mientras el usuario vinculado sea responsable de pendencias abiertas.
func (uc *OrganizationUseCase) DeleteEmployee(ctx context.Context, caller authz.Identity, id string) error {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return err
	}
	err := uc.tx.RunOrganization(ctx, func(_ repository.SectorRepository, _ repository.PositionRepository, employees repository.EmployeeRepository, pendencies repository.PendencyRepository) error {
		e, err := employees.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.ErrEmployeeNotFound
		}
		if e.UserID != nil {
			n, err := pendencies.CountOpenByResponsible(ctx, *e.UserID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.InUse("funcionario "+e.Name, fmt.Sprintf("%d pendencia(s) abierta(s)", n))
			}
		}
		return employees.Delete(ctx, e.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventEmployeeDeleted, TargetID: id}))
	return nil
}

// ImportEmployees carga masiva tolerante: las filas con referencias inválidas se registran y se omiten.
func (uc *OrganizationUseCase) ImportEmployees(ctx context.Context, caller authz.Identity, rows []dto.EmployeeRequest) (*dto.ImportEmployeesResult, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermUserManage); err != nil {
		return nil, err
	}
	res := &dto.ImportEmployeesResult{}
	for i, row := range rows {
		err := dto.Validate(row)
		if err == nil {
			var e *entity.Employee
			e, err = uc.createEmployee(ctx, row)
			if err == nil {
				res.Imported++
				uc.audit.Log(ctx, entry(caller, audit.Entry{Event: entity.EventEmployeeCreated, TargetID: e.ID, Details: map[string]any{"import": true}}))
				continue
			}
		}
		res.Skipped++
		msg := fmt.Sprintf("fila %d (%s): %v", i+1, row.Name, err)
		res.Errors = append(res.Errors, msg)
		if uc.log != nil {
			uc.log.Warn().Int("row", i+1).Str("name", row.Name).Err(err).Msg("funcionario omitido en importación")
		}
	}
	return res, nil
}

// checkUserLink el usuario debe existir y no respaldar a otro funcionario.
func (uc *OrganizationUseCase) checkUserLink(ctx context.Context, userID *string, employeeID string) error {
	if userID == nil {
		return nil
	}
	u, err := uc.users.GetByID(ctx, *userID)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.Invalid("usuario %s inexistente", *userID)
	}
	linked, err := uc.employees.GetByUserID(ctx, *userID)
	if err != nil {
		return err
	}
	if linked != nil && linked.ID != employeeID {
		return domain.ErrUserAlreadyLinked
	}
	return nil
}

// checkPlacement sector y cargo existentes (NotFound) y activos; si el cargo restringe sectores, el sector debe estar permitido.
func checkPlacement(ctx context.Context, sectors repository.SectorRepository, positions repository.PositionRepository, sectorID, positionID string) error {
	s, err := sectors.GetByID(ctx, sectorID)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrSectorNotFound
	}
	if !s.Active {
		return domain.Invalid("sector %s inactivo", s.Name)
	}
	p, err := positions.GetByID(ctx, positionID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrPositionNotFound
	}
	if !p.Active {
		return domain.Invalid("cargo %s inactivo", p.Name)
	}
	if len(p.AllowedSectorIDs) > 0 && !slices.Contains(p.AllowedSectorIDs, sectorID) {
		return domain.Invalid("el cargo %s no admite el sector %s", p.Name, s.Name)
	}
	return nil
}

func checkSectorsExist(ctx context.Context, sectors repository.SectorRepository, ids []string) error {
	for _, id := range ids {
		s, err := sectors.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.Invalid("sector %s inexistente", id)
		}
	}
	return nil
}

func scopeOrDefault(raw string) entity.Scope {
	s := entity.Scope(raw)
	if !s.Valid() {
		return entity.ScopeIndividual
	}
	return s
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func toSectorResponse(s *entity.Sector) *dto.SectorResponse {
	return &dto.SectorResponse{
		ID: s.ID, Name: s.Name, Description: s.Description, Active: s.Active,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func toPositionResponse(p *entity.Position) *dto.PositionResponse {
	sectors := p.AllowedSectorIDs
	if sectors == nil {
		sectors = []string{}
	}
	return &dto.PositionResponse{
		ID: p.ID, Name: p.Name, Description: p.Description, Scope: string(p.Scope), Active: p.Active,
		AllowedSectorIDs: sectors, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func toEmployeeResponse(e *entity.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID: e.ID, Name: e.Name, CorporateEmail: e.CorporateEmail, SectorID: e.SectorID, PositionID: e.PositionID,
		UserID: e.UserID, Active: e.Active, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}
