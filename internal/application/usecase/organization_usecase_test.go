package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

type orgFixture struct {
	db       *memDB
	uc       *OrganizationUseCase
	audit    *auditSpy
	sectorA  string
	sectorB  string
	position string
}

// newOrgFixture dos sectores activos y un cargo que solo admite el sector A.
func newOrgFixture() *orgFixture {
	db, a := newMemDB(), &auditSpy{}
	f := &orgFixture{db: db, audit: a, sectorA: uuid.NewString(), sectorB: uuid.NewString(), position: uuid.NewString()}
	db.sectors[f.sectorA] = &entity.Sector{ID: f.sectorA, Name: "Soporte", Active: true}
	db.sectors[f.sectorB] = &entity.Sector{ID: f.sectorB, Name: "Comercial", Active: true}
	db.positions[f.position] = &entity.Position{
		ID: f.position, Name: "Técnico", Scope: entity.ScopeSector, Active: true, AllowedSectorIDs: []string{f.sectorA},
	}
	f.uc = NewOrganizationUseCase(memSectors{db}, memPositions{db}, memEmployees{db}, memUsers{db}, db, &grants{}, a, nil)
	return f
}

func TestCreatePosition_DefaultsAndSectorCheck(t *testing.T) {
	f := newOrgFixture()
	ctx := context.Background()

	out, err := f.uc.CreatePosition(ctx, admin("root"), dto.PositionRequest{Name: "Analista", AllowedSectorIDs: []string{f.sectorA, f.sectorA}})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ScopeIndividual), out.Scope)
	assert.Equal(t, []string{f.sectorA}, out.AllowedSectorIDs)
	assert.True(t, out.Active)

	_, err = f.uc.CreatePosition(ctx, admin("root"), dto.PositionRequest{Name: "X", AllowedSectorIDs: []string{uuid.NewString()}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdatePosition_ReplacesSectors(t *testing.T) {
	f := newOrgFixture()
	out, err := f.uc.UpdatePosition(context.Background(), admin("root"), f.position, dto.PositionRequest{
		Name: "Técnico", Scope: "GLOBAL", AllowedSectorIDs: []string{f.sectorB},
	})
	require.NoError(t, err)
	assert.Equal(t, "GLOBAL", out.Scope)
	assert.Equal(t, []string{f.sectorB}, f.db.positions[f.position].AllowedSectorIDs)
}

func TestCreateEmployee_Placement(t *testing.T) {
	f := newOrgFixture()
	ctx := context.Background()

	out, err := f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{
		Name: "Ana", CorporateEmail: "ANA@corp.com", SectorID: f.sectorA, PositionID: f.position,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@corp.com", out.CorporateEmail)

	_, err = f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{Name: "Bob", SectorID: f.sectorB, PositionID: f.position})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el cargo no admite el sector B")

	f.db.sectors[f.sectorA].Active = false
	_, err = f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{Name: "Eve", SectorID: f.sectorA, PositionID: f.position})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sector inactivo")

	_, err = f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{Name: "Zoe", SectorID: uuid.NewString(), PositionID: f.position})
	assert.ErrorIs(t, err, domain.ErrSectorNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.db.sectors[f.sectorA].Active = true
	_, err = f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{Name: "Leo", SectorID: f.sectorA, PositionID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateEmployee_UserLinkedOnce(t *testing.T) {
	f := newOrgFixture()
	ctx := context.Background()
	userID := uuid.NewString()
	f.db.addUser(userID, "ana@example.com", true)

	_, err := f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{Name: "Ana", SectorID: f.sectorA, PositionID: f.position, UserID: &userID})
	require.NoError(t, err)

	_, err = f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{Name: "Ana 2", SectorID: f.sectorA, PositionID: f.position, UserID: &userID})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyLinked)

	ghost := uuid.NewString()
	_, err = f.uc.CreateEmployee(ctx, admin("root"), dto.EmployeeRequest{Name: "X", SectorID: f.sectorA, PositionID: f.position, UserID: &ghost})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteSector_InUse(t *testing.T) {
	f := newOrgFixture()
	ctx := context.Background()

	f.db.employees["e1"] = &entity.Employee{ID: "e1", SectorID: f.sectorA, PositionID: f.position}
	assert.ErrorIs(t, f.uc.DeleteSector(ctx, admin("root"), f.sectorA), domain.ErrEntityInUse)
	assert.Contains(t, f.db.sectors, f.sectorA)

	delete(f.db.employees, "e1")
	require.NoError(t, f.uc.DeleteSector(ctx, admin("root"), f.sectorA))
	assert.NotContains(t, f.db.sectors, f.sectorA)

	f.db.pendenciesBySector[f.sectorB] = 1
	assert.ErrorIs(t, f.uc.DeleteSector(ctx, admin("root"), f.sectorB), domain.ErrEntityInUse)

	free := uuid.NewString()
	f.db.sectors[free] = &entity.Sector{ID: free, Name: "Libre", Active: true}
	require.NoError(t, f.uc.DeleteSector(ctx, admin("root"), free))
	assert.NotContains(t, f.db.sectors, free)
	assert.Equal(t, []entity.AuditEventKind{entity.EventSectorDeleted, entity.EventSectorDeleted}, f.audit.events())
}

func TestDeletePosition_InUse(t *testing.T) {
	f := newOrgFixture()
	f.db.employees["e1"] = &entity.Employee{ID: "e1", SectorID: f.sectorA, PositionID: f.position}
	assert.ErrorIs(t, f.uc.DeletePosition(context.Background(), admin("root"), f.position), domain.ErrEntityInUse)
	assert.Contains(t, f.db.positions, f.position)

	delete(f.db.employees, "e1")
	require.NoError(t, f.uc.DeletePosition(context.Background(), admin("root"), f.position))
	assert.NotContains(t, f.db.positions, f.position)
	assert.Equal(t, []entity.AuditEventKind{entity.EventPositionDeleted}, f.audit.events())
}

func TestDeleteEmployee_OpenPendencies(t *testing.T) {
	f := newOrgFixture()
	uid := "u1"
	f.db.employees["e1"] = &entity.Employee{ID: "e1", Name: "Ana", UserID: &uid}
	f.db.openByResponsible["u1"] = 3

	assert.ErrorIs(t, f.uc.DeleteEmployee(context.Background(), admin("root"), "e1"), domain.ErrEntityInUse)

	f.db.openByResponsible["u1"] = 0
	require.NoError(t, f.uc.DeleteEmployee(context.Background(), admin("root"), "e1"))
}

func TestImportEmployees_SkipsInvalidRows(t *testing.T) {
	f := newOrgFixture()
	res, err := f.uc.ImportEmployees(context.Background(), admin("root"), []dto.EmployeeRequest{
		{Name: "Ana", SectorID: f.sectorA, PositionID: f.position},
		{Name: "Bob", SectorID: f.sectorB, PositionID: f.position},
		{Name: "", SectorID: f.sectorA, PositionID: f.position},
		{Name: "Eve", SectorID: f.sectorA, PositionID: f.position},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Errors, 2)
	assert.Len(t, f.db.employees, 2)
}

func TestGetEmployeeByUser_SelfOrManage(t *testing.T) {
	f := newOrgFixture()
	uid := "u1"
	f.db.employees["e1"] = &entity.Employee{ID: "e1", UserID: &uid}

	out, err := f.uc.GetEmployeeByUser(context.Background(), operator("u1"), "u1")
	require.NoError(t, err)
	assert.Equal(t, "e1", out.ID)

	_, err = f.uc.GetEmployeeByUser(context.Background(), operator("u2"), "u1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
