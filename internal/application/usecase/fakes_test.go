package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// memDB base en memoria que implementa todos los repositorios que usan los casos de uso.
// Las transacciones solo serializan; las pruebas verifican que nada se escriba antes del error.
type memDB struct {
	mu          sync.Mutex
	users       map[string]*entity.User
	roles       map[string]*entity.Role
	permissions map[string]bool
	sectors     map[string]*entity.Sector
	positions   map[string]*entity.Position
	employees   map[string]*entity.Employee
	clients     map[string]*entity.RegistryClient

	pendenciesBySector map[string]int
	pendenciesByUser   map[string]int
	openByResponsible  map[string]int

	setRolesCalls int
	adminLocks    int
	clientErr     error
}

func newMemDB() *memDB {
	db := &memDB{
		users:              map[string]*entity.User{},
		roles:              map[string]*entity.Role{},
		permissions:        map[string]bool{},
		sectors:            map[string]*entity.Sector{},
		positions:          map[string]*entity.Position{},
		employees:          map[string]*entity.Employee{},
		clients:            map[string]*entity.RegistryClient{},
		pendenciesBySector: map[string]int{},
		pendenciesByUser:   map[string]int{},
		openByResponsible:  map[string]int{},
	}
	for _, p := range authz.KnownPermissions {
		db.permissions[p] = true
	}
	db.roles[entity.RoleAdmin] = &entity.Role{ID: entity.RoleAdmin, Name: entity.RoleAdmin, IsSystem: true}
	db.roles[entity.RoleSystem] = &entity.Role{ID: entity.RoleSystem, Name: entity.RoleSystem, IsSystem: true}
	db.roles["OPERATOR"] = &entity.Role{ID: "OPERATOR", Name: "OPERATOR"}
	return db
}

func (db *memDB) addUser(id, email string, active bool, roles ...string) *entity.User {
	u := &entity.User{ID: id, Name: id, Email: email, Active: active, Roles: roles}
	db.users[id] = u
	return u
}

func (db *memDB) RunAdmin(_ context.Context, fn func(repository.UserRepository, repository.RoleRepository, repository.EmployeeRepository, repository.PendencyRepository) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(memUsers{db}, memRoles{db}, memEmployees{db}, memPendencies{db})
}

func (db *memDB) RunOrganization(_ context.Context, fn func(repository.SectorRepository, repository.PositionRepository, repository.EmployeeRepository, repository.PendencyRepository) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(memSectors{db}, memPositions{db}, memEmployees{db}, memPendencies{db})
}

// ── users ────────────────────────────────────────────────────────────────────

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Roles = slices.Clone(u.Roles)
	return &cp, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.db.users {
		if u.Email == email {
			return r.GetByID(ctx, u.ID)
		}
	}
	return nil, nil
}

func (r memUsers) List(_ context.Context, f repository.UserFilter) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.db.users {
		if !f.ActiveOnly || u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUsers) Update(_ context.Context, u *entity.User) error {
	cp := *u
	cp.Roles = r.db.users[u.ID].Roles
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) SetRoles(_ context.Context, id string, roles []string) error {
	r.db.setRolesCalls++
	r.db.users[id].Roles = slices.Clone(roles)
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	delete(r.db.users, id)
	return nil
}

func (r memUsers) CountActiveAdmins(_ context.Context, excludeID string) (int, error) {
	n := 0
	for _, u := range r.db.users {
		if u.ID != excludeID && u.IsActiveAdmin() {
			n++
		}
	}
	return n, nil
}

func (r memUsers) LockAdminSet(context.Context) error {
	r.db.adminLocks++
	return nil
}

// ── roles ────────────────────────────────────────────────────────────────────

type memRoles struct{ db *memDB }

func (r memRoles) Create(_ context.Context, role *entity.Role) error {
	cp := *role
	r.db.roles[role.ID] = &cp
	return nil
}

func (r memRoles) GetByID(_ context.Context, id string) (*entity.Role, error) {
	role, ok := r.db.roles[id]
	if !ok {
		return nil, nil
	}
	cp := *role
	cp.UserCount = 0
	for _, u := range r.db.users {
		if u.HasRole(id) {
			cp.UserCount++
		}
	}
	return &cp, nil
}

func (r memRoles) List(context.Context) ([]*entity.Role, error) {
	var out []*entity.Role
	for _, role := range r.db.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r memRoles) Update(_ context.Context, role *entity.Role) error {
	r.db.roles[role.ID].Description = role.Description
	return nil
}

func (r memRoles) Rename(_ context.Context, oldID, newID string) error {
	role := r.db.roles[oldID]
	delete(r.db.roles, oldID)
	role.ID, role.Name = newID, newID
	r.db.roles[newID] = role
	for _, u := range r.db.users {
		for i, id := range u.Roles {
			if id == oldID {
				u.Roles[i] = newID
			}
		}
	}
	return nil
}

func (r memRoles) ReplacePermissions(_ context.Context, id string, perms []string) error {
	r.db.roles[id].Permissions = slices.Clone(perms)
	return nil
}

func (r memRoles) Delete(_ context.Context, id string) error {
	delete(r.db.roles, id)
	return nil
}

func (r memRoles) PermissionsForRoles(_ context.Context, roles []string) ([]string, error) {
	var out []string
	for _, id := range roles {
		if role, ok := r.db.roles[id]; ok {
			out = append(out, role.Permissions...)
		}
	}
	return out, nil
}

func (r memRoles) ListPermissions(context.Context) ([]*entity.Permission, error) {
	var out []*entity.Permission
	for id := range r.db.permissions {
		out = append(out, &entity.Permission{ID: id})
	}
	return out, nil
}

func (r memRoles) MissingRoles(_ context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if _, ok := r.db.roles[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r memRoles) MissingPermissions(_ context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if !r.db.permissions[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// ── organización ─────────────────────────────────────────────────────────────

type memSectors struct{ db *memDB }

func (r memSectors) Create(_ context.Context, s *entity.Sector) error {
	cp := *s
	r.db.sectors[s.ID] = &cp
	return nil
}

func (r memSectors) GetByID(_ context.Context, id string) (*entity.Sector, error) {
	s, ok := r.db.sectors[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r memSectors) List(context.Context, bool) ([]*entity.Sector, error) {
	var out []*entity.Sector
	for _, s := range r.db.sectors {
		out = append(out, s)
	}
	return out, nil
}

func (r memSectors) Update(ctx context.Context, s *entity.Sector) error { return r.Create(ctx, s) }

func (r memSectors) Delete(_ context.Context, id string) error {
	delete(r.db.sectors, id)
	return nil
}

type memPositions struct{ db *memDB }

func (r memPositions) Create(_ context.Context, p *entity.Position) error {
	cp := *p
	r.db.positions[p.ID] = &cp
	return nil
}

func (r memPositions) GetByID(_ context.Context, id string) (*entity.Position, error) {
	p, ok := r.db.positions[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memPositions) List(context.Context, bool) ([]*entity.Position, error) {
	var out []*entity.Position
	for _, p := range r.db.positions {
		out = append(out, p)
	}
	return out, nil
}

func (r memPositions) Update(ctx context.Context, p *entity.Position) error { return r.Create(ctx, p) }

func (r memPositions) ReplaceSectors(_ context.Context, id string, sectors []string) error {
	r.db.positions[id].AllowedSectorIDs = slices.Clone(sectors)
	return nil
}

func (r memPositions) Delete(_ context.Context, id string) error {
	delete(r.db.positions, id)
	return nil
}

type memEmployees struct{ db *memDB }

func (r memEmployees) Create(_ context.Context, e *entity.Employee) error {
	cp := *e
	r.db.employees[e.ID] = &cp
	return nil
}

func (r memEmployees) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	e, ok := r.db.employees[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r memEmployees) GetByUserID(ctx context.Context, userID string) (*entity.Employee, error) {
	for _, e := range r.db.employees {
		if e.UserID != nil && *e.UserID == userID {
			return r.GetByID(ctx, e.ID)
		}
	}
	return nil, nil
}

func (r memEmployees) List(context.Context, bool) ([]*entity.Employee, error) {
	var out []*entity.Employee
	for _, e := range r.db.employees {
		out = append(out, e)
	}
	return out, nil
}

func (r memEmployees) Update(ctx context.Context, e *entity.Employee) error { return r.Create(ctx, e) }

func (r memEmployees) Delete(_ context.Context, id string) error {
	delete(r.db.employees, id)
	return nil
}

func (r memEmployees) CountBySector(_ context.Context, id string) (int, error) {
	n := 0
	for _, e := range r.db.employees {
		if e.SectorID == id {
			n++
		}
	}
	return n, nil
}

func (r memEmployees) CountByPosition(_ context.Context, id string) (int, error) {
	n := 0
	for _, e := range r.db.employees {
		if e.PositionID == id {
			n++
		}
	}
	return n, nil
}

// memPendencies solo responde los conteos que consultan las bajas.
type memPendencies struct {
	db *memDB
}

func (memPendencies) Create(context.Context, *entity.Pendency) error { return nil }
func (memPendencies) GetByID(context.Context, string) (*entity.Pendency, error) {
	return nil, nil
}
func (memPendencies) GetForUpdate(context.Context, string) (*entity.Pendency, error) {
	return nil, nil
}
func (memPendencies) GetByOriginOS(context.Context, string) (*entity.Pendency, error) {
	return nil, nil
}
func (memPendencies) List(context.Context, repository.PendencyFilter) ([]*entity.Pendency, error) {
	return nil, nil
}
func (memPendencies) Update(context.Context, *entity.Pendency) error { return nil }
func (r memPendencies) CountBySector(_ context.Context, id string) (int, error) {
	return r.db.pendenciesBySector[id], nil
}
func (r memPendencies) CountByUser(_ context.Context, id string) (int, error) {
	return r.db.pendenciesByUser[id], nil
}
func (r memPendencies) CountOpenByResponsible(_ context.Context, id string) (int, error) {
	return r.db.openByResponsible[id], nil
}

// ── clientes ─────────────────────────────────────────────────────────────────

type memClients struct{ db *memDB }

func (r memClients) GetByDocument(_ context.Context, doc string) (*entity.RegistryClient, error) {
	if r.db.clientErr != nil {
		return nil, r.db.clientErr
	}
	return r.db.clients[doc], nil
}

func (r memClients) Search(_ context.Context, term string, _ int) ([]*entity.RegistryClient, error) {
	var out []*entity.RegistryClient
	for _, c := range r.db.clients {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) || strings.Contains(c.Document, term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memClients) Upsert(_ context.Context, c *entity.RegistryClient) error {
	if r.db.clientErr != nil {
		return r.db.clientErr
	}
	r.db.clients[c.Document] = c
	return nil
}

// ── autorización y auditoría ────────────────────────────────────────────────

// grants permisos por usuario; ADMIN los tiene todos.
type grants struct {
	perms  map[string][]string
	denied []string
}

func (g *grants) HasPermission(_ context.Context, id authz.Identity, perm string) (bool, error) {
	if id.IsAdmin() {
		return true, nil
	}
	return slices.Contains(g.perms[id.UserID], perm), nil
}

func (g *grants) AssertPermission(ctx context.Context, id authz.Identity, perm string) error {
	ok, _ := g.HasPermission(ctx, id, perm)
	if ok {
		return nil
	}
	return g.Deny(ctx, id, perm, "")
}

func (g *grants) Deny(_ context.Context, _ authz.Identity, perm, reason string) error {
	g.denied = append(g.denied, perm)
	return domain.Forbidden(perm, reason)
}

type auditSpy struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *auditSpy) Log(_ context.Context, e audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *auditSpy) events() []entity.AuditEventKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]entity.AuditEventKind, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Event)
	}
	return out
}

func admin(id string) authz.Identity {
	return authz.Identity{UserID: id, Roles: []string{entity.RoleAdmin}}
}

func operator(id string) authz.Identity {
	return authz.Identity{UserID: id, Roles: []string{"OPERATOR"}}
}
