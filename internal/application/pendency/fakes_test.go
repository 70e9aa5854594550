package pendency

import (
	"context"
	"sync"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

type usersStub map[string]*entity.User

func (s usersStub) GetByID(_ context.Context, id string) (*entity.User, error) {
	return s[id], nil
}

type sectorsStub map[string]*entity.Sector

func (s sectorsStub) GetByID(_ context.Context, id string) (*entity.Sector, error) {
	return s[id], nil
}

// memPendencies repositorio en memoria; las escrituras de una tx fallida se descartan en memTx.
type memPendencies struct {
	mu    sync.Mutex
	items map[string]*entity.Pendency
}

func newMemPendencies() *memPendencies {
	return &memPendencies{items: map[string]*entity.Pendency{}}
}

func (m *memPendencies) Create(_ context.Context, p *entity.Pendency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPendencies) GetByID(_ context.Context, id string) (*entity.Pendency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memPendencies) GetForUpdate(ctx context.Context, id string) (*entity.Pendency, error) {
	return m.GetByID(ctx, id)
}

func (m *memPendencies) GetByOriginOS(_ context.Context, osID string) (*entity.Pendency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.OriginOSID != nil && *p.OriginOSID == osID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memPendencies) List(_ context.Context, f repository.PendencyFilter) ([]*entity.Pendency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Pendency
	for _, p := range m.items {
		if !visible(f, p) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPendencies) Update(_ context.Context, p *entity.Pendency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return domain.ErrPendencyNotFound
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPendencies) CountBySector(context.Context, string) (int, error)          { return 0, nil }
func (m *memPendencies) CountByUser(context.Context, string) (int, error)            { return 0, nil }
func (m *memPendencies) CountOpenByResponsible(context.Context, string) (int, error) { return 0, nil }

type memOrders struct {
	mu      sync.Mutex
	items   map[string]*entity.ServiceOrder
	updates int
}

func (m *memOrders) LockContract(context.Context, string) error { return nil }

func (m *memOrders) ListIDsByPrefix(context.Context, string) ([]string, error) { return nil, nil }

func (m *memOrders) Create(_ context.Context, o *entity.ServiceOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) List(context.Context, int, int) ([]*entity.ServiceOrder, error) { return nil, nil }

func (m *memOrders) UpdateStatus(_ context.Context, id string, status entity.ServiceOrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return domain.ErrServiceOrderNotFound
	}
	o.Status = status
	m.updates++
	return nil
}

// memTx ejecuta fn sobre copias y solo publica el resultado si fn no falla.
type memTx struct {
	orders     *memOrders
	pendencies *memPendencies
}

func (t *memTx) RunWorkflow(ctx context.Context, fn func(repository.ServiceOrderRepository, repository.PendencyRepository) error) error {
	orders := &memOrders{items: map[string]*entity.ServiceOrder{}}
	t.orders.mu.Lock()
	for k, v := range t.orders.items {
		cp := *v
		orders.items[k] = &cp
	}
	t.orders.mu.Unlock()
	pendencies := newMemPendencies()
	t.pendencies.mu.Lock()
	for k, v := range t.pendencies.items {
		cp := *v
		pendencies.items[k] = &cp
	}
	t.pendencies.mu.Unlock()

	if err := fn(orders, pendencies); err != nil {
		return err
	}
	t.orders.mu.Lock()
	t.orders.items = orders.items
	t.orders.updates += orders.updates
	t.orders.mu.Unlock()
	t.pendencies.mu.Lock()
	t.pendencies.items = pendencies.items
	t.pendencies.mu.Unlock()
	return nil
}

// permsStub autoriza según un mapa papel → permisos.
type permsStub struct {
	byRole map[string][]string
	denied []string
}

func (p *permsStub) HasPermission(_ context.Context, id authz.Identity, permission string) (bool, error) {
	for _, r := range id.Roles {
		for _, perm := range p.byRole[r] {
			if perm == permission {
				return true, nil
			}
		}
	}
	return false, nil
}

func (p *permsStub) AssertPermission(ctx context.Context, id authz.Identity, permission string) error {
	ok, _ := p.HasPermission(ctx, id, permission)
	if ok {
		return nil
	}
	return p.Deny(ctx, id, permission, "")
}

func (p *permsStub) Deny(_ context.Context, _ authz.Identity, permission, reason string) error {
	p.denied = append(p.denied, permission)
	return domain.Forbidden(permission, reason)
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

func (a *auditSpy) find(kind entity.AuditEventKind) (audit.Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.Event == kind {
			return e, true
		}
	}
	return audit.Entry{}, false
}
