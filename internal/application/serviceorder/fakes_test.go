package serviceorder

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// store simula la BD: datos confirmados y locks por contrato que viven hasta el fin de la tx.
type store struct {
	mu         sync.Mutex
	orders     map[string]*entity.ServiceOrder
	pendencies map[string]*entity.Pendency
	number     int64
	locks      sync.Map // contrato → *sync.Mutex

	failPendencyInsert bool
}

func newStore() *store {
	return &store{orders: map[string]*entity.ServiceOrder{}, pendencies: map[string]*entity.Pendency{}}
}

func (s *store) lockFor(contract string) *sync.Mutex {
	m, _ := s.locks.LoadOrStore(contract, &sync.Mutex{})
	return m.(*sync.Mutex)
}

func (s *store) RunWorkflow(ctx context.Context, fn func(repository.ServiceOrderRepository, repository.PendencyRepository) error) error {
	tx := &txView{s: s, orders: map[string]*entity.ServiceOrder{}, pendencies: map[string]*entity.Pendency{}}
	defer tx.release()
	if err := fn(tx, &txPendencies{tx}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range tx.orders {
		if _, dup := s.orders[id]; dup {
			return domain.Kinded(domain.ErrConflict, "id duplicado")
		}
		s.orders[id] = o
	}
	for id, p := range tx.pendencies {
		s.pendencies[id] = p
	}
	return nil
}

type txView struct {
	s          *store
	held       []*sync.Mutex
	orders     map[string]*entity.ServiceOrder
	pendencies map[string]*entity.Pendency
}

func (t *txView) release() {
	for _, m := range t.held {
		m.Unlock()
	}
}

func (t *txView) LockContract(_ context.Context, contract string) error {
	m := t.s.lockFor(contract)
	m.Lock()
	t.held = append(t.held, m)
	return nil
}

func (t *txView) ListIDsByPrefix(_ context.Context, prefix string) ([]string, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var ids []string
	for id := range t.s.orders {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	for id := range t.orders {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (t *txView) Create(_ context.Context, o *entity.ServiceOrder) error {
	t.s.mu.Lock()
	t.s.number++
	o.Number = t.s.number
	t.s.mu.Unlock()
	cp := *o
	t.orders[o.ID] = &cp
	return nil
}

func (t *txView) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	return t.s.GetByID(context.Background(), id)
}

func (t *txView) List(context.Context, int, int) ([]*entity.ServiceOrder, error) { return nil, nil }

func (t *txView) UpdateStatus(context.Context, string, entity.ServiceOrderStatus) error {
	return errors.New("no usado")
}

type txPendencies struct{ t *txView }

func (p *txPendencies) Create(_ context.Context, pd *entity.Pendency) error {
	if p.t.s.failPendencyInsert {
		return errors.New("insert pendencia falló")
	}
	cp := *pd
	p.t.pendencies[pd.ID] = &cp
	return nil
}

func (p *txPendencies) GetByID(context.Context, string) (*entity.Pendency, error) { return nil, nil }
func (p *txPendencies) GetForUpdate(context.Context, string) (*entity.Pendency, error) {
	return nil, nil
}
func (p *txPendencies) GetByOriginOS(context.Context, string) (*entity.Pendency, error) {
	return nil, nil
}
func (p *txPendencies) List(context.Context, repository.PendencyFilter) ([]*entity.Pendency, error) {
	return nil, nil
}
func (p *txPendencies) Update(context.Context, *entity.Pendency) error              { return nil }
func (p *txPendencies) CountBySector(context.Context, string) (int, error)          { return 0, nil }
func (p *txPendencies) CountByUser(context.Context, string) (int, error)            { return 0, nil }
func (p *txPendencies) CountOpenByResponsible(context.Context, string) (int, error) { return 0, nil }

// Lecturas fuera de tx sobre datos confirmados.

func (s *store) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

type readOrders struct{ *store }

func (r readOrders) LockContract(context.Context, string) error { return nil }
func (r readOrders) ListIDsByPrefix(context.Context, string) ([]string, error) {
	return nil, nil
}
func (r readOrders) Create(context.Context, *entity.ServiceOrder) error {
	return errors.New("fuera de tx")
}
func (r readOrders) List(_ context.Context, limit, _ int) ([]*entity.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.ServiceOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if len(out) == limit {
			break
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}
func (r readOrders) UpdateStatus(context.Context, string, entity.ServiceOrderStatus) error {
	return errors.New("fuera de tx")
}

type readPendencies struct {
	*txPendencies
	s *store
}

func (r readPendencies) GetByOriginOS(_ context.Context, osID string) (*entity.Pendency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.pendencies {
		if p.OriginOSID != nil && *p.OriginOSID == osID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

type usersStub map[string]*entity.User

func (s usersStub) GetByID(_ context.Context, id string) (*entity.User, error) { return s[id], nil }

// allowAll concede todo permiso a identidades con algún papel, salvo los retenidos.
type allowAll struct {
	withheld []string
	denied   []string
}

func (a *allowAll) HasPermission(_ context.Context, id authz.Identity, permission string) (bool, error) {
	return len(id.Roles) > 0 && !slices.Contains(a.withheld, permission), nil
}

func (a *allowAll) AssertPermission(ctx context.Context, id authz.Identity, permission string) error {
	if ok, _ := a.HasPermission(ctx, id, permission); ok {
		return nil
	}
	return a.Deny(ctx, id, permission, "")
}

func (a *allowAll) Deny(_ context.Context, _ authz.Identity, permission, reason string) error {
	a.denied = append(a.denied, permission)
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

type sheetStub struct {
	order    *entity.ServiceOrder
	pendency *entity.Pendency
}

func (s *sheetStub) RenderServiceOrder(_ context.Context, o *entity.ServiceOrder, p *entity.Pendency) ([]byte, error) {
	s.order, s.pendency = o, p
	return []byte("%PDF-1.3"), nil
}
