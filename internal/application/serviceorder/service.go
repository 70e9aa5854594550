// Package serviceorder flujo de órdenes de servicio: alta atómica OS + pendencia, consulta y ficha PDF.
package serviceorder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/application/pendency"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// SheetRenderer genera la ficha imprimible de una OS.
type SheetRenderer interface {
	RenderServiceOrder(ctx context.Context, order *entity.ServiceOrder, p *entity.Pendency) ([]byte, error)
}

type Service struct {
	orders     repository.ServiceOrderRepository
	pendencies repository.PendencyRepository
	creators   *pendency.CreatorResolver
	tx         pendency.TxRunner
	authz      pendency.Authorizer
	audit      pendency.Auditor
	sheets     SheetRenderer
	now        func() time.Time
}

func NewService(
	orders repository.ServiceOrderRepository,
	pendencies repository.PendencyRepository,
	creators *pendency.CreatorResolver,
	tx pendency.TxRunner,
	authorizer pendency.Authorizer,
	auditor pendency.Auditor,
	sheets SheetRenderer,
) *Service {
	return &Service{
		orders: orders, pendencies: pendencies, creators: creators, tx: tx,
		authz: authorizer, audit: auditor, sheets: sheets, now: time.Now,
	}
}

// Create inserta la OS y su pendencia de origen OS en una sola transacción.
func (s *Service) Create(ctx context.Context, caller authz.Identity, in dto.CreateServiceOrderRequest) (*dto.CreateServiceOrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := s.authz.AssertPermission(ctx, caller, authz.PermOSCreate); err != nil {
		return nil, err
	}
	creator, err := s.creators.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}

	contract := strings.TrimSpace(in.Contract)
	now := s.now()
	order := &entity.ServiceOrder{
		Contract: contract,
		Client: entity.ClientSnapshot{
			Name:     strings.TrimSpace(in.Client.Name),
			Code:     in.Client.Code,
			Document: in.Client.Document,
			Address:  in.Client.Address,
			Contact:  in.Client.Contact,
			Contract: contract,
		},
		Description: in.Description,
		Priority:    entity.NormalizePriority(in.Priority),
		Status:      entity.ServiceOrderOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.ScheduledDate != nil {
		order.ScheduledDate = *in.ScheduledDate
	}

	var p *entity.Pendency
	err = s.tx.RunWorkflow(ctx, func(orders repository.ServiceOrderRepository, pendencies repository.PendencyRepository) error {
		id, err := Allocate(ctx, orders, contract)
		if err != nil {
			return err
		}
		order.ID = id
		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		p = originPendency(order, in.Observations, creator, now)
		return pendencies.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Entry{
		Event:    entity.EventServiceOrderCreated,
		ActorID:  caller.UserID,
		TargetID: order.ID,
		IP:       caller.SourceIP,
		Details:  map[string]any{"contract": contract, "number": order.Number, "pendency_id": p.ID},
	})
	s.creators.AuditSubstitution(ctx, caller, creator, p.ID)
	s.audit.Log(ctx, audit.Entry{
		Event:    entity.EventPendencyCreated,
		ActorID:  caller.UserID,
		TargetID: p.ID,
		IP:       caller.SourceIP,
		Details:  map[string]any{"type": string(p.Type), "origin_os_id": order.ID, "created_by": p.CreatedBy},
	})
	return &dto.CreateServiceOrderResponse{
		ServiceOrder: *ToResponse(order),
		Pendency:     *pendency.ToResponse(p),
	}, nil
}

// originPendency pendencia que acompaña a la OS; el responsable es quien la abrió si es un usuario real.
func originPendency(order *entity.ServiceOrder, observations string, creator pendency.Creator, now time.Time) *entity.Pendency {
	osID := order.ID
	p := &entity.Pendency{
		ID:          uuid.New().String(),
		Title:       "OS #" + order.DisplayID() + " - " + order.Client.Name,
		Description: joinNonEmpty(order.Description, observations),
		Type:        entity.PendencyTypeOS,
		Status:      entity.PendencyPending,
		Priority:    order.Priority,
		OriginType:  entity.OriginOS,
		OriginOSID:  &osID,
		CreatedBy:   creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !creator.Substituted {
		responsible := creator.ID
		p.ResponsibleID = &responsible
	}
	if !order.ScheduledDate.IsZero() {
		due := order.ScheduledDate
		p.DueDate = &due
	}
	return p
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

func (s *Service) List(ctx context.Context, caller authz.Identity, page dto.PageRequest) ([]*dto.ServiceOrderResponse, error) {
	if err := s.requireBinding(ctx, caller); err != nil {
		return nil, err
	}
	if err := dto.Validate(page); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := s.orders.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ServiceOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, ToResponse(o))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, caller authz.Identity, id string) (*dto.ServiceOrderResponse, error) {
	order, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return ToResponse(order), nil
}

// Sheet ficha PDF de la OS con el estado actual de su pendencia.
func (s *Service) Sheet(ctx context.Context, caller authz.Identity, id string) ([]byte, error) {
	order, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	p, err := s.pendencies.GetByOriginOS(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return s.sheets.RenderServiceOrder(ctx, order, p)
}

func (s *Service) get(ctx context.Context, caller authz.Identity, id string) (*entity.ServiceOrder, error) {
	if err := s.requireBinding(ctx, caller); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrServiceOrderNotFound
	}
	return order, nil
}

// requireBinding ADMIN/SYSTEM, OS:VIEW_ALL o funcionario vinculado. La negativa queda auditada.
func (s *Service) requireBinding(ctx context.Context, caller authz.Identity) error {
	if caller.IsElevated() || caller.Binding != nil {
		return nil
	}
	viewAll, err := s.authz.HasPermission(ctx, caller, authz.PermOSViewAll)
	if err != nil {
		return err
	}
	if viewAll {
		return nil
	}
	_ = s.authz.Deny(ctx, caller, authz.PermOSViewAll, domain.ErrOrgBindingRequired.Error())
	return domain.ErrOrgBindingRequired
}

func ToResponse(o *entity.ServiceOrder) *dto.ServiceOrderResponse {
	var scheduled *time.Time
	if !o.ScheduledDate.IsZero() {
		d := o.ScheduledDate
		scheduled = &d
	}
	return &dto.ServiceOrderResponse{
		ID:        o.ID,
		DisplayID: o.DisplayID(),
		Number:    o.Number,
		Contract:  o.Contract,
		Client: dto.ClientData{
			Name:     o.Client.Name,
			Code:     o.Client.Code,
			Document: o.Client.Document,
			Address:  o.Client.Address,
			Contact:  o.Client.Contact,
		},
		Description:   o.Description,
		Priority:      string(o.Priority),
		Status:        string(o.Status),
		ScheduledDate: scheduled,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
