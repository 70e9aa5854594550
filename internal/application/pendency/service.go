package pendency

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

type sectorReader interface {
	GetByID(ctx context.Context, id string) (*entity.Sector, error)
}

// Service flujo de pendencias: alta manual, consulta con visibilidad por alcance y actualización de estado.
type Service struct {
	pendencies repository.PendencyRepository
	users      userReader
	sectors    sectorReader
	creators   *CreatorResolver
	tx         TxRunner
	authz      Authorizer
	audit      Auditor
	now        func() time.Time
}

func NewService(
	pendencies repository.PendencyRepository,
	users userReader,
	sectors sectorReader,
	creators *CreatorResolver,
	tx TxRunner,
	authorizer Authorizer,
	auditor Auditor,
) *Service {
	return &Service{
		pendencies: pendencies, users: users, sectors: sectors, creators: creators,
		tx: tx, authz: authorizer, audit: auditor, now: time.Now,
	}
}

// Create solo pendencias manuales; las de tipo OS nacen con su orden de servicio.
func (s *Service) Create(ctx context.Context, caller authz.Identity, in dto.CreatePendencyRequest) (*dto.PendencyResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := s.authz.AssertPermission(ctx, caller, authz.PermPendencyCreate); err != nil {
		return nil, err
	}
	if entity.PendencyType(in.Type) == entity.PendencyTypeOS || entity.OriginType(in.OriginType) == entity.OriginOS {
		return nil, domain.Invalid("las pendencias de tipo OS solo se crean junto con su orden de servicio")
	}
	typ := entity.PendencyType(in.Type)
	if typ == "" {
		typ = entity.PendencyTypeTask
	}

	creator, err := s.creators.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	responsible, err := s.existingUser(ctx, in.ResponsibleID)
	if err != nil {
		return nil, err
	}
	sector, err := s.existingSector(ctx, in.ResponsibleSectorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &entity.Pendency{
		ID:                  uuid.New().String(),
		Title:               strings.TrimSpace(in.Title),
		Description:         in.Description,
		Type:                typ,
		Status:              entity.PendencyPending,
		Priority:            entity.NormalizePriority(in.Priority),
		OriginType:          entity.OriginManual,
		CreatedBy:           creator.ID,
		ResponsibleID:       responsible,
		ResponsibleSectorID: sector,
		DueDate:             in.DueDate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.pendencies.Create(ctx, p); err != nil {
		return nil, err
	}

	s.creators.AuditSubstitution(ctx, caller, creator, p.ID)
	s.audit.Log(ctx, audit.Entry{
		Event:    entity.EventPendencyCreated,
		ActorID:  caller.UserID,
		TargetID: p.ID,
		IP:       caller.SourceIP,
		Details:  map[string]any{"type": string(p.Type), "created_by": p.CreatedBy},
	})
	return ToResponse(p), nil
}

// Get aplica la misma regla de visibilidad que List.
func (s *Service) Get(ctx context.Context, caller authz.Identity, id string) (*dto.PendencyResponse, error) {
	p, err := s.pendencies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPendencyNotFound
	}
	filter, err := s.visibility(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !visible(filter, p) {
		return nil, s.authz.Deny(ctx, caller, authz.PermPendencyViewAll, "la pendencia está fuera de su alcance")
	}
	return ToResponse(p), nil
}

// List ADMIN/SYSTEM, PENDENCY:VIEW_ALL o alcance GLOBAL ven todo; SECTOR su sector y lo propio;
// INDIVIDUAL o sin vínculo, solo lo que creó o tiene a cargo.
func (s *Service) List(ctx context.Context, caller authz.Identity, in dto.ListPendenciesRequest) ([]*dto.PendencyResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	filter, err := s.visibility(ctx, caller)
	if err != nil {
		return nil, err
	}
	filter.Status = entity.PendencyStatus(in.Status)
	filter.Type = entity.PendencyType(in.Type)
	filter.Limit = in.Limit
	filter.Offset = in.Offset
	list, err := s.pendencies.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PendencyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToResponse(p))
	}
	return out, nil
}

// Update PENDENCY:UPDATE o el creador/responsable. Las pendencias de origen OS arrastran el estado de su OS
// en la misma transacción.
func (s *Service) Update(ctx context.Context, caller authz.Identity, id string, in dto.UpdatePendencyRequest) (*dto.PendencyResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	canUpdateAny, err := s.authz.HasPermission(ctx, caller, authz.PermPendencyUpdate)
	if err != nil {
		return nil, err
	}
	var responsible, sector *string
	if in.ResponsibleID != nil {
		if responsible, err = s.existingUser(ctx, in.ResponsibleID); err != nil {
			return nil, err
		}
	}
	if in.ResponsibleSectorID != nil {
		if sector, err = s.existingSector(ctx, in.ResponsibleSectorID); err != nil {
			return nil, err
		}
	}

	var (
		result    *entity.Pendency
		changes   []string
		completed bool
		denied    bool
	)
	err = s.tx.RunWorkflow(ctx, func(orders repository.ServiceOrderRepository, pendencies repository.PendencyRepository) error {
		p, err := pendencies.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPendencyNotFound
		}
		if !canUpdateAny && !p.IsInvolved(caller.UserID) {
			denied = true
			return domain.Forbidden(authz.PermPendencyUpdate, "")
		}

		prev := p.Status
		if in.Status != nil {
			next := entity.PendencyStatus(*in.Status)
			if next != p.Status {
				if !p.Status.CanTransitionTo(next) {
					return domain.Kinded(domain.ErrInvalidTransition, "transición "+string(p.Status)+" → "+string(next)+" no permitida")
				}
				p.Status = next
				changes = append(changes, "status")
			}
		}
		if in.Priority != nil {
			p.Priority = entity.NormalizePriority(*in.Priority)
			changes = append(changes, "priority")
		}
		if in.ResponsibleID != nil {
			p.ResponsibleID = responsible
			changes = append(changes, "responsible")
		}
		if in.ResponsibleSectorID != nil {
			p.ResponsibleSectorID = sector
			changes = append(changes, "sector")
		}
		if in.DueDate != nil {
			p.DueDate = in.DueDate
			changes = append(changes, "due_date")
		}
		if in.ConclusionText != nil {
			p.ConclusionText = *in.ConclusionText
			changes = append(changes, "conclusion_text")
		}
		if in.ConclusionType != nil {
			p.ConclusionType = entity.ParseConclusionType(*in.ConclusionType)
			changes = append(changes, "conclusion_type")
		}
		if !p.Status.Terminal() {
			p.ConclusionType = nil
		}

		now := s.now()
		if p.Status != prev && p.Status.Terminal() {
			p.CompletedAt = &now
			completed = true
		}
		p.UpdatedAt = now

		if p.Status != prev && p.OriginOSID != nil {
			if err := driveServiceOrder(ctx, orders, *p.OriginOSID, p.Status); err != nil {
				return err
			}
		}
		if err := pendencies.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		if denied {
			return nil, s.authz.Deny(ctx, caller, authz.PermPendencyUpdate, "solo el creador, el responsable o quien tenga PENDENCY:UPDATE puede modificarla")
		}
		return nil, err
	}

	s.audit.Log(ctx, audit.Entry{
		Event:    entity.EventPendencyUpdated,
		ActorID:  caller.UserID,
		TargetID: result.ID,
		IP:       caller.SourceIP,
		Details:  map[string]any{"changes": changes, "status": string(result.Status)},
	})
	if completed {
		s.audit.Log(ctx, audit.Entry{
			Event:    entity.EventPendencyCompleted,
			ActorID:  caller.UserID,
			TargetID: result.ID,
			IP:       caller.SourceIP,
			Details:  map[string]any{"status": string(result.Status), "conclusion_type": conclusionString(result.ConclusionType)},
		})
	}
	return ToResponse(result), nil
}

// driveServiceOrder mueve la OS al estado que corresponde; repetir el estado actual no hace nada.
func driveServiceOrder(ctx context.Context, orders repository.ServiceOrderRepository, osID string, status entity.PendencyStatus) error {
	target, ok := status.ServiceOrderStatus()
	if !ok {
		return nil
	}
	order, err := orders.GetByID(ctx, osID)
	if err != nil {
		return err
	}
	if order == nil || order.Status == target {
		return nil
	}
	if !order.Status.CanTransitionTo(target) {
		return domain.Kinded(domain.ErrInvalidTransition, "la orden de servicio "+osID+" no admite "+string(target))
	}
	return orders.UpdateStatus(ctx, osID, target)
}

func (s *Service) visibility(ctx context.Context, caller authz.Identity) (repository.PendencyFilter, error) {
	if caller.IsElevated() {
		return repository.PendencyFilter{AllVisible: true}, nil
	}
	viewAll, err := s.authz.HasPermission(ctx, caller, authz.PermPendencyViewAll)
	if err != nil {
		return repository.PendencyFilter{}, err
	}
	if viewAll {
		return repository.PendencyFilter{AllVisible: true}, nil
	}
	f := repository.PendencyFilter{InvolvedUserID: caller.UserID}
	if b := caller.Binding; b != nil {
		switch b.Scope {
		case entity.ScopeGlobal:
			f.AllVisible = true
		case entity.ScopeSector:
			f.VisibleSectorID = b.SectorID
		}
	}
	return f, nil
}

func visible(f repository.PendencyFilter, p *entity.Pendency) bool {
	if f.AllVisible || p.IsInvolved(f.InvolvedUserID) {
		return true
	}
	return f.VisibleSectorID != "" && p.ResponsibleSectorID != nil && *p.ResponsibleSectorID == f.VisibleSectorID
}

// existingUser referencias colgantes se guardan como null.
func (s *Service) existingUser(ctx context.Context, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, *id)
	if err != nil || u == nil {
		return nil, err
	}
	v := u.ID
	return &v, nil
}

func (s *Service) existingSector(ctx context.Context, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	sec, err := s.sectors.GetByID(ctx, *id)
	if err != nil || sec == nil {
		return nil, err
	}
	v := sec.ID
	return &v, nil
}

func conclusionString(c *entity.ConclusionType) string {
	if c == nil {
		return ""
	}
	return string(*c)
}

// ToResponse mapea la entidad al DTO de salida.
func ToResponse(p *entity.Pendency) *dto.PendencyResponse {
	var conclusion *string
	if p.ConclusionType != nil {
		c := string(*p.ConclusionType)
		conclusion = &c
	}
	return &dto.PendencyResponse{
		ID:                  p.ID,
		Title:               p.Title,
		Description:         p.Description,
		Type:                string(p.Type),
		Status:              string(p.Status),
		Priority:            string(p.Priority),
		OriginType:          string(p.OriginType),
		OriginOSID:          p.OriginOSID,
		CreatedBy:           p.CreatedBy,
		ResponsibleID:       p.ResponsibleID,
		ResponsibleSectorID: p.ResponsibleSectorID,
		ConclusionText:      p.ConclusionText,
		ConclusionType:      conclusion,
		DueDate:             p.DueDate,
		CompletedAt:         p.CompletedAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
