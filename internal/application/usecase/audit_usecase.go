package usecase

import (
	"context"

	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// AuditQueryUseCase consulta del historial (AUDIT:VIEW).
type AuditQueryUseCase struct {
	repo  repository.AuditRepository
	authz Authorizer
}

func NewAuditQueryUseCase(repo repository.AuditRepository, authorizer Authorizer) *AuditQueryUseCase {
	return &AuditQueryUseCase{repo: repo, authz: authorizer}
}

func (uc *AuditQueryUseCase) List(ctx context.Context, caller authz.Identity, in dto.ListAuditEventsRequest) ([]*dto.AuditEventResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermAuditView); err != nil {
		return nil, err
	}
	in.DefaultPage()
	events, err := uc.repo.List(ctx, repository.AuditFilter{
		Event:   entity.AuditEventKind(in.Event),
		ActorID: in.ActorID,
		Limit:   in.Limit,
		Offset:  in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, &dto.AuditEventResponse{
			ID: e.ID, Timestamp: e.Timestamp, Level: string(e.Level), Event: string(e.Event),
			ActorID: e.ActorID, TargetID: e.TargetID, IP: e.IP, Details: e.Details,
		})
	}
	return out, nil
}
