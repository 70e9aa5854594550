package usecase

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// SystemConfigUseCase blob de configuración global; el núcleo no interpreta las claves.
type SystemConfigUseCase struct {
	repo  repository.SystemConfigRepository
	authz Authorizer
	audit Auditor
	now   func() time.Time
}

func NewSystemConfigUseCase(repo repository.SystemConfigRepository, authorizer Authorizer, auditor Auditor) *SystemConfigUseCase {
	return &SystemConfigUseCase{repo: repo, authz: authorizer, audit: auditor, now: time.Now}
}

// Get cualquier identidad autenticada; sin fila se devuelven los valores por defecto.
func (uc *SystemConfigUseCase) Get(ctx context.Context, _ authz.Identity) (*dto.SystemConfigResponse, error) {
	cfg, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = entity.DefaultSystemConfig()
	}
	return toSystemConfigResponse(cfg), nil
}

// Update fusiona las claves recibidas sobre la configuración actual (SYSTEM:CONFIGURE).
func (uc *SystemConfigUseCase) Update(ctx context.Context, caller authz.Identity, in dto.UpdateSystemConfigRequest) (*dto.SystemConfigResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermSystemConfigure); err != nil {
		return nil, err
	}
	cfg, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = entity.DefaultSystemConfig()
	}
	if cfg.Values == nil {
		cfg.Values = map[string]any{}
	}
	maps.Copy(cfg.Values, in.Values)
	cfg.UpdatedAt = uc.now()
	if err := uc.repo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	var keys []string
	for k := range in.Values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	uc.audit.Log(ctx, entry(caller, audit.Entry{
		Event:   entity.EventSystemConfigUpdated,
		Details: map[string]any{"keys": keys},
	}))
	return toSystemConfigResponse(cfg), nil
}

func toSystemConfigResponse(cfg *entity.SystemConfig) *dto.SystemConfigResponse {
	out := &dto.SystemConfigResponse{Values: cfg.Values}
	if !cfg.UpdatedAt.IsZero() {
		t := cfg.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
