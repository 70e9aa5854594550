package usecase

import (
	"context"
	"strings"
	"unicode"

	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
	"github.com/jhoicas/servicedesk-api/pkg/logger"
)

// ClientRegistry registro legado de clientes. Devuelve (nil, nil) si el documento no existe allí.
type ClientRegistry interface {
	FetchByDocument(ctx context.Context, document string) (*entity.RegistryClient, error)
}

// ClientUseCase consulta de clientes: copia local primero, registro legado después.
type ClientUseCase struct {
	local    repository.ClientRepository
	registry ClientRegistry
	authz    Authorizer
	log      *logger.Logger
}

// NewClientUseCase registry puede ser nil (solo copia local).
func NewClientUseCase(local repository.ClientRepository, registry ClientRegistry, authorizer Authorizer, log *logger.Logger) *ClientUseCase {
	return &ClientUseCase{local: local, registry: registry, authz: authorizer, log: log}
}

// Lookup por CPF/CNPJ. Si el registro legado falla y la copia local respondió, el resultado es NotFound;
// si ambos fallan, UpstreamUnavailable.
func (uc *ClientUseCase) Lookup(ctx context.Context, caller authz.Identity, document string) (*dto.ClientResponse, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermClientLookup); err != nil {
		return nil, err
	}
	doc := onlyDigits(document)
	if doc == "" {
		return nil, domain.Invalid("documento vacío")
	}

	cached, localErr := uc.local.GetByDocument(ctx, doc)
	if localErr == nil && cached != nil {
		return toClientResponse(cached), nil
	}
	if localErr != nil {
		uc.warn(localErr, "copia local de clientes no disponible")
	}
	if uc.registry == nil {
		if localErr != nil {
			return nil, domain.Kinded(domain.ErrUpstreamUnavailable, "registro de clientes no disponible")
		}
		return nil, domain.ErrClientNotFound
	}

	client, err := uc.registry.FetchByDocument(ctx, doc)
	if err != nil {
		uc.warn(err, "registro legado de clientes falló")
		if localErr == nil {
			return nil, domain.ErrClientNotFound
		}
		return nil, domain.Kinded(domain.ErrUpstreamUnavailable, "registro de clientes no disponible")
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	if localErr == nil {
		if err := uc.local.Upsert(ctx, client); err != nil {
			uc.warn(err, "no se pudo cachear el cliente")
		}
	}
	return toClientResponse(client), nil
}

// Search sobre la copia local por nombre o documento (mínimo 3 dígitos para coincidir por documento).
func (uc *ClientUseCase) Search(ctx context.Context, caller authz.Identity, term string, limit int) ([]*dto.ClientResponse, error) {
	if err := uc.authz.AssertPermission(ctx, caller, authz.PermClientLookup); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if len([]rune(term)) < 3 {
		return nil, domain.Invalid("el término de búsqueda requiere al menos 3 caracteres")
	}
	list, err := uc.local.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

func (uc *ClientUseCase) warn(err error, msg string) {
	if uc.log != nil {
		uc.log.Warn().Err(err).Msg(msg)
	}
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func toClientResponse(c *entity.RegistryClient) *dto.ClientResponse {
	return &dto.ClientResponse{
		Document: c.Document, Code: c.Code, Name: c.Name, TradeName: c.TradeName, Email: c.Email, SyncedAt: c.SyncedAt,
	}
}
