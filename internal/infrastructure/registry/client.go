// Package registry cliente HTTP del registro legado de clientes (API Pessoa).
package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/pkg/config"
)

const maxBody = 1 << 20

// Client implementa usecase.ClientRegistry.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient devuelve nil si no hay URL base configurada: el caso de uso trabaja solo con la copia local.
func NewClient(cfg config.RegistryConfig) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type pessoaResponse struct {
	Sucesso  bool            `json:"Sucesso"`
	Mensagem string          `json:"Mensagem"`
	Pessoa   json.RawMessage `json:"Pessoa"`
}

type pessoa struct {
	Codigo       int64  `json:"Codigo"`
	Nome         string `json:"Nome"`
	NomeFantasia string `json:"NomeFantasia"`
	CpfCnpj      string `json:"CpfCnpj"`
	Email        string `json:"Email"`
}

// FetchByDocument GET {base}/api/Pessoa/Get?cpfcnpj=. Devuelve (nil, nil) si el registro no conoce el documento;
// cualquier falla de transporte o respuesta 5xx se informa como ErrUpstreamUnavailable.
func (c *Client) FetchByDocument(ctx context.Context, document string) (*entity.RegistryClient, error) {
	endpoint := c.baseURL + "/api/Pessoa/Get?cpfcnpj=" + url.QueryEscape(document)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build registry request")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.apiSecret != "" {
		req.Header.Set("x-api-secret", c.apiSecret)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUpstreamUnavailable, "registry: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUpstreamUnavailable, "registry read: %v", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= 500:
		return nil, errors.Wrapf(domain.ErrUpstreamUnavailable, "registry status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Errorf("registry: status inesperado %d", resp.StatusCode)
	}

	var body pessoaResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrap(err, "decode registry response")
	}
	if !body.Sucesso || len(body.Pessoa) == 0 || string(body.Pessoa) == "null" {
		return nil, nil
	}

	var p pessoa
	if err := json.Unmarshal(body.Pessoa, &p); err != nil {
		return nil, errors.Wrap(err, "decode pessoa")
	}
	var payload map[string]any
	if err := json.Unmarshal(body.Pessoa, &payload); err != nil {
		return nil, errors.Wrap(err, "decode pessoa payload")
	}

	doc := digits(p.CpfCnpj)
	if doc == "" {
		doc = document
	}
	return &entity.RegistryClient{
		Document:  doc,
		Code:      p.Codigo,
		Name:      p.Nome,
		TradeName: p.NomeFantasia,
		Email:     p.Email,
		Payload:   payload,
		SyncedAt:  c.now(),
	}, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
