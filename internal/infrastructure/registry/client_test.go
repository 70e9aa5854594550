package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchByDocument_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Pessoa/Get", r.URL.Path)
		assert.Equal(t, "12345678000199", r.URL.Query().Get("cpfcnpj"))
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, "secret", r.Header.Get("x-api-secret"))
		_, _ = w.Write([]byte(`{"Sucesso":true,"Pessoa":{"Codigo":77,"Nome":"ACME LTDA","NomeFantasia":"ACME","CpfCnpj":"12.345.678/0001-99","Email":"x@acme.com"}}`))
	}))
	defer srv.Close()

	c := NewClient(config.RegistryConfig{BaseURL: srv.URL + "/", APIKey: "key", APISecret: "secret", Timeout: time.Second})
	got, err := c.FetchByDocument(context.Background(), "12345678000199")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "12345678000199", got.Document)
	assert.Equal(t, int64(77), got.Code)
	assert.Equal(t, "ACME LTDA", got.Name)
	assert.Equal(t, "ACME", got.TradeName)
	assert.Equal(t, "ACME LTDA", got.Payload["Nome"])
}

func TestFetchByDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Sucesso":false,"Mensagem":"Cliente não encontrado"}`))
	}))
	defer srv.Close()

	got, err := NewClient(config.RegistryConfig{BaseURL: srv.URL}).FetchByDocument(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFetchByDocument_ServerErrorIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(config.RegistryConfig{BaseURL: srv.URL}).FetchByDocument(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchByDocument_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(config.RegistryConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.FetchByDocument(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestNewClient_DisabledWithoutBaseURL(t *testing.T) {
	assert.Nil(t, NewClient(config.RegistryConfig{}))
}
