package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	apphttp "github.com/jhoicas/servicedesk-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/servicedesk-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testAPIKey    = "integration-key"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "servicedesk-test"
	testExpMin    = 60
)

// resolverStub devuelve la identidad registrada o ErrUnauthorized.
type resolverStub struct {
	identities map[string]authz.Identity
	err        error
}

func (r resolverStub) Resolve(_ context.Context, userID, ip string) (authz.Identity, error) {
	if r.err != nil {
		return authz.Identity{}, r.err
	}
	id, ok := r.identities[userID]
	if !ok {
		return authz.Identity{}, domain.ErrUnauthorized
	}
	id.SourceIP = ip
	return id, nil
}

// buildTestApp app Fiber mínima con AuthMiddleware y un handler que devuelve la identidad.
func buildTestApp(resolver apphttp.IdentityResolver) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(apphttp.AuthConfig{JWTSecret: testJWTSecret, SystemAPIKey: testAPIKey}, resolver),
		func(c *fiber.Ctx) error {
			id := apphttp.GetIdentity(c)
			return c.JSON(fiber.Map{"user_id": id.UserID, "roles": id.Roles})
		},
	)
	return app
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, pkgjwt.Subject{UserID: userID, Roles: []string{"ADMIN"}})
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Token válido → la identidad viene del resolver, no de los claims.
func TestAuthMiddleware_JWTUsesResolvedIdentity(t *testing.T) {
	app := buildTestApp(resolverStub{identities: map[string]authz.Identity{
		testUserID: {UserID: testUserID, Roles: []string{"OPERADOR"}},
	}})

	resp := doRequest(t, app, map[string]string{"Authorization": bearer(t, testUserID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, []any{"OPERADOR"}, body["roles"], "los papeles del token no deben usarse")
}

// Usuario desactivado después de emitir el token → 401.
func TestAuthMiddleware_InactiveUserRejected(t *testing.T) {
	app := buildTestApp(resolverStub{identities: map[string]authz.Identity{}})

	resp := doRequest(t, app, map[string]string{"Authorization": bearer(t, testUserID)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Falla de infraestructura en el resolver → 500 sin detalle.
func TestAuthMiddleware_ResolverFailure(t *testing.T) {
	app := buildTestApp(resolverStub{err: errors.New("pool cerrado")})

	resp := doRequest(t, app, map[string]string{"Authorization": bearer(t, testUserID)})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.NotContains(t, body.Message, "pool")
}

// Sin Authorization → 401 MISSING_TOKEN.
func TestAuthMiddleware_MissingToken(t *testing.T) {
	resp := doRequest(t, buildTestApp(resolverStub{}), nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
}

// Formato incorrecto o firma inválida → 401 INVALID_TOKEN.
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	app := buildTestApp(resolverStub{})
	for _, h := range []string{"Token abc", "Bearer no-es-un-jwt"} {
		resp := doRequest(t, app, map[string]string{"Authorization": h})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, h)
		assert.Equal(t, "INVALID_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
	}

	tok, err := pkgjwt.Generate("otro-secreto", testIssuer, testExpMin, pkgjwt.Subject{UserID: testUserID})
	require.NoError(t, err)
	resp := doRequest(t, app, map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// API key válida → identidad SYSTEM de integración sin consultar el resolver.
func TestAuthMiddleware_APIKeyGivesSystemIdentity(t *testing.T) {
	app := buildTestApp(resolverStub{err: errors.New("no debe llamarse")})

	resp := doRequest(t, app, map[string]string{apphttp.HeaderAPIKey: testAPIKey})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, entity.SystemIntegrationUserID, body["user_id"])
	assert.Equal(t, []any{entity.RoleSystem}, body["roles"])
}

// API key incorrecta → 401 aunque venga también un JWT válido.
func TestAuthMiddleware_WrongAPIKey(t *testing.T) {
	app := buildTestApp(resolverStub{identities: map[string]authz.Identity{testUserID: {UserID: testUserID}}})

	resp := doRequest(t, app, map[string]string{
		apphttp.HeaderAPIKey: "mala",
		"Authorization":      bearer(t, testUserID),
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_API_KEY", decode[dto.ErrorResponse](t, resp).Code)
}

// API key deshabilitada (config vacía) → cualquier clave se rechaza.
func TestAuthMiddleware_APIKeyDisabled(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", apphttp.AuthMiddleware(apphttp.AuthConfig{JWTSecret: testJWTSecret}, resolverStub{}),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp := doRequest(t, app, map[string]string{apphttp.HeaderAPIKey: ""})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = doRequest(t, app, map[string]string{apphttp.HeaderAPIKey: "cualquiera"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
