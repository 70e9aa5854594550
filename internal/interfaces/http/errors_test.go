package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Forbidden("OS:CREATE", ""), fiber.StatusForbidden, "FORBIDDEN"},
		{domain.ErrOrgBindingRequired, fiber.StatusForbidden, "ORG_BINDING_REQUIRED"},
		{domain.ErrPendencyNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrDuplicateEmail, fiber.StatusConflict, "CONFLICT"},
		{domain.ErrLastAdmin, fiber.StatusUnprocessableEntity, "INVARIANT_VIOLATION"},
		{domain.InUse("sector", "funcionarios"), fiber.StatusUnprocessableEntity, "INVARIANT_VIOLATION"},
		{domain.Invalid("title: requerido"), fiber.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("registry: %w", domain.ErrUpstreamUnavailable), fiber.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestWriteError_IncludesMissingPermission(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, domain.Forbidden("USER:MANAGE", ""))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "USER:MANAGE", body.Permission)
	assert.Equal(t, "FORBIDDEN", body.Code)
}
