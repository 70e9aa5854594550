package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/servicedesk-api/internal/application/auth"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
)

// AuthHandler maneja el login.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Login(c.UserContext(), in, c.IP())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Identidad actual
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id := GetIdentity(c)
	out := fiber.Map{"user_id": id.UserID, "name": id.Name, "email": id.Email, "roles": id.Roles}
	if id.Binding != nil {
		out["binding"] = fiber.Map{
			"employee_id": id.Binding.EmployeeID,
			"sector_id":   id.Binding.SectorID,
			"position_id": id.Binding.PositionID,
			"scope":       id.Binding.Scope,
		}
	}
	return c.JSON(out)
}
