package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/application/usecase"
)

// AdminHandler configuración del sistema, historial de auditoría y consulta de clientes.
type AdminHandler struct {
	config  *usecase.SystemConfigUseCase
	audit   *usecase.AuditQueryUseCase
	clients *usecase.ClientUseCase
}

func NewAdminHandler(config *usecase.SystemConfigUseCase, audit *usecase.AuditQueryUseCase, clients *usecase.ClientUseCase) *AdminHandler {
	return &AdminHandler{config: config, audit: audit, clients: clients}
}

// GetConfig godoc
// @Summary      Configuración del sistema
// @Tags         system
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SystemConfigResponse
// @Router       /api/system-config [get]
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	out, err := h.config.Get(c.UserContext(), GetIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateConfig godoc
// @Summary      Actualizar configuración del sistema
// @Tags         system
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateSystemConfigRequest  true  "Claves a fusionar"
// @Success      200   {object}  dto.SystemConfigResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/system-config [put]
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	var in dto.UpdateSystemConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.config.Update(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListAuditEvents godoc
// @Summary      Historial de auditoría
// @Tags         system
// @Security     Bearer
// @Produce      json
// @Param        event     query  string  false  "Tipo de evento"
// @Param        actor_id  query  string  false  "Actor"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {array}  dto.AuditEventResponse
// @Router       /api/audit-events [get]
func (h *AdminHandler) ListAuditEvents(c *fiber.Ctx) error {
	var in dto.ListAuditEventsRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.audit.List(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LookupClient godoc
// @Summary      Cliente por CPF/CNPJ
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        document  path  string  true  "CPF/CNPJ"
// @Success      200       {object}  dto.ClientResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Failure      503       {object}  dto.ErrorResponse
// @Router       /api/clients/{document} [get]
func (h *AdminHandler) LookupClient(c *fiber.Ctx) error {
	out, err := h.clients.Lookup(c.UserContext(), GetIdentity(c), c.Params("document"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SearchClients godoc
// @Summary      Buscar clientes en la copia local
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  true   "Nombre o documento (mín. 3 caracteres)"
// @Param        limit  query  int     false  "Límite"  default(20)
// @Success      200    {array}  dto.ClientResponse
// @Router       /api/clients [get]
func (h *AdminHandler) SearchClients(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out, err := h.clients.Search(c.UserContext(), GetIdentity(c), c.Query("q"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
