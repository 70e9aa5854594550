package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/application/pendency"
	"github.com/jhoicas/servicedesk-api/internal/application/serviceorder"
)

// ServiceOrderHandler órdenes de servicio.
type ServiceOrderHandler struct {
	svc *serviceorder.Service
}

func NewServiceOrderHandler(svc *serviceorder.Service) *ServiceOrderHandler {
	return &ServiceOrderHandler{svc: svc}
}

// Create godoc
// @Summary      Abrir orden de servicio (crea también su pendencia)
// @Tags         service-orders
// @Security     Bearer
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateServiceOrderRequest  true  "Contrato, cliente y descripción"
// @Success      201   {object}  dto.CreateServiceOrderResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/service-orders [post]
func (h *ServiceOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateServiceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Create(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de servicio
// @Tags         service-orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.ServiceOrderResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/service-orders [get]
func (h *ServiceOrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.svc.List(c.UserContext(), GetIdentity(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de servicio
// @Tags         service-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la OS"
// @Success      200  {object}  dto.ServiceOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/service-orders/{id} [get]
func (h *ServiceOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Sheet godoc
// @Summary      Ficha PDF de la orden de servicio
// @Tags         service-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la OS"
// @Success      200  {file}  binary
// @Router       /api/service-orders/{id}/pdf [get]
func (h *ServiceOrderHandler) Sheet(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.svc.Sheet(c.UserContext(), GetIdentity(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="os-`+id+`.pdf"`)
	return c.Send(doc)
}

// PendencyHandler pendencias.
type PendencyHandler struct {
	svc *pendency.Service
}

func NewPendencyHandler(svc *pendency.Service) *PendencyHandler {
	return &PendencyHandler{svc: svc}
}

// Create godoc
// @Summary      Crear pendencia manual
// @Tags         pendencies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePendencyRequest  true  "Pendencia"
// @Success      201   {object}  dto.PendencyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pendencies [post]
func (h *PendencyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePendencyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Create(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar pendencias visibles
// @Tags         pendencies
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"
// @Param        type    query  string  false  "Tipo"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.PendencyResponse
// @Router       /api/pendencies [get]
func (h *PendencyHandler) List(c *fiber.Ctx) error {
	var in dto.ListPendenciesRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.List(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener pendencia
// @Tags         pendencies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la pendencia"
// @Success      200  {object}  dto.PendencyResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/pendencies/{id} [get]
func (h *PendencyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar pendencia
// @Tags         pendencies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la pendencia"
// @Param        body  body  dto.UpdatePendencyRequest  true  "Cambios"
// @Success      200   {object}  dto.PendencyResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/pendencies/{id} [patch]
func (h *PendencyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePendencyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Update(c.UserContext(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
