package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/internal/application/usecase"
)

// OrganizationHandler sectores, cargos y funcionarios.
type OrganizationHandler struct {
	uc *usecase.OrganizationUseCase
}

func NewOrganizationHandler(uc *usecase.OrganizationUseCase) *OrganizationHandler {
	return &OrganizationHandler{uc: uc}
}

func activeOnly(c *fiber.Ctx) bool { return c.QueryBool("active", false) }

// ListSectors godoc
// @Summary      Listar sectores
// @Tags         organization
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activos"
// @Success      200     {array}  dto.SectorResponse
// @Router       /api/sectors [get]
func (h *OrganizationHandler) ListSectors(c *fiber.Ctx) error {
	out, err := h.uc.ListSectors(c.UserContext(), GetIdentity(c), activeOnly(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetSector godoc
// @Summary      Obtener sector
// @Tags         organization
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del sector"
// @Success      200  {object}  dto.SectorResponse
// @Router       /api/sectors/{id} [get]
func (h *OrganizationHandler) GetSector(c *fiber.Ctx) error {
	out, err := h.uc.GetSector(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSector godoc
// @Summary      Crear sector
// @Tags         organization
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SectorRequest  true  "Sector"
// @Success      201   {object}  dto.SectorResponse
// @Router       /api/sectors [post]
func (h *OrganizationHandler) CreateSector(c *fiber.Ctx) error {
	var in dto.SectorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSector(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateSector godoc
// @Summary      Actualizar sector
// @Tags         organization
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del sector"
// @Param        body  body  dto.SectorRequest  true  "Sector"
// @Success      200   {object}  dto.SectorResponse
// @Router       /api/sectors/{id} [put]
func (h *OrganizationHandler) UpdateSector(c *fiber.Ctx) error {
	var in dto.SectorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateSector(c.UserContext(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteSector godoc
// @Summary      Eliminar sector
// @Tags         organization
// @Security     Bearer
// @Param        id   path  string  true  "ID del sector"
// @Success      204
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sectors/{id} [delete]
func (h *OrganizationHandler) DeleteSector(c *fiber.Ctx) error {
	if err := h.uc.DeleteSector(c.UserContext(), GetIdentity(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListPositions godoc
// @Summary      Listar cargos
// @Tags         organization
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activos"
// @Success      200     {array}  dto.PositionResponse
// @Router       /api/positions [get]
func (h *OrganizationHandler) ListPositions(c *fiber.Ctx) error {
	out, err := h.uc.ListPositions(c.UserContext(), GetIdentity(c), activeOnly(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetPosition godoc
// @Summary      Obtener cargo
// @Tags         organization
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cargo"
// @Success      200  {object}  dto.PositionResponse
// @Router       /api/positions/{id} [get]
func (h *OrganizationHandler) GetPosition(c *fiber.Ctx) error {
	out, err := h.uc.GetPosition(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreatePosition godoc
// @Summary      Crear cargo
// @Tags         organization
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PositionRequest  true  "Cargo con alcance y sectores permitidos"
// @Success      201   {object}  dto.PositionResponse
// @Router       /api/positions [post]
func (h *OrganizationHandler) CreatePosition(c *fiber.Ctx) error {
	var in dto.PositionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreatePosition(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdatePosition godoc
// @Summary      Actualizar cargo
// @Tags         organization
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del cargo"
// @Param        body  body  dto.PositionRequest  true  "Cargo"
// @Success      200   {object}  dto.PositionResponse
// @Router       /api/positions/{id} [put]
func (h *OrganizationHandler) UpdatePosition(c *fiber.Ctx) error {
	var in dto.PositionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdatePosition(c.UserContext(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeletePosition godoc
// @Summary      Eliminar cargo
// @Tags         organization
// @Security     Bearer
// @Param        id   path  string  true  "ID del cargo"
// @Success      204
// @Router       /api/positions/{id} [delete]
func (h *OrganizationHandler) DeletePosition(c *fiber.Ctx) error {
	if err := h.uc.DeletePosition(c.UserContext(), GetIdentity(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListEmployees godoc
// @Summary      Listar funcionarios
// @Tags         organization
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activos"
// @Success      200     {array}  dto.EmployeeResponse
// @Router       /api/employees [get]
func (h *OrganizationHandler) ListEmployees(c *fiber.Ctx) error {
	out, err := h.uc.ListEmployees(c.UserContext(), GetIdentity(c), activeOnly(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetEmployee godoc
// @Summary      Obtener funcionario
// @Tags         organization
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del funcionario"
// @Success      200  {object}  dto.EmployeeResponse
// @Router       /api/employees/{id} [get]
func (h *OrganizationHandler) GetEmployee(c *fiber.Ctx) error {
	out, err := h.uc.GetEmployee(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetEmployeeByUser godoc
// @Summary      Funcionario vinculado a un usuario
// @Tags         organization
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200     {object}  dto.EmployeeResponse
// @Router       /api/employees/by-user/{userId} [get]
func (h *OrganizationHandler) GetEmployeeByUser(c *fiber.Ctx) error {
	out, err := h.uc.GetEmployeeByUser(c.UserContext(), GetIdentity(c), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateEmployee godoc
// @Summary      Crear funcionario
// @Tags         organization
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EmployeeRequest  true  "Funcionario"
// @Success      201   {object}  dto.EmployeeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/employees [post]
func (h *OrganizationHandler) CreateEmployee(c *fiber.Ctx) error {
	var in dto.EmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateEmployee(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ImportEmployees godoc
// @Summary      Importación masiva de funcionarios
// @Tags         organization
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  []dto.EmployeeRequest  true  "Funcionarios"
// @Success      200   {object}  dto.ImportEmployeesResult
// @Router       /api/employees/import [post]
func (h *OrganizationHandler) ImportEmployees(c *fiber.Ctx) error {
	var rows []dto.EmployeeRequest
	if err := c.BodyParser(&rows); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ImportEmployees(c.UserContext(), GetIdentity(c), rows)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateEmployee godoc
// @Summary      Actualizar funcionario
// @Tags         organization
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del funcionario"
// @Param        body  body  dto.EmployeeRequest  true  "Funcionario"
// @Success      200   {object}  dto.EmployeeResponse
// @Router       /api/employees/{id} [put]
func (h *OrganizationHandler) UpdateEmployee(c *fiber.Ctx) error {
	var in dto.EmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateEmployee(c.UserContext(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteEmployee godoc
// @Summary      Eliminar funcionario
// @Tags         organization
// @Security     Bearer
// @Param        id   path  string  true  "ID del funcionario"
// @Success      204
// @Router       /api/employees/{id} [delete]
func (h *OrganizationHandler) DeleteEmployee(c *fiber.Ctx) error {
	if err := h.uc.DeleteEmployee(c.UserContext(), GetIdentity(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
