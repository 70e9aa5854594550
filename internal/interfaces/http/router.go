package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/servicedesk-api/internal/application/auth"
	"github.com/jhoicas/servicedesk-api/internal/application/pendency"
	"github.com/jhoicas/servicedesk-api/internal/application/serviceorder"
	"github.com/jhoicas/servicedesk-api/internal/application/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	UserUC         *usecase.UserUseCase
	RoleUC         *usecase.RoleUseCase
	OrganizationUC *usecase.OrganizationUseCase
	SystemConfigUC *usecase.SystemConfigUseCase
	AuditQueryUC   *usecase.AuditQueryUseCase
	ClientUC       *usecase.ClientUseCase
	ServiceOrders  *serviceorder.Service
	Pendencies     *pendency.Service
	Resolver       IdentityResolver
	Auth           AuthConfig
	Metrics        fiber.Handler       // middleware de métricas HTTP; nil = sin instrumentar
	Gatherer       prometheus.Gatherer // nil = sin /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics)
	}
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (Bearer Token o X-API-Key)
	protected := api.Group("/", AuthMiddleware(deps.Auth, deps.Resolver))
	protected.Get("/auth/me", authHandler.Me)

	users := NewUserHandler(deps.UserUC)
	protected.Get("/users", users.List)
	protected.Post("/users", users.Create)
	protected.Get("/users/simple", users.ListSimple)
	protected.Get("/users/:id", users.GetByID)
	protected.Put("/users/:id", users.Update)
	protected.Delete("/users/:id", users.Delete)

	roles := NewRoleHandler(deps.RoleUC)
	protected.Get("/roles", roles.List)
	protected.Post("/roles", roles.Create)
	protected.Put("/roles/:name", roles.Update)
	protected.Delete("/roles/:name", roles.Delete)
	protected.Get("/permissions", roles.ListPermissions)

	org := NewOrganizationHandler(deps.OrganizationUC)
	protected.Get("/sectors", org.ListSectors)
	protected.Post("/sectors", org.CreateSector)
	protected.Get("/sectors/:id", org.GetSector)
	protected.Put("/sectors/:id", org.UpdateSector)
	protected.Delete("/sectors/:id", org.DeleteSector)

	protected.Get("/positions", org.ListPositions)
	protected.Post("/positions", org.CreatePosition)
	protected.Get("/positions/:id", org.GetPosition)
	protected.Put("/positions/:id", org.UpdatePosition)
	protected.Delete("/positions/:id", org.DeletePosition)

	protected.Get("/employees", org.ListEmployees)
	protected.Post("/employees", org.CreateEmployee)
	protected.Post("/employees/import", org.ImportEmployees)
	protected.Get("/employees/by-user/:userId", org.GetEmployeeByUser)
	protected.Get("/employees/:id", org.GetEmployee)
	protected.Put("/employees/:id", org.UpdateEmployee)
	protected.Delete("/employees/:id", org.DeleteEmployee)

	orders := NewServiceOrderHandler(deps.ServiceOrders)
	protected.Get("/service-orders", orders.List)
	protected.Post("/service-orders", orders.Create)
	protected.Get("/service-orders/:id", orders.GetByID)
	protected.Get("/service-orders/:id/pdf", orders.Sheet)

	pendencies := NewPendencyHandler(deps.Pendencies)
	protected.Get("/pendencies", pendencies.List)
	protected.Post("/pendencies", pendencies.Create)
	protected.Get("/pendencies/:id", pendencies.GetByID)
	protected.Patch("/pendencies/:id", pendencies.Update)

	admin := NewAdminHandler(deps.SystemConfigUC, deps.AuditQueryUC, deps.ClientUC)
	protected.Get("/system-config", admin.GetConfig)
	protected.Put("/system-config", admin.UpdateConfig)
	protected.Get("/audit-events", admin.ListAuditEvents)
	protected.Get("/clients", admin.SearchClients)
	protected.Get("/clients/:document", admin.LookupClient)
}
