package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/servicedesk-api/internal/application/audit"
	"github.com/jhoicas/servicedesk-api/internal/application/auth"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/pendency"
	"github.com/jhoicas/servicedesk-api/internal/application/serviceorder"
	"github.com/jhoicas/servicedesk-api/internal/application/usecase"
	"github.com/jhoicas/servicedesk-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/servicedesk-api/internal/infrastructure/pdf"
	"github.com/jhoicas/servicedesk-api/internal/infrastructure/postgres"
	"github.com/jhoicas/servicedesk-api/internal/infrastructure/registry"
	httpRouter "github.com/jhoicas/servicedesk-api/internal/interfaces/http"
	"github.com/jhoicas/servicedesk-api/pkg/config"
	"github.com/jhoicas/servicedesk-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	promRegistry := metrics.InitRegistry()
	m := metrics.New(promRegistry)

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	sectorRepo := postgres.NewSectorRepository(pool)
	positionRepo := postgres.NewPositionRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	orderRepo := postgres.NewServiceOrderRepository(pool)
	pendencyRepo := postgres.NewPendencyRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	configRepo := postgres.NewSystemConfigRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	auditSvc := audit.NewService(auditRepo, log, m, cfg.Audit.PersistTimeout)
	catalog := authz.NewCatalog(roleRepo, auditSvc, m)
	resolver := authz.NewResolver(userRepo, employeeRepo, positionRepo)

	if cfg.Workflow.FallbackCreatorID == "" {
		log.Warn().Msg("WORKFLOW_FALLBACK_CREATOR_ID vacío: las integraciones por API key no podrán crear pendencias")
	}
	creators := pendency.NewCreatorResolver(userRepo, cfg.Workflow.FallbackCreatorID, auditSvc)

	// nil explícito: un *registry.Client nil dentro de la interfaz no sería nil
	var clientRegistry usecase.ClientRegistry
	if rc := registry.NewClient(cfg.Registry); rc != nil {
		clientRegistry = rc
	}

	authUC := auth.NewAuthUseCase(userRepo, auditSvc, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(userRepo, txRunner, catalog, auditSvc, cfg.Security.BcryptCost)
	roleUC := usecase.NewRoleUseCase(roleRepo, txRunner, catalog, auditSvc)
	orgUC := usecase.NewOrganizationUseCase(sectorRepo, positionRepo, employeeRepo, userRepo, txRunner, catalog, auditSvc, log)
	configUC := usecase.NewSystemConfigUseCase(configRepo, catalog, auditSvc)
	auditQueryUC := usecase.NewAuditQueryUseCase(auditRepo, catalog)
	clientUC := usecase.NewClientUseCase(clientRepo, clientRegistry, catalog, log)

	orderSvc := serviceorder.NewService(orderRepo, pendencyRepo, creators, txRunner, catalog, auditSvc,
		infrapdf.NewSheetGenerator(cfg.App.Name))
	pendencySvc := pendency.NewService(pendencyRepo, userRepo, sectorRepo, creators, txRunner, catalog, auditSvc)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Service Desk API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         userUC,
		RoleUC:         roleUC,
		OrganizationUC: orgUC,
		SystemConfigUC: configUC,
		AuditQueryUC:   auditQueryUC,
		ClientUC:       clientUC,
		ServiceOrders:  orderSvc,
		Pendencies:     pendencySvc,
		Resolver:       resolver,
		Auth: httpRouter.AuthConfig{
			JWTSecret:    cfg.JWT.Secret,
			SystemAPIKey: cfg.Security.SystemAPIKey,
		},
		Metrics:  m.FiberMiddleware(),
		Gatherer: promRegistry,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
