package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker verifica las dependencias críticas (BD) para /health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Correspondence CorrespondenceService
	Health         HealthChecker
	JWTSecret      string
	AllowedRoles   []string // vacío = cualquier rol autenticado
	ServiceName    string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(MetricsMiddleware(log))

	// Operación (público)
	app.Get("/health", healthHandler(deps))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	if len(deps.AllowedRoles) > 0 {
		protected.Use(RequireRole(deps.AllowedRoles...))
	}

	// Correspondencia
	corr := protected.Group("/correspondencia")
	h := NewCorrespondenceHandler(deps.Correspondence, log)
	corr.Post("/", RequirePosition(deps.Correspondence), h.Create)
	corr.Get("/", h.List)
	corr.Put("/estado", h.ChangeStatus)
	corr.Put("/editar", h.Edit)
	corr.Get("/documento/:fileRoute", h.Document)
	corr.Get("/:id", h.Get)
	corr.Get("/:id/acuse", h.Receipt)

	// Directorio de áreas
	areaHandler := NewAreaHandler(deps.Correspondence, log)
	protected.Get("/areas", areaHandler.List)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health.Ping(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Fail("UNHEALTHY", "base de datos no disponible", err.Error()))
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	}
}
