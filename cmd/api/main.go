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
	"github.com/jhoicas/oficialia-api/internal/application/correspondence"
	"github.com/jhoicas/oficialia-api/internal/infrastructure/directory"
	infrapdf "github.com/jhoicas/oficialia-api/internal/infrastructure/pdf"
	"github.com/jhoicas/oficialia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/oficialia-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/oficialia-api/internal/interfaces/http"
	"github.com/jhoicas/oficialia-api/pkg/config"
	"github.com/jhoicas/oficialia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Type).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.DB.MigrateOnStart {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Named("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones de base de datos")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	correspondenceRepo := postgres.NewCorrespondenceRepository(pool)
	positionRepo := postgres.NewPositionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Directorio de áreas con caché LRU+TTL delante del cliente HTTP
	dirClient := directory.NewCachedClient(
		directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Timeout),
		cfg.Directory.CacheSize,
		cfg.Directory.CacheTTL,
	)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de documentos")
	}

	receipts := infrapdf.NewReceiptGenerator(cfg.App.Institution)

	correspondenceUC := correspondence.NewCorrespondenceUseCase(
		txRunner, correspondenceRepo, positionRepo,
		dirClient, store, receipts,
		log.Named("correspondencia"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    25 << 20, // PDFs de hasta 20 MiB más campos del formulario
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Oficialía de Partes API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("especificación OpenAPI no encontrada, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Correspondence: correspondenceUC,
		Health:         pool,
		JWTSecret:      cfg.JWT.Secret,
		AllowedRoles:   cfg.HTTP.AllowedRoles,
		ServiceName:    cfg.App.Name,
		Log:            log.Named("http"),
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
