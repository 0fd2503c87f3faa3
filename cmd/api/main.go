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

	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/internal/application/usecase"
	infraai "github.com/sewellco/hts-manager/internal/infrastructure/ai"
	"github.com/sewellco/hts-manager/internal/infrastructure/notify"
	"github.com/sewellco/hts-manager/internal/infrastructure/postgres"
	"github.com/sewellco/hts-manager/internal/infrastructure/scheduler"
	"github.com/sewellco/hts-manager/internal/infrastructure/shipstation"
	httpRouter "github.com/sewellco/hts-manager/internal/interfaces/http"
	"github.com/sewellco/hts-manager/pkg/config"
	"github.com/sewellco/hts-manager/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ai_provider", cfg.AI.Provider).
		Bool("classify_enabled", cfg.Classify.Enabled).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)

	// Clasificador LLM según proveedor configurado
	var classifier ports.HTSClassifier
	if cfg.AI.Provider == "openai" {
		classifier = infraai.NewOpenAIService(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel)
	} else {
		classifier = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)
	}

	sched := scheduler.New(log)
	defer sched.Stop()
	mailer := notify.NewMailer(cfg.SMTP, log)

	classifyUC := usecase.NewClassifyUseCase(
		productRepo, classifier, sched, mailer,
		cfg.Classify, cfg.AI.HasAPIKey(), log,
	)
	sched.Bind(classifyUC.RunScheduled)

	productUC := usecase.NewProductUseCase(productRepo, classifyUC, cfg.Classify.ConfidenceThreshold, log)
	exporter := shipstation.NewExportBuilder(productRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // la clasificación sincrónica espera al proveedor LLM (timeout interno 30 s)
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "HTS Manager API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		ClassifyUC: classifyUC,
		Exporter:   exporter,
		JWTSecret:  cfg.JWT.Secret,
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
