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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/application/ports"
	"github.com/jhoicas/smartcompta/internal/application/voice"
	infraai "github.com/jhoicas/smartcompta/internal/infrastructure/ai"
	infrapdf "github.com/jhoicas/smartcompta/internal/infrastructure/pdf"
	"github.com/jhoicas/smartcompta/internal/infrastructure/postgres"
	infrastripe "github.com/jhoicas/smartcompta/internal/infrastructure/stripe"
	httpRouter "github.com/jhoicas/smartcompta/internal/interfaces/http"
	"github.com/jhoicas/smartcompta/pkg/config"
	"github.com/jhoicas/smartcompta/pkg/logger"
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
		Bool("auth", cfg.JWT.Enabled()).
		Bool("stripe", cfg.Stripe.Enabled()).
		Str("extraction", cfg.AI.ExtractionProvider).
		Msg("iniciando aplicación")

	// Importes como números JSON (450.5), no como strings.
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	clientRepo := postgres.NewClientRepository(pool)
	factureRepo := postgres.NewFactureRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	numberingUC := billing.NewNumberingUseCase(txRunner)
	clientUC := billing.NewClientUseCase(clientRepo)
	payments := infrastripe.NewPaymentLinkService(cfg.Stripe)
	createUC := billing.NewCreateFactureUseCase(clientRepo, factureRepo, numberingUC, payments)

	aiTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	if cfg.AI.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY vacío: transcripción en modo demostración")
	}
	gemini := infraai.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.Language, aiTimeout)
	var extractor ports.FieldExtractor = gemini
	if cfg.AI.ExtractionProvider == "anthropic" {
		extractor = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel, aiTimeout)
	}
	voiceUC := voice.NewVoiceUseCase(gemini, extractor, clientUC, aiTimeout)

	// PDF: vista previa de la factura con los datos del cabinet
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.Cabinet)
	pdfUC := billing.NewPDFUseCase(factureRepo, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: aiTimeout + 10*time.Second, // transcripción y extracción esperan al proveedor IA
		IdleTimeout:  time.Second * 60,
		BodyLimit:    21 << 20, // audio de hasta 20 MB + multipart
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger())
	app.Use(httpRouter.MetricsMiddleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SmartCompta API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", httpRouter.MetricsHandler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		VoiceUC:   voiceUC,
		CreateUC:  createUC,
		ClientUC:  clientUC,
		PDFUC:     pdfUC,
		JWTSecret: cfg.JWT.Secret,
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
