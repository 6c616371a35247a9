package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lexassist/internal/config"
	"lexassist/internal/handlers"
	"lexassist/internal/health"
	"lexassist/internal/jobs"
	"lexassist/internal/middleware"
	"lexassist/internal/models"
	"lexassist/internal/preflight"
	"lexassist/internal/services"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&port, "port", "", "Port to listen on (default $PORT or 3001)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	cfg := rt.cfg
	if port != "" {
		cfg.Port = port
	}

	log.WithFields(log.Fields{
		"version":     Version,
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("Starting lexassist server")

	metrics := services.InitMetrics()
	rt.factory.OnFallback = func(from, to models.ProviderID) {
		metrics.RecordFallback(string(from), string(to))
	}

	providerCache := health.NewService(rt.factory, cfg.ProviderCacheTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Startup checks only warn: the provider is resolved again on every request
	preflightCtx, preflightCancel := context.WithTimeout(ctx, 30*time.Second)
	results := preflight.NewChecker(rt.resolver, rt.factory, cfg.ProvidersFile).RunAll(preflightCtx)
	preflightCancel()
	if preflight.HasFailures(results) {
		log.Warn("Pre-flight checks failed; chat requests will be refused until the configuration is fixed")
	}

	var scheduler *jobs.JobScheduler
	if providerCache.Enabled() {
		scheduler, err = jobs.NewJobScheduler()
		if err != nil {
			return err
		}
		checker := jobs.NewProviderHealthChecker(providerCache, cfg.AvailabilityCheckInterval)
		if err := scheduler.Register("provider-availability", checker); err != nil {
			return err
		}
		scheduler.Start()
	}

	go func() {
		files := []string{cfg.EnvFile, cfg.ProvidersFile}
		if err := config.Watch(ctx, files, reloadConfig(rt, providerCache)); err != nil {
			log.WithError(err).Warn("Configuration hot reload disabled")
		}
	}()

	app := newApp(cfg)

	prometheus := fiberprometheus.New("lexassist")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	registerRoutes(app, cfg, rt.resolver, providerCache)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down server...")
		cancel()

		if scheduler != nil {
			if err := scheduler.Stop(); err != nil {
				log.WithError(err).Warn("Error stopping job scheduler")
			}
		}

		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.WithError(err).Warn("Error shutting down server")
		}
	}()

	log.WithField("url", "http://localhost:"+cfg.Port+"/health").Info("Health check endpoint")
	return app.Listen(":" + cfg.Port)
}

// reloadConfig re-reads a changed .env or provider table and drops cached providers
func reloadConfig(rt *deps, providerCache *health.Service) func(path string) {
	envPath, _ := filepath.Abs(rt.cfg.EnvFile)
	providersPath, _ := filepath.Abs(rt.cfg.ProvidersFile)

	return func(path string) {
		switch path {
		case envPath:
			if err := godotenv.Overload(path); err != nil {
				log.WithError(err).WithField("file", path).Warn("Failed to reload .env")
				return
			}
		case providersPath:
			table, err := config.LoadProviders(path)
			if err != nil {
				log.WithError(err).WithField("file", path).Warn("Invalid provider table, keeping previous")
				return
			}
			rt.resolver.SetTable(table)
		}

		providerCache.Invalidate()
	}
}

// newApp creates the Fiber app with the base middleware stack
func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "lexassist " + Version,
		ReadTimeout:  cfg.OllamaTimeout + time.Minute, // local models can take minutes to cold start
		WriteTimeout: cfg.OllamaTimeout + time.Minute,
		IdleTimeout:  2 * time.Minute,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024, // base64 images inflate request bodies
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	allowCredentials := cfg.AllowedOrigins != "*"
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
		ExposeHeaders:    middleware.RequestIDHeader,
		AllowCredentials: allowCredentials,
	}))

	return app
}

// registerRoutes wires the handlers
func registerRoutes(app *fiber.App, cfg *config.Config, resolver *config.Resolver, providerCache *health.Service) {
	rateLimitConfig := middleware.LoadRateLimitConfig(cfg.RateLimitChat, cfg.Environment)

	app.Get("/health", handlers.NewHealthHandler(resolver, providerCache).Handle)

	api := app.Group("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	api.Get("/models", handlers.NewModelsHandler(resolver, providerCache).Handle)
	api.Post("/chat", middleware.ChatRateLimiter(rateLimitConfig), handlers.NewChatHandler(resolver, providerCache).Handle)
}

// errorHandler renders framework errors (404, body too large, recovered panics) in the API shape
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Failed to generate response"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.WithFields(log.Fields{
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		}).Error("Unhandled error")
	}

	return c.Status(code).JSON(models.ChatResponse{Success: false, Error: message})
}
