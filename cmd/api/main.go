package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/analyzer"
	"github.com/scopesentry/backend/internal/api/handlers"
	"github.com/scopesentry/backend/internal/cache/redis"
	"github.com/scopesentry/backend/internal/intake"
	"github.com/scopesentry/backend/internal/llm"
	"github.com/scopesentry/backend/internal/metrics"
	"github.com/scopesentry/backend/internal/middleware/ratelimit"
	"github.com/scopesentry/backend/internal/middleware/security"
	"github.com/scopesentry/backend/internal/middleware/validation"
	"github.com/scopesentry/backend/internal/requests"
	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/config"
	appLogger "github.com/scopesentry/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ScopeSentry API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// The cache is an optimization; a dead redis never blocks startup.
	var cache requests.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLMinutes)*time.Minute,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, analysis cache disabled", zap.Error(err))
		} else {
			cache = redisClient
			defer redisClient.Close()
		}
	}

	engineCfg := analyzer.Config{
		Strategy: cfg.Analyzer.Strategy,
		Timeout:  time.Duration(cfg.Analyzer.TimeoutSec) * time.Second,
	}
	if cfg.Analyzer.Strategy == analyzer.StrategyAI {
		if cfg.LLM.APIKey == "" {
			appLogger.Warn("AI strategy configured without API key, falling back to rules")
		} else {
			llmClient := llm.NewClient(
				cfg.LLM.APIKey,
				cfg.LLM.Model,
				cfg.LLM.Temperature,
				cfg.LLM.MaxTokens,
				cfg.LLM.TimeoutSec,
			)
			engineCfg.AI = analyzer.NewAIStrategy(llmClient)
		}
	}

	engine := analyzer.New(engineCfg)
	appLogger.Info("Analysis engine ready", zap.String("strategy", engine.Strategy()))

	processor := intake.NewProcessor(0)
	service := requests.NewService(sqliteClient, engine, processor, cache)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	clientHandler := handlers.NewClientHandler(sqliteClient)
	projectHandler := handlers.NewProjectHandler(sqliteClient)
	scopeItemHandler := handlers.NewScopeItemHandler(sqliteClient, service)
	requestHandler := handlers.NewRequestHandler(sqliteClient, service)
	proposalHandler := handlers.NewProposalHandler(sqliteClient)
	dashboardHandler := handlers.NewDashboardHandler(sqliteClient)
	publicHandler := handlers.NewPublicHandler(sqliteClient, service)
	wsHandler := handlers.NewWebSocketHandler(service)

	api := app.Group("/api/v1")

	api.Post("/clients", clientHandler.CreateClient)
	api.Get("/clients", clientHandler.ListClients)
	api.Get("/clients/:id", clientHandler.GetClient)

	api.Post("/projects", projectHandler.CreateProject)
	api.Get("/projects", projectHandler.ListProjects)
	api.Get("/projects/:id", projectHandler.GetProject)
	api.Put("/projects/:id/public-access", projectHandler.UpdatePublicAccess)

	api.Post("/projects/:id/scope-items", scopeItemHandler.AddScopeItem)
	api.Get("/projects/:id/scope-items", scopeItemHandler.ListScopeItems)
	api.Patch("/projects/:id/scope-items/:itemId", scopeItemHandler.SetCompleted)
	api.Delete("/projects/:id/scope-items/:itemId", scopeItemHandler.DeleteScopeItem)

	api.Post("/projects/:id/requests", requestHandler.CreateRequest)
	api.Get("/projects/:id/requests", requestHandler.ListRequests)
	api.Post("/projects/:id/requests/analyze", requestHandler.BulkAnalyze)
	api.Get("/requests/:requestId", requestHandler.GetRequest)
	api.Put("/requests/:requestId/classification", requestHandler.OverrideClassification)
	api.Post("/requests/:requestId/reanalyze", requestHandler.Reanalyze)
	api.Get("/requests/:requestId/history", requestHandler.GetAnalysisHistory)
	api.Put("/requests/:requestId/status", requestHandler.UpdateStatus)

	api.Post("/projects/:id/proposals", proposalHandler.CreateProposal)
	api.Get("/projects/:id/proposals", proposalHandler.ListProposals)
	api.Put("/projects/:id/proposals/:proposalId/status", proposalHandler.UpdateStatus)

	api.Get("/projects/:id/dashboard", dashboardHandler.GetProjectDashboard)

	app.Get("/public/requests/:token", publicHandler.GetPublicProject)
	app.Post("/public/requests/:token", publicHandler.SubmitRequest)

	app.Get("/ws/preview", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
