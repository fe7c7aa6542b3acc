package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/skillwise/internal/config"
	"github.com/fadilmartias/skillwise/internal/domain/fiber/handler"
	"github.com/fadilmartias/skillwise/internal/logger"
	"github.com/fadilmartias/skillwise/internal/middleware"
	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/fadilmartias/skillwise/internal/repository"
	"github.com/fadilmartias/skillwise/internal/service"
	"github.com/fadilmartias/skillwise/internal/usecase"
	"github.com/fadilmartias/skillwise/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	envErr := godotenv.Load()

	appConfig := config.LoadAppConfig()
	logger.Init(&logger.Config{Level: appConfig.LogLevel, Format: appConfig.LogFormat})
	if envErr != nil {
		slog.Info("could not load .env file, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: 6 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message}, err)
		},
	})
	app.Use(requestid.New())
	app.Use(middleware.RequestContext())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db, err := ConnectDB()
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	generator, embedder, err := newGenerator(ctx)
	if err != nil {
		slog.Error("model client setup failed", "error", err)
		os.Exit(1)
	}

	genConfig := config.LoadGenerationConfig()
	requester := service.NewRoadmapService(generator, service.RetryPolicy{
		MaxAttempts: genConfig.MaxRetries,
		Unit:        genConfig.BackoffUnit,
		Sleep:       service.SleepContext,
	})

	uc := usecase.NewRoadmapUsecase(
		repository.NewSessionRepository(db),
		repository.NewSectionRepository(db),
		repository.NewFeedbackRepository(db),
		util.NewExtractor(config.LoadOCRConfig(), false),
		requester,
		embedder,
	)
	handler.NewRoadmapHandler(uc, appConfig.UploadDir).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				slog.Debug("runtime stats", "goroutines", runtime.NumGoroutine())
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("server running", "port", appConfig.Port, "env", appConfig.Env, "provider", genConfig.Provider)
	if err := app.Listen(appConfig.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newGenerator selects the completion provider. Embeddings always come from
// Gemini and are skipped when no Gemini key is configured.
func newGenerator(ctx context.Context) (service.Generator, service.Embedder, error) {
	var embedder service.Embedder
	gemini, geminiErr := service.NewGeminiService(ctx)
	if geminiErr == nil {
		embedder = gemini
	}

	switch config.LoadGenerationConfig().Provider {
	case config.ProviderOpenRouter:
		openRouter, err := service.NewOpenRouterService()
		if err != nil {
			return nil, nil, err
		}
		if embedder == nil {
			slog.Warn("GEMINI_API_KEY not set, questions will use the whole roadmap as context")
		}
		return openRouter, embedder, nil
	default:
		if geminiErr != nil {
			return nil, nil, geminiErr
		}
		return gemini, embedder, nil
	}
}

func ConnectDB() (*gorm.DB, error) {
	dbConfig := config.LoadDBConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not get database instance: %w", err)
	}
	pgDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	pgDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	pgDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector: %w", err)
	}
	err = db.AutoMigrate(&model.RoadmapSession{}, &model.RoadmapSection{}, &model.Feedback{})
	if err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}
