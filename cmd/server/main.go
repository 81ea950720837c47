package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/cleanup"
	"github.com/maritimetraining/speech-pipeline/internal/config"
	"github.com/maritimetraining/speech-pipeline/internal/detector"
	"github.com/maritimetraining/speech-pipeline/internal/diarize"
	"github.com/maritimetraining/speech-pipeline/internal/handlers"
	"github.com/maritimetraining/speech-pipeline/internal/pipeline"
	"github.com/maritimetraining/speech-pipeline/internal/queue"
	"github.com/maritimetraining/speech-pipeline/internal/store"
	"github.com/maritimetraining/speech-pipeline/internal/transcription"
	"github.com/maritimetraining/speech-pipeline/internal/vad"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := cleanup.EnsureTempDirExists(cfg.Storage.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}
	if err := os.MkdirAll(cfg.Storage.ResultsDir, 0755); err != nil {
		log.Fatalf("Failed to create results directory: %v", err)
	}

	log.Info("Initializing components...")

	db, err := store.Open(cfg.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	art := artifacts.NewStore(cfg.Storage.ResultsDir)
	detectors := detector.NewHTTPClient(cfg.Services.VAD.URL, cfg.Services.Diarization.URL, cfg.Storage.TempDir)
	transcriber := transcription.NewWhisperTranscriber(cfg.Whisper.Model, cfg.Whisper.Language, cfg.Storage.TempDir, log)

	orch := pipeline.New(
		vad.NewChunker(detectors, art, log),
		diarize.NewMapBuilder(detectors, art, log),
		transcriber,
		db,
		art,
		log,
	)

	registry := queue.NewRegistry()
	workerPool := queue.NewWorkerPool(
		cfg.Workers.Count,
		orch,
		db,
		registry,
		cfg.Storage.TempDir,
		time.Duration(cfg.Jobs.TimeoutMinutes)*time.Minute,
		log,
	)
	workerPool.Start()

	cleanupScheduler := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
		log,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	app := fiber.New()
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	processHandler := handlers.NewProcessHandler(workerPool)
	jobsHandler := handlers.NewJobsHandler(registry)
	transcriptsHandler := handlers.NewTranscriptsHandler(db)
	sessionsHandler := handlers.NewSessionsHandler(db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/process", processHandler.Handle)
	app.Post("/sessions", sessionsHandler.HandleCreate)
	app.Post("/sessions/:id/events", sessionsHandler.HandleMapEvent)
	app.Get("/jobs", jobsHandler.HandleList)
	app.Get("/jobs/:id", jobsHandler.HandleGet)
	app.Get("/sessions/:id/transcript", transcriptsHandler.Handle)
	app.Get("/ws/jobs/:id", websocket.New(jobsHandler.HandleStream))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Infof("Server starting on %s", addr)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
