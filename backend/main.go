package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"threatscope-web-gui/backend/config"
	"threatscope-web-gui/backend/handlers"
	"threatscope-web-gui/backend/models"
	"threatscope-web-gui/backend/services"
	"threatscope-web-gui/backend/system"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// 0. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 1. Initialize Logger
	if err := system.InitLogger(cfg.Logging.Dir); err != nil {
		log.Printf("Warning: Could not initialize file logger: %v", err)
	}
	defer system.Close()

	system.Info("ThreatScope backend starting...")

	// 2. Setup Database (admins and settings only; threat records stay in memory)
	db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		system.Error("Failed to connect to database: %v", err)
		log.Fatal("Failed to connect to database:", err)
	}
	system.Info("Database connected: %s", cfg.Database.Path)

	// CRITICAL: Ensure schema is up to date. Panic if migration fails.
	if err := db.AutoMigrate(
		&models.Admin{},
		&models.DashboardSettings{},
	); err != nil {
		system.Error("Database migration failed: %v", err)
		log.Fatalf("CRITICAL: Database migration failed. Application cannot start: %v", err)
	}
	system.Info("Database migration completed successfully")

	// 3. Load Seed Data into the Session Store
	session := services.NewSessionStore()
	seed, err := models.LoadSeedData(cfg.Seed.Path)
	if err != nil {
		system.Warn("Could not load seed data from %s: %v", cfg.Seed.Path, err)
	} else {
		if err := session.LoadSeed(seed); err != nil {
			system.Error("Seed data rejected: %v", err)
			log.Fatalf("CRITICAL: Seed data rejected: %v", err)
		}
		system.Info("Loaded %d seed threat records", len(seed))
	}

	// 4. Setup Services
	webhookService := services.NewWebhookService()

	var settings models.DashboardSettings
	if err := db.First(&settings, 1).Error; err == nil {
		if settings.DiscordWebhookURL != "" {
			webhookService.SetWebhookURL(settings.DiscordWebhookURL)
			system.Info("Discord webhook configured")
		}
	}

	simulator := services.NewThreatSimulator()

	dailyReporter := services.NewDailyReporter(session, webhookService)
	dailyReporter.Start()

	// 5. Setup Handlers
	h := handlers.NewHandler(db, session, simulator, webhookService,
		[]byte(cfg.Auth.JWTSecret), int64(cfg.Auth.TokenTTL.Seconds()))

	// Resume live mode if the operator left it on
	if settings.LiveAutostart {
		interval := cfg.Simulation.Interval
		if settings.SimulationIntervalMs > 0 {
			interval = time.Duration(settings.SimulationIntervalMs) * time.Millisecond
		}
		h.ResumeLive(interval)
		system.Info("Live mode resumed (interval: %v)", interval)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: false,
	})

	// Add request logging middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stdout,
	}))

	app.Use(cors.New())

	api := app.Group("/api")

	// ===== Public Routes (No Auth Required) =====
	api.Post("/login", h.Login)

	// ===== Protected Routes (JWT Required) =====
	protected := api.Group("", handlers.JWTAuthMiddleware([]byte(cfg.Auth.JWTSecret)))

	// Auth
	protected.Put("/auth/password", h.ChangePassword)

	// Threats
	protected.Get("/threats", h.GetThreats)
	protected.Get("/threats/stats", h.GetThreatStats)
	protected.Get("/threats/attackers", h.GetTopAttackers)
	protected.Get("/threats/patterns", h.GetAttackPatterns)
	protected.Get("/threats/selection", h.GetSelection)
	protected.Post("/threats/selection", h.UpdateSelection)
	protected.Delete("/threats/selection", h.ClearSelection)
	protected.Post("/threats/selection/status", h.ApplySelectionStatus)
	protected.Post("/threats/bulk/status", h.BulkUpdateStatus)
	protected.Get("/threats/:id", h.GetThreat)
	protected.Put("/threats/:id/status", h.UpdateThreatStatus)

	// Live Mode
	protected.Get("/live", h.GetLiveStatus)
	protected.Post("/live/start", h.StartLive)
	protected.Post("/live/stop", h.StopLive)

	// System Status
	protected.Get("/status", h.GetSystemStatus)
	protected.Get("/events", h.GetEvents)

	// User Management
	protected.Get("/users", h.GetUsers)
	protected.Post("/users", h.CreateUser)
	protected.Delete("/users/:id", h.DeleteUser)

	// Dashboard Settings
	protected.Get("/settings", h.GetSettings)
	protected.Put("/settings", h.UpdateSettings)

	// Webhook
	protected.Post("/webhook/test", h.TestWebhook)

	// 6. Serve Static Files (Frontend)
	frontendPath := cfg.Server.FrontendPath
	app.Static("/", frontendPath, fiber.Static{
		ByteRange: true,
		Browse:    false,
		MaxAge:    3600, // Cache for 1 hour to reduce reload strain
	})

	// 7. SPA Fallback: Serve index.html for all other routes
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(frontendPath, "index.html"))
	})

	system.Info("Server starting on %s", cfg.Server.Address)

	// Graceful Shutdown Handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c // Wait for signal
		system.Info("Gracefully shutting down...")

		simulator.Stop()
		dailyReporter.Stop()

		_ = app.Shutdown()
	}()

	if err := app.Listen(cfg.Server.Address); err != nil {
		log.Fatal(err)
	}
}
