package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"frontline/internal/config"
	"frontline/internal/database"
	"frontline/internal/handlers"
	"frontline/internal/jobs"
	"frontline/internal/logging"
	"frontline/internal/middleware"
	"frontline/internal/services"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Frontline server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (port %s, sweep %q, pending TTL %s)",
		cfg.Port, cfg.SweepSchedule, cfg.PendingTTL)

	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}

	mongoDB, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())

	if err := mongoDB.Initialize(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize MongoDB indexes: %v", err)
	}

	// Stores and core services
	knowledgeStore := services.NewKnowledgeStore(mongoDB)
	requestStore := services.NewRequestStore(mongoDB)
	matcher := services.NewMatcher(knowledgeStore)
	sessionBus := services.NewSessionBus()
	metrics := services.InitMetrics()
	engine := services.NewResolutionService(matcher, requestStore, knowledgeStore, sessionBus, metrics)

	// Seed the knowledge base, never overwriting learned answers
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if _, err := services.SeedKnowledge(seedCtx, knowledgeStore, cfg.KnowledgeSeedsPath); err != nil {
		log.Printf("⚠️ Failed to seed knowledge base: %v", err)
	}
	if total, err := knowledgeStore.Count(seedCtx); err == nil {
		log.Printf("📚 Knowledge base holds %d entries", total)
	}
	seedCancel()

	// Hot-reload the seeds file when one is configured
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.KnowledgeSeedsPath != "" {
		go services.WatchKnowledgeSeeds(watchCtx, knowledgeStore, matcher, cfg.KnowledgeSeedsPath)
	}

	// Optional Redis fan-out for cross-instance event consumers
	var eventFanout *services.EventFanout
	if cfg.RedisURL != "" {
		redisService, err := services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (event fan-out disabled)", err)
		} else {
			defer redisService.Close()
			eventFanout = services.NewEventFanout(redisService, sessionBus)
			eventFanout.Start()
		}
	} else {
		log.Println("⚠️ REDIS_URL not set - event fan-out disabled")
	}

	// Voice demo: simulated media sessions driven by session_started events
	var voiceSim *services.VoiceSessionSimulator
	if cfg.VoiceDemoEnabled {
		voiceSim = services.NewVoiceSessionSimulator(engine, sessionBus)
		voiceSim.Start()
		log.Println("✅ Voice session simulator started")
	}

	// Background jobs: the timeout sweep expires stale Pending requests
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	timeoutJob := jobs.NewRequestTimeoutJob(requestStore, cfg.SweepSchedule, cfg.PendingTTL, sessionBus, metrics)
	if err := scheduler.Register(timeoutJob); err != nil {
		log.Fatalf("❌ Failed to register timeout sweep: %v", err)
	}
	scheduler.Start()

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Frontline v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("frontline")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Rate limiting
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️ [RATE-LIMIT] Loaded config: Global=%d/min, Questions=%d/min, WS=%d/min",
		rateLimitConfig.GlobalAPIMax, rateLimitConfig.QuestionMax, rateLimitConfig.WebSocketMax)

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173,http://localhost:5174"
		log.Println("⚠️ ALLOWED_ORIGINS not set, using development defaults")
	}
	allowCredentials := allowedOrigins != "*"

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowCredentials,
	}))

	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Handlers
	healthHandler := handlers.NewHealthHandler(mongoDB, requestStore)
	requestHandler := handlers.NewRequestHandler(engine)
	tokenHandler := handlers.NewTokenHandler(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.LiveKitURL, engine)
	updatesHandler := handlers.NewUpdatesWebSocketHandler(sessionBus)

	// Routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API is running...")
	})
	app.Get("/api/health", healthHandler.Handle)

	app.Post("/api/requests/create", middleware.QuestionRateLimiter(rateLimitConfig), requestHandler.Create)
	app.Get("/api/requests", requestHandler.List)
	app.Post("/api/requests/:id/answer", requestHandler.Answer)

	app.Post("/api/token", tokenHandler.Generate)

	// Supervisor live feed
	app.Use("/ws/updates", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Use("/ws/updates", middleware.WebSocketRateLimiter(rateLimitConfig))
	app.Get("/ws/updates", websocket.New(updatesHandler.Handle, websocket.Config{
		Origins: strings.Split(allowedOrigins, ","),
	}))

	log.Printf("✅ Server ready on port %s", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/api/health", cfg.Port)
	log.Printf("🔔 Supervisor feed: ws://localhost:%s/ws/updates", cfg.Port)
	log.Printf("🕐 Timeout sweep: %q, expiring Pending requests older than %s", cfg.SweepSchedule, cfg.PendingTTL)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := scheduler.Stop(); err != nil {
			log.Printf("⚠️ Error stopping job scheduler: %v", err)
		}
		if voiceSim != nil {
			voiceSim.Stop()
		}
		if eventFanout != nil {
			eventFanout.Stop()
		}
		watchCancel()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
