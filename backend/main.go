package main

import (
	"context"
	"edulearn/backend/chatbot"
	"edulearn/backend/config"
	"edulearn/backend/dedup"
	"edulearn/backend/llm"
	"edulearn/backend/middleware"
	"edulearn/backend/routes"
	"edulearn/backend/store"
	"edulearn/backend/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}
	s := store.New(db)

	// Chat-completion client
	client, err := llm.NewClient(llm.Config{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		Model:      cfg.LLMModel,
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
		Backoff:    cfg.LLMRetryBackoff,
	}, logger)
	if err != nil {
		logger.Fatal("Error initializing chat-completion client", "error", err)
	}

	opts := []chatbot.Option{chatbot.WithLogger(logger)}
	if cfg.GenerationRollback {
		opts = append(opts, chatbot.WithCompensator(s))
	}
	if cfg.GenerationDedupWindow > 0 {
		if cfg.RedisURL != "" {
			guard, err := dedup.NewRedisGuard(context.Background(), cfg.RedisURL, cfg.GenerationDedupWindow)
			if err != nil {
				logger.Fatal("Error connecting to redis", "error", err)
			}
			defer guard.Close()
			opts = append(opts, chatbot.WithGuard(guard))
		} else {
			opts = append(opts, chatbot.WithGuard(dedup.NewMemoryGuard(cfg.GenerationDedupWindow)))
		}
	}
	bot := chatbot.New(s, client, opts...)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				return utils.Fail(c, fe.Code, fe.Message)
			}
			logger.Error("Unhandled error", "path", c.Path(), "error", err)
			return utils.Fail(c, fiber.StatusInternalServerError, "Server error")
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, s, bot, cfg, logger)

	// Start server
	logger.Info("Server starting", "port", cfg.ServerPort, "model", cfg.LLMModel)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("Server stopped", "error", err)
	}
}
