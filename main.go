package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleancity/config"
	"cleancity/database"
	"cleancity/gemini"
	"cleancity/handlers"
	"cleancity/llm"
	"cleancity/openai"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Set log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the database and ensure the schema
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatal("Failed to ensure schema:", err)
	}
	cancel()

	// Pick the chat relay provider; nil means static fallback replies
	chat := newChatClient(cfg)
	if chat != nil {
		log.Printf("Chat relay enabled via %s", chat.SourceName())
	} else {
		log.Println("No chat credential configured, serving fallback replies")
	}

	h := handlers.NewHandlers(db, cfg, chat)
	router := setupRouter(h)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func newChatClient(cfg *config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		}
	default:
		if cfg.GeminiAPIKey != "" {
			return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		}
	}
	return nil
}

func setupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// Add gzip compression middleware
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// API routes
	api := router.Group("/api")
	{
		api.POST("/chat", h.Chat)

		api.POST("/reports", h.CreateReport)
		api.GET("/reports", h.ListReports)
		api.PUT("/reports/:id", h.UpdateReport)
		api.DELETE("/reports/:id", h.DeleteReport)
		api.POST("/reports/:id/vote", h.Vote)

		api.POST("/users", h.UpsertUser)
		api.GET("/users/:uid", h.GetUser)
		api.GET("/users/:uid/isAdmin", h.IsAdmin)
		api.PUT("/users/:uid/makeAdmin", h.MakeAdmin)

		api.GET("/leaderboard", h.Leaderboard)
	}

	// Root health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "cleancity",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return router
}
