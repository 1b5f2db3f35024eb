package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/app"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/config"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")
	log.Printf("Server will listen on port: %s", config.AppConfig.Port)
	log.Printf("Safe mode: %v", config.AppConfig.EnableSafeMode)

	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("Failed to assemble assistant: %v", err)
	}

	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Create handler
	h := handler.NewHandler(a.Assistant, a.Store)

	// Routes
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", h.HealthCheck)

		// Text commands
		api.POST("/command", h.Command)

		// Conversation state
		api.GET("/context", h.Context)

		// Voice channel (WebSocket)
		api.GET("/voice", h.Voice)
	}

	// Periodic context snapshots
	h.StartSnapshots(config.AppConfig.SnapshotInterval)

	// Flush the context store on SIGINT/SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down")
		h.StopSnapshots()
		a.Close()
		os.Exit(0)
	}()

	// Start server
	addr := ":" + config.AppConfig.Port
	log.Printf("Starting assistant server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
