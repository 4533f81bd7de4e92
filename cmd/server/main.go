package main

// @title           Room Relay API
// @version         1.0
// @description     Room-scoped WebSocket chat relay with a small HTTP API for listing and creating rooms
// @host            localhost:3030
// @BasePath        /
// @schemes         http https

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"room-relay/internal/adapters/kafka"
	"room-relay/internal/api/routes"
	"room-relay/internal/config"
	"room-relay/internal/database"
	"room-relay/internal/metrics"
	"room-relay/internal/repositories"
	"room-relay/internal/services"
	"room-relay/internal/websocket"
	"room-relay/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Initialize logger
	logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.Info("Starting room relay", "driver", cfg.Database.Driver)

	// Initialize database connection
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	messageRepo := repositories.NewMessageRepository(db)

	// Optional Redis: room list cache and create-room rate limit
	var redisService *services.RedisService
	var roomCache services.Cache
	if cfg.Redis.URL != "" {
		redisClient, err := database.NewRedisConnection(cfg.Redis.URL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		redisService = services.NewRedisService(redisClient)
		roomCache = redisService
	}

	// Optional Kafka: publish every relayed message
	var store websocket.MessageStore = messageRepo
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers, cfg.WebSocket.MaxMessageSize)
		if err != nil {
			slog.Error("Failed to create Kafka producer", "brokers", cfg.Kafka.Brokers, "error", err)
			os.Exit(1)
		}
		stream := kafka.NewMessageStream(messageRepo, producer, cfg.Kafka.Topic)
		defer stream.Close()

		store = stream
		slog.Info("Publishing relayed messages", "topic", cfg.Kafka.Topic)
	}

	// Rooms first seen through relayed messages drop the cached room list
	roomService := services.NewRoomService(messageRepo, roomCache, cfg.Redis.RoomCacheTTL)
	store = roomService.TrackMessages(store)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize WebSocket hub
	hub := websocket.NewHub(store, websocket.Options{
		SendBuffer:     cfg.WebSocket.SendBuffer,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		Upgrader:       websocket.NewUpgrader(cfg.WebSocket.AllowedOrigins),
		Logger:         slog.Default(),
		Metrics:        metrics.NewRelay(reg),
	})

	// Initialize router with all dependencies
	router := routes.NewRouter(cfg, hub, roomService, redisService, reg)
	router.SetupRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
	}

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Close live WebSocket connections; Shutdown does not wait for hijacked ones
	hub.Shutdown()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
