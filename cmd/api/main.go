// Package main is the entry point for the chat API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relayhq/chat-platform/internal/config"
	"github.com/relayhq/chat-platform/internal/handler"
	"github.com/relayhq/chat-platform/internal/middleware"
	natsclient "github.com/relayhq/chat-platform/internal/nats"
	"github.com/relayhq/chat-platform/internal/presence"
	"github.com/relayhq/chat-platform/internal/router"
	"github.com/relayhq/chat-platform/internal/service"
	"github.com/relayhq/chat-platform/internal/store"
	"github.com/relayhq/chat-platform/internal/upload"
	"github.com/relayhq/chat-platform/pkg/logger"
	"github.com/relayhq/chat-platform/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting chat API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", "error", err)
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the document store.
	db, err := store.Open(cfg.DataDir, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to NATS: the delivery transport behind every channel.
	natsClient, err := natsclient.Connect(natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	// Stores and core services.
	conversationStore := store.NewConversationStore(db)
	messageStore := store.NewMessageStore(db)
	deliveryRouter := router.New(natsClient, log)
	presenceSvc := presence.NewService(natsClient, cfg.PresenceTTL, log)
	conversationSvc := service.NewConversationService(conversationStore, log)
	messageSvc := service.NewMessageService(messageStore, conversationStore, deliveryRouter, log)

	var uploader upload.Uploader
	if cfg.CloudinaryCloudName != "" {
		uploader = upload.NewCloudinaryUploader(upload.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
	}

	// Handlers.
	healthHandler := handler.NewHealthHandler(natsClient, db)
	chatHandler := handler.NewChatHandler(conversationSvc, log)
	groupHandler := handler.NewGroupHandler(conversationSvc, log)
	messageHandler := handler.NewMessageHandler(messageSvc, log)
	subscribeHandler := handler.NewSubscribeHandler(natsClient, presenceSvc, log)
	presenceHandler := handler.NewPresenceHandler(presenceSvc, log)
	uploadHandler := handler.NewUploadHandler(uploader, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Conversations
		r.Route("/chats", func(r chi.Router) {
			r.Get("/", chatHandler.List)
			r.Post("/direct", chatHandler.CreateDirect)
			r.Get("/{id}", chatHandler.Get)
		})

		// Groups
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", groupHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", groupHandler.Update)
				r.Delete("/", groupHandler.Delete)
				r.Post("/members", groupHandler.AddMember)
				r.Delete("/members/{memberID}", groupHandler.RemoveMember)
			})
		})

		// Messages
		r.Route("/messages", func(r chi.Router) {
			r.Get("/", messageHandler.List)
			r.Post("/", messageHandler.Send)
			r.Get("/search", messageHandler.Search)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", messageHandler.Edit)
				r.Delete("/", messageHandler.Delete)
				r.Post("/react", messageHandler.React)
				r.Put("/pin", messageHandler.TogglePin)
				r.Post("/read", messageHandler.MarkRead)
			})
		})

		// Realtime
		r.Post("/typing", messageHandler.Typing)
		r.Get("/subscribe", subscribeHandler.Subscribe)

		// Presence
		r.Get("/presence/{userID}", presenceHandler.Get)
		r.Post("/presence/heartbeat", presenceHandler.Heartbeat)

		// Uploads
		r.Post("/uploads", uploadHandler.Upload)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
