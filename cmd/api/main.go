package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	snsinfra "github.com/go-notify-api/internal/infrastructure/sns"
	transporthttp "github.com/go-notify-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap the notifications table (created if it doesn't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.NotificationsTable)

	// SNS mirror (optional — only when a topic is configured).
	var publisher snsinfra.Publisher
	if cfg.SNSTopicARN != "" {
		p, err := snsinfra.NewPublisher(cfg)
		if err != nil {
			log.Printf("WARN: SNS publisher not available: %v", err)
		} else {
			publisher = p
		}
	}

	// JWT provider for the register-credential verifier (optional — the
	// channel stays in client-declared mode when keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available, register is unauthenticated: %v", err)
	}

	deps := &transporthttp.Deps{
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.NotificationsTable),
		Publisher:        publisher,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.AppPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would sever long-lived websocket connections.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Notification server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
