// Package main serves the in-memory tenantchat API for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raphaelgruber/tenantchat/internal/fakeapi"
)

func main() {
	replyDelay := flag.Duration("reply-delay", 0, "delay before the assistant answers")
	noPayload := flag.Bool("no-login-payload", false, "answer login with no user payload")
	flag.Parse()

	port := os.Getenv("TENANTCHAT_FAKEAPI_PORT")
	if port == "" {
		port = "8080"
	}

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	gin.SetMode(gin.ReleaseMode)

	opts := []fakeapi.Option{fakeapi.WithLogger(logger), fakeapi.WithReplyDelay(*replyDelay)}
	if *noPayload {
		opts = append(opts, fakeapi.WithoutLoginPayload())
	}
	api := fakeapi.New(opts...)
	if err := api.SeedDemo(); err != nil {
		slog.Error("failed to seed demo data", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      api.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("fake API available", "url", fmt.Sprintf("http://localhost:%s/api", port))
		slog.Info("demo login", "domain", fakeapi.DemoDomain, "email", "a@acme.com", "password", fakeapi.DemoPassword)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
