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

	"confraria/config"
	"confraria/internal/database"
	"confraria/internal/router"
	"confraria/pkg/authprovider"
	"confraria/pkg/notify"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db,
		envOr("ADMIN_PHONE", "5500000000000"),
		envOr("ADMIN_PASSWORD", "change-me-admin"),
	)

	var provider authprovider.Provider
	if cfg.Auth.Provider == "http" {
		provider = authprovider.NewHTTPProvider(cfg.Auth.BaseURL, cfg.Auth.APIKey, cfg.Auth.Timeout)
		log.Printf("[auth] using hosted auth provider at %s", cfg.Auth.BaseURL)
	} else {
		provider = authprovider.NewGormProvider(db)
		log.Printf("[auth] using local auth provider")
	}

	var sender notify.Sender
	if cfg.Notify.Sender == "http" {
		sender = notify.NewHTTPSender(cfg.Notify.GatewayURL, cfg.Notify.APIKey, cfg.Notify.Timeout)
		log.Printf("[notify] using gateway at %s", cfg.Notify.GatewayURL)
	} else {
		sender = notify.LogSender{}
		log.Printf("[notify] using log sender (messages are not delivered)")
	}

	engine := router.Setup(cfg, db, provider, sender)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
