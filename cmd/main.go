package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"

	"flatauth/internal/api"
	"flatauth/internal/auth"
	"flatauth/internal/config"
	"flatauth/internal/storage"
)

func init() {
	// Load environment variables from .env file.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
}

func main() {
	cfg := config.Load()

	store := storage.New(cfg.DataDir)
	authority := auth.New(store, cfg.HashingSecret)
	router := api.New(store, authority, cfg.HashingSecret)

	// Recovery keeps a panicking request from taking the process down;
	// logging gives one access-log line per request.
	chain := handlers.RecoveryHandler()(router)
	chain = handlers.LoggingHandler(os.Stdout, chain)

	srv := newServer(cfg.HTTPPort, chain)
	go func() {
		log.Printf("Listening on port %d in %s mode", cfg.HTTPPort, cfg.EnvName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Serve TLS as well when certificate material is present.
	var tlsSrv *http.Server
	keyFile := filepath.Join("https", "key.pem")
	certFile := filepath.Join("https", "cert.pem")
	if fileExists(keyFile) && fileExists(certFile) {
		tlsSrv = newServer(cfg.HTTPSPort, chain)
		go func() {
			log.Printf("Listening on port %d in %s mode (TLS)", cfg.HTTPSPort, cfg.EnvName)
			if err := tlsSrv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
				log.Fatalf("TLS server error: %v", err)
			}
		}()
	}

	// Wait for interrupt signals for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if tlsSrv != nil {
		if err := tlsSrv.Shutdown(ctx); err != nil {
			log.Fatalf("TLS server forced to shutdown: %v", err)
		}
	}
	log.Println("Server exiting gracefully.")
}

func newServer(port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
