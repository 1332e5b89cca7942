package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ukonnect/ukonnect-api/internal/config"
	"github.com/ukonnect/ukonnect-api/internal/db"
	"github.com/ukonnect/ukonnect-api/internal/reminders"
	"github.com/ukonnect/ukonnect-api/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	if err := db.Seed(conn); err != nil {
		log.Fatalf("seed: %v", err)
	}

	worker := reminders.NewWorker(conn, cfg.FlushInterval)
	if err := worker.Start(); err != nil {
		log.Fatalf("reminder worker: %v", err)
	}
	defer worker.Stop()

	handler := server.New(conn, cfg)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
