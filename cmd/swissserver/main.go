// Command swissserver runs the HTTP/websocket front-end over the Swiss
// pairing engine, grounded in the teacher's cmd/main.go: godotenv config
// loading, a database/sql + lib/pq connection, gin with gin-contrib/cors,
// and graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/api"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store/memstore"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store/pgstore"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/wsbroadcast"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	serverPort := getEnvOrDefault("SERVER_PORT", "8082")
	allowedOrigin := getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:3000")

	backend, closeBackend := buildStore()
	defer closeBackend()

	server := &api.Server{Store: backend, Hubs: wsbroadcast.NewRegistry()}
	router := api.NewRouter(server, []string{allowedOrigin})

	httpServer := &http.Server{
		Addr:    ":" + serverPort,
		Handler: router,
	}

	go func() {
		log.Printf("swissserver starting on port %s", serverPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("swissserver is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("swissserver exited properly")
}

// buildStore picks pgstore when STORE_BACKEND=postgres, connecting with the
// DB_* settings, and falls back to an in-memory store otherwise so the
// server is runnable without standing up Postgres first.
func buildStore() (store.Store, func()) {
	if getEnvOrDefault("STORE_BACKEND", "memory") != "postgres" {
		log.Println("swissserver: using in-memory store (set STORE_BACKEND=postgres to use Postgres)")
		return memstore.New(), func() {}
	}

	dbHost := getEnvOrDefault("DB_HOST", "localhost")
	dbPort := getEnvOrDefault("DB_PORT", "5432")
	dbUser := getEnvOrDefault("DB_USER", "postgres")
	dbPass := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "swiss_pairing_db")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=require",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if _, err := db.Exec(pgstore.Schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Println("swissserver: connected to Postgres")

	return pgstore.New(db), func() { db.Close() }
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
