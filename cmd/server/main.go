package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"habitsync/internal/db"
	"habitsync/internal/handlers"
	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		slog.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	encSvc, err := services.NewEncryptionService([]byte(encryptionKey))
	if err != nil {
		slog.Error("invalid ENCRYPTION_KEY", slog.Any("err", err))
		os.Exit(1)
	}

	dbPath := mustGetenv("DATABASE_PATH", "habit_tracker.db")
	port := mustGetenv("PORT", "8080")

	dbConn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	// SQLite has a single writer; one pooled connection also guarantees the
	// post-sync snapshot reads see the just-committed batch.
	dbConn.SetMaxOpenConns(1)
	if err = dbConn.Ping(); err != nil {
		slog.Error("failed to ping db", slog.Any("err", err))
		os.Exit(1)
	}
	if _, err := dbConn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		slog.Error("failed to enable foreign keys", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.RunMigrations(dbConn); err != nil {
		slog.Error("failed migrations", slog.Any("err", err))
		os.Exit(1)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		slog.Error("failed to build zap logger", slog.Any("err", err))
		os.Exit(1)
	}
	defer zapLogger.Sync()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(zapLogger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Mount("/", handlers.NewRouter(dbConn, []byte(sessionSecret), encSvc))

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	slog.Info("server stopped")
}
