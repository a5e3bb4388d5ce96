package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"participant-service/internal/participant/handler"
	"participant-service/internal/participant/models"
	"participant-service/internal/participant/service"
	participantstore "participant-service/internal/participant/store"
	"participant-service/internal/platform/config"
	"participant-service/internal/platform/httpserver"
	"participant-service/internal/platform/logger"
	"participant-service/internal/platform/metrics"
	"participant-service/internal/platform/middleware"
	"participant-service/internal/platform/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	var db *sql.DB
	var st participantstore.Store
	if cfg.DatabaseURL != "" {
		db, err = postgres.Open(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		st = participantstore.NewPostgres(db)
	} else {
		mem := participantstore.NewInMemory()
		seedPrograms(mem)
		st = mem
		log.Warn("DATABASE_URL not set, using in-memory store")
	}

	m := metrics.New()
	svc := service.New(st, log, service.WithMetrics(m))

	var jwtValidator middleware.JWTValidator
	if cfg.JWTSigningKey != "" {
		jwtValidator = middleware.NewHMACValidator(cfg.JWTSigningKey)
	}

	router := chi.NewRouter()
	router.Get("/healthz", healthz(db))
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log, m, jwtValidator).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting participant-service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// healthz reports liveness, including a database ping when one is configured.
func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// seedPrograms gives the in-memory boot a usable catalog; with Postgres the
// program_types table is the source of truth.
func seedPrograms(mem *participantstore.InMemory) {
	age := func(v int) *int { return &v }
	days := func(v int) *int { return &v }
	mem.SeedProgram(models.ProgramType{Code: "GOLD", Name: "Gold Program", EligibilityAge: age(18)})
	mem.SeedProgram(models.ProgramType{Code: "SENIOR", Name: "Senior Program", EligibilityAge: age(65)})
	mem.SeedProgram(models.ProgramType{Code: "TRIAL", Name: "Trial Program", EnrollmentTermDays: days(30)})
}
