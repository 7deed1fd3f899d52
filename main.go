package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"procurement-core/internal/audit"
	"procurement-core/internal/auth"
	"procurement-core/internal/config"
	"procurement-core/internal/observability/metrics"
	tenderapp "procurement-core/internal/tender/application"
	tenderrepo "procurement-core/internal/tender/infrastructure/postgres"
	tenderhttp "procurement-core/internal/tender/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	ctx := context.Background()
	tenderRepo := tenderrepo.NewTenderRepository(db)
	if err := tenderRepo.EnsureSchema(ctx); err != nil {
		logger.Fatalf("tender schema error: %v", err)
	}
	auditRepo := audit.NewRepository(db)
	if err := auditRepo.EnsureSchema(ctx); err != nil {
		logger.Fatalf("audit schema error: %v", err)
	}

	metrics.Init(db, logger)

	service, err := tenderapp.NewService(tenderRepo, cfg.Variants(), tenderapp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("tender service error: %v", err)
	}
	handler, err := tenderhttp.NewHandler(service, auditRepo)
	if err != nil {
		logger.Fatalf("tender handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/tenders/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.ListenAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.ListenAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
