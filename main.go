package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EmpoweredVote/EV-Population/internal/aspr"
	"github.com/EmpoweredVote/EV-Population/internal/codes"
	"github.com/EmpoweredVote/EV-Population/internal/config"
	"github.com/EmpoweredVote/EV-Population/internal/db"
	"github.com/EmpoweredVote/EV-Population/internal/logger"
	"github.com/EmpoweredVote/EV-Population/internal/metrics"
	"github.com/EmpoweredVote/EV-Population/internal/middleware"
	"github.com/EmpoweredVote/EV-Population/internal/population"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.Log)
	lg := logger.L()

	if err := cfg.Validate(); err != nil {
		lg.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.RequireDatabase(); err != nil {
		lg.Fatal().Err(err).Msg("invalid configuration")
	}

	ns := population.DefaultNamespace
	if cfg.Namespace != "" {
		if ns, err = uuid.Parse(cfg.Namespace); err != nil {
			lg.Fatal().Err(err).Msg("invalid namespace uuid")
		}
	}

	if err := db.Connect(cfg.DatabaseURL); err != nil {
		lg.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := population.Init(db.DB); err != nil {
		lg.Fatal().Err(err).Msg("failed to set up population schema")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := population.NewService(population.NewStore(db.DB), aspr.NewDataset(cfg.DataPath))
	svc.Namespace = ns
	svc.Workers = cfg.Workers
	svc.BatchSize = cfg.BatchSize
	svc.Metrics = m
	svc.AdminKeyHash = cfg.AdminKeyHash

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(m))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/", RootHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Mount("/fips", codes.SetupRoutes())
		r.Mount("/population", svc.SetupRoutes())
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		lg.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(lg, "shutdown", err)
	}
}
