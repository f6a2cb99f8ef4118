package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendly/internal/domain/attendance"
	"attendly/internal/domain/auth"
	"attendly/internal/domain/core"
	"attendly/internal/domain/reports"
	"attendly/internal/domain/requests"
	"attendly/internal/platform/config"
	"attendly/internal/platform/db"
	"attendly/internal/platform/metrics"
	"attendly/internal/transport/http/api"
	attendancehandler "attendly/internal/transport/http/handlers/attendance"
	authhandler "attendly/internal/transport/http/handlers/auth"
	reportshandler "attendly/internal/transport/http/handlers/reports"
	requestshandler "attendly/internal/transport/http/handlers/requests"
	usershandler "attendly/internal/transport/http/handlers/users"
	"attendly/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone load: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	clock := attendance.NewClock(location)
	attendanceSvc := attendance.NewService(attendance.NewStore(pool), clock)
	authSvc := auth.NewService(auth.NewStore(pool))
	usersSvc := core.NewService(core.NewStore(pool))
	requestsSvc := requests.NewService(requests.NewStore(pool))
	reportsSvc := reports.NewService(attendanceSvc)
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Auth(cfg.JWTSecret, authSvc))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authSvc, attendanceSvc, usersSvc, cfg.JWTSecret, cfg.TokenTTL, cfg.AllowSelfSignup, collector)
		authHandler.RegisterRoutes(r, middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

			attendancehandler.NewHandler(attendanceSvc).RegisterRoutes(r)
			usershandler.NewHandler(usersSvc).RegisterRoutes(r)
			requestshandler.NewHandler(requestsSvc).RegisterRoutes(r)
			reportshandler.NewHandler(reportsSvc, clock).RegisterRoutes(r)
		})

		if cfg.MetricsEnabled {
			r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				requestID := middleware.GetRequestID(req.Context())
				user, ok := middleware.GetUser(req.Context())
				if !ok {
					api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
					return
				}
				if !user.IsAdmin() {
					api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", requestID)
					return
				}
				api.Success(w, collector.Snapshot(), requestID)
			})
		}
	})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("attendance server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
